package journal

import (
	"github.com/chn0318/mdjournal/mdsapi"
)

// FullBit is a full dentry+inode snapshot: the dentry's name and
// version plus the inode record it points at (and symlink target, if
// any).
type FullBit struct {
	DentryName    string
	DentryVersion mdsapi.Version
	Dirty         bool
	Inode         mdsapi.InodeRecord
	SymlinkTarget string // empty for non-symlinks
	IsSymlink     bool
}

// RemoteBit is a dentry pointing at a remote inode by number.
type RemoteBit struct {
	DentryName    string
	DentryVersion mdsapi.Version
	Dirty         bool
	TargetIno     mdsapi.InodeNo
}

// NullBit is a negative dentry.
type NullBit struct {
	DentryName    string
	DentryVersion mdsapi.Version
	Dirty         bool
}

// Dirlump is one directory fragment's worth of changes.
type Dirlump struct {
	Dirv     mdsapi.Version
	Dirty    bool
	Complete bool

	Full   []FullBit
	Remote []RemoteBit
	Null   []NullBit
}

// Truncation pairs an inode snapshot with the size it is being
// truncated (purged) down to.
type Truncation struct {
	Inode   mdsapi.InodeRecord
	NewSize uint64
}

// MetaBlob is the composite payload embedded by EUpdate, ESlaveUpdate,
// EOpen, EImportMap, EExport, and EImportStart. lump_order/lump_map from
// spec.md §3 are folded into a single ordered slice of (id, lump)
// pairs here, since Go has no ordered-map literal and preserving
// order is the only invariant that matters (spec.md invariant 1).
type MetaBlob struct {
	Lumps      []DirfragLump
	Atids      []mdsapi.Version
	Truncated  []Truncation
	ClientReqs []mdsapi.RequestID
}

// DirfragLump is one entry of MetaBlob.Lumps: a dirfrag id plus its
// lump. Keeping (id, lump) together, in a slice, is how this
// implementation preserves lump_order without a parallel map lookup.
type DirfragLump struct {
	ID   mdsapi.DirfragID
	Lump Dirlump
}

// HasExpired implements spec.md §4.1's has_expired for the blob
// embedded in whichever event owns it.
func (m *MetaBlob) HasExpired(mds *mdsapi.MDS) bool {
	for _, dl := range m.Lumps {
		dir := mds.Cache.GetDirfrag(dl.ID)
		if dir == nil {
			// Already trimmed from cache: prior flush is implied.
			continue
		}
		auth := dir.Authority()
		if auth.Primary != mds.SelfNode {
			continue // not our problem
		}
		if dir.CommittedVersion() >= dl.Lump.Dirv {
			continue // committed already
		}
		if dir.IsAmbiguousDirAuth() {
			// The authority transition could reassign
			// responsibility for this dirfrag; conservatively not
			// expired until it resolves.
			return false
		}
		return false // not yet committed
	}

	for _, atid := range m.Atids {
		if !mds.AnchorClient.HasCommitted(atid) {
			return false
		}
	}

	for _, t := range m.Truncated {
		if mds.Cache.IsPurging(t.Inode.Ino, t.NewSize) {
			return false
		}
	}

	for _, reqid := range m.ClientReqs {
		if mds.ClientMap.HaveCompletedRequest(reqid) {
			return false
		}
	}

	return true
}

// Expire implements spec.md §4.1's expire: it builds one gather over
// exactly the unmet conditions HasExpired found, and returns once
// every sub-completion has been registered (the sub-completions
// themselves fire asynchronously).
func (m *MetaBlob) Expire(mds *mdsapi.MDS, done mdsapi.Completion) {
	// Tie-break: when multiple bits reference the same dirfrag, use
	// the maximum dirv across them. Lumps are already one-per-dirfrag
	// by construction (see Invariant 1 in spec.md §3), so this only
	// matters if a caller built Lumps by hand without de-duplicating;
	// guard for it defensively by tracking the max per id.
	maxDirv := make(map[mdsapi.DirfragID]mdsapi.Version, len(m.Lumps))
	for _, dl := range m.Lumps {
		if cur, ok := maxDirv[dl.ID]; !ok || dl.Lump.Dirv > cur {
			maxDirv[dl.ID] = dl.Lump.Dirv
		}
	}

	pending := 0
	type work func(sub mdsapi.Completion)
	var jobs []work

	for id, dirv := range maxDirv {
		dir := mds.Cache.GetDirfrag(id)
		if dir == nil {
			continue
		}
		auth := dir.Authority()
		if auth.Primary != mds.SelfNode {
			continue
		}
		if dir.CommittedVersion() >= dirv {
			continue
		}
		if dir.IsAmbiguousDirAuth() {
			if mds.Migrator.IsExporting(id) {
				pending++
				di := id
				jobs = append(jobs, func(sub mdsapi.Completion) {
					mds.Migrator.AddExportFinishWaiter(di, sub)
				})
			} else {
				pending++
				di := id
				jobs = append(jobs, func(sub mdsapi.Completion) {
					dir := mds.Cache.GetDirfrag(di)
					if dir != nil {
						dir.AddWaiter("imported", sub)
					} else {
						sub()
					}
				})
			}
			continue
		}
		pending++
		dv := dirv
		di := id
		jobs = append(jobs, func(sub mdsapi.Completion) {
			commitDirfrag(mds, di, dv, sub)
		})
	}

	for _, atid := range m.Atids {
		if mds.AnchorClient.HasCommitted(atid) {
			continue
		}
		pending++
		a := atid
		jobs = append(jobs, func(sub mdsapi.Completion) {
			mds.AnchorClient.WaitForAck(a, sub)
		})
	}

	for _, t := range m.Truncated {
		if !mds.Cache.IsPurging(t.Inode.Ino, t.NewSize) {
			continue
		}
		pending++
		tt := t
		jobs = append(jobs, func(sub mdsapi.Completion) {
			mds.Cache.WaitForPurge(tt.Inode.Ino, tt.NewSize, sub)
		})
	}

	for _, reqid := range m.ClientReqs {
		if !mds.ClientMap.HaveCompletedRequest(reqid) {
			continue
		}
		pending++
		r := reqid
		jobs = append(jobs, func(sub mdsapi.Completion) {
			mds.ClientMap.AddTrimWaiter(r, sub)
		})
	}

	g := mdsapi.NewGather(pending, done)
	for _, j := range jobs {
		j(g.Sub())
	}
}

// commitDirfrag requests dir be flushed to dirv if it can currently be
// auth-pinned; otherwise it waits for "auth-pinnable" and retries.
// This mirrors journal.cc's retry-on-auth-pin loop for EMetaBlob's
// dirfrag commits.
func commitDirfrag(mds *mdsapi.MDS, id mdsapi.DirfragID, dirv mdsapi.Version, done mdsapi.Completion) {
	dir := mds.Cache.GetDirfrag(id)
	if dir == nil {
		done()
		return
	}
	if dir.CanAuthPin() {
		dir.Commit(dirv, done)
		return
	}
	dir.AddWaiter("auth-pinnable", func() {
		commitDirfrag(mds, id, dirv, done)
	})
}

// Replay implements spec.md §4.1's replay: visit lumps in order,
// apply each dirlump's bits, then record the blob-wide side effects
// (anchor agreements, recoverable purges, completed requests).
func (m *MetaBlob) Replay(mds *mdsapi.MDS, k Kind) {
	for _, dl := range m.Lumps {
		replayDirfragLump(mds, k, dl.ID, dl.Lump)
	}

	for _, atid := range m.Atids {
		mds.AnchorClient.GotJournaledAgree(atid)
	}
	for _, t := range m.Truncated {
		mds.Cache.AddRecoveredPurge(t.Inode, t.NewSize)
	}
	for _, reqid := range m.ClientReqs {
		mds.ClientMap.AddCompletedRequest(reqid)
	}
}

func replayDirfragLump(mds *mdsapi.MDS, k Kind, id mdsapi.DirfragID, lump Dirlump) {
	parent := mds.Cache.GetInode(id.Ino)
	if parent == nil {
		switch {
		case id.Ino == mdsapi.ROOT:
			parent = mds.Cache.CreateRootInode()
		case mdsapi.IsStray(id.Ino):
			parent = mds.Cache.CreateStrayInode(mdsapi.StrayNodeID(id.Ino))
		default:
			fatalf(k, "replay: missing parent inode %d for dirfrag %s is neither root nor stray", id.Ino, id)
		}
	}

	dir := mds.Cache.GetOrOpenDirfrag(parent, id.Frag)
	if id.Ino == mdsapi.ROOT {
		// Deferred to the next EImportMap; see DESIGN.md's Open
		// Question decision.
		dir.SetDirAuth(mdsapi.Authority{Primary: mdsapi.Unknown, Secondary: mdsapi.Unknown})
	}

	dir.SetVersion(lump.Dirv)
	dir.SetDirty(lump.Dirty)
	dir.SetComplete(lump.Complete)

	for _, fb := range lump.Full {
		replayFullBit(mds, dir, fb)
	}
	for _, rb := range lump.Remote {
		replayRemoteBit(dir, rb)
	}
	for _, nb := range lump.Null {
		replayNullBit(dir, nb)
	}
}

func replayFullBit(mds *mdsapi.MDS, dir mdsapi.Dirfrag, fb FullBit) {
	dn := dir.Lookup(fb.DentryName)
	if dn == nil {
		dn = dir.AddDentry(fb.DentryName, 0)
	}
	dn.SetVersion(fb.DentryVersion)
	dn.SetDirty(fb.Dirty)

	in := mds.Cache.GetInode(fb.Inode.Ino)
	if in == nil {
		in = mds.Cache.NewInode(fb.Inode.Ino)
		mds.Cache.AddInode(in)
	} else if old := in.GetParentDN(); old != nil {
		// Invariant 2: an inode is linked under exactly one dentry
		// after replay; sever any prior link before relinking, from
		// the old dentry's own directory rather than the one being
		// replayed into now (they can differ, e.g. after a rename).
		old.Dir().UnlinkInode(old)
	}
	in.SetRecord(fb.Inode)
	if fb.IsSymlink {
		in.SetSymlink(fb.SymlinkTarget)
	}
	dir.LinkInode(dn, in)
}

func replayRemoteBit(dir mdsapi.Dirfrag, rb RemoteBit) {
	dn := dir.Lookup(rb.DentryName)
	if dn == nil {
		dn = dir.AddDentry(rb.DentryName, rb.TargetIno)
	} else if !dn.IsNull() {
		dir.UnlinkInode(dn)
	}
	dn.SetVersion(rb.DentryVersion)
	dn.SetDirty(rb.Dirty)
	dn.SetRemoteIno(rb.TargetIno)
}

func replayNullBit(dir mdsapi.Dirfrag, nb NullBit) {
	dn := dir.Lookup(nb.DentryName)
	if dn == nil {
		dn = dir.AddDentry(nb.DentryName, 0)
	} else if !dn.IsNull() {
		dir.UnlinkInode(dn)
	}
	dn.SetVersion(nb.DentryVersion)
	dn.SetDirty(nb.Dirty)
}
