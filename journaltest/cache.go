// Package journaltest provides small, deterministic in-memory
// implementations of every mdsapi interface. spec.md treats the
// cache, client map, anchor table/client, ID allocator, migrator, and
// log as external collaborators given only by contract (§6); these
// fakes are that contract's simplest faithful implementation, so
// besides backing the journal and trimmer packages' own tests, they
// also double as cmd/mdjournald's single-node, non-distributed
// deployment mode. A deployment that needs real subtree migration,
// on-disk dentries, or a networked anchor table would swap these out
// behind the same mdsapi interfaces without touching journal itself.
package journaltest

import "github.com/chn0318/mdjournal/mdsapi"

// Cache is an in-memory stand-in for mdsapi.Cache.
type Cache struct {
	dirfrags map[mdsapi.DirfragID]*Dirfrag
	inodes   map[mdsapi.InodeNo]*Inode
	purging  map[purgeKey]bool
	purgeWait map[purgeKey][]mdsapi.Completion
	recovered map[purgeKey]bool
	subtrees  map[mdsapi.DirfragID]mdsapi.NodeID
	ambiguous map[mdsapi.DirfragID][]mdsapi.DirfragID
}

type purgeKey struct {
	Ino  mdsapi.InodeNo
	Size uint64
}

// NewCache returns an empty fake cache.
func NewCache() *Cache {
	return &Cache{
		dirfrags:  make(map[mdsapi.DirfragID]*Dirfrag),
		inodes:    make(map[mdsapi.InodeNo]*Inode),
		purging:   make(map[purgeKey]bool),
		purgeWait: make(map[purgeKey][]mdsapi.Completion),
		recovered: make(map[purgeKey]bool),
		subtrees:  make(map[mdsapi.DirfragID]mdsapi.NodeID),
		ambiguous: make(map[mdsapi.DirfragID][]mdsapi.DirfragID),
	}
}

// PutDirfrag installs dir under its own id, for test setup.
func (c *Cache) PutDirfrag(dir *Dirfrag) { c.dirfrags[dir.id] = dir }

func (c *Cache) GetDirfrag(id mdsapi.DirfragID) mdsapi.Dirfrag {
	dir, ok := c.dirfrags[id]
	if !ok {
		return nil
	}
	return dir
}

func (c *Cache) GetInode(ino mdsapi.InodeNo) mdsapi.Inode {
	in, ok := c.inodes[ino]
	if !ok {
		return nil
	}
	return in
}

func (c *Cache) AddInode(in mdsapi.Inode) { c.inodes[in.Ino()] = in.(*Inode) }

func (c *Cache) NewInode(ino mdsapi.InodeNo) mdsapi.Inode {
	return &Inode{ino: ino}
}

func (c *Cache) CreateRootInode() mdsapi.Inode {
	in := &Inode{ino: mdsapi.ROOT}
	c.inodes[in.ino] = in
	return in
}

func (c *Cache) CreateStrayInode(node mdsapi.NodeID) mdsapi.Inode {
	ino := mdsapi.StrayBase + mdsapi.InodeNo(node)
	in := &Inode{ino: ino}
	c.inodes[in.ino] = in
	return in
}

func (c *Cache) GetOrOpenDirfrag(parent mdsapi.Inode, frag uint32) mdsapi.Dirfrag {
	id := mdsapi.DirfragID{Ino: parent.Ino(), Frag: frag}
	if dir, ok := c.dirfrags[id]; ok {
		return dir
	}
	dir := &Dirfrag{id: id, authPinnable: true, dentries: make(map[string]*Dentry), waiters: make(map[string][]mdsapi.Completion)}
	c.dirfrags[id] = dir
	return dir
}

func (c *Cache) IsPurging(ino mdsapi.InodeNo, size uint64) bool {
	return c.purging[purgeKey{ino, size}]
}

func (c *Cache) WaitForPurge(ino mdsapi.InodeNo, size uint64, cb mdsapi.Completion) {
	k := purgeKey{ino, size}
	if !c.purging[k] {
		cb()
		return
	}
	c.purgeWait[k] = append(c.purgeWait[k], cb)
}

// FinishPurge marks (ino, size) as no longer purging and fires
// whatever waiters had registered for it. Test helper only.
func (c *Cache) FinishPurge(ino mdsapi.InodeNo, size uint64) {
	k := purgeKey{ino, size}
	delete(c.purging, k)
	waiters := c.purgeWait[k]
	delete(c.purgeWait, k)
	for _, cb := range waiters {
		cb()
	}
}

// StartPurge marks (ino, size) as currently purging. Test helper.
func (c *Cache) StartPurge(ino mdsapi.InodeNo, size uint64) {
	c.purging[purgeKey{ino, size}] = true
}

func (c *Cache) AddRecoveredPurge(rec mdsapi.InodeRecord, size uint64) {
	c.recovered[purgeKey{rec.Ino, size}] = true
}

func (c *Cache) RemoveRecoveredPurge(ino mdsapi.InodeNo, size uint64) {
	delete(c.recovered, purgeKey{ino, size})
}

// IsRecoveredPurge reports whether (ino, size) is still in the
// recovered-purge set. Test helper.
func (c *Cache) IsRecoveredPurge(ino mdsapi.InodeNo, size uint64) bool {
	return c.recovered[purgeKey{ino, size}]
}

func (c *Cache) IsSubtrees() bool { return len(c.subtrees) > 0 }

func (c *Cache) AdjustSubtreeAuth(dir mdsapi.DirfragID, node mdsapi.NodeID) {
	c.subtrees[dir] = node
}

// SubtreeAuth returns the node recorded for dir by AdjustSubtreeAuth,
// for test assertions.
func (c *Cache) SubtreeAuth(dir mdsapi.DirfragID) (mdsapi.NodeID, bool) {
	n, ok := c.subtrees[dir]
	return n, ok
}

func (c *Cache) AdjustBoundedSubtreeAuth(base mdsapi.DirfragID, bounds []mdsapi.DirfragID, a mdsapi.Authority) {
	c.subtrees[base] = a.Primary
	for _, b := range bounds {
		c.subtrees[b] = a.Primary
	}
}

func (c *Cache) TrySubtreeMerge(mdsapi.DirfragID) {}

func (c *Cache) AddAmbiguousImport(base mdsapi.DirfragID, bounds []mdsapi.DirfragID) {
	c.ambiguous[base] = bounds
}

// IsAmbiguousImport reports whether base is currently a pending
// ambiguous import. Test helper.
func (c *Cache) IsAmbiguousImport(base mdsapi.DirfragID) bool {
	_, ok := c.ambiguous[base]
	return ok
}

func (c *Cache) FinishAmbiguousImport(base mdsapi.DirfragID) {
	if bounds, ok := c.ambiguous[base]; ok {
		c.AdjustBoundedSubtreeAuth(base, bounds, mdsapi.Authority{Primary: -1, Secondary: mdsapi.Unknown})
		delete(c.ambiguous, base)
	}
}

func (c *Cache) CancelAmbiguousImport(base mdsapi.DirfragID) {
	delete(c.ambiguous, base)
}
