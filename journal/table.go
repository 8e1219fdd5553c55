package journal

import "github.com/chn0318/mdjournal/mdsapi"

// EAlloc records one allocation or reclamation against the ID
// allocator table.
type EAlloc struct {
	Position
	TableVersion mdsapi.Version
	What         mdsapi.AllocWhat
	ID           mdsapi.InodeNo
}

func (e *EAlloc) Kind() Kind    { return KindAlloc }
func (e *EAlloc) Pos() Position { return e.Position }

func (e *EAlloc) HasExpired(mds *mdsapi.MDS) bool {
	return mds.AllocTable.GetCommittedVersion() >= e.TableVersion
}

func (e *EAlloc) Expire(mds *mdsapi.MDS, done mdsapi.Completion) {
	if e.HasExpired(mds) {
		expireIllegal(KindAlloc)
	}
	mds.AllocTable.Save(done, e.TableVersion)
}

func (e *EAlloc) Replay(mds *mdsapi.MDS) {
	v := mds.AllocTable.GetVersion()
	if v >= e.TableVersion {
		return // already caught up
	}
	if v != e.TableVersion-1 {
		fatalf(KindAlloc, "replay: table version %d is not one less than event version %d", v, e.TableVersion)
	}
	switch e.What {
	case mdsapi.Alloc:
		got := mds.AllocTable.AllocID(true)
		if got != e.ID {
			fatalf(KindAlloc, "replay: allocator produced %d, event recorded %d", got, e.ID)
		}
	case mdsapi.Free:
		mds.AllocTable.ReclaimID(e.ID, true)
	default:
		fatalf(KindAlloc, "replay: unknown alloc op %v", e.What)
	}
	if mds.AllocTable.GetVersion() != e.TableVersion {
		fatalf(KindAlloc, "replay: table left at version %d, wanted %d", mds.AllocTable.GetVersion(), e.TableVersion)
	}
}

// EAnchor records one step of the anchor table's two-phase protocol.
type EAnchor struct {
	Position
	Version mdsapi.Version
	Op      mdsapi.AnchorOp
	Ino     mdsapi.InodeNo
	Trace   []byte
	ReqMDS  mdsapi.NodeID
	Atid    mdsapi.Version
}

func (e *EAnchor) Kind() Kind    { return KindAnchor }
func (e *EAnchor) Pos() Position { return e.Position }

func (e *EAnchor) HasExpired(mds *mdsapi.MDS) bool {
	return mds.AnchorTable.GetCommittedVersion() >= e.Version
}

func (e *EAnchor) Expire(mds *mdsapi.MDS, done mdsapi.Completion) {
	if e.HasExpired(mds) {
		expireIllegal(KindAnchor)
	}
	mds.AnchorTable.Save(done)
}

func (e *EAnchor) Replay(mds *mdsapi.MDS) {
	v := mds.AnchorTable.GetVersion()
	if v >= e.Version {
		return
	}
	if v != e.Version-1 {
		fatalf(KindAnchor, "replay: table version %d is not one less than event version %d", v, e.Version)
	}
	switch e.Op {
	case mdsapi.AnchorCreatePrepare:
		mds.AnchorTable.CreatePrepare(e.Ino, e.Trace, e.ReqMDS, e.Atid)
	case mdsapi.AnchorDestroyPrepare:
		mds.AnchorTable.DestroyPrepare(e.Ino, e.Atid)
	case mdsapi.AnchorUpdatePrepare:
		mds.AnchorTable.UpdatePrepare(e.Ino, e.Trace, e.Atid)
	case mdsapi.AnchorCommit:
		mds.AnchorTable.Commit(e.Atid)
	default:
		fatalf(KindAnchor, "replay: unknown anchor op %v", e.Op)
	}
	if mds.AnchorTable.GetVersion() != e.Version {
		fatalf(KindAnchor, "replay: table left at version %d, wanted %d", mds.AnchorTable.GetVersion(), e.Version)
	}
}

// EAnchorClient records that this MDS's anchor client received an ACK
// for atid. It is always expired: by the time it is journaled, the
// ack it records has already been durably reflected in the anchor
// table's own commit.
type EAnchorClient struct {
	Position
	Atid mdsapi.Version
}

func (e *EAnchorClient) Kind() Kind             { return KindAnchorClient }
func (e *EAnchorClient) Pos() Position          { return e.Position }
func (e *EAnchorClient) HasExpired(*mdsapi.MDS) bool { return true }

func (e *EAnchorClient) Expire(*mdsapi.MDS, mdsapi.Completion) {
	expireIllegal(KindAnchorClient)
}

func (e *EAnchorClient) Replay(mds *mdsapi.MDS) {
	mds.AnchorClient.GotJournaledAck(e.Atid)
}
