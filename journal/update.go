package journal

import "github.com/chn0318/mdjournal/mdsapi"

// SlaveOp is the phase carried by an ESlaveUpdate.
type SlaveOp int

const (
	SlavePrepare SlaveOp = iota
	SlaveCommit
	SlaveAbort
)

func (op SlaveOp) String() string {
	switch op {
	case SlavePrepare:
		return "prepare"
	case SlaveCommit:
		return "commit"
	case SlaveAbort:
		return "abort"
	default:
		return "unknown_slave_op"
	}
}

// EUpdate is a plain transaction wrapper around a MetaBlob.
type EUpdate struct {
	Position
	Blob MetaBlob
}

func (e *EUpdate) Kind() Kind                     { return KindUpdate }
func (e *EUpdate) Pos() Position                  { return e.Position }
func (e *EUpdate) HasExpired(mds *mdsapi.MDS) bool { return e.Blob.HasExpired(mds) }

func (e *EUpdate) Expire(mds *mdsapi.MDS, done mdsapi.Completion) {
	e.Blob.Expire(mds, done)
}

func (e *EUpdate) Replay(mds *mdsapi.MDS) {
	e.Blob.Replay(mds, KindUpdate)
}

// SlaveUpdateStore is where ESlaveUpdate.Replay keeps prepared but
// not-yet-committed slave transactions, keyed by request id. It is a
// small piece of journal-owned replay state, not an external
// collaborator, so it lives alongside the event rather than in
// mdsapi.
type SlaveUpdateStore struct {
	pending map[mdsapi.RequestID]*MetaBlob
}

// NewSlaveUpdateStore returns an empty store.
func NewSlaveUpdateStore() *SlaveUpdateStore {
	return &SlaveUpdateStore{pending: make(map[mdsapi.RequestID]*MetaBlob)}
}

// Has reports whether reqid currently has a prepared-but-uncommitted
// slave update.
func (s *SlaveUpdateStore) Has(reqid mdsapi.RequestID) bool {
	_, ok := s.pending[reqid]
	return ok
}

// ESlaveUpdate implements the two-phase slave participant protocol of
// spec.md §4.5. Its has_expired/expire delegate to the embedded blob
// exactly as EUpdate's do; only Replay differs.
type ESlaveUpdate struct {
	Position
	Blob   MetaBlob
	Reqid  mdsapi.RequestID
	Op     SlaveOp
	Store  *SlaveUpdateStore
}

func (e *ESlaveUpdate) Kind() Kind                     { return KindSlaveUpdate }
func (e *ESlaveUpdate) Pos() Position                  { return e.Position }
func (e *ESlaveUpdate) HasExpired(mds *mdsapi.MDS) bool { return e.Blob.HasExpired(mds) }

func (e *ESlaveUpdate) Expire(mds *mdsapi.MDS, done mdsapi.Completion) {
	e.Blob.Expire(mds, done)
}

func (e *ESlaveUpdate) Replay(mds *mdsapi.MDS) {
	switch e.Op {
	case SlavePrepare:
		if e.Store.Has(e.Reqid) {
			fatalf(KindSlaveUpdate, "replay: PREPARE for %s already has an uncommitted slave update", e.Reqid)
		}
		blob := e.Blob
		e.Store.pending[e.Reqid] = &blob
	case SlaveCommit:
		blob, ok := e.Store.pending[e.Reqid]
		if !ok {
			return // prepare was trimmed or never journaled here
		}
		blob.Replay(mds, KindSlaveUpdate)
		delete(e.Store.pending, e.Reqid)
	case SlaveAbort:
		delete(e.Store.pending, e.Reqid) // no-op if absent
	default:
		fatalf(KindSlaveUpdate, "replay: unknown slave op %v", e.Op)
	}
}

// EOpen tracks inodes whose capabilities remain held across the
// entry that last journaled them.
type EOpen struct {
	Position
	Blob MetaBlob
	Inos []mdsapi.InodeNo
}

func (e *EOpen) Kind() Kind    { return KindOpen }
func (e *EOpen) Pos() Position { return e.Position }

func (e *EOpen) HasExpired(mds *mdsapi.MDS) bool {
	for _, ino := range e.Inos {
		in := mds.Cache.GetInode(ino)
		if in == nil {
			continue
		}
		if in.IsAnyCaps() && (in.LastOpenJournaled() == 0 || in.LastOpenJournaled() <= e.Start) {
			return false
		}
	}
	return true
}

func (e *EOpen) Expire(mds *mdsapi.MDS, done mdsapi.Completion) {
	if e.HasExpired(mds) {
		expireIllegal(KindOpen)
	}
	if mds.Log.IsCapped() {
		fatalf(KindOpen, "expire: log is capped with unexpired opens")
	}
	for _, ino := range e.Inos {
		in := mds.Cache.GetInode(ino)
		if in == nil {
			continue
		}
		if in.IsAnyCaps() && (in.LastOpenJournaled() == 0 || in.LastOpenJournaled() <= e.Start) {
			mds.Server.QueueJournalOpen(in)
		}
	}
	mds.Server.AddJournalOpenWaiter(done)
	mds.Server.MaybeJournalOpens()
}

func (e *EOpen) Replay(mds *mdsapi.MDS) {
	e.Blob.Replay(mds, KindOpen)
}
