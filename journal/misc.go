package journal

import "github.com/chn0318/mdjournal/mdsapi"

// EString is a free-form debug marker. It carries no semantics: it
// always reports expired, expiring it is a no-op, and replaying it is
// a no-op.
type EString struct {
	Position
	Text string
}

func (e *EString) Kind() Kind             { return KindString }
func (e *EString) Pos() Position          { return e.Position }
func (e *EString) HasExpired(*mdsapi.MDS) bool { return true }
func (e *EString) Expire(*mdsapi.MDS, mdsapi.Completion) {}
func (e *EString) Replay(*mdsapi.MDS)     {}

// EPurgeFinish balances a truncation recorded by an earlier MetaBlob:
// it is written once the purge of (Ino, NewSize) has actually run, and
// its only job on replay is to remove that pair from the cache's
// recovered-purge set. It is always expired and can never legally be
// expired again.
type EPurgeFinish struct {
	Position
	Ino     mdsapi.InodeNo
	NewSize uint64
}

func (e *EPurgeFinish) Kind() Kind             { return KindPurgeFinish }
func (e *EPurgeFinish) Pos() Position          { return e.Position }
func (e *EPurgeFinish) HasExpired(*mdsapi.MDS) bool { return true }

func (e *EPurgeFinish) Expire(*mdsapi.MDS, mdsapi.Completion) {
	expireIllegal(KindPurgeFinish)
}

func (e *EPurgeFinish) Replay(mds *mdsapi.MDS) {
	mds.Cache.RemoveRecoveredPurge(e.Ino, e.NewSize)
}
