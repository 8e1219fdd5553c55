package journal

import "github.com/chn0318/mdjournal/mdsapi"

// sessionHasExpired and sessionExpire are the shared has_expired/expire
// logic for EClientMap and ESession: both carry only a client-map version and
// dispatch on the same committed/committing comparison (spec.md
// §4.4).
func sessionHasExpired(mds *mdsapi.MDS, cmapv mdsapi.Version) bool {
	return mds.ClientMap.GetCommitted() >= cmapv
}

func sessionExpire(mds *mdsapi.MDS, k Kind, cmapv mdsapi.Version, done mdsapi.Completion) {
	if mds.ClientMap.GetCommitted() >= cmapv {
		expireIllegal(k)
	}
	if mds.ClientMap.GetCommitting() >= cmapv {
		mds.ClientMap.AddCommitWaiter(done)
		return
	}
	mds.ClientMap.LogClientMap(done)
}

// EClientMap is a versioned, fully-serialized snapshot of the whole
// client map.
type EClientMap struct {
	Position
	Cmapv   mdsapi.Version
	Encoded []byte
}

func (e *EClientMap) Kind() Kind    { return KindClientMap }
func (e *EClientMap) Pos() Position { return e.Position }

func (e *EClientMap) HasExpired(mds *mdsapi.MDS) bool { return sessionHasExpired(mds, e.Cmapv) }

func (e *EClientMap) Expire(mds *mdsapi.MDS, done mdsapi.Completion) {
	sessionExpire(mds, KindClientMap, e.Cmapv, done)
}

// Replay decodes the embedded map into the live client map and
// treats the log as ground truth post-crash: committed and committing
// both jump to the version the decode installed, since anything the
// log recorded is by definition durable.
func (e *EClientMap) Replay(mds *mdsapi.MDS) {
	mds.ClientMap.Decode(e.Encoded)
	v := mds.ClientMap.GetVersion()
	mds.ClientMap.SetCommitted(v)
	mds.ClientMap.SetCommitting(v)
}

// ESession is a single session open or close.
type ESession struct {
	Position
	Cmapv mdsapi.Version
	Open  bool
	Inst  mdsapi.ClientInst
}

func (e *ESession) Kind() Kind    { return KindSession }
func (e *ESession) Pos() Position { return e.Position }

func (e *ESession) HasExpired(mds *mdsapi.MDS) bool { return sessionHasExpired(mds, e.Cmapv) }

func (e *ESession) Expire(mds *mdsapi.MDS, done mdsapi.Completion) {
	sessionExpire(mds, KindSession, e.Cmapv, done)
}

func (e *ESession) Replay(mds *mdsapi.MDS) {
	if e.Open {
		mds.ClientMap.OpenSession(e.Inst)
	} else {
		mds.ClientMap.CloseSession(e.Inst.Client)
	}
	mds.ClientMap.ResetProjected()
}
