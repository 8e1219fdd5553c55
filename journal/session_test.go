package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chn0318/mdjournal/journaltest"
	"github.com/chn0318/mdjournal/mdsapi"
)

func TestEClientMap_HasExpired(t *testing.T) {
	m := journaltest.New(self, 100)
	ev := &EClientMap{Cmapv: 5}
	m.ClientMap.SetCommitted(5)
	assert.True(t, ev.HasExpired(m.MDS))

	m.ClientMap.SetCommitted(4)
	assert.False(t, ev.HasExpired(m.MDS))
}

func TestEClientMap_ExpireWaitsOnCommitting(t *testing.T) {
	m := journaltest.New(self, 100)
	m.ClientMap.SetCommitted(3)
	m.ClientMap.SetCommitting(5)
	ev := &EClientMap{Cmapv: 5}

	fired := false
	ev.Expire(m.MDS, func() { fired = true })
	assert.False(t, fired)
	assert.Equal(t, 0, m.ClientMap.LogCalls(), "must wait, not initiate a fresh flush")

	m.ClientMap.FinishCommit()
	assert.True(t, fired)
}

func TestEClientMap_ExpireInitiatesFlush(t *testing.T) {
	m := journaltest.New(self, 100)
	ev := &EClientMap{Cmapv: 5}

	fired := false
	ev.Expire(m.MDS, func() { fired = true })
	assert.True(t, fired)
	assert.Equal(t, 1, m.ClientMap.LogCalls())
}

// Round-trip: replaying an EClientMap twice produces the same
// (committed, committing, version) triple as replaying it once, since
// both simply install the decoded snapshot as ground truth.
func TestEClientMap_ReplayIdempotentTriple(t *testing.T) {
	m := journaltest.New(self, 100)
	ev := &EClientMap{Cmapv: 3, Encoded: []byte("snapshot")}
	ev.Replay(m.MDS)
	c1, cg1, v1 := m.ClientMap.GetCommitted(), m.ClientMap.GetCommitting(), m.ClientMap.GetVersion()

	ev.Replay(m.MDS)
	c2, cg2, v2 := m.ClientMap.GetCommitted(), m.ClientMap.GetCommitting(), m.ClientMap.GetVersion()

	assert.Equal(t, c1, c2)
	assert.Equal(t, cg1, cg2)
	assert.Equal(t, v1, v2)
	assert.Equal(t, c1, cg1, "post-crash replay must set committed == committing")
}

func TestESession_ReplayOpenAndClose(t *testing.T) {
	m := journaltest.New(self, 100)
	inst := mdsapi.ClientInst{Client: 9, Addr: "1.2.3.4"}

	open := &ESession{Cmapv: 1, Open: true, Inst: inst}
	open.Replay(m.MDS)
	require.True(t, m.ClientMap.IsOpen(9))

	closeEv := &ESession{Cmapv: 2, Open: false, Inst: inst}
	closeEv.Replay(m.MDS)
	assert.False(t, m.ClientMap.IsOpen(9))
}

func TestESession_HasExpiredSharesClientMapLogic(t *testing.T) {
	m := journaltest.New(self, 100)
	ev := &ESession{Cmapv: 5}
	m.ClientMap.SetCommitted(5)
	assert.True(t, ev.HasExpired(m.MDS))
}
