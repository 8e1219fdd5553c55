package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chn0318/mdjournal/journaltest"
	"github.com/chn0318/mdjournal/mdsapi"
)

// Boundary scenario 5: EAlloc replay at version gap 1.
func TestEAlloc_ReplayAllocMatchesEventID(t *testing.T) {
	m := journaltest.New(self, 42) // allocator's next id will be 42
	m.AllocTable.SetVersion(7)

	ev := &EAlloc{TableVersion: 8, What: mdsapi.Alloc, ID: 42}
	ev.Replay(m.MDS)

	assert.Equal(t, mdsapi.Version(8), m.AllocTable.GetVersion())
	assert.True(t, m.AllocTable.IsLive(42))
}

func TestEAlloc_ReplayIDMismatchIsFatal(t *testing.T) {
	m := journaltest.New(self, 999) // allocator will hand out 999, not 42
	m.AllocTable.SetVersion(7)

	ev := &EAlloc{TableVersion: 8, What: mdsapi.Alloc, ID: 42}
	assert.Panics(t, func() { ev.Replay(m.MDS) })
}

func TestEAlloc_ReplayFree(t *testing.T) {
	m := journaltest.New(self, 1)
	m.AllocTable.SetVersion(7)
	m.AllocTable.AllocID(false) // id 1, version -> 8
	m.AllocTable.SetVersion(7)  // simulate: version was 7 when this free event was journaled

	ev := &EAlloc{TableVersion: 8, What: mdsapi.Free, ID: 1}
	ev.Replay(m.MDS)
	assert.False(t, m.AllocTable.IsLive(1))
}

func TestEAlloc_ReplayAlreadyCaughtUpIsNoop(t *testing.T) {
	m := journaltest.New(self, 100)
	m.AllocTable.SetVersion(9)
	ev := &EAlloc{TableVersion: 8, What: mdsapi.Alloc, ID: 42}
	ev.Replay(m.MDS) // must not panic, must not allocate
	assert.False(t, m.AllocTable.IsLive(42))
}

func TestEAlloc_ReplayVersionGapOtherThanOneIsFatal(t *testing.T) {
	m := journaltest.New(self, 100)
	m.AllocTable.SetVersion(3)
	ev := &EAlloc{TableVersion: 8, What: mdsapi.Alloc, ID: 42}
	assert.Panics(t, func() { ev.Replay(m.MDS) })
}

func TestEAlloc_HasExpiredAndExpire(t *testing.T) {
	m := journaltest.New(self, 100)
	ev := &EAlloc{TableVersion: 5}
	assert.False(t, ev.HasExpired(m.MDS))

	fired := false
	ev.Expire(m.MDS, func() { fired = true })
	assert.True(t, fired)
	assert.True(t, ev.HasExpired(m.MDS))
}

func TestEAnchor_ReplayDispatch(t *testing.T) {
	m := journaltest.New(self, 100)
	ev := &EAnchor{Version: 1, Op: mdsapi.AnchorCreatePrepare, Ino: 5, Atid: 1}
	ev.Replay(m.MDS)
	require.Equal(t, mdsapi.Version(1), m.AnchorTable.GetVersion())

	ev2 := &EAnchor{Version: 2, Op: mdsapi.AnchorCommit, Atid: 1}
	ev2.Replay(m.MDS)
	assert.Equal(t, mdsapi.Version(2), m.AnchorTable.GetVersion())
}

func TestEAnchor_HasExpiredAndExpire(t *testing.T) {
	m := journaltest.New(self, 100)
	ev := &EAnchor{Version: 1, Op: mdsapi.AnchorCreatePrepare, Ino: 5, Atid: 1}
	ev.Replay(m.MDS)
	assert.False(t, ev.HasExpired(m.MDS))

	fired := false
	ev.Expire(m.MDS, func() { fired = true })
	assert.True(t, fired)
	assert.True(t, ev.HasExpired(m.MDS))
}

func TestEAnchorClient_AlwaysExpired(t *testing.T) {
	m := journaltest.New(self, 100)
	ev := &EAnchorClient{Atid: 1}
	assert.True(t, ev.HasExpired(m.MDS))
	assert.Panics(t, func() { ev.Expire(m.MDS, func() {}) })
}

func TestEAnchorClient_Replay(t *testing.T) {
	m := journaltest.New(self, 100)
	ev := &EAnchorClient{Atid: 1}
	ev.Replay(m.MDS)
	assert.True(t, m.AnchorClient.IsAcked(1))
}
