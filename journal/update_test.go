package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chn0318/mdjournal/journaltest"
	"github.com/chn0318/mdjournal/mdsapi"
)

func TestEUpdate_DelegatesToBlob(t *testing.T) {
	m := journaltest.New(self, 100)
	id := dfID(mdsapi.ROOT)
	blob := MetaBlob{Lumps: []DirfragLump{{ID: id, Lump: Dirlump{Dirv: 1}}}}
	ev := &EUpdate{Blob: blob}

	ev.Replay(m.MDS)
	dir := m.Cache.GetDirfrag(id)
	require.NotNil(t, dir)
	assert.Equal(t, mdsapi.Version(1), dir.(*journaltest.Dirfrag).Version())
}

// Property 7 / boundary scenario 6: ESlaveUpdate two-phase replay.
func TestESlaveUpdate_PrepareThenCommit(t *testing.T) {
	m := journaltest.New(self, 100)
	store := NewSlaveUpdateStore()
	reqid := mdsapi.RequestID{Client: 1, Tid: 1}
	id := dfID(mdsapi.ROOT)

	blob := MetaBlob{Lumps: []DirfragLump{{ID: id, Lump: Dirlump{Dirv: 1}}}}
	prepare := &ESlaveUpdate{Blob: blob, Reqid: reqid, Op: SlavePrepare, Store: store}
	prepare.Replay(m.MDS)
	require.True(t, store.Has(reqid))
	assert.Nil(t, m.Cache.GetDirfrag(id), "PREPARE alone must not apply the blob")

	commit := &ESlaveUpdate{Reqid: reqid, Op: SlaveCommit, Store: store}
	commit.Replay(m.MDS)
	assert.False(t, store.Has(reqid), "the reqid key must be absent after COMMIT")
	dir := m.Cache.GetDirfrag(id)
	require.NotNil(t, dir)
	assert.Equal(t, mdsapi.Version(1), dir.(*journaltest.Dirfrag).Version())
}

func TestESlaveUpdate_DuplicatePrepareIsFatal(t *testing.T) {
	m := journaltest.New(self, 100)
	store := NewSlaveUpdateStore()
	reqid := mdsapi.RequestID{Client: 1, Tid: 1}

	first := &ESlaveUpdate{Reqid: reqid, Op: SlavePrepare, Store: store}
	first.Replay(m.MDS)

	second := &ESlaveUpdate{Reqid: reqid, Op: SlavePrepare, Store: store}
	assert.Panics(t, func() { second.Replay(m.MDS) })
}

// Boundary scenario 6: ABORT without PREPARE is a no-op.
func TestESlaveUpdate_AbortWithoutPrepareIsNoop(t *testing.T) {
	m := journaltest.New(self, 100)
	store := NewSlaveUpdateStore()
	reqid := mdsapi.RequestID{Client: 1, Tid: 1}

	abort := &ESlaveUpdate{Reqid: reqid, Op: SlaveAbort, Store: store}
	abort.Replay(m.MDS) // must not panic
	assert.False(t, store.Has(reqid))
}

// Property 7: COMMIT with no prior matching PREPARE has no effect.
func TestESlaveUpdate_CommitWithoutPrepareIsNoop(t *testing.T) {
	m := journaltest.New(self, 100)
	store := NewSlaveUpdateStore()
	reqid := mdsapi.RequestID{Client: 1, Tid: 1}

	commit := &ESlaveUpdate{Reqid: reqid, Op: SlaveCommit, Store: store}
	commit.Replay(m.MDS)
	assert.False(t, store.Has(reqid))
}

func TestESlaveUpdate_PrepareThenAbortDiscards(t *testing.T) {
	m := journaltest.New(self, 100)
	store := NewSlaveUpdateStore()
	reqid := mdsapi.RequestID{Client: 1, Tid: 1}
	id := dfID(mdsapi.ROOT)
	blob := MetaBlob{Lumps: []DirfragLump{{ID: id, Lump: Dirlump{Dirv: 1}}}}

	(&ESlaveUpdate{Blob: blob, Reqid: reqid, Op: SlavePrepare, Store: store}).Replay(m.MDS)
	(&ESlaveUpdate{Reqid: reqid, Op: SlaveAbort, Store: store}).Replay(m.MDS)

	assert.False(t, store.Has(reqid))
	assert.Nil(t, m.Cache.GetDirfrag(id), "ABORT must discard without ever replaying the blob")
}

func TestEOpen_HasExpiredAndExpire(t *testing.T) {
	m := journaltest.New(self, 100)
	in := m.Cache.NewInode(5).(*journaltest.Inode)
	m.Cache.AddInode(in)
	in.SetAnyCaps(true)

	ev := &EOpen{Position: Position{Start: 10}, Inos: []mdsapi.InodeNo{5}}
	assert.False(t, ev.HasExpired(m.MDS))

	fired := false
	ev.Expire(m.MDS, func() { fired = true })
	assert.False(t, fired)
	require.Len(t, m.Server.Queued(), 1)

	in.SetLastOpenJournaled(20)
	m.Server.FlushJournalOpens()
	assert.True(t, fired)
	assert.True(t, ev.HasExpired(m.MDS))
}

func TestEOpen_ExpireOnCappedLogIsFatal(t *testing.T) {
	m := journaltest.New(self, 100)
	in := m.Cache.NewInode(5).(*journaltest.Inode)
	m.Cache.AddInode(in)
	in.SetAnyCaps(true)
	m.Log.SetCapped(true)

	ev := &EOpen{Position: Position{Start: 10}, Inos: []mdsapi.InodeNo{5}}
	assert.Panics(t, func() { ev.Expire(m.MDS, func() {}) })
}

func TestEOpen_NoCapsIsExpired(t *testing.T) {
	m := journaltest.New(self, 100)
	in := m.Cache.NewInode(5).(*journaltest.Inode)
	m.Cache.AddInode(in)

	ev := &EOpen{Inos: []mdsapi.InodeNo{5}}
	assert.True(t, ev.HasExpired(m.MDS))
}
