package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chn0318/mdjournal/journaltest"
	"github.com/chn0318/mdjournal/mdsapi"
)

func TestEImportMap_HasExpiredOnNewerMap(t *testing.T) {
	m := journaltest.New(self, 100)
	ev := &EImportMap{Position: Position{Start: 0, End: 100}}
	assert.False(t, ev.HasExpired(m.MDS))

	m.Log.WriteImportMap(50)
	assert.False(t, ev.HasExpired(m.MDS), "a map written before this one's end must not expire it")

	m.Log.WriteImportMap(200)
	assert.True(t, ev.HasExpired(m.MDS))
}

func TestEImportMap_HasExpiredWhenCapped(t *testing.T) {
	m := journaltest.New(self, 100)
	ev := &EImportMap{Position: Position{Start: 0, End: 100}}
	m.Log.SetCapped(true)
	assert.True(t, ev.HasExpired(m.MDS))
}

func TestEImportMap_ExpireRegistersOnLogWaiters(t *testing.T) {
	m := journaltest.New(self, 100)
	ev := &EImportMap{Position: Position{Start: 0, End: 100}}
	fired := false
	ev.Expire(m.MDS, func() { fired = true })
	assert.False(t, fired)
	m.Log.WriteImportMap(200)
	assert.True(t, fired)
}

// Property 6: replaying an EImportMap with no prior subtrees
// reproduces the recorded authority assignments.
func TestEImportMap_Replay(t *testing.T) {
	m := journaltest.New(self, 100)
	require.False(t, m.Cache.IsSubtrees())

	id := dfID(50)
	ev := &EImportMap{Imports: []mdsapi.DirfragID{id}}
	ev.Replay(m.MDS)

	n, ok := m.Cache.SubtreeAuth(id)
	require.True(t, ok)
	assert.Equal(t, self, n)

	// A second EImportMap replay is a no-op once subtrees exist.
	id2 := dfID(60)
	ev2 := &EImportMap{Imports: []mdsapi.DirfragID{id2}}
	ev2.Replay(m.MDS)
	_, ok = m.Cache.SubtreeAuth(id2)
	assert.False(t, ok, "a later EImportMap must be ignored once subtrees already exist")
}

func TestEExport_HasExpired(t *testing.T) {
	m := journaltest.New(self, 100)
	id := dfID(10)
	dir := journaltest.NewDirfrag(id, mdsapi.Authority{Primary: self, Secondary: other})
	m.Cache.PutDirfrag(dir)
	m.Migrator.SetExporting(id, true)

	ev := &EExport{Base: id}
	assert.False(t, ev.HasExpired(m.MDS))

	m.Migrator.SetExporting(id, false)
	assert.True(t, ev.HasExpired(m.MDS))
}

func TestEExport_HasExpiredWhenDirfragGone(t *testing.T) {
	m := journaltest.New(self, 100)
	ev := &EExport{Base: dfID(999)}
	assert.True(t, ev.HasExpired(m.MDS))
}

func TestEExport_Replay(t *testing.T) {
	m := journaltest.New(self, 100)
	base := dfID(mdsapi.ROOT)
	bound := mdsapi.DirfragID{Ino: mdsapi.ROOT, Frag: 1}
	m.Cache.PutDirfrag(journaltest.NewDirfrag(base, mdsapi.Authority{Primary: self, Secondary: mdsapi.Unknown}))
	m.Cache.PutDirfrag(journaltest.NewDirfrag(bound, mdsapi.Authority{Primary: self, Secondary: mdsapi.Unknown}))

	ev := &EExport{Base: base, Bounds: []mdsapi.DirfragID{bound}}
	ev.Replay(m.MDS)

	baseDir := m.Cache.GetDirfrag(base)
	assert.Equal(t, mdsapi.Unknown, baseDir.Authority().Primary)
	boundDir := m.Cache.GetDirfrag(bound)
	assert.Equal(t, mdsapi.Unknown, boundDir.Authority().Primary)
}

func TestEImportStart_ReplayAddsAmbiguousImport(t *testing.T) {
	m := journaltest.New(self, 100)
	base := dfID(mdsapi.ROOT)
	ev := &EImportStart{Base: base}
	ev.Replay(m.MDS)
	assert.True(t, m.Cache.IsAmbiguousImport(base))
}

func TestEImportFinish_AlwaysExpired(t *testing.T) {
	m := journaltest.New(self, 100)
	ev := &EImportFinish{Success: true}
	assert.True(t, ev.HasExpired(m.MDS))
	assert.Panics(t, func() { ev.Expire(m.MDS, func() {}) })
}

func TestEImportFinish_ReplaySuccessAndFailure(t *testing.T) {
	m := journaltest.New(self, 100)
	base := dfID(mdsapi.ROOT)
	(&EImportStart{Base: base}).Replay(m.MDS)
	require.True(t, m.Cache.IsAmbiguousImport(base))

	(&EImportFinish{Base: base, Success: true}).Replay(m.MDS)
	assert.False(t, m.Cache.IsAmbiguousImport(base))

	base2 := mdsapi.DirfragID{Ino: mdsapi.ROOT, Frag: 2}
	(&EImportStart{Base: base2}).Replay(m.MDS)
	require.True(t, m.Cache.IsAmbiguousImport(base2))
	(&EImportFinish{Base: base2, Success: false}).Replay(m.MDS)
	assert.False(t, m.Cache.IsAmbiguousImport(base2))
}
