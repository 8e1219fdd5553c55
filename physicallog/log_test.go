package physicallog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chn0318/mdjournal/journal"
	"github.com/chn0318/mdjournal/physicallog/memorylog"
)

func TestAppendThenReadAtRoundTrips(t *testing.T) {
	j := New(memorylog.New())
	ev := &journal.EString{Text: "checkpoint"}

	pos, err := j.Append(ev)
	require.NoError(t, err)
	assert.Greater(t, pos.End, pos.Start)
	assert.Equal(t, pos, ev.Pos(), "Append must install the assigned position onto the event it was given")

	got, n, err := j.ReadAt(pos.Start)
	require.NoError(t, err)
	assert.Equal(t, int(pos.End-pos.Start), n)
	assert.Equal(t, ev.Text, got.(*journal.EString).Text)
	assert.Equal(t, pos, got.Pos(), "ReadAt must reconstruct the same position Append assigned")
}

// A second, later entry must decode with a Position distinct from the
// first: the position isn't just a fixed marker, it tracks where each
// entry actually landed.
func TestReadAt_DistinctEntriesGetDistinctPositions(t *testing.T) {
	j := New(memorylog.New())
	ev1 := &journal.EString{Text: "one"}
	ev2 := &journal.EString{Text: "two"}

	pos1, err := j.Append(ev1)
	require.NoError(t, err)
	pos2, err := j.Append(ev2)
	require.NoError(t, err)
	assert.NotEqual(t, pos1, pos2)

	got2, _, err := j.ReadAt(pos2.Start)
	require.NoError(t, err)
	assert.Equal(t, pos2, got2.Pos())
	assert.Equal(t, "two", got2.(*journal.EString).Text)
}

func TestAppend_ImportMapFiresWaiters(t *testing.T) {
	j := New(memorylog.New())
	assert.Equal(t, int64(-1), j.LastImportMap())

	fired := false
	j.AddImportMapExpireWaiter(func() { fired = true })

	_, err := j.Append(&journal.EImportMap{})
	require.NoError(t, err)
	assert.True(t, fired)
	assert.Greater(t, j.LastImportMap(), int64(-1))
}

func TestAppend_CappedRejects(t *testing.T) {
	j := New(memorylog.New())
	j.Cap()
	_, err := j.Append(&journal.EString{Text: "x"})
	assert.Error(t, err)
}

func TestTailAdvancesMonotonically(t *testing.T) {
	j := New(memorylog.New())
	before := j.Tail()
	_, err := j.Append(&journal.EString{Text: "a"})
	require.NoError(t, err)
	assert.Greater(t, j.Tail(), before)
}
