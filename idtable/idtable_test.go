package idtable

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chn0318/mdjournal/mdsapi"
)

func TestAllocID_AssignsIncreasingIDsThenReuses(t *testing.T) {
	tbl := New(100)
	a := tbl.AllocID(false)
	b := tbl.AllocID(false)
	assert.Equal(t, mdsapi.InodeNo(100), a)
	assert.Equal(t, mdsapi.InodeNo(101), b)

	tbl.ReclaimID(a, false)
	c := tbl.AllocID(false)
	assert.Equal(t, a, c, "a reclaimed id must be reused before the high-water mark advances")
}

func TestAllocID_BumpsVersionOnEveryOp(t *testing.T) {
	tbl := New(1)
	assert.Equal(t, mdsapi.Version(0), tbl.GetVersion())
	tbl.AllocID(false)
	assert.Equal(t, mdsapi.Version(1), tbl.GetVersion())
	tbl.ReclaimID(1, false)
	assert.Equal(t, mdsapi.Version(2), tbl.GetVersion())
}

func TestSave_AdvancesCommittedMonotonically(t *testing.T) {
	tbl := New(1)
	tbl.AllocID(false)
	tbl.AllocID(false)

	fired := false
	tbl.Save(func() { fired = true }, 2)
	assert.True(t, fired)
	assert.Equal(t, mdsapi.Version(2), tbl.GetCommittedVersion())

	tbl.Save(func() {}, 1)
	assert.Equal(t, mdsapi.Version(2), tbl.GetCommittedVersion(), "Save must never move committed backwards")
}

func TestAllocID_ReplayIsDeterministicAcrossFreeListState(t *testing.T) {
	first := New(1)
	a := first.AllocID(false)
	b := first.AllocID(false)
	first.ReclaimID(a, false)
	c := first.AllocID(false)

	replay := New(1)
	ra := replay.AllocID(true)
	rb := replay.AllocID(true)
	replay.ReclaimID(ra, true)
	rc := replay.AllocID(true)

	assert.Equal(t, a, ra)
	assert.Equal(t, b, rb)
	assert.Equal(t, c, rc)
}
