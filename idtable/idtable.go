// Package idtable implements mdsapi.AllocTable: a versioned, monotonic
// inode-number allocator. It follows the same committed-vs-head split
// mapservice.MapService uses for key->offset mappings, applied here to
// id allocation instead: every mutation bumps a head version under a
// single write lock, and Save is what advances the durable
// "committed" watermark a caller may safely rely on after a crash.
package idtable

import (
	"sync"

	"github.com/chn0318/mdjournal/mdsapi"
)

// Table is an in-memory mdsapi.AllocTable. Reclaimed ids are reused
// before the allocator advances its high-water mark, exactly as
// EAlloc/Free pairs must replay deterministically: as long as
// AllocID/ReclaimID are invoked in the same order during replay as
// they were the first time, the free list converges to the same state
// both times.
type Table struct {
	mu sync.RWMutex

	version   mdsapi.Version
	committed mdsapi.Version

	next mdsapi.InodeNo
	free []mdsapi.InodeNo
}

// New returns a Table that allocates ids starting at start.
func New(start mdsapi.InodeNo) *Table {
	return &Table{next: start}
}

func (t *Table) GetCommittedVersion() mdsapi.Version {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.committed
}

func (t *Table) GetVersion() mdsapi.Version {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}

// Save persists the table's current state up to v and reports
// completion. There is no separate on-disk representation modeled
// here; the table itself is the durable state a real implementation
// would flush, so Save only needs to advance the watermark.
func (t *Table) Save(cb mdsapi.Completion, v mdsapi.Version) {
	t.mu.Lock()
	if v > t.committed {
		t.committed = v
	}
	t.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (t *Table) AllocID(replay bool) mdsapi.InodeNo {
	t.mu.Lock()
	defer t.mu.Unlock()

	var id mdsapi.InodeNo
	if n := len(t.free); n > 0 {
		id = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		id = t.next
		t.next++
	}
	t.version++
	return id
}

func (t *Table) ReclaimID(id mdsapi.InodeNo, replay bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.free = append(t.free, id)
	t.version++
}
