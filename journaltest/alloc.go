package journaltest

import "github.com/chn0318/mdjournal/mdsapi"

// AllocTable is an in-memory stand-in for mdsapi.AllocTable. It
// allocates ids deterministically (a simple counter) so replay's
// "allocator is deterministic" invariant can be checked directly.
type AllocTable struct {
	committed mdsapi.Version
	version   mdsapi.Version
	next      mdsapi.InodeNo
	live      map[mdsapi.InodeNo]bool
}

// NewAllocTable returns a fake allocator starting ids at first.
func NewAllocTable(first mdsapi.InodeNo) *AllocTable {
	return &AllocTable{next: first, live: make(map[mdsapi.InodeNo]bool)}
}

func (t *AllocTable) GetCommittedVersion() mdsapi.Version { return t.committed }
func (t *AllocTable) GetVersion() mdsapi.Version          { return t.version }

func (t *AllocTable) Save(cb mdsapi.Completion, v mdsapi.Version) {
	if v > t.committed {
		t.committed = v
	}
	cb()
}

func (t *AllocTable) AllocID(replay bool) mdsapi.InodeNo {
	id := t.next
	t.next++
	t.live[id] = true
	t.version++
	return id
}

func (t *AllocTable) ReclaimID(id mdsapi.InodeNo, replay bool) {
	delete(t.live, id)
	t.version++
}

// IsLive reports whether id is currently allocated. Test helper.
func (t *AllocTable) IsLive(id mdsapi.InodeNo) bool { return t.live[id] }

// SetVersion forces the in-memory head version, for constructing a
// table already at a given point in its history. Test helper.
func (t *AllocTable) SetVersion(v mdsapi.Version) { t.version = v }
