// Package anchortable implements mdsapi.AnchorTable: the two-phase,
// versioned log of anchor create/destroy/update prepares and commits
// keyed by inode number. Like idtable, it follows
// mapservice.MapService's committed-vs-head split, but the head
// mutation here is one of four prepare/commit ops rather than a
// single ApplyCommit.
package anchortable

import (
	"fmt"
	"sync"

	"github.com/chn0318/mdjournal/mdsapi"
)

// entry is one inode's anchor bookkeeping: its current trace and
// whichever atid last touched it while still uncommitted.
type entry struct {
	trace   []byte
	pending mdsapi.Version // 0 when nothing is prepared for this inode
	destroy bool
}

// Table is an in-memory mdsapi.AnchorTable.
type Table struct {
	mu sync.RWMutex

	version   mdsapi.Version
	committed mdsapi.Version

	byIno map[mdsapi.InodeNo]*entry
	byAtid map[mdsapi.Version]mdsapi.InodeNo
}

// New returns an empty anchor table.
func New() *Table {
	return &Table{
		byIno:  make(map[mdsapi.InodeNo]*entry),
		byAtid: make(map[mdsapi.Version]mdsapi.InodeNo),
	}
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

func (t *Table) Save(cb mdsapi.Completion) {
	t.mu.Lock()
	t.committed = t.version
	t.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (t *Table) CreatePrepare(ino mdsapi.InodeNo, trace []byte, reqmds mdsapi.NodeID, atid mdsapi.Version) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byIno[ino] = &entry{trace: trace, pending: atid}
	t.byAtid[atid] = ino
	t.version++
}

func (t *Table) DestroyPrepare(ino mdsapi.InodeNo, atid mdsapi.Version) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.byIno[ino]
	if !ok {
		e = &entry{}
		t.byIno[ino] = e
	}
	e.pending = atid
	e.destroy = true
	t.byAtid[atid] = ino
	t.version++
}

func (t *Table) UpdatePrepare(ino mdsapi.InodeNo, trace []byte, atid mdsapi.Version) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.byIno[ino]
	if !ok {
		e = &entry{}
		t.byIno[ino] = e
	}
	e.trace = trace
	e.pending = atid
	t.byAtid[atid] = ino
	t.version++
}

// Commit finalizes whichever prepare atid refers to: a destroy prepare
// removes the inode's anchor entirely, a create/update prepare simply
// clears the pending marker.
func (t *Table) Commit(atid mdsapi.Version) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ino, ok := t.byAtid[atid]
	if !ok {
		return // already committed, or trimmed
	}
	delete(t.byAtid, atid)
	e, ok := t.byIno[ino]
	if !ok {
		return
	}
	if e.destroy {
		delete(t.byIno, ino)
	} else {
		e.pending = 0
	}
	t.version++
}

// Trace returns the trace most recently recorded for ino by a create
// or update prepare, whether or not that prepare has been committed
// yet, for callers (tests, introspection) that want to inspect table
// state directly.
func (t *Table) Trace(ino mdsapi.InodeNo) ([]byte, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.byIno[ino]
	if !ok {
		return nil, false
	}
	return e.trace, true
}

func (t *Table) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return fmt.Sprintf("anchortable(version=%d committed=%d entries=%d)", t.version, t.committed, len(t.byIno))
}
