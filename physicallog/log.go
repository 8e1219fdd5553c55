// Package physicallog defines the byte-oriented append log that
// backs the journal event stream, and the Journal type that adapts it
// into mdsapi.Log for the event core. It is the direct generalization
// of sharedlog.SharedLog: where the teacher's shared log stores
// (key, value) DataRecords and CommitRecords keyed by GSN, this one
// stores opaque codec-encoded event bodies keyed by byte offset, since
// the journal has no notion of keys or multi-key transactions.
package physicallog

import (
	"fmt"
	"sync"

	"github.com/chn0318/mdjournal/codec"
	"github.com/chn0318/mdjournal/journal"
	"github.com/chn0318/mdjournal/mdsapi"
)

// Backend is the append-only byte store a Journal is built on.
// Implementations can be backed by an in-memory map, Scalog, or any
// other log-based system, exactly as sharedlog.SharedLog abstracts
// over CORFU/Scalog/in-memory today.
type Backend interface {
	// Append writes data as one record and returns the offset of its
	// first byte.
	Append(data []byte) (offset int64, err error)

	// ReadAt returns the record beginning at offset.
	ReadAt(offset int64) (data []byte, err error)

	// Tail returns the offset one past the last byte written.
	Tail() int64

	// Trim discards all records ending at or before offset. How much
	// storage is actually reclaimed is up to the implementation:
	// memorylog deletes the records, while scalog's Trim is a no-op
	// and leaves retention to Scalog itself.
	Trim(offset int64) error
}

// Journal adapts a Backend plus an mdsapi.ClientMap into mdsapi.Log,
// and additionally exposes the append/replay operations the trimmer
// and boot-time replay driver need but the narrower mdsapi.Log
// interface intentionally hides from the event core.
type Journal struct {
	mu sync.Mutex

	backend Backend

	lastImportMap int64
	capped        bool
	waiters       []mdsapi.Completion

	clientMap mdsapi.ClientMap
	store     *journal.SlaveUpdateStore
}

// New returns a Journal with no import map written yet, over backend.
func New(backend Backend) *Journal {
	return &Journal{
		backend:       backend,
		lastImportMap: -1,
		store:         journal.NewSlaveUpdateStore(),
	}
}

// BindClientMap wires LogClientMap through to cm, matching how
// journaltest.Log's fake delegates.
func (j *Journal) BindClientMap(cm mdsapi.ClientMap) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.clientMap = cm
}

func (j *Journal) LastImportMap() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastImportMap
}

func (j *Journal) IsCapped() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.capped
}

// Cap seals the journal against further writes, as happens at
// shutdown or when handing authority to another node.
func (j *Journal) Cap() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.capped = true
}

func (j *Journal) AddImportMapExpireWaiter(cb mdsapi.Completion) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.waiters = append(j.waiters, cb)
}

func (j *Journal) LogClientMap(cb mdsapi.Completion) {
	j.mu.Lock()
	cm := j.clientMap
	j.mu.Unlock()
	if cm != nil {
		cm.LogClientMap(cb)
		return
	}
	if cb != nil {
		cb()
	}
}

// Append encodes ev and writes it to the backend, then installs the
// Position the backend assigned onto ev itself via SetPos. Position
// is never part of the encoded body (see codec's doc comment on
// fields 1/2): it is only known once the backend hands back an
// offset, so it cannot be baked into bytes encoded before that call.
// It fires this journal's import-map waiters when ev is an
// EImportMap.
func (j *Journal) Append(ev journal.Event) (journal.Position, error) {
	body, err := codec.Encode(ev)
	if err != nil {
		return journal.Position{}, fmt.Errorf("physicallog: encode: %w", err)
	}
	if j.IsCapped() {
		return journal.Position{}, fmt.Errorf("physicallog: append to capped journal")
	}

	start, err := j.backend.Append(body)
	if err != nil {
		return journal.Position{}, fmt.Errorf("physicallog: append: %w", err)
	}
	pos := journal.Position{Start: start, End: start + int64(len(body))}
	ev.SetPos(pos)

	if ev.Kind() == journal.KindImportMap {
		j.mu.Lock()
		j.lastImportMap = pos.End
		waiters := j.waiters
		j.waiters = nil
		j.mu.Unlock()
		for _, w := range waiters {
			w()
		}
	}
	return pos, nil
}

// ReadAt decodes the single event whose record begins at offset,
// installing its Position from offset and the decoded record's size
// (the same derivation Append uses), since position is never
// recovered from the wire body itself.
func (j *Journal) ReadAt(offset int64) (journal.Event, int, error) {
	data, err := j.backend.ReadAt(offset)
	if err != nil {
		return nil, 0, fmt.Errorf("physicallog: read at %d: %w", offset, err)
	}
	ev, size, err := codec.Decode(data, j.store)
	if err != nil {
		return nil, 0, err
	}
	ev.SetPos(journal.Position{Start: offset, End: offset + int64(size)})
	return ev, size, nil
}

// Tail returns the backend's current write offset.
func (j *Journal) Tail() int64 { return j.backend.Tail() }

// Trim discards every record ending at or before offset.
func (j *Journal) Trim(offset int64) error { return j.backend.Trim(offset) }
