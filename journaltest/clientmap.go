package journaltest

import (
	"hash/fnv"

	"github.com/chn0318/mdjournal/mdsapi"
)

// ClientMap is an in-memory stand-in for mdsapi.ClientMap.
type ClientMap struct {
	committed  mdsapi.Version
	committing mdsapi.Version
	version    mdsapi.Version
	commitWaiters []mdsapi.Completion
	completed  map[mdsapi.RequestID]bool
	trimWaiters map[mdsapi.RequestID][]mdsapi.Completion
	sessions   map[int64]mdsapi.ClientInst
	decoded    []byte
	logCalls   int
}

// NewClientMap returns an empty fake client map.
func NewClientMap() *ClientMap {
	return &ClientMap{
		completed:   make(map[mdsapi.RequestID]bool),
		trimWaiters: make(map[mdsapi.RequestID][]mdsapi.Completion),
		sessions:    make(map[int64]mdsapi.ClientInst),
	}
}

func (m *ClientMap) GetCommitted() mdsapi.Version  { return m.committed }
func (m *ClientMap) GetCommitting() mdsapi.Version { return m.committing }
func (m *ClientMap) GetVersion() mdsapi.Version    { return m.version }

func (m *ClientMap) SetCommitted(v mdsapi.Version)  { m.committed = v }
func (m *ClientMap) SetCommitting(v mdsapi.Version) { m.committing = v }

func (m *ClientMap) AddCommitWaiter(cb mdsapi.Completion) {
	m.commitWaiters = append(m.commitWaiters, cb)
}

// FinishCommit advances committed to committing and fires commit
// waiters, simulating a flush landing. Test helper.
func (m *ClientMap) FinishCommit() {
	m.committed = m.committing
	waiters := m.commitWaiters
	m.commitWaiters = nil
	for _, cb := range waiters {
		cb()
	}
}

func (m *ClientMap) HaveCompletedRequest(id mdsapi.RequestID) bool { return m.completed[id] }

func (m *ClientMap) AddTrimWaiter(id mdsapi.RequestID, cb mdsapi.Completion) {
	if !m.completed[id] {
		cb()
		return
	}
	m.trimWaiters[id] = append(m.trimWaiters[id], cb)
}

// TrimRequest clears id from the completed set and fires its trim
// waiters. Test helper.
func (m *ClientMap) TrimRequest(id mdsapi.RequestID) {
	delete(m.completed, id)
	waiters := m.trimWaiters[id]
	delete(m.trimWaiters, id)
	for _, cb := range waiters {
		cb()
	}
}

func (m *ClientMap) AddCompletedRequest(id mdsapi.RequestID) { m.completed[id] = true }

func (m *ClientMap) OpenSession(inst mdsapi.ClientInst) { m.sessions[inst.Client] = inst }
func (m *ClientMap) CloseSession(name int64)            { delete(m.sessions, name) }

// IsOpen reports whether a session for client is currently open. Test
// helper.
func (m *ClientMap) IsOpen(client int64) bool {
	_, ok := m.sessions[client]
	return ok
}

// Decode installs data as the live snapshot and derives the map's
// version from it deterministically, the way a real decode reads a
// version field serialized into the snapshot bytes rather than
// counting how many times it has been called: replaying the same
// entry twice must decode to the same version both times.
func (m *ClientMap) Decode(data []byte) mdsapi.Version {
	m.decoded = data
	h := fnv.New64a()
	h.Write(data)
	m.version = mdsapi.Version(h.Sum64())
	return m.version
}

func (m *ClientMap) ResetProjected() {
	m.committing = m.committed
}

func (m *ClientMap) LogClientMap(cb mdsapi.Completion) {
	m.logCalls++
	m.committing = m.version + 1
	m.version++
	cb()
	m.committed = m.committing
}

// LogCalls reports how many times LogClientMap was invoked. Test
// helper.
func (m *ClientMap) LogCalls() int { return m.logCalls }
