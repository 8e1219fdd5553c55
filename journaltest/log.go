package journaltest

import "github.com/chn0318/mdjournal/mdsapi"

// Log is an in-memory stand-in for mdsapi.Log.
type Log struct {
	lastImportMap int64
	capped        bool
	waiters       []mdsapi.Completion
	clientMap     mdsapi.ClientMap
}

// NewLog returns a fake log with no import map written yet.
func NewLog() *Log { return &Log{lastImportMap: -1} }

func (l *Log) LastImportMap() int64 { return l.lastImportMap }
func (l *Log) IsCapped() bool       { return l.capped }

// SetCapped and WriteImportMap are test setup/simulation helpers.
func (l *Log) SetCapped(v bool) { l.capped = v }

func (l *Log) WriteImportMap(end int64) {
	l.lastImportMap = end
	waiters := l.waiters
	l.waiters = nil
	for _, cb := range waiters {
		cb()
	}
}

func (l *Log) AddImportMapExpireWaiter(cb mdsapi.Completion) {
	l.waiters = append(l.waiters, cb)
}

func (l *Log) LogClientMap(cb mdsapi.Completion) {
	if l.clientMap != nil {
		l.clientMap.LogClientMap(cb)
		return
	}
	cb()
}

// BindClientMap wires the fake log's LogClientMap through to a
// ClientMap fake, matching how the real log delegates.
func (l *Log) BindClientMap(cm mdsapi.ClientMap) { l.clientMap = cm }
