package journaltest

import "github.com/chn0318/mdjournal/mdsapi"

// Migrator is an in-memory stand-in for mdsapi.Migrator.
type Migrator struct {
	exporting map[mdsapi.DirfragID]bool
	waiters   map[mdsapi.DirfragID][]mdsapi.Completion
}

// NewMigrator returns an empty fake migrator.
func NewMigrator() *Migrator {
	return &Migrator{
		exporting: make(map[mdsapi.DirfragID]bool),
		waiters:   make(map[mdsapi.DirfragID][]mdsapi.Completion),
	}
}

func (m *Migrator) IsExporting(dir mdsapi.DirfragID) bool { return m.exporting[dir] }

// SetExporting is a test setup helper.
func (m *Migrator) SetExporting(dir mdsapi.DirfragID, v bool) { m.exporting[dir] = v }

func (m *Migrator) AddExportFinishWaiter(dir mdsapi.DirfragID, cb mdsapi.Completion) {
	if !m.exporting[dir] {
		cb()
		return
	}
	m.waiters[dir] = append(m.waiters[dir], cb)
}

// FinishExport marks dir as no longer exporting and fires its
// waiters. Test helper.
func (m *Migrator) FinishExport(dir mdsapi.DirfragID) {
	m.exporting[dir] = false
	waiters := m.waiters[dir]
	delete(m.waiters, dir)
	for _, cb := range waiters {
		cb()
	}
}
