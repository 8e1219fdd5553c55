package mdsapi

// Migrator drives subtree export/import. The journal core only needs
// to ask whether an export is in flight and to wait for it to finish.
type Migrator interface {
	IsExporting(dir DirfragID) bool
	AddExportFinishWaiter(dir DirfragID, cb Completion)
}
