package mdsapi

// Log is the physical journal as seen by the event core: it never
// exposes the byte layout, only the handful of facts EImportMap and
// EOpen need (spec.md §6).
type Log interface {
	// LastImportMap returns the end offset of the most recently
	// written EImportMap, or -1 if none has been written yet.
	LastImportMap() int64

	// IsCapped reports whether the log has been sealed (no further
	// writes), typically at shutdown.
	IsCapped() bool

	// AddImportMapExpireWaiter registers cb to fire the next time an
	// EImportMap is written.
	AddImportMapExpireWaiter(cb Completion)

	// LogClientMap requests a fresh EClientMap write, invoking cb
	// once it has been journaled.
	LogClientMap(cb Completion)
}
