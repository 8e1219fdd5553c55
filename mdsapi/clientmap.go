package mdsapi

// ClientMap is the session/client table: which clients are connected,
// what version of the map is committed vs. still committing, and
// which request ids have completed and are pending trim.
type ClientMap interface {
	GetCommitted() Version
	GetCommitting() Version
	GetVersion() Version

	AddCommitWaiter(cb Completion)

	HaveCompletedRequest(id RequestID) bool
	AddTrimWaiter(id RequestID, cb Completion)
	AddCompletedRequest(id RequestID)

	OpenSession(inst ClientInst)
	CloseSession(name int64)

	// Decode replaces the live map with the map encoded in data,
	// returning the version it decoded to.
	Decode(data []byte) Version

	// SetCommitted, SetCommitting force the committed/committing
	// watermarks to v. EClientMap.Replay uses these to install the
	// decoded snapshot's version as both watermarks at once, the way
	// journal.cc's replay calls set_committed/set_committing directly
	// rather than deriving them from any prior state.
	SetCommitted(v Version)
	SetCommitting(v Version)

	// ResetProjected resets the projected (in-flight) view to follow
	// the committed version, as post-crash recovery requires.
	ResetProjected()

	// LogClientMap starts a fresh flush of the client map, invoking
	// cb once it lands.
	LogClientMap(cb Completion)
}
