package mdsapi

// Server is the MDS server object, exposed to the journal core only
// for the journal-open batching EOpen.Expire drives.
type Server interface {
	QueueJournalOpen(in Inode)
	AddJournalOpenWaiter(cb Completion)
	MaybeJournalOpens()
}
