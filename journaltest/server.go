package journaltest

import "github.com/chn0318/mdjournal/mdsapi"

// Server is an in-memory stand-in for mdsapi.Server.
type Server struct {
	queued  []mdsapi.Inode
	waiters []mdsapi.Completion
	flushes int
}

// NewServer returns an empty fake server.
func NewServer() *Server { return &Server{} }

func (s *Server) QueueJournalOpen(in mdsapi.Inode) { s.queued = append(s.queued, in) }

func (s *Server) AddJournalOpenWaiter(cb mdsapi.Completion) {
	s.waiters = append(s.waiters, cb)
}

func (s *Server) MaybeJournalOpens() { s.flushes++ }

// FlushJournalOpens simulates a fresh EOpen having been journaled and
// landed: it clears the queue and fires every waiter. Test helper.
func (s *Server) FlushJournalOpens() {
	s.queued = nil
	waiters := s.waiters
	s.waiters = nil
	for _, cb := range waiters {
		cb()
	}
}

// Queued returns the inodes queued for a fresh journal-open write.
// Test helper.
func (s *Server) Queued() []mdsapi.Inode { return s.queued }

// Flushes reports how many times MaybeJournalOpens was called. Test
// helper.
func (s *Server) Flushes() int { return s.flushes }
