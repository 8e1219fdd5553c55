package anchortable

import (
	"sync"

	"github.com/chn0318/mdjournal/mdsapi"
)

// clientEntry tracks one atid's ack state from this MDS's point of
// view: whether the anchor table's own commit has been acked back, and
// whoever is waiting on that ack.
type clientEntry struct {
	acked   bool
	waiters []mdsapi.Completion
}

// Client is an in-memory mdsapi.AnchorClient.
type Client struct {
	mu      sync.Mutex
	entries map[mdsapi.Version]*clientEntry
}

// NewClient returns an anchor client with no outstanding atids.
func NewClient() *Client {
	return &Client{entries: make(map[mdsapi.Version]*clientEntry)}
}

func (c *Client) entry(atid mdsapi.Version) *clientEntry {
	e, ok := c.entries[atid]
	if !ok {
		e = &clientEntry{}
		c.entries[atid] = e
	}
	return e
}

func (c *Client) HasCommitted(atid mdsapi.Version) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[atid]
	return ok && e.acked
}

func (c *Client) WaitForAck(atid mdsapi.Version, cb mdsapi.Completion) {
	c.mu.Lock()
	e := c.entry(atid)
	if e.acked {
		c.mu.Unlock()
		cb()
		return
	}
	e.waiters = append(e.waiters, cb)
	c.mu.Unlock()
}

// GotJournaledAgree records that MetaBlob replay saw atid, before any
// ack for it has arrived. It is a no-op beyond ensuring the entry
// exists, so a WaitForAck registered afterward has something to
// attach to.
func (c *Client) GotJournaledAgree(atid mdsapi.Version) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry(atid)
}

// GotJournaledAck records that EAnchorClient.Replay saw the ack for
// atid and fires every waiter registered on it.
func (c *Client) GotJournaledAck(atid mdsapi.Version) {
	c.mu.Lock()
	e := c.entry(atid)
	e.acked = true
	waiters := e.waiters
	e.waiters = nil
	c.mu.Unlock()

	for _, w := range waiters {
		w()
	}
}
