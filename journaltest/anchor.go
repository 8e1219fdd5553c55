package journaltest

import "github.com/chn0318/mdjournal/mdsapi"

// AnchorClient is an in-memory stand-in for mdsapi.AnchorClient.
type AnchorClient struct {
	committed map[mdsapi.Version]bool
	acked     map[mdsapi.Version]bool
	waiters   map[mdsapi.Version][]mdsapi.Completion
}

// NewAnchorClient returns an empty fake anchor client.
func NewAnchorClient() *AnchorClient {
	return &AnchorClient{
		committed: make(map[mdsapi.Version]bool),
		acked:     make(map[mdsapi.Version]bool),
		waiters:   make(map[mdsapi.Version][]mdsapi.Completion),
	}
}

func (c *AnchorClient) HasCommitted(atid mdsapi.Version) bool { return c.committed[atid] }

func (c *AnchorClient) WaitForAck(atid mdsapi.Version, cb mdsapi.Completion) {
	if c.committed[atid] {
		cb()
		return
	}
	c.waiters[atid] = append(c.waiters[atid], cb)
}

func (c *AnchorClient) GotJournaledAgree(mdsapi.Version) {}

func (c *AnchorClient) GotJournaledAck(atid mdsapi.Version) {
	c.acked[atid] = true
}

// Commit marks atid committed and fires its ack waiters. Test helper,
// simulating the anchor table's own commit landing.
func (c *AnchorClient) Commit(atid mdsapi.Version) {
	c.committed[atid] = true
	waiters := c.waiters[atid]
	delete(c.waiters, atid)
	for _, cb := range waiters {
		cb()
	}
}

// IsAcked reports whether GotJournaledAck was ever called for atid.
// Test helper.
func (c *AnchorClient) IsAcked(atid mdsapi.Version) bool { return c.acked[atid] }

type anchorEntry struct {
	op     mdsapi.AnchorOp
	ino    mdsapi.InodeNo
	trace  []byte
	reqmds mdsapi.NodeID
	atid   mdsapi.Version
}

// AnchorTable is an in-memory stand-in for mdsapi.AnchorTable.
type AnchorTable struct {
	committed mdsapi.Version
	version   mdsapi.Version
	log       []anchorEntry
}

func NewAnchorTable() *AnchorTable { return &AnchorTable{} }

func (t *AnchorTable) GetCommittedVersion() mdsapi.Version { return t.committed }
func (t *AnchorTable) GetVersion() mdsapi.Version          { return t.version }

func (t *AnchorTable) Save(cb mdsapi.Completion) {
	t.committed = t.version
	cb()
}

func (t *AnchorTable) CreatePrepare(ino mdsapi.InodeNo, trace []byte, reqmds mdsapi.NodeID, atid mdsapi.Version) {
	t.version++
	t.log = append(t.log, anchorEntry{mdsapi.AnchorCreatePrepare, ino, trace, reqmds, atid})
}

func (t *AnchorTable) DestroyPrepare(ino mdsapi.InodeNo, atid mdsapi.Version) {
	t.version++
	t.log = append(t.log, anchorEntry{op: mdsapi.AnchorDestroyPrepare, ino: ino, atid: atid})
}

func (t *AnchorTable) UpdatePrepare(ino mdsapi.InodeNo, trace []byte, atid mdsapi.Version) {
	t.version++
	t.log = append(t.log, anchorEntry{op: mdsapi.AnchorUpdatePrepare, ino: ino, trace: trace, atid: atid})
}

func (t *AnchorTable) Commit(atid mdsapi.Version) {
	t.version++
	t.log = append(t.log, anchorEntry{op: mdsapi.AnchorCommit, atid: atid})
}
