package journaltest

import "github.com/chn0318/mdjournal/mdsapi"

// MDS bundles every fake collaborator plus the *mdsapi.MDS view over
// them, so tests can set up state via the concrete fakes and then
// hand the interface view to the journal package under test.
type MDS struct {
	*mdsapi.MDS

	Cache        *Cache
	AnchorClient *AnchorClient
	AnchorTable  *AnchorTable
	AllocTable   *AllocTable
	ClientMap    *ClientMap
	Migrator     *Migrator
	Log          *Log
	Server       *Server
}

// New returns a fully wired fake MDS for node self, with an allocator
// seeded to start ids at allocStart.
func New(self mdsapi.NodeID, allocStart mdsapi.InodeNo) *MDS {
	cache := NewCache()
	anchorClient := NewAnchorClient()
	anchorTable := NewAnchorTable()
	allocTable := NewAllocTable(allocStart)
	clientMap := NewClientMap()
	migrator := NewMigrator()
	log := NewLog()
	server := NewServer()
	log.BindClientMap(clientMap)

	return &MDS{
		MDS: &mdsapi.MDS{
			SelfNode:     self,
			Cache:        cache,
			AnchorClient: anchorClient,
			AnchorTable:  anchorTable,
			AllocTable:   allocTable,
			ClientMap:    clientMap,
			Migrator:     migrator,
			Log:          log,
			Server:       server,
		},
		Cache:        cache,
		AnchorClient: anchorClient,
		AnchorTable:  anchorTable,
		AllocTable:   allocTable,
		ClientMap:    clientMap,
		Migrator:     migrator,
		Log:          log,
		Server:       server,
	}
}
