package mdsapi

// MDS bundles the node identity and every external collaborator the
// journal core dispatches against. Every Event method takes an *MDS
// as its "mds" argument, exactly as journal.cc's has_expired/expire/
// replay methods take an MDS*.
type MDS struct {
	SelfNode NodeID

	Cache        Cache
	AnchorClient AnchorClient
	AnchorTable  AnchorTable
	AllocTable   AllocTable
	ClientMap    ClientMap
	Migrator     Migrator
	Log          Log
	Server       Server
}
