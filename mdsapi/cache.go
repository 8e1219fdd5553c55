package mdsapi

// Cache is the in-memory metadata cache: directories, dentries, and
// inodes, plus the bookkeeping the journal core needs around subtree
// authority and recovering purges.
type Cache interface {
	// GetDirfrag returns the cached dirfrag, or nil if it has been
	// trimmed from cache (which the journal core treats as "already
	// flushed", per spec.md §4.1).
	GetDirfrag(id DirfragID) Dirfrag

	GetInode(ino InodeNo) Inode
	AddInode(in Inode)

	// NewInode constructs a bare inode for ino, to be filled in by
	// SetRecord and inserted via AddInode. Used by full-bit replay
	// when the inode does not already exist in cache.
	NewInode(ino InodeNo) Inode

	// CreateRootInode and CreateStrayInode materialize the two kinds
	// of inode that replay is allowed to invent on the fly when their
	// dirfrag's parent is missing (spec.md §4.1 step 1).
	CreateRootInode() Inode
	CreateStrayInode(node NodeID) Inode

	// GetOrOpenDirfrag resolves or opens the dirfrag at frag under
	// parent, creating it if this is the first time it is seen.
	GetOrOpenDirfrag(parent Inode, frag uint32) Dirfrag

	IsPurging(ino InodeNo, size uint64) bool
	WaitForPurge(ino InodeNo, size uint64, cb Completion)
	AddRecoveredPurge(rec InodeRecord, size uint64)
	RemoveRecoveredPurge(ino InodeNo, size uint64)

	// IsSubtrees reports whether the cache already has any subtree
	// authority assignments, used by EImportMap.Replay to decide
	// whether it is the first checkpoint replayed.
	IsSubtrees() bool

	AdjustSubtreeAuth(dir DirfragID, node NodeID)
	AdjustBoundedSubtreeAuth(base DirfragID, bounds []DirfragID, a Authority)
	TrySubtreeMerge(dir DirfragID)

	AddAmbiguousImport(base DirfragID, bounds []DirfragID)
	FinishAmbiguousImport(base DirfragID)
	CancelAmbiguousImport(base DirfragID)
}
