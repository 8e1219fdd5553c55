package mdsapi

// InodeRecord is the on-disk snapshot of an inode's metadata carried
// inside a full bit or a truncation entry. It is opaque to the
// journal core beyond its inode number.
type InodeRecord struct {
	Ino   InodeNo
	Size  uint64
	Ctime int64
	// Raw carries whatever fields the metadata cache needs to
	// rehydrate the rest of the inode; the journal core never
	// interprets it.
	Raw []byte
}

// Inode is a cached metadata inode.
type Inode interface {
	Ino() InodeNo

	// SetRecord overwrites the inode's metadata record, as full-bit
	// replay does.
	SetRecord(rec InodeRecord)

	// SetSymlink sets the symlink target; only meaningful for
	// symlink inodes.
	SetSymlink(target string)

	// IsAnyCaps reports whether any client currently holds
	// capabilities on this inode.
	IsAnyCaps() bool

	// LastOpenJournaled is the log offset of the most recent EOpen
	// (or EUpdate carrying an open) that recorded this inode's caps.
	// Zero means never journaled.
	LastOpenJournaled() int64
	SetLastOpenJournaled(offset int64)

	// GetParentDN returns the dentry this inode is currently linked
	// under, or nil if it has none.
	GetParentDN() Dentry
}
