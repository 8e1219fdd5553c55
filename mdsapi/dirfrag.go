package mdsapi

// Dirfrag is one fragment of a directory: the unit of authority and
// of on-disk commit (spec.md GLOSSARY).
type Dirfrag interface {
	ID() DirfragID

	// Authority returns the current (primary, secondary) pair. A
	// dirfrag is ambiguous (an export or import is in flight) when
	// Authority().IsAmbiguous() is true.
	Authority() Authority

	// CommittedVersion is the version durably flushed to disk.
	CommittedVersion() Version

	// IsAmbiguousDirAuth is Authority().IsAmbiguous(), exposed
	// separately because callers ask it of the subtree root, not
	// necessarily of this dirfrag itself.
	IsAmbiguousDirAuth() bool

	// CanAuthPin reports whether this dirfrag can currently be
	// auth-pinned to drive a commit.
	CanAuthPin() bool

	// Commit requests that the dirfrag be flushed up to version v,
	// invoking cb once the flush lands.
	Commit(v Version, cb Completion)

	// AddWaiter registers cb to fire when event occurs on this
	// dirfrag. "auth-pinnable" and "imported" are the two events the
	// journal core waits on.
	AddWaiter(event string, cb Completion)

	SetVersion(v Version)
	SetDirty(dirty bool)
	SetComplete(complete bool)

	// Lookup returns the dentry named name, or nil if none exists.
	Lookup(name string) Dentry

	// AddDentry creates and inserts a dentry named name. If remoteIno
	// is non-zero the dentry is a remote dentry pointing at that
	// inode number; otherwise it starts out null.
	AddDentry(name string, remoteIno InodeNo) Dentry

	LinkInode(dn Dentry, in Inode)
	UnlinkInode(dn Dentry)

	// SetDirAuth sets this dirfrag's authority pair directly, used by
	// EExport replay and by MetaBlob replay of the root dirfrag to mark
	// it unknown->unknown pending the next checkpoint.
	SetDirAuth(a Authority)
}

// Dentry is a directory entry: a name plus a link to an inode (full),
// a remote inode number (remote), or nothing (null).
type Dentry interface {
	Name() string
	Version() Version
	SetVersion(v Version)
	SetDirty(dirty bool)

	// IsNull reports whether the dentry currently points at nothing.
	IsNull() bool

	// RemoteIno is the target inode number for a remote dentry, or 0.
	RemoteIno() InodeNo
	SetRemoteIno(ino InodeNo)

	// Inode is the linked inode for a full dentry, or nil.
	Inode() Inode

	// Dir returns the dirfrag this dentry lives in. Replay uses this to
	// unlink an inode from its prior parent's own directory rather than
	// the dirfrag currently being replayed into.
	Dir() Dirfrag
}
