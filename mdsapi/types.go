// Package mdsapi declares the contracts the journal event core needs
// from the rest of a metadata server: the metadata cache, dirfrags
// and inodes, the anchor table and its client, the ID allocator, the
// client/session map, the subtree migrator, the physical log, and the
// server itself. None of these are implemented here; mdsapi is the
// seam between the journal core and everything around it.
package mdsapi

import "fmt"

// NodeID identifies one MDS in the cluster.
type NodeID int32

// Unknown is the sentinel node id used for undecided authority.
const Unknown NodeID = -2

// Authority is the (primary, secondary) pair that names who is
// responsible for a subtree. Secondary != Unknown means a transition
// (export or import) is in flight and the authority is ambiguous.
type Authority struct {
	Primary   NodeID
	Secondary NodeID
}

// IsAmbiguous reports whether an authority transition is in flight.
func (a Authority) IsAmbiguous() bool { return a.Secondary != Unknown }

func (a Authority) String() string {
	return fmt.Sprintf("(%d,%d)", a.Primary, a.Secondary)
}

// DirfragID names one fragment of one directory inode.
type DirfragID struct {
	Ino  InodeNo
	Frag uint32
}

func (d DirfragID) String() string { return fmt.Sprintf("%d.%08x", d.Ino, d.Frag) }

// InodeNo is a metadata inode number.
type InodeNo uint64

// ROOT is the fixed inode number of the filesystem root.
const ROOT InodeNo = 1

// StrayBase is the first inode number of the per-node stray-directory
// range. Node i's stray directory is StrayBase+i.
const StrayBase InodeNo = 1000

// MaxStrays bounds the stray range so StrayNodeID can tell a stray
// inode number from an ordinary one.
const MaxStrays InodeNo = 4096

// IsStray reports whether ino falls in the stray range.
func IsStray(ino InodeNo) bool {
	return ino >= StrayBase && ino < StrayBase+MaxStrays
}

// StrayNodeID returns the node that owns the stray directory named by
// ino. Only valid when IsStray(ino).
func StrayNodeID(ino InodeNo) NodeID {
	return NodeID(ino - StrayBase)
}

// RequestID names a client request whose completion must be tracked
// across a crash until the client has acknowledged the reply.
type RequestID struct {
	Client int64
	Tid    uint64
}

func (r RequestID) String() string { return fmt.Sprintf("%d:%d", r.Client, r.Tid) }

// Version is a monotonically increasing table or dirfrag version.
type Version uint64

// ClientInst identifies a connected client for session open/close.
type ClientInst struct {
	Client int64
	Addr   string
}
