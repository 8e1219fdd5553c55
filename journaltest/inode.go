package journaltest

import "github.com/chn0318/mdjournal/mdsapi"

// Inode is an in-memory stand-in for mdsapi.Inode.
type Inode struct {
	ino     mdsapi.InodeNo
	rec     mdsapi.InodeRecord
	symlink string
	caps    bool
	lastOpenJournaled int64
	parent  *Dentry
}

func (in *Inode) Ino() mdsapi.InodeNo { return in.ino }

func (in *Inode) SetRecord(rec mdsapi.InodeRecord) { in.rec = rec }

// Record returns the last record set via SetRecord. Test helper.
func (in *Inode) Record() mdsapi.InodeRecord { return in.rec }

func (in *Inode) SetSymlink(target string) { in.symlink = target }

// Symlink returns the last symlink target set. Test helper.
func (in *Inode) Symlink() string { return in.symlink }

func (in *Inode) IsAnyCaps() bool { return in.caps }

// SetAnyCaps is a test setup helper.
func (in *Inode) SetAnyCaps(v bool) { in.caps = v }

func (in *Inode) LastOpenJournaled() int64        { return in.lastOpenJournaled }
func (in *Inode) SetLastOpenJournaled(offset int64) { in.lastOpenJournaled = offset }

func (in *Inode) GetParentDN() mdsapi.Dentry {
	if in.parent == nil {
		return nil
	}
	return in.parent
}
