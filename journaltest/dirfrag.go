package journaltest

import "github.com/chn0318/mdjournal/mdsapi"

// Dirfrag is an in-memory stand-in for mdsapi.Dirfrag.
type Dirfrag struct {
	id       mdsapi.DirfragID
	auth     mdsapi.Authority
	dirv     mdsapi.Version
	committed mdsapi.Version
	dirty    bool
	complete bool
	authPinnable bool
	dentries map[string]*Dentry
	waiters  map[string][]mdsapi.Completion
}

// NewDirfrag returns a fake dirfrag with the given id and authority,
// auth-pinnable by default.
func NewDirfrag(id mdsapi.DirfragID, auth mdsapi.Authority) *Dirfrag {
	return &Dirfrag{
		id:           id,
		auth:         auth,
		authPinnable: true,
		dentries:     make(map[string]*Dentry),
		waiters:      make(map[string][]mdsapi.Completion),
	}
}

func (d *Dirfrag) ID() mdsapi.DirfragID          { return d.id }
func (d *Dirfrag) Authority() mdsapi.Authority   { return d.auth }
func (d *Dirfrag) CommittedVersion() mdsapi.Version { return d.committed }
func (d *Dirfrag) IsAmbiguousDirAuth() bool      { return d.auth.IsAmbiguous() }
func (d *Dirfrag) CanAuthPin() bool              { return d.authPinnable }

// SetAuthority, SetCommittedVersion, SetAuthPinnable are test setup
// helpers.
func (d *Dirfrag) SetAuthority(a mdsapi.Authority)      { d.auth = a }
func (d *Dirfrag) SetCommittedVersion(v mdsapi.Version)  { d.committed = v }
func (d *Dirfrag) SetAuthPinnable(ok bool)               { d.authPinnable = ok }

func (d *Dirfrag) Commit(v mdsapi.Version, cb mdsapi.Completion) {
	if v > d.committed {
		d.committed = v
	}
	cb()
}

func (d *Dirfrag) AddWaiter(event string, cb mdsapi.Completion) {
	d.waiters[event] = append(d.waiters[event], cb)
}

// Fire fires every waiter registered for event. Test helper.
func (d *Dirfrag) Fire(event string) {
	waiters := d.waiters[event]
	delete(d.waiters, event)
	for _, cb := range waiters {
		cb()
	}
}

func (d *Dirfrag) SetVersion(v mdsapi.Version)   { d.dirv = v }
func (d *Dirfrag) SetDirty(dirty bool)           { d.dirty = dirty }
func (d *Dirfrag) SetComplete(complete bool)     { d.complete = complete }
func (d *Dirfrag) Version() mdsapi.Version       { return d.dirv }
func (d *Dirfrag) Dirty() bool                   { return d.dirty }
func (d *Dirfrag) Complete() bool                { return d.complete }

func (d *Dirfrag) Lookup(name string) mdsapi.Dentry {
	dn, ok := d.dentries[name]
	if !ok {
		return nil
	}
	return dn
}

func (d *Dirfrag) AddDentry(name string, remoteIno mdsapi.InodeNo) mdsapi.Dentry {
	dn := &Dentry{name: name, remoteIno: remoteIno, dir: d}
	d.dentries[name] = dn
	return dn
}

func (d *Dirfrag) LinkInode(dn mdsapi.Dentry, in mdsapi.Inode) {
	real := dn.(*Dentry)
	real.inode = in.(*Inode)
	real.remoteIno = 0
	real.inode.parent = real
}

func (d *Dirfrag) UnlinkInode(dn mdsapi.Dentry) {
	real := dn.(*Dentry)
	if real.inode != nil {
		real.inode.parent = nil
		real.inode = nil
	}
	real.remoteIno = 0
}

func (d *Dirfrag) SetDirAuth(a mdsapi.Authority) { d.auth = a }

// Dentry is an in-memory stand-in for mdsapi.Dentry.
type Dentry struct {
	name      string
	version   mdsapi.Version
	dirty     bool
	remoteIno mdsapi.InodeNo
	inode     *Inode
	dir       *Dirfrag
}

func (dn *Dentry) Name() string             { return dn.name }
func (dn *Dentry) Version() mdsapi.Version  { return dn.version }
func (dn *Dentry) SetVersion(v mdsapi.Version) { dn.version = v }
func (dn *Dentry) SetDirty(dirty bool)      { dn.dirty = dirty }
func (dn *Dentry) IsNull() bool             { return dn.inode == nil && dn.remoteIno == 0 }
func (dn *Dentry) RemoteIno() mdsapi.InodeNo { return dn.remoteIno }
func (dn *Dentry) SetRemoteIno(ino mdsapi.InodeNo) { dn.remoteIno = ino }
func (dn *Dentry) Inode() mdsapi.Inode {
	if dn.inode == nil {
		return nil
	}
	return dn.inode
}

// Dir returns the dirfrag that owns this dentry.
func (dn *Dentry) Dir() mdsapi.Dirfrag { return dn.dir }
