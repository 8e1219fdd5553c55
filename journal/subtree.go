package journal

import "github.com/chn0318/mdjournal/mdsapi"

// EImportMap is a checkpoint: a MetaBlob spanning every subtree this
// MDS is authoritative for, plus the set of dirfrags rooted here.
type EImportMap struct {
	Position
	Blob    MetaBlob
	Imports []mdsapi.DirfragID
}

func (e *EImportMap) Kind() Kind      { return KindImportMap }
func (e *EImportMap) Pos() Position   { return e.Position }

// HasExpired is true iff a newer import map has been written past
// this one's end offset, or the log is capped. Unlike EUpdate,
// ESlaveUpdate and EImportStart, it does not delegate to the embedded
// blob: an
// EImportMap is a checkpoint boundary, superseded wholesale by the
// next one.
func (e *EImportMap) HasExpired(mds *mdsapi.MDS) bool {
	if mds.Log.IsCapped() {
		return true
	}
	return mds.Log.LastImportMap() > e.End
}

// Expire drives no work of its own; it registers on the log's
// import-map-expire-waiters list, which the next map write fires.
func (e *EImportMap) Expire(mds *mdsapi.MDS, done mdsapi.Completion) {
	if e.HasExpired(mds) {
		expireIllegal(KindImportMap)
	}
	mds.Log.AddImportMapExpireWaiter(done)
}

func (e *EImportMap) Replay(mds *mdsapi.MDS) {
	if mds.Cache.IsSubtrees() {
		return
	}
	e.Blob.Replay(mds, KindImportMap)
	for _, id := range e.Imports {
		mds.Cache.AdjustSubtreeAuth(id, mds.SelfNode)
	}
}

// EExport is journaled when handing a subtree to another node.
type EExport struct {
	Position
	Blob   MetaBlob
	Base   mdsapi.DirfragID
	Bounds []mdsapi.DirfragID
}

func (e *EExport) Kind() Kind    { return KindExport }
func (e *EExport) Pos() Position { return e.Position }

func (e *EExport) HasExpired(mds *mdsapi.MDS) bool {
	dir := mds.Cache.GetDirfrag(e.Base)
	if dir == nil {
		return true
	}
	return !mds.Migrator.IsExporting(e.Base)
}

func (e *EExport) Expire(mds *mdsapi.MDS, done mdsapi.Completion) {
	if e.HasExpired(mds) {
		expireIllegal(KindExport)
	}
	mds.Migrator.AddExportFinishWaiter(e.Base, done)
}

func (e *EExport) Replay(mds *mdsapi.MDS) {
	e.Blob.Replay(mds, KindExport)
	unknown := mdsapi.Authority{Primary: mdsapi.Unknown, Secondary: mdsapi.Unknown}
	if dir := mds.Cache.GetDirfrag(e.Base); dir != nil {
		dir.SetDirAuth(unknown)
	}
	for _, b := range e.Bounds {
		if dir := mds.Cache.GetDirfrag(b); dir != nil {
			dir.SetDirAuth(unknown)
		}
	}
	mds.Cache.TrySubtreeMerge(e.Base)
}

// EImportStart is journaled on accepting a subtree.
type EImportStart struct {
	Position
	Blob   MetaBlob
	Base   mdsapi.DirfragID
	Bounds []mdsapi.DirfragID
}

func (e *EImportStart) Kind() Kind    { return KindImportStart }
func (e *EImportStart) Pos() Position { return e.Position }

func (e *EImportStart) HasExpired(mds *mdsapi.MDS) bool {
	return e.Blob.HasExpired(mds)
}

func (e *EImportStart) Expire(mds *mdsapi.MDS, done mdsapi.Completion) {
	e.Blob.Expire(mds, done)
}

func (e *EImportStart) Replay(mds *mdsapi.MDS) {
	e.Blob.Replay(mds, KindImportStart)
	mds.Cache.AddAmbiguousImport(e.Base, e.Bounds)
}

// EImportFinish closes out an EImportStart. It is always expired: by
// the time it is journaled, the import it finishes has already been
// durably recorded by EImportStart plus whatever else committed in
// between.
type EImportFinish struct {
	Position
	Base    mdsapi.DirfragID
	Success bool
}

func (e *EImportFinish) Kind() Kind             { return KindImportFinish }
func (e *EImportFinish) Pos() Position          { return e.Position }
func (e *EImportFinish) HasExpired(*mdsapi.MDS) bool { return true }

func (e *EImportFinish) Expire(*mdsapi.MDS, mdsapi.Completion) {
	expireIllegal(KindImportFinish)
}

func (e *EImportFinish) Replay(mds *mdsapi.MDS) {
	if e.Success {
		mds.Cache.FinishAmbiguousImport(e.Base)
	} else {
		mds.Cache.CancelAmbiguousImport(e.Base)
	}
}
