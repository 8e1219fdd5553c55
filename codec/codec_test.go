package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chn0318/mdjournal/journal"
	"github.com/chn0318/mdjournal/mdsapi"
)

func sampleBlob() journal.MetaBlob {
	return journal.MetaBlob{
		Lumps: []journal.DirfragLump{
			{
				ID: mdsapi.DirfragID{Ino: mdsapi.ROOT, Frag: 0},
				Lump: journal.Dirlump{
					Dirv:     3,
					Dirty:    true,
					Complete: true,
					Full: []journal.FullBit{
						{
							DentryName:    "foo",
							DentryVersion: 1,
							Inode:         mdsapi.InodeRecord{Ino: 100, Size: 4096, Ctime: 12345, Raw: []byte{1, 2, 3}},
						},
						{
							DentryName:    "link",
							DentryVersion: 2,
							IsSymlink:     true,
							SymlinkTarget: "/foo",
							Inode:         mdsapi.InodeRecord{Ino: 101},
						},
					},
					Remote: []journal.RemoteBit{{DentryName: "hardlink", DentryVersion: 1, TargetIno: 100}},
					Null:   []journal.NullBit{{DentryName: "gone", DentryVersion: 4, Dirty: true}},
				},
			},
		},
		Atids:      []mdsapi.Version{7, 8},
		Truncated:  []journal.Truncation{{Inode: mdsapi.InodeRecord{Ino: 50, Size: 10}, NewSize: 5}},
		ClientReqs: []mdsapi.RequestID{{Client: 1, Tid: 1}, {Client: 2, Tid: 9}},
	}
}

func assertBlobEqual(t *testing.T, want, got journal.MetaBlob) {
	t.Helper()
	assert.Equal(t, want, got)
}

func TestMetaBlobRoundTrip(t *testing.T) {
	want := sampleBlob()
	encoded := marshalMetaBlob(nil, &want)
	got, err := unmarshalMetaBlob(encoded)
	require.NoError(t, err)
	assertBlobEqual(t, want, got)
}

func roundTrip(t *testing.T, ev journal.Event, store *journal.SlaveUpdateStore) journal.Event {
	t.Helper()
	encoded, err := Encode(ev)
	require.NoError(t, err)
	got, n, err := Decode(encoded, store)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), n)
	return got
}

func TestEventRoundTrip_EImportMap(t *testing.T) {
	ev := &journal.EImportMap{
		Blob:    sampleBlob(),
		Imports: []mdsapi.DirfragID{{Ino: mdsapi.ROOT, Frag: 0}, {Ino: 42, Frag: 1}},
	}
	got := roundTrip(t, ev, nil).(*journal.EImportMap)
	assertBlobEqual(t, ev.Blob, got.Blob)
	assert.Equal(t, ev.Imports, got.Imports)
}

// Position is never part of the encoded body: it is physicallog's
// bookkeeping, assigned at Append/ReadAt time, not codec's. Decoding
// a freshly encoded event in isolation must always yield the zero
// Position, regardless of what the original event's Position was.
func TestDecode_NeverCarriesPositionOnTheWire(t *testing.T) {
	ev := &journal.EString{Position: journal.Position{Start: 1, End: 2}, Text: "x"}
	got := roundTrip(t, ev, nil).(*journal.EString)
	assert.Equal(t, journal.Position{}, got.Position)
}

func TestEventRoundTrip_EExport(t *testing.T) {
	ev := &journal.EExport{
		Position: journal.Position{Start: 5, End: 9},
		Blob:     sampleBlob(),
		Base:     mdsapi.DirfragID{Ino: 7, Frag: 0},
		Bounds:   []mdsapi.DirfragID{{Ino: 8, Frag: 0}, {Ino: 9, Frag: 1}},
	}
	got := roundTrip(t, ev, nil).(*journal.EExport)
	assert.Equal(t, ev.Base, got.Base)
	assert.Equal(t, ev.Bounds, got.Bounds)
	assertBlobEqual(t, ev.Blob, got.Blob)
}

func TestEventRoundTrip_EImportStart(t *testing.T) {
	ev := &journal.EImportStart{
		Position: journal.Position{Start: 5, End: 9},
		Blob:     sampleBlob(),
		Base:     mdsapi.DirfragID{Ino: 7, Frag: 0},
		Bounds:   []mdsapi.DirfragID{{Ino: 8, Frag: 0}},
	}
	got := roundTrip(t, ev, nil).(*journal.EImportStart)
	assert.Equal(t, ev.Base, got.Base)
	assert.Equal(t, ev.Bounds, got.Bounds)
}

func TestEventRoundTrip_EImportFinish(t *testing.T) {
	ev := &journal.EImportFinish{Position: journal.Position{Start: 1, End: 2}, Base: mdsapi.DirfragID{Ino: 3}, Success: true}
	got := roundTrip(t, ev, nil).(*journal.EImportFinish)
	assert.Equal(t, ev.Base, got.Base)
	assert.True(t, got.Success)

	ev2 := &journal.EImportFinish{Base: mdsapi.DirfragID{Ino: 3}, Success: false}
	got2 := roundTrip(t, ev2, nil).(*journal.EImportFinish)
	assert.False(t, got2.Success)
}

func TestEventRoundTrip_EAlloc(t *testing.T) {
	ev := &journal.EAlloc{Position: journal.Position{Start: 1, End: 2}, TableVersion: 4, What: mdsapi.Alloc, ID: 55}
	got := roundTrip(t, ev, nil).(*journal.EAlloc)
	assert.Equal(t, ev.TableVersion, got.TableVersion)
	assert.Equal(t, ev.What, got.What)
	assert.Equal(t, ev.ID, got.ID)
}

func TestEventRoundTrip_EAnchor(t *testing.T) {
	ev := &journal.EAnchor{
		Position: journal.Position{Start: 1, End: 2},
		Version:  3,
		Op:       mdsapi.AnchorCreatePrepare,
		Ino:      9,
		Trace:    []byte("trace"),
		ReqMDS:   1,
		Atid:     6,
	}
	got := roundTrip(t, ev, nil).(*journal.EAnchor)
	assert.Equal(t, ev.Version, got.Version)
	assert.Equal(t, ev.Op, got.Op)
	assert.Equal(t, ev.Ino, got.Ino)
	assert.Equal(t, ev.Trace, got.Trace)
	assert.Equal(t, ev.ReqMDS, got.ReqMDS)
	assert.Equal(t, ev.Atid, got.Atid)
}

func TestEventRoundTrip_EAnchorClient(t *testing.T) {
	ev := &journal.EAnchorClient{Position: journal.Position{Start: 1, End: 2}, Atid: 7}
	got := roundTrip(t, ev, nil).(*journal.EAnchorClient)
	assert.Equal(t, ev.Atid, got.Atid)
}

func TestEventRoundTrip_EClientMap(t *testing.T) {
	ev := &journal.EClientMap{Position: journal.Position{Start: 1, End: 2}, Cmapv: 3, Encoded: []byte("snapshot")}
	got := roundTrip(t, ev, nil).(*journal.EClientMap)
	assert.Equal(t, ev.Cmapv, got.Cmapv)
	assert.Equal(t, ev.Encoded, got.Encoded)
}

func TestEventRoundTrip_ESession(t *testing.T) {
	ev := &journal.ESession{
		Position: journal.Position{Start: 1, End: 2},
		Cmapv:    4,
		Open:     true,
		Inst:     mdsapi.ClientInst{Client: 9, Addr: "10.0.0.1:6800"},
	}
	got := roundTrip(t, ev, nil).(*journal.ESession)
	assert.Equal(t, ev.Cmapv, got.Cmapv)
	assert.True(t, got.Open)
	assert.Equal(t, ev.Inst, got.Inst)
}

func TestEventRoundTrip_EUpdate(t *testing.T) {
	ev := &journal.EUpdate{Position: journal.Position{Start: 1, End: 2}, Blob: sampleBlob()}
	got := roundTrip(t, ev, nil).(*journal.EUpdate)
	assertBlobEqual(t, ev.Blob, got.Blob)
}

func TestEventRoundTrip_ESlaveUpdate_Prepare(t *testing.T) {
	store := journal.NewSlaveUpdateStore()
	ev := &journal.ESlaveUpdate{
		Position: journal.Position{Start: 1, End: 2},
		Blob:     sampleBlob(),
		Reqid:    mdsapi.RequestID{Client: 4, Tid: 5},
		Op:       journal.SlavePrepare,
		Store:    store,
	}
	got := roundTrip(t, ev, store).(*journal.ESlaveUpdate)
	assert.Equal(t, ev.Reqid, got.Reqid)
	assert.Equal(t, journal.SlavePrepare, got.Op)
	assertBlobEqual(t, ev.Blob, got.Blob)
	assert.Same(t, store, got.Store)
}

func TestEventRoundTrip_ESlaveUpdate_Commit(t *testing.T) {
	store := journal.NewSlaveUpdateStore()
	ev := &journal.ESlaveUpdate{
		Position: journal.Position{Start: 1, End: 2},
		Reqid:    mdsapi.RequestID{Client: 4, Tid: 5},
		Op:       journal.SlaveCommit,
		Store:    store,
	}
	got := roundTrip(t, ev, store).(*journal.ESlaveUpdate)
	assert.Equal(t, journal.SlaveCommit, got.Op)
	assert.Empty(t, got.Blob.Lumps, "COMMIT bodies never carry a blob of their own")
}

func TestEventRoundTrip_EOpen(t *testing.T) {
	ev := &journal.EOpen{
		Position: journal.Position{Start: 1, End: 2},
		Blob:     sampleBlob(),
		Inos:     []mdsapi.InodeNo{5, 6, 7},
	}
	got := roundTrip(t, ev, nil).(*journal.EOpen)
	assert.Equal(t, ev.Inos, got.Inos)
	assertBlobEqual(t, ev.Blob, got.Blob)
}

func TestEventRoundTrip_EString(t *testing.T) {
	ev := &journal.EString{Position: journal.Position{Start: 1, End: 2}, Text: "checkpoint"}
	got := roundTrip(t, ev, nil).(*journal.EString)
	assert.Equal(t, ev.Text, got.Text)
}

func TestEventRoundTrip_EPurgeFinish(t *testing.T) {
	ev := &journal.EPurgeFinish{Position: journal.Position{Start: 1, End: 2}, Ino: 5, NewSize: 10}
	got := roundTrip(t, ev, nil).(*journal.EPurgeFinish)
	assert.Equal(t, ev.Ino, got.Ino)
	assert.Equal(t, ev.NewSize, got.NewSize)
}

func TestDecode_TruncatedRecordErrors(t *testing.T) {
	ev := &journal.EString{Text: "x"}
	encoded, err := Encode(ev)
	require.NoError(t, err)
	_, _, err = Decode(encoded[:len(encoded)-1], nil)
	assert.Error(t, err)
}

func TestDecode_UnknownKindErrors(t *testing.T) {
	var b []byte
	b = append(b, 0xFF, 0x01) // varint kind = 255, out of range
	b = append(b, 0x00)       // zero-length body
	_, _, err := Decode(b, nil)
	assert.Error(t, err)
}
