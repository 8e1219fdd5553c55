package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/chn0318/mdjournal/journal"
	"github.com/chn0318/mdjournal/mdsapi"
)

// Fields 1 and 2 are reserved and unused in every per-kind body below:
// they used to carry Position.Start/Position.End, but position is the
// physical log's own bookkeeping (the offset Append assigns, or the
// offset ReadAt was called with), never application data, so it is no
// longer written to the wire at all. The rest of the numbering below
// is local to each kind and starts at 3 for historical continuity.
const (
	fDirIno  protowire.Number = 1
	fDirFrag protowire.Number = 2

	fImportBlob    protowire.Number = 3
	fImportImports protowire.Number = 4

	fExportBlob   protowire.Number = 3
	fExportBase   protowire.Number = 4
	fExportBounds protowire.Number = 5

	fFinishBase    protowire.Number = 3
	fFinishSuccess protowire.Number = 4

	fAllocVersion protowire.Number = 3
	fAllocWhat    protowire.Number = 4
	fAllocID      protowire.Number = 5

	fAnchorVersion protowire.Number = 3
	fAnchorOp      protowire.Number = 4
	fAnchorIno     protowire.Number = 5
	fAnchorTrace   protowire.Number = 6
	fAnchorReqMDS  protowire.Number = 7
	fAnchorAtid    protowire.Number = 8

	fAnchorClientAtid protowire.Number = 3

	fCmapVersion protowire.Number = 3
	fCmapEncoded protowire.Number = 4

	fSessCmapv protowire.Number = 3
	fSessOpen  protowire.Number = 4
	fSessInstC protowire.Number = 5
	fSessInstA protowire.Number = 6

	fUpdateBlob protowire.Number = 3

	fSlaveBlob   protowire.Number = 3
	fSlaveClient protowire.Number = 4
	fSlaveTid    protowire.Number = 5
	fSlaveOp     protowire.Number = 6

	fOpenBlob protowire.Number = 3
	fOpenInos protowire.Number = 4

	fStringText protowire.Number = 3

	fPurgeIno     protowire.Number = 3
	fPurgeNewSize protowire.Number = 4
)

func marshalDirfragID(id mdsapi.DirfragID) []byte {
	var b []byte
	b = putVarint(b, fDirIno, uint64(id.Ino))
	b = putVarint(b, fDirFrag, uint64(id.Frag))
	return b
}

func unmarshalDirfragID(body []byte) (mdsapi.DirfragID, error) {
	fs, err := readFields(body)
	if err != nil {
		return mdsapi.DirfragID{}, err
	}
	ino, _ := firstVarint(fs, fDirIno)
	frag, _ := firstVarint(fs, fDirFrag)
	return mdsapi.DirfragID{Ino: mdsapi.InodeNo(ino), Frag: uint32(frag)}, nil
}

// Encode serializes ev as [varint kind][varint length][body].
func Encode(ev journal.Event) ([]byte, error) {
	body, err := marshalBody(ev)
	if err != nil {
		return nil, err
	}
	var out []byte
	out = protowire.AppendVarint(out, uint64(ev.Kind()))
	out = protowire.AppendVarint(out, uint64(len(body)))
	out = append(out, body...)
	return out, nil
}

func marshalBody(ev journal.Event) ([]byte, error) {
	switch e := ev.(type) {
	case *journal.EImportMap:
		var b []byte
		b = putBytes(b, fImportBlob, marshalMetaBlob(nil, &e.Blob))
		for _, id := range e.Imports {
			b = putBytes(b, fImportImports, marshalDirfragID(id))
		}
		return b, nil
	case *journal.EExport:
		var b []byte
		b = putBytes(b, fExportBlob, marshalMetaBlob(nil, &e.Blob))
		b = putBytes(b, fExportBase, marshalDirfragID(e.Base))
		for _, id := range e.Bounds {
			b = putBytes(b, fExportBounds, marshalDirfragID(id))
		}
		return b, nil
	case *journal.EImportStart:
		var b []byte
		b = putBytes(b, fExportBlob, marshalMetaBlob(nil, &e.Blob))
		b = putBytes(b, fExportBase, marshalDirfragID(e.Base))
		for _, id := range e.Bounds {
			b = putBytes(b, fExportBounds, marshalDirfragID(id))
		}
		return b, nil
	case *journal.EImportFinish:
		var b []byte
		b = putBytes(b, fFinishBase, marshalDirfragID(e.Base))
		b = putBool(b, fFinishSuccess, e.Success)
		return b, nil
	case *journal.EAlloc:
		var b []byte
		b = putVarint(b, fAllocVersion, uint64(e.TableVersion))
		b = putVarint(b, fAllocWhat, uint64(e.What))
		b = putVarint(b, fAllocID, uint64(e.ID))
		return b, nil
	case *journal.EAnchor:
		var b []byte
		b = putVarint(b, fAnchorVersion, uint64(e.Version))
		b = putVarint(b, fAnchorOp, uint64(e.Op))
		b = putVarint(b, fAnchorIno, uint64(e.Ino))
		b = putBytes(b, fAnchorTrace, e.Trace)
		b = putVarint(b, fAnchorReqMDS, uint64(e.ReqMDS))
		b = putVarint(b, fAnchorAtid, uint64(e.Atid))
		return b, nil
	case *journal.EAnchorClient:
		var b []byte
		b = putVarint(b, fAnchorClientAtid, uint64(e.Atid))
		return b, nil
	case *journal.EClientMap:
		var b []byte
		b = putVarint(b, fCmapVersion, uint64(e.Cmapv))
		b = putBytes(b, fCmapEncoded, e.Encoded)
		return b, nil
	case *journal.ESession:
		var b []byte
		b = putVarint(b, fSessCmapv, uint64(e.Cmapv))
		b = putBool(b, fSessOpen, e.Open)
		b = putVarint(b, fSessInstC, uint64(e.Inst.Client))
		b = putString(b, fSessInstA, e.Inst.Addr)
		return b, nil
	case *journal.EUpdate:
		var b []byte
		b = putBytes(b, fUpdateBlob, marshalMetaBlob(nil, &e.Blob))
		return b, nil
	case *journal.ESlaveUpdate:
		var b []byte
		if e.Op == journal.SlavePrepare {
			b = putBytes(b, fSlaveBlob, marshalMetaBlob(nil, &e.Blob))
		}
		b = putVarint(b, fSlaveClient, uint64(e.Reqid.Client))
		b = putVarint(b, fSlaveTid, e.Reqid.Tid)
		b = putVarint(b, fSlaveOp, uint64(e.Op))
		return b, nil
	case *journal.EOpen:
		var b []byte
		b = putBytes(b, fOpenBlob, marshalMetaBlob(nil, &e.Blob))
		for _, ino := range e.Inos {
			b = putVarint(b, fOpenInos, uint64(ino))
		}
		return b, nil
	case *journal.EString:
		var b []byte
		b = putString(b, fStringText, e.Text)
		return b, nil
	case *journal.EPurgeFinish:
		var b []byte
		b = putVarint(b, fPurgeIno, uint64(e.Ino))
		b = putVarint(b, fPurgeNewSize, e.NewSize)
		return b, nil
	default:
		return nil, fmt.Errorf("codec: unmarshalable event type %T", ev)
	}
}

// Decode reads one framed record from the front of b, returning the
// event, the number of bytes consumed, and any error. store supplies
// the ESlaveUpdate pending-transaction table; pass nil when decoding a
// kind that isn't ESlaveUpdate.
func Decode(b []byte, store *journal.SlaveUpdateStore) (journal.Event, int, error) {
	kindV, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return nil, 0, fmt.Errorf("codec: bad kind tag")
	}
	rest := b[n:]
	length, n2 := protowire.ConsumeVarint(rest)
	if n2 < 0 {
		return nil, 0, fmt.Errorf("codec: bad length tag")
	}
	rest = rest[n2:]
	total := n + n2 + int(length)
	if len(rest) < int(length) {
		return nil, 0, fmt.Errorf("codec: truncated record body (want %d, have %d)", length, len(rest))
	}
	body := rest[:length]

	ev, err := unmarshalBody(journal.Kind(kindV), body, store)
	if err != nil {
		return nil, 0, err
	}
	return ev, total, nil
}

func unmarshalBody(k journal.Kind, body []byte, store *journal.SlaveUpdateStore) (journal.Event, error) {
	fs, err := readFields(body)
	if err != nil {
		return nil, err
	}
	// Position is assigned by physicallog.Journal after this call
	// returns, from the offset it was read at; it is never part of
	// the wire body itself.
	var pos journal.Position

	switch k {
	case journal.KindImportMap:
		blobBytes, _ := firstBytes(fs, fImportBlob)
		blob, err := unmarshalMetaBlob(blobBytes)
		if err != nil {
			return nil, err
		}
		var imports []mdsapi.DirfragID
		for _, ib := range allBytes(fs, fImportImports) {
			id, err := unmarshalDirfragID(ib)
			if err != nil {
				return nil, err
			}
			imports = append(imports, id)
		}
		return &journal.EImportMap{Position: pos, Blob: blob, Imports: imports}, nil

	case journal.KindExport:
		blobBytes, _ := firstBytes(fs, fExportBlob)
		blob, err := unmarshalMetaBlob(blobBytes)
		if err != nil {
			return nil, err
		}
		baseBytes, _ := firstBytes(fs, fExportBase)
		base, err := unmarshalDirfragID(baseBytes)
		if err != nil {
			return nil, err
		}
		var bounds []mdsapi.DirfragID
		for _, bb := range allBytes(fs, fExportBounds) {
			id, err := unmarshalDirfragID(bb)
			if err != nil {
				return nil, err
			}
			bounds = append(bounds, id)
		}
		return &journal.EExport{Position: pos, Blob: blob, Base: base, Bounds: bounds}, nil

	case journal.KindImportStart:
		blobBytes, _ := firstBytes(fs, fExportBlob)
		blob, err := unmarshalMetaBlob(blobBytes)
		if err != nil {
			return nil, err
		}
		baseBytes, _ := firstBytes(fs, fExportBase)
		base, err := unmarshalDirfragID(baseBytes)
		if err != nil {
			return nil, err
		}
		var bounds []mdsapi.DirfragID
		for _, bb := range allBytes(fs, fExportBounds) {
			id, err := unmarshalDirfragID(bb)
			if err != nil {
				return nil, err
			}
			bounds = append(bounds, id)
		}
		return &journal.EImportStart{Position: pos, Blob: blob, Base: base, Bounds: bounds}, nil

	case journal.KindImportFinish:
		baseBytes, _ := firstBytes(fs, fFinishBase)
		base, err := unmarshalDirfragID(baseBytes)
		if err != nil {
			return nil, err
		}
		success, _ := firstVarint(fs, fFinishSuccess)
		return &journal.EImportFinish{Position: pos, Base: base, Success: success != 0}, nil

	case journal.KindAlloc:
		v, _ := firstVarint(fs, fAllocVersion)
		what, _ := firstVarint(fs, fAllocWhat)
		id, _ := firstVarint(fs, fAllocID)
		return &journal.EAlloc{
			Position:     pos,
			TableVersion: mdsapi.Version(v),
			What:         mdsapi.AllocWhat(what),
			ID:           mdsapi.InodeNo(id),
		}, nil

	case journal.KindAnchor:
		v, _ := firstVarint(fs, fAnchorVersion)
		op, _ := firstVarint(fs, fAnchorOp)
		ino, _ := firstVarint(fs, fAnchorIno)
		trace, _ := firstBytes(fs, fAnchorTrace)
		reqmds, _ := firstVarint(fs, fAnchorReqMDS)
		atid, _ := firstVarint(fs, fAnchorAtid)
		return &journal.EAnchor{
			Position: pos,
			Version:  mdsapi.Version(v),
			Op:       mdsapi.AnchorOp(op),
			Ino:      mdsapi.InodeNo(ino),
			Trace:    trace,
			ReqMDS:   mdsapi.NodeID(reqmds),
			Atid:     mdsapi.Version(atid),
		}, nil

	case journal.KindAnchorClient:
		atid, _ := firstVarint(fs, fAnchorClientAtid)
		return &journal.EAnchorClient{Position: pos, Atid: mdsapi.Version(atid)}, nil

	case journal.KindClientMap:
		v, _ := firstVarint(fs, fCmapVersion)
		enc, _ := firstBytes(fs, fCmapEncoded)
		return &journal.EClientMap{Position: pos, Cmapv: mdsapi.Version(v), Encoded: enc}, nil

	case journal.KindSession:
		v, _ := firstVarint(fs, fSessCmapv)
		open, _ := firstVarint(fs, fSessOpen)
		client, _ := firstVarint(fs, fSessInstC)
		addr, _ := firstBytes(fs, fSessInstA)
		return &journal.ESession{
			Position: pos,
			Cmapv:    mdsapi.Version(v),
			Open:     open != 0,
			Inst:     mdsapi.ClientInst{Client: int64(client), Addr: string(addr)},
		}, nil

	case journal.KindUpdate:
		blobBytes, _ := firstBytes(fs, fUpdateBlob)
		blob, err := unmarshalMetaBlob(blobBytes)
		if err != nil {
			return nil, err
		}
		return &journal.EUpdate{Position: pos, Blob: blob}, nil

	case journal.KindSlaveUpdate:
		client, _ := firstVarint(fs, fSlaveClient)
		tid, _ := firstVarint(fs, fSlaveTid)
		op, _ := firstVarint(fs, fSlaveOp)
		var blob journal.MetaBlob
		if blobBytes, ok := firstBytes(fs, fSlaveBlob); ok {
			blob, err = unmarshalMetaBlob(blobBytes)
			if err != nil {
				return nil, err
			}
		}
		return &journal.ESlaveUpdate{
			Position: pos,
			Blob:     blob,
			Reqid:    mdsapi.RequestID{Client: int64(client), Tid: tid},
			Op:       journal.SlaveOp(op),
			Store:    store,
		}, nil

	case journal.KindOpen:
		blobBytes, _ := firstBytes(fs, fOpenBlob)
		blob, err := unmarshalMetaBlob(blobBytes)
		if err != nil {
			return nil, err
		}
		var inos []mdsapi.InodeNo
		for _, v := range allVarint(fs, fOpenInos) {
			inos = append(inos, mdsapi.InodeNo(v))
		}
		return &journal.EOpen{Position: pos, Blob: blob, Inos: inos}, nil

	case journal.KindString:
		text, _ := firstBytes(fs, fStringText)
		return &journal.EString{Position: pos, Text: string(text)}, nil

	case journal.KindPurgeFinish:
		ino, _ := firstVarint(fs, fPurgeIno)
		newSize, _ := firstVarint(fs, fPurgeNewSize)
		return &journal.EPurgeFinish{Position: pos, Ino: mdsapi.InodeNo(ino), NewSize: newSize}, nil

	default:
		return nil, unknownKind(k)
	}
}
