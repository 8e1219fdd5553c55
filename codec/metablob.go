package codec

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/chn0318/mdjournal/journal"
	"github.com/chn0318/mdjournal/mdsapi"
)

// Field numbers for the sub-messages this file marshals. Each message
// type owns its own numbering; nothing is shared across types.
const (
	fMetaLumps      protowire.Number = 1
	fMetaAtids      protowire.Number = 2
	fMetaTruncated  protowire.Number = 3
	fMetaClientReqs protowire.Number = 4

	fLumpIno      protowire.Number = 1
	fLumpFrag     protowire.Number = 2
	fLumpDirv     protowire.Number = 3
	fLumpDirty    protowire.Number = 4
	fLumpComplete protowire.Number = 5
	fLumpFull     protowire.Number = 6
	fLumpRemote   protowire.Number = 7
	fLumpNull     protowire.Number = 8

	fBitName    protowire.Number = 1
	fBitVersion protowire.Number = 2
	fBitDirty   protowire.Number = 3
	fFullIno    protowire.Number = 4
	fFullSize   protowire.Number = 5
	fFullCtime  protowire.Number = 6
	fFullRaw    protowire.Number = 7
	fFullSymTgt protowire.Number = 8
	fFullIsSym  protowire.Number = 9
	fRemoteIno  protowire.Number = 4
	// null bits use only fBitName/fBitVersion/fBitDirty.

	fTruncIno   protowire.Number = 1
	fTruncSize  protowire.Number = 2
	fTruncCtime protowire.Number = 3
	fTruncRaw   protowire.Number = 4
	fTruncNew   protowire.Number = 5

	fReqClient protowire.Number = 1
	fReqTid    protowire.Number = 2
)

func marshalMetaBlob(b []byte, m *journal.MetaBlob) []byte {
	for _, dl := range m.Lumps {
		b = putBytes(b, fMetaLumps, marshalLump(dl))
	}
	for _, atid := range m.Atids {
		b = putVarint(b, fMetaAtids, uint64(atid))
	}
	for _, t := range m.Truncated {
		b = putBytes(b, fMetaTruncated, marshalTruncation(t))
	}
	for _, r := range m.ClientReqs {
		b = putBytes(b, fMetaClientReqs, marshalRequestID(r))
	}
	return b
}

func marshalLump(dl journal.DirfragLump) []byte {
	var b []byte
	b = putVarint(b, fLumpIno, uint64(dl.ID.Ino))
	b = putVarint(b, fLumpFrag, uint64(dl.ID.Frag))
	b = putVarint(b, fLumpDirv, uint64(dl.Lump.Dirv))
	b = putBool(b, fLumpDirty, dl.Lump.Dirty)
	b = putBool(b, fLumpComplete, dl.Lump.Complete)
	for _, fb := range dl.Lump.Full {
		b = putBytes(b, fLumpFull, marshalFullBit(fb))
	}
	for _, rb := range dl.Lump.Remote {
		b = putBytes(b, fLumpRemote, marshalRemoteBit(rb))
	}
	for _, nb := range dl.Lump.Null {
		b = putBytes(b, fLumpNull, marshalNullBit(nb))
	}
	return b
}

func marshalFullBit(fb journal.FullBit) []byte {
	var b []byte
	b = putString(b, fBitName, fb.DentryName)
	b = putVarint(b, fBitVersion, uint64(fb.DentryVersion))
	b = putBool(b, fBitDirty, fb.Dirty)
	b = putVarint(b, fFullIno, uint64(fb.Inode.Ino))
	b = putVarint(b, fFullSize, fb.Inode.Size)
	b = putVarint(b, fFullCtime, uint64(fb.Inode.Ctime))
	b = putBytes(b, fFullRaw, fb.Inode.Raw)
	if fb.IsSymlink {
		b = putString(b, fFullSymTgt, fb.SymlinkTarget)
		b = putBool(b, fFullIsSym, true)
	}
	return b
}

func marshalRemoteBit(rb journal.RemoteBit) []byte {
	var b []byte
	b = putString(b, fBitName, rb.DentryName)
	b = putVarint(b, fBitVersion, uint64(rb.DentryVersion))
	b = putBool(b, fBitDirty, rb.Dirty)
	b = putVarint(b, fRemoteIno, uint64(rb.TargetIno))
	return b
}

func marshalNullBit(nb journal.NullBit) []byte {
	var b []byte
	b = putString(b, fBitName, nb.DentryName)
	b = putVarint(b, fBitVersion, uint64(nb.DentryVersion))
	b = putBool(b, fBitDirty, nb.Dirty)
	return b
}

func marshalTruncation(t journal.Truncation) []byte {
	var b []byte
	b = putVarint(b, fTruncIno, uint64(t.Inode.Ino))
	b = putVarint(b, fTruncSize, t.Inode.Size)
	b = putVarint(b, fTruncCtime, uint64(t.Inode.Ctime))
	b = putBytes(b, fTruncRaw, t.Inode.Raw)
	b = putVarint(b, fTruncNew, t.NewSize)
	return b
}

func marshalRequestID(r mdsapi.RequestID) []byte {
	var b []byte
	b = putVarint(b, fReqClient, uint64(r.Client))
	b = putVarint(b, fReqTid, r.Tid)
	return b
}

func unmarshalMetaBlob(body []byte) (journal.MetaBlob, error) {
	fs, err := readFields(body)
	if err != nil {
		return journal.MetaBlob{}, err
	}
	var m journal.MetaBlob
	for _, lb := range allBytes(fs, fMetaLumps) {
		dl, err := unmarshalLump(lb)
		if err != nil {
			return journal.MetaBlob{}, err
		}
		m.Lumps = append(m.Lumps, dl)
	}
	for _, v := range allVarint(fs, fMetaAtids) {
		m.Atids = append(m.Atids, mdsapi.Version(v))
	}
	for _, tb := range allBytes(fs, fMetaTruncated) {
		t, err := unmarshalTruncation(tb)
		if err != nil {
			return journal.MetaBlob{}, err
		}
		m.Truncated = append(m.Truncated, t)
	}
	for _, rb := range allBytes(fs, fMetaClientReqs) {
		r, err := unmarshalRequestID(rb)
		if err != nil {
			return journal.MetaBlob{}, err
		}
		m.ClientReqs = append(m.ClientReqs, r)
	}
	return m, nil
}

func unmarshalLump(body []byte) (journal.DirfragLump, error) {
	fs, err := readFields(body)
	if err != nil {
		return journal.DirfragLump{}, err
	}
	ino, _ := firstVarint(fs, fLumpIno)
	frag, _ := firstVarint(fs, fLumpFrag)
	dirv, _ := firstVarint(fs, fLumpDirv)
	dirty, _ := firstVarint(fs, fLumpDirty)
	complete, _ := firstVarint(fs, fLumpComplete)

	dl := journal.DirfragLump{
		ID: mdsapi.DirfragID{Ino: mdsapi.InodeNo(ino), Frag: uint32(frag)},
		Lump: journal.Dirlump{
			Dirv:     mdsapi.Version(dirv),
			Dirty:    dirty != 0,
			Complete: complete != 0,
		},
	}
	for _, fb := range allBytes(fs, fLumpFull) {
		bit, err := unmarshalFullBit(fb)
		if err != nil {
			return journal.DirfragLump{}, err
		}
		dl.Lump.Full = append(dl.Lump.Full, bit)
	}
	for _, rb := range allBytes(fs, fLumpRemote) {
		bit, err := unmarshalRemoteBit(rb)
		if err != nil {
			return journal.DirfragLump{}, err
		}
		dl.Lump.Remote = append(dl.Lump.Remote, bit)
	}
	for _, nb := range allBytes(fs, fLumpNull) {
		bit, err := unmarshalNullBit(nb)
		if err != nil {
			return journal.DirfragLump{}, err
		}
		dl.Lump.Null = append(dl.Lump.Null, bit)
	}
	return dl, nil
}

func unmarshalFullBit(body []byte) (journal.FullBit, error) {
	fs, err := readFields(body)
	if err != nil {
		return journal.FullBit{}, err
	}
	name, _ := firstBytes(fs, fBitName)
	version, _ := firstVarint(fs, fBitVersion)
	dirty, _ := firstVarint(fs, fBitDirty)
	ino, _ := firstVarint(fs, fFullIno)
	size, _ := firstVarint(fs, fFullSize)
	ctime, _ := firstVarint(fs, fFullCtime)
	raw, _ := firstBytes(fs, fFullRaw)
	symTgt, hasSym := firstBytes(fs, fFullSymTgt)
	isSym, _ := firstVarint(fs, fFullIsSym)

	fb := journal.FullBit{
		DentryName:    string(name),
		DentryVersion: mdsapi.Version(version),
		Dirty:         dirty != 0,
		Inode: mdsapi.InodeRecord{
			Ino:   mdsapi.InodeNo(ino),
			Size:  size,
			Ctime: int64(ctime),
			Raw:   raw,
		},
		IsSymlink: isSym != 0,
	}
	if hasSym {
		fb.SymlinkTarget = string(symTgt)
	}
	return fb, nil
}

func unmarshalRemoteBit(body []byte) (journal.RemoteBit, error) {
	fs, err := readFields(body)
	if err != nil {
		return journal.RemoteBit{}, err
	}
	name, _ := firstBytes(fs, fBitName)
	version, _ := firstVarint(fs, fBitVersion)
	dirty, _ := firstVarint(fs, fBitDirty)
	ino, _ := firstVarint(fs, fRemoteIno)
	return journal.RemoteBit{
		DentryName:    string(name),
		DentryVersion: mdsapi.Version(version),
		Dirty:         dirty != 0,
		TargetIno:     mdsapi.InodeNo(ino),
	}, nil
}

func unmarshalNullBit(body []byte) (journal.NullBit, error) {
	fs, err := readFields(body)
	if err != nil {
		return journal.NullBit{}, err
	}
	name, _ := firstBytes(fs, fBitName)
	version, _ := firstVarint(fs, fBitVersion)
	dirty, _ := firstVarint(fs, fBitDirty)
	return journal.NullBit{
		DentryName:    string(name),
		DentryVersion: mdsapi.Version(version),
		Dirty:         dirty != 0,
	}, nil
}

func unmarshalTruncation(body []byte) (journal.Truncation, error) {
	fs, err := readFields(body)
	if err != nil {
		return journal.Truncation{}, err
	}
	ino, _ := firstVarint(fs, fTruncIno)
	size, _ := firstVarint(fs, fTruncSize)
	ctime, _ := firstVarint(fs, fTruncCtime)
	raw, _ := firstBytes(fs, fTruncRaw)
	newSize, _ := firstVarint(fs, fTruncNew)
	return journal.Truncation{
		Inode: mdsapi.InodeRecord{
			Ino:   mdsapi.InodeNo(ino),
			Size:  size,
			Ctime: int64(ctime),
			Raw:   raw,
		},
		NewSize: newSize,
	}, nil
}

func unmarshalRequestID(body []byte) (mdsapi.RequestID, error) {
	fs, err := readFields(body)
	if err != nil {
		return mdsapi.RequestID{}, err
	}
	client, _ := firstVarint(fs, fReqClient)
	tid, _ := firstVarint(fs, fReqTid)
	return mdsapi.RequestID{Client: int64(client), Tid: tid}, nil
}
