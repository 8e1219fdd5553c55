// Package codec implements the length-delimited typed record framing
// spec.md §6 assigns to "the log collaborator": every journal.Event is
// encoded as a kind tag, a length, and a body of that many bytes.
// Encoding uses google.golang.org/protobuf/encoding/protowire's
// varint/length-delimited primitives directly rather than a generated
// .proto schema, because these records are the journal package's own
// tagged union and never cross a service boundary (see SPEC_FULL.md).
package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/chn0318/mdjournal/journal"
)

// putVarint appends a tagged varint field.
func putVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func putBool(b []byte, num protowire.Number, v bool) []byte {
	if v {
		return putVarint(b, num, 1)
	}
	return putVarint(b, num, 0)
}

func putBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func putString(b []byte, num protowire.Number, v string) []byte {
	return putBytes(b, num, []byte(v))
}

// field is one decoded (field number, value) pair of a
// protowire-encoded message body, as produced by readFields.
type field struct {
	num protowire.Number
	typ protowire.Type
	val []byte // for BytesType, the decoded payload; for VarintType, unused
	u64 uint64 // for VarintType
}

// readFields decodes b into a flat list of (field number, value)
// pairs. It does not interpret repetition or nesting; callers group
// same-numbered fields themselves, exactly as a hand-rolled protobuf
// reader must.
func readFields(b []byte) ([]field, error) {
	var out []field
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("codec: bad tag at offset %d", len(b))
		}
		b = b[n:]
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad varint for field %d", num)
			}
			b = b[n:]
			out = append(out, field{num: num, typ: typ, u64: v})
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad bytes for field %d", num)
			}
			b = b[n:]
			out = append(out, field{num: num, typ: typ, val: v})
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("codec: bad field %d of wire type %d", num, typ)
			}
			b = b[n:]
		}
	}
	return out, nil
}

func firstVarint(fs []field, num protowire.Number) (uint64, bool) {
	for _, f := range fs {
		if f.num == num && f.typ == protowire.VarintType {
			return f.u64, true
		}
	}
	return 0, false
}

// firstBytes returns the first bytes field numbered num. An empty
// value comes back as nil, so a nil slice that was encoded decodes to
// nil again.
func firstBytes(fs []field, num protowire.Number) ([]byte, bool) {
	for _, f := range fs {
		if f.num == num && f.typ == protowire.BytesType {
			if len(f.val) == 0 {
				return nil, true
			}
			return f.val, true
		}
	}
	return nil, false
}

func allBytes(fs []field, num protowire.Number) [][]byte {
	var out [][]byte
	for _, f := range fs {
		if f.num == num && f.typ == protowire.BytesType {
			out = append(out, f.val)
		}
	}
	return out
}

func allVarint(fs []field, num protowire.Number) []uint64 {
	var out []uint64
	for _, f := range fs {
		if f.num == num && f.typ == protowire.VarintType {
			out = append(out, f.u64)
		}
	}
	return out
}

func unknownKind(k journal.Kind) error {
	return fmt.Errorf("codec: unknown event kind %d", k)
}
