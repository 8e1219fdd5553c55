// Package adminserver exposes the trimmer and journal's internal
// state over gRPC for operator introspection: trim/tail position and
// a manual force-expire trigger. Adapted from storageserver.Server —
// the same "small struct wrapping the collaborators it fronts, one
// method per RPC" shape — retargeted from MultiPut/MultiGet over a
// shared log and map service to Status/ForceExpire over a journal and
// trimmer.
package adminserver

import (
	"context"
	"log"

	"google.golang.org/grpc"

	"github.com/chn0318/mdjournal/trimmer"
)

// Journal is the subset of physicallog.Journal Server reports on.
type Journal interface {
	Tail() int64
	IsCapped() bool
}

// Server is the admin/introspection service implementation.
type Server struct {
	Log     Journal
	Trimmer *trimmer.Trimmer
}

// New returns a Server fronting log and t.
func New(log Journal, t *trimmer.Trimmer) *Server {
	return &Server{Log: log, Trimmer: t}
}

// Status reports the trimmer's current position alongside the
// journal's tail and capped state.
func (s *Server) Status(ctx context.Context, req *StatusRequest) (*StatusResponse, error) {
	return &StatusResponse{
		TrimPosition: s.Trimmer.Pos,
		TailPosition: s.Log.Tail(),
		Capped:       s.Log.IsCapped(),
	}, nil
}

// ForceExpire runs one extra trimmer step immediately, using
// req.MaxEntries as a temporary batch-size override (0 keeps the
// trimmer's configured batch size).
func (s *Server) ForceExpire(ctx context.Context, req *ForceExpireRequest) (*ForceExpireResponse, error) {
	orig := s.Trimmer.Batch
	if req.MaxEntries > 0 {
		s.Trimmer.Batch = req.MaxEntries
		defer func() { s.Trimmer.Batch = orig }()
	}
	trimmed, err := s.Trimmer.Step()
	if err != nil {
		log.Printf("adminserver: force-expire step failed: %v", err)
		return nil, err
	}
	return &ForceExpireResponse{Trimmed: trimmed}, nil
}

func statusHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(StatusRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).Status(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/mdjournal.Admin/Status"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(*Server).Status(ctx, req.(*StatusRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func forceExpireHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(ForceExpireRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).ForceExpire(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/mdjournal.Admin/ForceExpire"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(*Server).ForceExpire(ctx, req.(*ForceExpireRequest))
	}
	return interceptor(ctx, req, info, handler)
}

// ServiceDesc is registered against a *grpc.Server by hand rather than
// generated by protoc, since there is no .proto schema behind these
// messages (see the codec.go doc comment). grpc's registration API
// only needs a ServiceDesc naming its methods and handlers; it does
// not require descriptor/reflection metadata for unary RPCs to work.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "mdjournal.Admin",
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Status", Handler: statusHandler},
		{MethodName: "ForceExpire", Handler: forceExpireHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mdjournal/admin",
}

// Register wires s into grpcServer under ServiceDesc.
func Register(grpcServer *grpc.Server, s *Server) {
	grpcServer.RegisterService(&ServiceDesc, s)
}

// NewGRPCServer returns a *grpc.Server forced onto the JSON codec, so
// callers don't need to know that content-subtype negotiation detail
// to stand up an admin listener.
func NewGRPCServer() *grpc.Server {
	return grpc.NewServer(grpc.ForceServerCodec(jsonCodec{}))
}
