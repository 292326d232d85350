package committer

import (
	"context"

	"google.golang.org/grpc"
)

// serviceName is the fully-qualified gRPC service name this package
// registers and dials, in place of a .proto-declared package.service.
const serviceName = "committer.Committer"

// committerServer is the interface CommitterServer implements; kept
// unexported and tiny since RegisterCommitterServer is the only
// consumer.
type committerServer interface {
	CommitPartialSignature(context.Context, *CommitPartialSignatureRequest) (*CommitPartialSignatureResponse, error)
}

// serviceDesc mirrors what protoc-gen-go-grpc would emit for a
// single-method service: one streaming-free unary RPC, dispatched
// through the handler below.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*committerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CommitPartialSignature",
			Handler:    commitPartialSignatureHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "committer.proto",
}

func commitPartialSignatureHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CommitPartialSignatureRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(committerServer).CommitPartialSignature(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + serviceName + "/CommitPartialSignature",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(committerServer).CommitPartialSignature(ctx, req.(*CommitPartialSignatureRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// registerCommitterServer wires srv into s the way a generated
// RegisterCommitterServer function would.
func registerCommitterServer(s *grpc.Server, srv committerServer) {
	s.RegisterService(&serviceDesc, srv)
}

// invokeCommitPartialSignature performs the client-side unary call
// against conn, equivalent to a generated client stub's single method.
func invokeCommitPartialSignature(ctx context.Context, conn *grpc.ClientConn, req *CommitPartialSignatureRequest) (*CommitPartialSignatureResponse, error) {
	out := new(CommitPartialSignatureResponse)
	err := conn.Invoke(ctx, "/"+serviceName+"/CommitPartialSignature", req, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}
