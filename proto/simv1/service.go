// ABOUTME: gRPC service plumbing for adksim.v1.SimulatorService
// ABOUTME: Hand-registered ServiceDesc, client/server interfaces, and the wire codec

package simv1

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "adksim.v1.SimulatorService"

// wireCodec bridges the hand-maintained messages onto grpc's encoding layer.
// It reports itself as the standard proto codec so generated clients in other
// languages interoperate without special configuration.
type wireCodec struct{}

// Codec returns the grpc codec for adksim.v1 messages. Servers install it
// with grpc.ForceServerCodec; NewSimulatorServiceClient applies it per call.
func Codec() encoding.Codec {
	return wireCodec{}
}

func (wireCodec) Name() string { return "proto" }

func (wireCodec) Marshal(v any) ([]byte, error) {
	m, ok := v.(Message)
	if !ok {
		return nil, fmt.Errorf("simv1 codec: cannot marshal %T", v)
	}
	return m.MarshalWire()
}

func (wireCodec) Unmarshal(data []byte, v any) error {
	m, ok := v.(Message)
	if !ok {
		return fmt.Errorf("simv1 codec: cannot unmarshal into %T", v)
	}
	return m.UnmarshalWire(data)
}

// SimulatorServiceClient is the client API for the SimulatorService.
type SimulatorServiceClient interface {
	CreateSession(ctx context.Context, in *CreateSessionRequest, opts ...grpc.CallOption) (*CreateSessionResponse, error)
	ListSessions(ctx context.Context, in *ListSessionsRequest, opts ...grpc.CallOption) (*ListSessionsResponse, error)
	SubmitRequest(ctx context.Context, in *SubmitRequestRequest, opts ...grpc.CallOption) (*SubmitRequestResponse, error)
	SubmitDecision(ctx context.Context, in *SubmitDecisionRequest, opts ...grpc.CallOption) (*SubmitDecisionResponse, error)
	Subscribe(ctx context.Context, in *SubscribeRequest, opts ...grpc.CallOption) (SimulatorService_SubscribeClient, error)
}

type simulatorServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewSimulatorServiceClient wraps a client connection. The adksim.v1 codec is
// forced on every call, so the connection needs no codec configuration.
func NewSimulatorServiceClient(cc grpc.ClientConnInterface) SimulatorServiceClient {
	return &simulatorServiceClient{cc: cc}
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.ForceCodec(wireCodec{})}, opts...)
}

func (c *simulatorServiceClient) CreateSession(ctx context.Context, in *CreateSessionRequest, opts ...grpc.CallOption) (*CreateSessionResponse, error) {
	out := new(CreateSessionResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/CreateSession", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *simulatorServiceClient) ListSessions(ctx context.Context, in *ListSessionsRequest, opts ...grpc.CallOption) (*ListSessionsResponse, error) {
	out := new(ListSessionsResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/ListSessions", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *simulatorServiceClient) SubmitRequest(ctx context.Context, in *SubmitRequestRequest, opts ...grpc.CallOption) (*SubmitRequestResponse, error) {
	out := new(SubmitRequestResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/SubmitRequest", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *simulatorServiceClient) SubmitDecision(ctx context.Context, in *SubmitDecisionRequest, opts ...grpc.CallOption) (*SubmitDecisionResponse, error) {
	out := new(SubmitDecisionResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/SubmitDecision", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *simulatorServiceClient) Subscribe(ctx context.Context, in *SubscribeRequest, opts ...grpc.CallOption) (SimulatorService_SubscribeClient, error) {
	stream, err := c.cc.NewStream(ctx, &SimulatorService_ServiceDesc.Streams[0], "/"+ServiceName+"/Subscribe", withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &simulatorServiceSubscribeClient{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// SimulatorService_SubscribeClient is the client side of the Subscribe stream.
type SimulatorService_SubscribeClient interface {
	Recv() (*SubscribeResponse, error)
	grpc.ClientStream
}

type simulatorServiceSubscribeClient struct {
	grpc.ClientStream
}

func (x *simulatorServiceSubscribeClient) Recv() (*SubscribeResponse, error) {
	m := new(SubscribeResponse)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// SimulatorServiceServer is the server API for the SimulatorService.
type SimulatorServiceServer interface {
	CreateSession(ctx context.Context, in *CreateSessionRequest) (*CreateSessionResponse, error)
	ListSessions(ctx context.Context, in *ListSessionsRequest) (*ListSessionsResponse, error)
	SubmitRequest(ctx context.Context, in *SubmitRequestRequest) (*SubmitRequestResponse, error)
	SubmitDecision(ctx context.Context, in *SubmitDecisionRequest) (*SubmitDecisionResponse, error)
	Subscribe(in *SubscribeRequest, stream SimulatorService_SubscribeServer) error
}

// SimulatorService_SubscribeServer is the server side of the Subscribe stream.
type SimulatorService_SubscribeServer interface {
	Send(*SubscribeResponse) error
	grpc.ServerStream
}

type simulatorServiceSubscribeServer struct {
	grpc.ServerStream
}

func (x *simulatorServiceSubscribeServer) Send(m *SubscribeResponse) error {
	return x.ServerStream.SendMsg(m)
}

// RegisterSimulatorServiceServer registers the service implementation on s.
// The server must be constructed with grpc.ForceServerCodec(simv1.Codec()).
func RegisterSimulatorServiceServer(s grpc.ServiceRegistrar, srv SimulatorServiceServer) {
	s.RegisterService(&SimulatorService_ServiceDesc, srv)
}

func _SimulatorService_CreateSession_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateSessionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SimulatorServiceServer).CreateSession(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/CreateSession",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SimulatorServiceServer).CreateSession(ctx, req.(*CreateSessionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _SimulatorService_ListSessions_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListSessionsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SimulatorServiceServer).ListSessions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/ListSessions",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SimulatorServiceServer).ListSessions(ctx, req.(*ListSessionsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _SimulatorService_SubmitRequest_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SubmitRequestRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SimulatorServiceServer).SubmitRequest(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/SubmitRequest",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SimulatorServiceServer).SubmitRequest(ctx, req.(*SubmitRequestRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _SimulatorService_SubmitDecision_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SubmitDecisionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SimulatorServiceServer).SubmitDecision(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/SubmitDecision",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SimulatorServiceServer).SubmitDecision(ctx, req.(*SubmitDecisionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _SimulatorService_Subscribe_Handler(srv any, stream grpc.ServerStream) error {
	m := new(SubscribeRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(SimulatorServiceServer).Subscribe(m, &simulatorServiceSubscribeServer{ServerStream: stream})
}

// SimulatorService_ServiceDesc mirrors the shape protoc-gen-go-grpc emits so
// grpc.Server and raw client streams work unmodified.
var SimulatorService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SimulatorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateSession",
			Handler:    _SimulatorService_CreateSession_Handler,
		},
		{
			MethodName: "ListSessions",
			Handler:    _SimulatorService_ListSessions_Handler,
		},
		{
			MethodName: "SubmitRequest",
			Handler:    _SimulatorService_SubmitRequest_Handler,
		},
		{
			MethodName: "SubmitDecision",
			Handler:    _SimulatorService_SubmitDecision_Handler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			Handler:       _SimulatorService_Subscribe_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "adksim/v1/simulator.proto",
}
