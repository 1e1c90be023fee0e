package mcubusv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/dynamicpb"
)

const (
	MCUBusService_Register_FullMethodName        = "/mcubus.v1.MCUBusService/Register"
	MCUBusService_UnRegister_FullMethodName      = "/mcubus.v1.MCUBusService/UnRegister"
	MCUBusService_ListModules_FullMethodName     = "/mcubus.v1.MCUBusService/ListModules"
	MCUBusService_SubscribeEvents_FullMethodName = "/mcubus.v1.MCUBusService/SubscribeEvents"
)

// MCUBusServiceClient is the client API for MCUBusService.
type MCUBusServiceClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterReply, error)
	UnRegister(ctx context.Context, in *UnRegisterRequest, opts ...grpc.CallOption) (*UnRegisterReply, error)
	ListModules(ctx context.Context, in *ListModulesRequest, opts ...grpc.CallOption) (*ListModulesReply, error)
	SubscribeEvents(ctx context.Context, in *SubscribeRequest, opts ...grpc.CallOption) (MCUBusService_SubscribeEventsClient, error)
}

type mCUBusServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewMCUBusServiceClient(cc grpc.ClientConnInterface) MCUBusServiceClient {
	return &mCUBusServiceClient{cc}
}

func (c *mCUBusServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterReply, error) {
	out := dynamicpb.NewMessage(registerReplyDesc)
	if err := c.cc.Invoke(ctx, MCUBusService_Register_FullMethodName, in.toDynamic(), out, opts...); err != nil {
		return nil, err
	}
	return registerReplyFromDynamic(out), nil
}

func (c *mCUBusServiceClient) UnRegister(ctx context.Context, in *UnRegisterRequest, opts ...grpc.CallOption) (*UnRegisterReply, error) {
	out := dynamicpb.NewMessage(unRegisterReplyDesc)
	if err := c.cc.Invoke(ctx, MCUBusService_UnRegister_FullMethodName, in.toDynamic(), out, opts...); err != nil {
		return nil, err
	}
	return unRegisterReplyFromDynamic(out), nil
}

func (c *mCUBusServiceClient) ListModules(ctx context.Context, in *ListModulesRequest, opts ...grpc.CallOption) (*ListModulesReply, error) {
	out := dynamicpb.NewMessage(listModulesReplyDesc)
	if err := c.cc.Invoke(ctx, MCUBusService_ListModules_FullMethodName, in.toDynamic(), out, opts...); err != nil {
		return nil, err
	}
	return listModulesReplyFromDynamic(out), nil
}

func (c *mCUBusServiceClient) SubscribeEvents(ctx context.Context, in *SubscribeRequest, opts ...grpc.CallOption) (MCUBusService_SubscribeEventsClient, error) {
	stream, err := c.cc.NewStream(ctx, &MCUBusService_ServiceDesc.Streams[0], MCUBusService_SubscribeEvents_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &mCUBusServiceSubscribeEventsClient{stream}
	if err := x.ClientStream.SendMsg(in.toDynamic()); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// MCUBusService_SubscribeEventsClient is the receiving side of SubscribeEvents.
type MCUBusService_SubscribeEventsClient interface {
	Recv() (*BusEvent, error)
	grpc.ClientStream
}

type mCUBusServiceSubscribeEventsClient struct {
	grpc.ClientStream
}

func (x *mCUBusServiceSubscribeEventsClient) Recv() (*BusEvent, error) {
	m := dynamicpb.NewMessage(busEventDesc)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return busEventFromDynamic(m), nil
}

// MCUBusServiceServer is the server API for MCUBusService.
type MCUBusServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterReply, error)
	UnRegister(context.Context, *UnRegisterRequest) (*UnRegisterReply, error)
	ListModules(context.Context, *ListModulesRequest) (*ListModulesReply, error)
	SubscribeEvents(*SubscribeRequest, MCUBusService_SubscribeEventsServer) error
	mustEmbedUnimplementedMCUBusServiceServer()
}

// UnimplementedMCUBusServiceServer must be embedded by implementations.
type UnimplementedMCUBusServiceServer struct{}

func (UnimplementedMCUBusServiceServer) Register(context.Context, *RegisterRequest) (*RegisterReply, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}

func (UnimplementedMCUBusServiceServer) UnRegister(context.Context, *UnRegisterRequest) (*UnRegisterReply, error) {
	return nil, status.Error(codes.Unimplemented, "method UnRegister not implemented")
}

func (UnimplementedMCUBusServiceServer) ListModules(context.Context, *ListModulesRequest) (*ListModulesReply, error) {
	return nil, status.Error(codes.Unimplemented, "method ListModules not implemented")
}

func (UnimplementedMCUBusServiceServer) SubscribeEvents(*SubscribeRequest, MCUBusService_SubscribeEventsServer) error {
	return status.Error(codes.Unimplemented, "method SubscribeEvents not implemented")
}

func (UnimplementedMCUBusServiceServer) mustEmbedUnimplementedMCUBusServiceServer() {}

func RegisterMCUBusServiceServer(s grpc.ServiceRegistrar, srv MCUBusServiceServer) {
	s.RegisterService(&MCUBusService_ServiceDesc, srv)
}

func _MCUBusService_Register_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := dynamicpb.NewMessage(registerRequestDesc)
	if err := dec(in); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req any) (any, error) {
		reply, err := srv.(MCUBusServiceServer).Register(ctx, req.(*RegisterRequest))
		if err != nil {
			return nil, err
		}
		return reply.toDynamic(), nil
	}
	req := registerRequestFromDynamic(in)
	if interceptor == nil {
		return handler(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MCUBusService_Register_FullMethodName}
	return interceptor(ctx, req, info, handler)
}

func _MCUBusService_UnRegister_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := dynamicpb.NewMessage(unRegisterRequestDesc)
	if err := dec(in); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req any) (any, error) {
		reply, err := srv.(MCUBusServiceServer).UnRegister(ctx, req.(*UnRegisterRequest))
		if err != nil {
			return nil, err
		}
		return reply.toDynamic(), nil
	}
	req := unRegisterRequestFromDynamic(in)
	if interceptor == nil {
		return handler(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MCUBusService_UnRegister_FullMethodName}
	return interceptor(ctx, req, info, handler)
}

func _MCUBusService_ListModules_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := dynamicpb.NewMessage(listModulesRequestDesc)
	if err := dec(in); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req any) (any, error) {
		reply, err := srv.(MCUBusServiceServer).ListModules(ctx, req.(*ListModulesRequest))
		if err != nil {
			return nil, err
		}
		return reply.toDynamic(), nil
	}
	req := &ListModulesRequest{}
	if interceptor == nil {
		return handler(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MCUBusService_ListModules_FullMethodName}
	return interceptor(ctx, req, info, handler)
}

func _MCUBusService_SubscribeEvents_Handler(srv any, stream grpc.ServerStream) error {
	in := dynamicpb.NewMessage(subscribeRequestDesc)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(MCUBusServiceServer).SubscribeEvents(subscribeRequestFromDynamic(in), &mCUBusServiceSubscribeEventsServer{stream})
}

// MCUBusService_SubscribeEventsServer is the sending side of SubscribeEvents.
type MCUBusService_SubscribeEventsServer interface {
	Send(*BusEvent) error
	grpc.ServerStream
}

type mCUBusServiceSubscribeEventsServer struct {
	grpc.ServerStream
}

func (x *mCUBusServiceSubscribeEventsServer) Send(m *BusEvent) error {
	return x.ServerStream.SendMsg(m.toDynamic())
}

// MCUBusService_ServiceDesc is the grpc.ServiceDesc for MCUBusService.
var MCUBusService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "mcubus.v1.MCUBusService",
	HandlerType: (*MCUBusServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Register",
			Handler:    _MCUBusService_Register_Handler,
		},
		{
			MethodName: "UnRegister",
			Handler:    _MCUBusService_UnRegister_Handler,
		},
		{
			MethodName: "ListModules",
			Handler:    _MCUBusService_ListModules_Handler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "SubscribeEvents",
			Handler:       _MCUBusService_SubscribeEvents_Handler,
			ServerStreams: true,
		},
	},
	Metadata: FileName,
}
