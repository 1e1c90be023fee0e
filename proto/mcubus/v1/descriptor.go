// Package mcubusv1 defines the mcubus.v1 wire schema and the MCUBusService
// gRPC service. The file descriptor is assembled in Go and registered with
// the global registry at init, so grpc reflection can serve it and any
// protobuf client can be generated from it.
package mcubusv1

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const (
	// FileName is the registered path of the schema.
	FileName = "mcubus/v1/mcubus.proto"
	// Package is the protobuf package name.
	Package = "mcubus.v1"
)

// File is the resolved mcubus.v1 file descriptor.
var File protoreflect.FileDescriptor

var (
	busEventDesc           protoreflect.MessageDescriptor
	sensorDataDesc         protoreflect.MessageDescriptor
	controlStatusDesc      protoreflect.MessageDescriptor
	alertEventDesc         protoreflect.MessageDescriptor
	subscribeRequestDesc   protoreflect.MessageDescriptor
	registerRequestDesc    protoreflect.MessageDescriptor
	registerReplyDesc      protoreflect.MessageDescriptor
	unRegisterRequestDesc  protoreflect.MessageDescriptor
	unRegisterReplyDesc    protoreflect.MessageDescriptor
	listModulesRequestDesc protoreflect.MessageDescriptor
	listModulesReplyDesc   protoreflect.MessageDescriptor
	moduleInfoDesc         protoreflect.MessageDescriptor
)

func init() {
	// The Timestamp dependency must be in the global registry before the
	// file is resolved.
	_ = timestamppb.File_google_protobuf_timestamp_proto

	fd, err := protodesc.NewFile(fileDescriptorProto(), protoregistry.GlobalFiles)
	if err != nil {
		panic(fmt.Sprintf("mcubusv1: build descriptor: %v", err))
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(fmt.Sprintf("mcubusv1: register descriptor: %v", err))
	}
	File = fd

	msgs := fd.Messages()
	busEventDesc = msgs.ByName("BusEvent")
	sensorDataDesc = msgs.ByName("SensorData")
	controlStatusDesc = msgs.ByName("ControlStatus")
	alertEventDesc = msgs.ByName("AlertEvent")
	subscribeRequestDesc = msgs.ByName("SubscribeRequest")
	registerRequestDesc = msgs.ByName("RegisterRequest")
	registerReplyDesc = msgs.ByName("RegisterReply")
	unRegisterRequestDesc = msgs.ByName("UnRegisterRequest")
	unRegisterReplyDesc = msgs.ByName("UnRegisterReply")
	listModulesRequestDesc = msgs.ByName("ListModulesRequest")
	listModulesReplyDesc = msgs.ByName("ListModulesReply")
	moduleInfoDesc = msgs.ByName("ModuleInfo")
}

type fieldType = descriptorpb.FieldDescriptorProto_Type

const (
	typeDouble  = descriptorpb.FieldDescriptorProto_TYPE_DOUBLE
	typeBool    = descriptorpb.FieldDescriptorProto_TYPE_BOOL
	typeString  = descriptorpb.FieldDescriptorProto_TYPE_STRING
	typeMessage = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
)

func scalar(name string, number int32, typ fieldType) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
}

func repeated(name string, number int32, typ fieldType) *descriptorpb.FieldDescriptorProto {
	f := scalar(name, number, typ)
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	return f
}

func message(name string, number int32, typeName string) *descriptorpb.FieldDescriptorProto {
	f := scalar(name, number, typeMessage)
	f.TypeName = proto.String(typeName)
	return f
}

func inOneof(f *descriptorpb.FieldDescriptorProto, index int32) *descriptorpb.FieldDescriptorProto {
	f.OneofIndex = proto.Int32(index)
	return f
}

func fileDescriptorProto() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String(FileName),
		Package:    proto.String(Package),
		Syntax:     proto.String("proto3"),
		Dependency: []string{"google/protobuf/timestamp.proto"},
		Options: &descriptorpb.FileOptions{
			GoPackage: proto.String("github.com/agrilink/mcubus/proto/mcubus/v1;mcubusv1"),
		},
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("BusEvent"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalar("event_id", 1, typeString),
					scalar("module_id", 2, typeString),
					message("timestamp", 3, ".google.protobuf.Timestamp"),
					inOneof(message("sensor_data", 10, ".mcubus.v1.SensorData"), 0),
					inOneof(message("control_status", 11, ".mcubus.v1.ControlStatus"), 0),
					inOneof(message("alert", 12, ".mcubus.v1.AlertEvent"), 0),
				},
				OneofDecl: []*descriptorpb.OneofDescriptorProto{
					{Name: proto.String("payload")},
				},
			},
			{
				Name: proto.String("SensorData"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalar("temperature", 1, typeDouble),
					scalar("humidity", 2, typeDouble),
					scalar("soil_moisture", 3, typeDouble),
					scalar("light_level", 4, typeDouble),
					scalar("water_level", 5, typeDouble),
					scalar("ph_value", 6, typeDouble),
				},
			},
			{
				Name: proto.String("ControlStatus"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalar("device", 1, typeString),
					scalar("is_active", 2, typeBool),
					scalar("power_level", 3, typeDouble),
					scalar("reason", 4, typeString),
				},
			},
			{
				Name: proto.String("AlertEvent"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalar("severity", 1, typeString),
					scalar("code", 2, typeString),
					scalar("message", 3, typeString),
				},
			},
			{
				Name: proto.String("SubscribeRequest"),
				Field: []*descriptorpb.FieldDescriptorProto{
					repeated("module_ids", 1, typeString),
					repeated("event_types", 2, typeString),
				},
			},
			{
				Name: proto.String("RegisterRequest"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalar("module_id", 1, typeString),
					scalar("module_type", 2, typeString),
					mapField("metadata", 3, ".mcubus.v1.RegisterRequest.MetadataEntry"),
				},
				NestedType: []*descriptorpb.DescriptorProto{stringMapEntry("MetadataEntry")},
			},
			{
				Name: proto.String("RegisterReply"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalar("success", 1, typeBool),
					scalar("assigned_id", 2, typeString),
					scalar("message", 3, typeString),
				},
			},
			{
				Name: proto.String("UnRegisterRequest"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalar("module_id", 1, typeString),
				},
			},
			{
				Name: proto.String("UnRegisterReply"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalar("success", 1, typeBool),
					scalar("message", 2, typeString),
				},
			},
			{
				Name: proto.String("ListModulesRequest"),
			},
			{
				Name: proto.String("ModuleInfo"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalar("module_id", 1, typeString),
					scalar("module_type", 2, typeString),
					mapField("metadata", 3, ".mcubus.v1.ModuleInfo.MetadataEntry"),
					scalar("peer", 4, typeString),
					message("registered_at", 5, ".google.protobuf.Timestamp"),
				},
				NestedType: []*descriptorpb.DescriptorProto{stringMapEntry("MetadataEntry")},
			},
			{
				Name: proto.String("ListModulesReply"),
				Field: []*descriptorpb.FieldDescriptorProto{
					func() *descriptorpb.FieldDescriptorProto {
						f := message("modules", 1, ".mcubus.v1.ModuleInfo")
						f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
						return f
					}(),
				},
			},
		},
		Service: []*descriptorpb.ServiceDescriptorProto{
			{
				Name: proto.String("MCUBusService"),
				Method: []*descriptorpb.MethodDescriptorProto{
					method("Register", "RegisterRequest", "RegisterReply", false),
					method("UnRegister", "UnRegisterRequest", "UnRegisterReply", false),
					method("ListModules", "ListModulesRequest", "ListModulesReply", false),
					method("SubscribeEvents", "SubscribeRequest", "BusEvent", true),
				},
			},
		},
	}
}

func mapField(name string, number int32, entryType string) *descriptorpb.FieldDescriptorProto {
	f := message(name, number, entryType)
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	return f
}

func stringMapEntry(name string) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{
		Name: proto.String(name),
		Field: []*descriptorpb.FieldDescriptorProto{
			scalar("key", 1, typeString),
			scalar("value", 2, typeString),
		},
		Options: &descriptorpb.MessageOptions{MapEntry: proto.Bool(true)},
	}
}

func method(name, in, out string, serverStreaming bool) *descriptorpb.MethodDescriptorProto {
	m := &descriptorpb.MethodDescriptorProto{
		Name:       proto.String(name),
		InputType:  proto.String("." + Package + "." + in),
		OutputType: proto.String("." + Package + "." + out),
	}
	if serverStreaming {
		m.ServerStreaming = proto.Bool(true)
	}
	return m
}
