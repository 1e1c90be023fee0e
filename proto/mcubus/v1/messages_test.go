package mcubusv1

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func TestDescriptorRegistered(t *testing.T) {
	d, err := protoregistry.GlobalFiles.FindDescriptorByName("mcubus.v1.MCUBusService")
	if err != nil {
		t.Fatalf("find service: %v", err)
	}
	if got := d.ParentFile().Path(); got != FileName {
		t.Errorf("service file = %q, want %q", got, FileName)
	}
	for _, m := range MCUBusService_ServiceDesc.Methods {
		if File.Services().Get(0).Methods().ByName(protoreflect.Name(m.MethodName)) == nil {
			t.Errorf("method %s missing from descriptor", m.MethodName)
		}
	}
}

func TestBusEventBinaryRoundTrip(t *testing.T) {
	in := &BusEvent{
		EventId:   "evt-1",
		ModuleId:  "mcu_001",
		Timestamp: &timestamppb.Timestamp{Seconds: 1700000000, Nanos: 42},
		Payload: &BusEvent_ControlStatus{ControlStatus: &ControlStatus{
			Device:     "water_pump",
			IsActive:   true,
			PowerLevel: 85.5,
			Reason:     "Auto irrigation",
		}},
	}
	b, err := in.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out BusEvent
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(in, &out, protocmp.Transform()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestBusEventJSON(t *testing.T) {
	in := &BusEvent{
		EventId:  "evt-2",
		ModuleId: "mcu_002",
		Payload:  &BusEvent_SensorData{SensorData: &SensorData{Temperature: 25.5, PhValue: 6.8}},
	}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"sensorData"`) {
		t.Errorf("json %s has no sensorData field", b)
	}

	var out BusEvent
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := out.GetSensorData()
	if got == nil || got.Temperature != 25.5 || got.PhValue != 6.8 {
		t.Errorf("sensor data = %+v", got)
	}
	if out.GetTimestamp() != nil {
		t.Errorf("timestamp = %v, want nil", out.GetTimestamp())
	}
}

func TestBusEventEmptyPayload(t *testing.T) {
	b, err := (&BusEvent{EventId: "x"}).Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out BusEvent
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.GetPayload() != nil {
		t.Errorf("payload = %T, want nil", out.GetPayload())
	}
}

func TestListModulesReplyConversion(t *testing.T) {
	in := &ListModulesReply{Modules: []*ModuleInfo{
		{ModuleId: "a", ModuleType: "greenhouse", Metadata: map[string]string{"zone": "north"}},
		{ModuleId: "b", RegisteredAt: timestamppb.New(timestamppb.Now().AsTime())},
	}}
	out := listModulesReplyFromDynamic(in.toDynamic())
	if diff := cmp.Diff(in, out, protocmp.Transform()); diff != "" {
		t.Errorf("conversion mismatch (-want +got):\n%s", diff)
	}
}
