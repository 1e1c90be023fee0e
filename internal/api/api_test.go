package api

import (
	"context"
	"errors"
	"io"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agrilink/mcubus/internal/bus"
	"github.com/agrilink/mcubus/internal/store"
	mcubusv1 "github.com/agrilink/mcubus/proto/mcubus/v1"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	grpcstatus "google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func startServer(t *testing.T, svc *Service) mcubusv1.MCUBusServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	mcubusv1.RegisterMCUBusServiceServer(srv, svc)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return mcubusv1.NewMCUBusServiceClient(conn)
}

func testDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "modules.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func subscribe(t *testing.T, ctx context.Context, client mcubusv1.MCUBusServiceClient, b *bus.Bus, req *mcubusv1.SubscribeRequest) mcubusv1.MCUBusService_SubscribeEventsClient {
	t.Helper()
	before := b.Len()
	stream, err := client.SubscribeEvents(ctx, req)
	if err != nil {
		t.Fatalf("SubscribeEvents: %v", err)
	}
	waitFor(t, "subscriber registration", func() bool { return b.Len() > before })
	return stream
}

func TestSubscribeEventsStreamsInOrder(t *testing.T) {
	b := bus.New()
	client := startServer(t, NewService(b, nil, nil, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream := subscribe(t, ctx, client, b, &mcubusv1.SubscribeRequest{})

	published := []bus.Event{
		bus.NewEvent("mcu_sensor_1", bus.SensorData{Temperature: 25.5}),
		bus.NewEvent("mcu_control", bus.ControlStatus{Device: "water_pump", IsActive: true}),
		bus.NewEvent("mcu_alert", bus.Alert{Severity: "warning", Code: "LOW_WATER"}),
	}
	for _, evt := range published {
		b.Publish(evt)
	}

	for i, want := range published {
		got, err := stream.Recv()
		if err != nil {
			t.Fatalf("Recv %d: %v", i, err)
		}
		if got.GetEventId() != want.ID || got.GetModuleId() != want.ModuleID {
			t.Errorf("event %d = %s/%s, want %s/%s", i, got.GetEventId(), got.GetModuleId(), want.ID, want.ModuleID)
		}
	}
}

func TestSubscribeEventsFilters(t *testing.T) {
	b := bus.New()
	client := startServer(t, NewService(b, nil, nil, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream := subscribe(t, ctx, client, b, &mcubusv1.SubscribeRequest{
		ModuleIds:  []string{"mcu_alert"},
		EventTypes: []string{bus.KindAlert},
	})

	b.Publish(bus.NewEvent("mcu_sensor_1", bus.SensorData{}))
	b.Publish(bus.NewEvent("mcu_sensor_1", bus.Alert{Code: "WRONG_MODULE"}))
	b.Publish(bus.NewEvent("mcu_alert", bus.Alert{Code: "PUMP_ERROR"}))

	got, err := stream.Recv()
	if err != nil {
		t.Fatal(err)
	}
	if got.GetAlert().GetCode() != "PUMP_ERROR" {
		t.Errorf("got %+v, want PUMP_ERROR alert", got)
	}
}

func TestSubscribeEventsRejectsUnknownType(t *testing.T) {
	b := bus.New()
	client := startServer(t, NewService(b, nil, nil, nil))

	stream, err := client.SubscribeEvents(context.Background(), &mcubusv1.SubscribeRequest{EventTypes: []string{"weather"}})
	if err != nil {
		t.Fatal(err)
	}
	_, err = stream.Recv()
	if code := grpcstatus.Code(err); code != codes.InvalidArgument {
		t.Fatalf("Recv err = %v, want InvalidArgument", err)
	}
	if b.Len() != 0 {
		t.Errorf("Len = %d, want 0", b.Len())
	}
}

func TestSubscribeEventsDisconnectCleansUpOnce(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	b := bus.New()
	client := startServer(t, NewService(b, nil, nil, zap.New(core)))

	ctx, cancel := context.WithCancel(context.Background())
	subscribe(t, ctx, client, b, &mcubusv1.SubscribeRequest{})
	cancel()

	waitFor(t, "subscriber removal", func() bool { return b.Len() == 0 })
	waitFor(t, "disconnect log", func() bool {
		return logs.FilterMessage("subscriber disconnected").Len() == 1
	})

	// Publishing after the client is gone must not resurrect anything.
	if n := b.Publish(bus.NewEvent("m", bus.Alert{})); n != 0 {
		t.Errorf("Publish delivered to %d inboxes, want 0", n)
	}
	time.Sleep(50 * time.Millisecond)
	if n := logs.FilterMessage("subscriber disconnected").Len(); n != 1 {
		t.Errorf("disconnect logged %d times, want 1", n)
	}
	entry := logs.FilterMessage("subscriber disconnected").All()[0]
	if got := entry.ContextMap()["remaining"]; got != int64(0) {
		t.Errorf("remaining = %v, want 0", got)
	}
}

func TestSubscribeEventsEndsOnBusShutdown(t *testing.T) {
	b := bus.New()
	client := startServer(t, NewService(b, nil, nil, nil))

	stream := subscribe(t, context.Background(), client, b, &mcubusv1.SubscribeRequest{})
	if n := b.DeregisterAll(); n != 1 {
		t.Fatalf("DeregisterAll = %d, want 1", n)
	}

	_, err := stream.Recv()
	if !errors.Is(err, io.EOF) {
		t.Fatalf("Recv err = %v, want io.EOF", err)
	}
}

func TestSubscribeEventsEncodeFailure(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	b := bus.New()
	client := startServer(t, NewService(b, nil, nil, zap.New(core)))

	stream := subscribe(t, context.Background(), client, b, &mcubusv1.SubscribeRequest{})
	b.Publish(bus.Event{ID: "broken", ModuleID: "m"})

	_, err := stream.Recv()
	if code := grpcstatus.Code(err); code != codes.Internal {
		t.Fatalf("Recv err = %v, want Internal", err)
	}
	waitFor(t, "subscriber removal", func() bool { return b.Len() == 0 })
	if logs.FilterMessage("encode event").FilterLevelExact(zapcore.ErrorLevel).Len() != 1 {
		t.Error("expected one encode error log")
	}
}

func TestOtherSubscribersSurviveOneFailure(t *testing.T) {
	b := bus.New()
	client := startServer(t, NewService(b, nil, nil, nil))

	failing, cancelFailing := context.WithCancel(context.Background())
	subscribe(t, failing, client, b, &mcubusv1.SubscribeRequest{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	healthy := subscribe(t, ctx, client, b, &mcubusv1.SubscribeRequest{})

	cancelFailing()
	waitFor(t, "failed subscriber removal", func() bool { return b.Len() == 1 })

	evt := bus.NewEvent("m", bus.SensorData{Humidity: 60})
	b.Publish(evt)
	got, err := healthy.Recv()
	if err != nil {
		t.Fatal(err)
	}
	if got.GetEventId() != evt.ID {
		t.Errorf("event id = %s, want %s", got.GetEventId(), evt.ID)
	}
}

func TestModuleRegistry(t *testing.T) {
	client := startServer(t, NewService(bus.New(), testDB(t), nil, nil))
	ctx := context.Background()

	reg, err := client.Register(ctx, &mcubusv1.RegisterRequest{
		ModuleId:   "mcu_001",
		ModuleType: "greenhouse",
		Metadata:   map[string]string{"zone": "north"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reg.Success || reg.AssignedId != "mcu_001" {
		t.Errorf("Register reply = %+v", reg)
	}

	anon, err := client.Register(ctx, &mcubusv1.RegisterRequest{ModuleType: "probe"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(anon.AssignedId, "module_") || len(anon.AssignedId) != len("module_")+8 {
		t.Errorf("assigned id = %q, want module_<8 hex>", anon.AssignedId)
	}

	list, err := client.ListModules(ctx, &mcubusv1.ListModulesRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Modules) != 2 {
		t.Fatalf("got %d modules, want 2", len(list.Modules))
	}
	first := list.Modules[0]
	if first.ModuleId != "mcu_001" || first.Metadata["zone"] != "north" || first.RegisteredAt == nil {
		t.Errorf("first module = %+v", first)
	}
	if first.Peer == "" {
		t.Error("peer not recorded")
	}

	tests := []struct {
		id   string
		want bool
	}{
		{"mcu_001", true},
		{"mcu_001", false},
	}
	for _, tt := range tests {
		reply, err := client.UnRegister(ctx, &mcubusv1.UnRegisterRequest{ModuleId: tt.id})
		if err != nil {
			t.Fatal(err)
		}
		if reply.Success != tt.want {
			t.Errorf("UnRegister(%q) success = %v, want %v (%s)", tt.id, reply.Success, tt.want, reply.Message)
		}
	}
}

func TestRegisterRejectsInvalidID(t *testing.T) {
	client := startServer(t, NewService(bus.New(), testDB(t), nil, nil))

	_, err := client.Register(context.Background(), &mcubusv1.RegisterRequest{ModuleId: "bad id/with slash"})
	if code := grpcstatus.Code(err); code != codes.InvalidArgument {
		t.Errorf("Register err = %v, want InvalidArgument", err)
	}
}

func TestModuleRegistryWithoutStore(t *testing.T) {
	client := startServer(t, NewService(bus.New(), nil, nil, nil))

	_, err := client.Register(context.Background(), &mcubusv1.RegisterRequest{ModuleId: "x"})
	if code := grpcstatus.Code(err); code != codes.Unavailable {
		t.Errorf("Register err = %v, want Unavailable", err)
	}
}
