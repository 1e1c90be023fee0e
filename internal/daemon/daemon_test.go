package daemon

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/agrilink/mcubus/internal/api"
	"github.com/agrilink/mcubus/internal/bus"
	"github.com/agrilink/mcubus/internal/config"
	"github.com/agrilink/mcubus/internal/lock"
	"github.com/agrilink/mcubus/internal/status"
	mcubusv1 "github.com/agrilink/mcubus/proto/mcubus/v1"
)

// testConfig returns a config rooted in a short /tmp directory (macOS caps
// Unix socket paths at 104 chars).
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir, err := os.MkdirTemp("/tmp", "mcubus-test-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	cfg := config.Default()
	cfg.DataDir = dir
	cfg.GRPC.Addr = UnixPrefix + filepath.Join(dir, "d.sock")
	cfg.HTTP.Addr = "127.0.0.1:0"
	cfg.Log.Level = "warn"
	return cfg
}

func dial(t *testing.T, addr string) mcubusv1.MCUBusServiceClient {
	t.Helper()
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return mcubusv1.NewMCUBusServiceClient(conn)
}

func TestDaemonLifecycle(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mock.Enabled = true
	cfg.Mock.SensorInterval = config.Duration{Duration: 20 * time.Millisecond}
	cfg.Mock.ControlInterval = config.Duration{Duration: time.Hour}
	cfg.Mock.AlertInterval = config.Duration{Duration: time.Hour}

	var (
		b       *bus.Bus
		machine *status.Machine
		srv     *Server
	)
	app := fxtest.New(t,
		Module(Params{Config: cfg}),
		fx.Populate(&b, &machine, &srv),
	)
	app.RequireStart()

	if got := machine.Current(); got != status.Serving {
		t.Fatalf("state = %s, want SERVING", got)
	}
	holder, err := lock.ReadHolder(cfg.DataDir)
	if err != nil {
		t.Fatal(err)
	}
	if holder.PID != os.Getpid() || holder.GRPCAddr != cfg.GRPC.Addr {
		t.Errorf("lock holder = %+v", holder)
	}

	client := dial(t, srv.Addr())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reg, err := client.Register(ctx, &mcubusv1.RegisterRequest{ModuleType: "greenhouse"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !reg.Success || reg.AssignedId == "" {
		t.Errorf("register reply = %+v", reg)
	}

	stream, err := client.SubscribeEvents(ctx, &mcubusv1.SubscribeRequest{
		EventTypes: []string{bus.KindSensorData},
	})
	if err != nil {
		t.Fatalf("SubscribeEvents: %v", err)
	}
	evt, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if evt.GetModuleId() != cfg.Mock.SensorModule || evt.GetSensorData() == nil {
		t.Errorf("event = %s/%T, want mock sensor data", evt.GetModuleId(), evt.GetPayload())
	}

	app.RequireStop()

	// Drain whatever the generator queued before shutdown; the stream must
	// then end cleanly.
	for {
		if _, err = stream.Recv(); err != nil {
			break
		}
	}
	if !errors.Is(err, io.EOF) {
		t.Errorf("stream ended with %v, want EOF", err)
	}
	if got := machine.Current(); got != status.Stopped {
		t.Errorf("state after stop = %s, want STOPPED", got)
	}
	if b.Len() != 0 {
		t.Errorf("subscribers after stop = %d, want 0", b.Len())
	}

	lk, err := lock.Acquire(cfg.DataDir, cfg.GRPC.Addr)
	if err != nil {
		t.Fatalf("lock not released: %v", err)
	}
	_ = lk.Release()
}

func TestSecondDaemonRefused(t *testing.T) {
	cfg := testConfig(t)
	lk, err := lock.Acquire(cfg.DataDir, cfg.GRPC.Addr)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = lk.Release() }()

	app := fx.New(Module(Params{Config: cfg}), fx.NopLogger)
	var held *lock.HeldError
	if err := app.Err(); !errors.As(err, &held) {
		t.Fatalf("app error = %v, want HeldError", err)
	}
	if held.PID != os.Getpid() {
		t.Errorf("held by %d, want %d", held.PID, os.Getpid())
	}
}

func TestInvalidConfigRefused(t *testing.T) {
	cfg := testConfig(t)
	cfg.Bus.FanOut = "broadcast"

	app := fx.New(Module(Params{Config: cfg}), fx.NopLogger)
	if app.Err() == nil {
		t.Fatal("app should fail with an invalid bus config")
	}
}

// TestNewServerUnixSocket verifies NewServer binds the configured socket with
// owner-only permissions and removes it on Stop.
func TestNewServerUnixSocket(t *testing.T) {
	cfg := testConfig(t)
	socketPath := filepath.Join(cfg.DataDir, "d.sock")

	srv, err := NewServer(cfg, zap.NewNop(), api.NewService(bus.New(), nil, nil, nil))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	info, err := os.Stat(socketPath)
	if err != nil {
		t.Fatalf("socket not created at %s: %v", socketPath, err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("socket perm = %o, want 600", perm)
	}
	if got := srv.Addr(); got != cfg.GRPC.Addr {
		t.Errorf("Addr() = %q, want %q", got, cfg.GRPC.Addr)
	}

	srv.Stop(context.Background())
	if _, err := os.Stat(socketPath); !os.IsNotExist(err) {
		t.Errorf("socket still present after Stop: %v", err)
	}
}

func TestNewServerTCP(t *testing.T) {
	cfg := testConfig(t)
	cfg.GRPC.Addr = "127.0.0.1:0"

	b := bus.New()
	srv, err := NewServer(cfg, zap.NewNop(), api.NewService(b, nil, nil, nil))
	if err != nil {
		t.Fatal(err)
	}
	go func() { _ = srv.Start() }()
	defer srv.Stop(context.Background())

	client := dial(t, srv.Addr())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = client.ListModules(ctx, &mcubusv1.ListModulesRequest{})
	if err == nil {
		t.Fatal("ListModules without a store should fail")
	}
}
