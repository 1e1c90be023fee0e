package client

import (
	"testing"

	"github.com/agrilink/mcubus/internal/lock"
)

func TestTarget(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{":50051", "localhost:50051"},
		{"0.0.0.0:50051", "localhost:50051"},
		{"[::]:50051", "localhost:50051"},
		{"10.0.0.5:7000", "10.0.0.5:7000"},
		{"unix:///tmp/mcubus.sock", "unix:///tmp/mcubus.sock"},
		{"dns:///bus.internal:50051", "dns:///bus.internal:50051"},
	}
	for _, tt := range tests {
		if got := Target(tt.addr); got != tt.want {
			t.Errorf("Target(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestResolveAddr(t *testing.T) {
	dir := t.TempDir()

	if got := ResolveAddr("", dir); got != DefaultAddr {
		t.Errorf("no daemon: got %q, want %q", got, DefaultAddr)
	}

	lk, err := lock.Acquire(dir, "unix:///tmp/d.sock")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = lk.Release() }()

	if got := ResolveAddr("", dir); got != "unix:///tmp/d.sock" {
		t.Errorf("running daemon: got %q", got)
	}
	if got := ResolveAddr("localhost:1", dir); got != "localhost:1" {
		t.Errorf("flag: got %q", got)
	}
}

func TestNewClient(t *testing.T) {
	c, err := New("127.0.0.1:1")
	if err != nil {
		t.Fatal(err)
	}
	if c.Bus == nil {
		t.Error("Bus client not set")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
