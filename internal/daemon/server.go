package daemon

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/agrilink/mcubus/internal/api"
	"github.com/agrilink/mcubus/internal/config"
	mcubusv1 "github.com/agrilink/mcubus/proto/mcubus/v1"
)

// UnixPrefix marks a gRPC address as a Unix domain socket path.
const UnixPrefix = "unix://"

// Server manages the gRPC server lifecycle.
type Server struct {
	grpcServer *grpc.Server
	listener   net.Listener
	socketPath string
	logger     *zap.Logger
}

// NewServer binds the configured gRPC address, either host:port or
// unix:///path, and registers MCUBusService plus reflection.
func NewServer(cfg *config.Config, logger *zap.Logger, svc *api.Service) (*Server, error) {
	listener, socketPath, err := listen(cfg.GRPC.Addr)
	if err != nil {
		return nil, err
	}

	srv := grpc.NewServer()
	mcubusv1.RegisterMCUBusServiceServer(srv, svc)
	reflection.Register(srv)

	return &Server{
		grpcServer: srv,
		listener:   listener,
		socketPath: socketPath,
		logger:     logger,
	}, nil
}

func listen(addr string) (net.Listener, string, error) {
	socketPath, ok := strings.CutPrefix(addr, UnixPrefix)
	if !ok {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, "", fmt.Errorf("listen %s: %w", addr, err)
		}
		return ln, "", nil
	}

	// Clean stale socket if it exists.
	if _, err := os.Stat(socketPath); err == nil {
		_ = os.Remove(socketPath)
	}

	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, "", fmt.Errorf("listen unix socket: %w", err)
	}

	// Set socket permissions to 0600.
	if err := os.Chmod(socketPath, 0600); err != nil {
		_ = ln.Close()
		return nil, "", fmt.Errorf("chmod socket: %w", err)
	}
	return ln, socketPath, nil
}

// Addr returns the address clients dial.
func (s *Server) Addr() string {
	if s.socketPath != "" {
		return UnixPrefix + s.socketPath
	}
	return s.listener.Addr().String()
}

// Start begins serving gRPC requests. Blocks until stopped.
func (s *Server) Start() error {
	s.logger.Info("gRPC server starting", zap.String("addr", s.Addr()))
	return s.grpcServer.Serve(s.listener)
}

// Stop drains in-flight calls, falling back to a hard stop when ctx ends
// first, and removes the socket file.
func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("gRPC server stopping")
	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("graceful stop timed out, forcing")
		s.grpcServer.Stop()
		<-done
	}
	if s.socketPath != "" {
		_ = os.Remove(s.socketPath)
	}
}
