// Package client dials the daemon's gRPC endpoint.
package client

import (
	"fmt"
	"net"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/agrilink/mcubus/internal/lock"
	mcubusv1 "github.com/agrilink/mcubus/proto/mcubus/v1"
)

// DefaultAddr is dialed when neither a flag nor a running daemon says otherwise.
const DefaultAddr = "localhost:50051"

// Client wraps the gRPC connection to the daemon.
type Client struct {
	conn *grpc.ClientConn
	Bus  mcubusv1.MCUBusServiceClient
	Addr string
}

// New dials addr, either host:port or unix:///path, and returns a typed
// service client. The connection is established lazily.
func New(addr string) (*Client, error) {
	conn, err := grpc.NewClient(
		Target(addr),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial daemon: %w", err)
	}

	return &Client{
		conn: conn,
		Bus:  mcubusv1.NewMCUBusServiceClient(conn),
		Addr: addr,
	}, nil
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Target turns a listen address into a dial target. A listen address without
// host (":50051") is dialed on localhost.
func Target(addr string) string {
	if strings.HasPrefix(addr, "unix://") {
		return addr
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}

// ResolveAddr picks the daemon address: the flag when set, else the address
// recorded by the daemon holding dataDir's lock, else DefaultAddr.
func ResolveAddr(flagAddr, dataDir string) string {
	if flagAddr != "" {
		return flagAddr
	}
	if h, err := lock.ReadHolder(dataDir); err == nil && h.GRPCAddr != "" {
		return h.GRPCAddr
	}
	return DefaultAddr
}
