package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/agrilink/mcubus/internal/codec"
	"github.com/agrilink/mcubus/internal/paths"
	"github.com/agrilink/mcubus/internal/tui"
	"github.com/agrilink/mcubus/internal/tui/client"
	mcubusv1 "github.com/agrilink/mcubus/proto/mcubus/v1"
)

func main() {
	addrFlag := flag.String("addr", "", "daemon gRPC address, host:port or unix:///path (default: from the running daemon)")
	dataDirFlag := flag.String("data-dir", "", "daemon data directory used to find its address (default ~/.mcubus)")
	modulesFlag := flag.String("m", "", "comma-separated module ids to show (default all)")
	typesFlag := flag.String("t", "", "comma-separated event types: "+strings.Join(codec.EventTypes, ", "))
	flag.Parse()

	dataDir := *dataDirFlag
	if dataDir == "" {
		dataDir = paths.BaseDir()
	}
	addr := client.ResolveAddr(*addrFlag, dataDir)

	c, err := client.New(addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to daemon: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = c.Close() }()

	// Probe daemon health before taking over the terminal.
	if !probeDaemon(c) {
		fmt.Fprintf(os.Stderr, "daemon not reachable at %s; start it with mcubusd\n", addr)
		os.Exit(1)
	}

	app := tui.NewApp(c, &mcubusv1.SubscribeRequest{
		ModuleIds:  splitList(*modulesFlag),
		EventTypes: splitList(*typesFlag),
	})
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// probeDaemon makes a real RPC, not just a socket connect.
func probeDaemon(c *client.Client) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := c.Bus.ListModules(ctx, &mcubusv1.ListModulesRequest{})
	return err == nil
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
