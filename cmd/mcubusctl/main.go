package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agrilink/mcubus/internal/bus"
	"github.com/agrilink/mcubus/internal/codec"
	"github.com/agrilink/mcubus/internal/config"
	"github.com/agrilink/mcubus/internal/paths"
	"github.com/agrilink/mcubus/internal/relay"
	"github.com/agrilink/mcubus/internal/tui/client"
	mcubusv1 "github.com/agrilink/mcubus/proto/mcubus/v1"
)

func main() {
	addrFlag := flag.String("addr", "", "daemon gRPC address, host:port or unix:///path (default: from the running daemon)")
	dataDirFlag := flag.String("data-dir", "", "daemon data directory used to find its address (default ~/.mcubus)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	// inject talks to Redis, not the daemon.
	if args[0] == "inject" {
		cmdInject(args[1:])
		return
	}

	dataDir := *dataDirFlag
	if dataDir == "" {
		dataDir = paths.BaseDir()
	}
	addr := client.ResolveAddr(*addrFlag, dataDir)
	c, err := client.New(addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot connect to daemon at %s: %v\n", addr, err)
		os.Exit(1)
	}
	defer func() { _ = c.Close() }()

	switch args[0] {
	case "subscribe":
		cmdSubscribe(c, args[1:], *jsonFlag)
	case "register":
		cmdRegister(c, args[1:], *jsonFlag)
	case "unregister":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: mcubusctl unregister <module_id>")
			os.Exit(1)
		}
		cmdUnregister(c, args[1], *jsonFlag)
	case "modules":
		cmdModules(c, *jsonFlag)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: mcubusctl [--addr <addr>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  subscribe [-m ids] [-t types]            Stream events until interrupted")
	fmt.Fprintln(os.Stderr, "  register [id] [type] [key=value...]      Register a module (empty id: assigned)")
	fmt.Fprintln(os.Stderr, "  unregister <id>                          Remove a module registration")
	fmt.Fprintln(os.Stderr, "  modules                                  List registered modules")
	fmt.Fprintln(os.Stderr, "  inject [--redis addr] [--channel c] <module> alert <severity> <code> [message]")
	fmt.Fprintln(os.Stderr, "  inject [--redis addr] [--channel c] <module> control <device> <on|off> [power] [reason]")
	fmt.Fprintln(os.Stderr, "                                           Publish an event through the Redis relay")
}

func cmdSubscribe(c *client.Client, args []string, jsonOut bool) {
	fs := flag.NewFlagSet("subscribe", flag.ExitOnError)
	modules := fs.String("m", "", "comma-separated module ids (default all)")
	types := fs.String("t", "", "comma-separated event types: "+strings.Join(codec.EventTypes, ", "))
	_ = fs.Parse(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stream, err := c.Bus.SubscribeEvents(ctx, &mcubusv1.SubscribeRequest{
		ModuleIds:  splitList(*modules),
		EventTypes: splitList(*types),
	})
	if err != nil {
		fatal(err)
	}
	for {
		evt, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(os.Stderr, "stream closed by daemon")
			return
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			fatal(err)
		}
		if jsonOut {
			data, err := evt.MarshalJSON()
			if err != nil {
				fatal(err)
			}
			fmt.Println(string(data))
			continue
		}
		fmt.Println(formatEvent(evt))
	}
}

func formatEvent(evt *mcubusv1.BusEvent) string {
	ts := ""
	if evt.GetTimestamp() != nil {
		ts = evt.GetTimestamp().AsTime().Local().Format("15:04:05.000")
	}
	var body string
	switch {
	case evt.GetSensorData() != nil:
		s := evt.GetSensorData()
		body = fmt.Sprintf("sensor   temp=%.1f hum=%.1f soil=%.1f light=%.0f water=%.1f ph=%.2f",
			s.Temperature, s.Humidity, s.SoilMoisture, s.LightLevel, s.WaterLevel, s.PhValue)
	case evt.GetControlStatus() != nil:
		cs := evt.GetControlStatus()
		state := "off"
		if cs.IsActive {
			state = "on"
		}
		body = fmt.Sprintf("control  %s %s power=%.0f%% %s", cs.Device, state, cs.PowerLevel, cs.Reason)
	case evt.GetAlert() != nil:
		a := evt.GetAlert()
		body = fmt.Sprintf("alert    [%s] %s %s", a.Severity, a.Code, a.Message)
	default:
		body = "unknown"
	}
	return fmt.Sprintf("%s %-14s %s", ts, evt.GetModuleId(), body)
}

func cmdRegister(c *client.Client, args []string, jsonOut bool) {
	req := &mcubusv1.RegisterRequest{Metadata: map[string]string{}}
	var positional []string
	for _, a := range args {
		if k, v, ok := strings.Cut(a, "="); ok {
			req.Metadata[k] = v
			continue
		}
		positional = append(positional, a)
	}
	if len(positional) > 0 {
		req.ModuleId = positional[0]
	}
	if len(positional) > 1 {
		req.ModuleType = positional[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	resp, err := c.Bus.Register(ctx, req)
	if err != nil {
		fatal(err)
	}
	if jsonOut {
		outputJSON(resp)
		return
	}
	fmt.Printf("Module:  %s\n", resp.AssignedId)
	fmt.Printf("Message: %s\n", resp.Message)
}

func cmdUnregister(c *client.Client, id string, jsonOut bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	resp, err := c.Bus.UnRegister(ctx, &mcubusv1.UnRegisterRequest{ModuleId: id})
	if err != nil {
		fatal(err)
	}
	if jsonOut {
		outputJSON(resp)
		return
	}
	fmt.Printf("Success: %v - %s\n", resp.Success, resp.Message)
	if !resp.Success {
		os.Exit(1)
	}
}

func cmdModules(c *client.Client, jsonOut bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	resp, err := c.Bus.ListModules(ctx, &mcubusv1.ListModulesRequest{})
	if err != nil {
		fatal(err)
	}
	if jsonOut {
		outputJSON(resp)
		return
	}
	if len(resp.Modules) == 0 {
		fmt.Println("No modules registered.")
		return
	}
	for _, m := range resp.Modules {
		registered := ""
		if m.RegisteredAt != nil {
			registered = m.RegisteredAt.AsTime().Local().Format(time.DateTime)
		}
		fmt.Printf("%-20s %-14s %-22s %s\n", m.ModuleId, m.ModuleType, m.Peer, registered)
	}
}

func cmdInject(args []string) {
	defaults := config.Default().Relay
	fs := flag.NewFlagSet("inject", flag.ExitOnError)
	redisAddr := fs.String("redis", envOr(config.EnvRedisAddr, defaults.RedisAddr), "Redis address")
	channel := fs.String("channel", defaults.Channel, "relay channel")
	_ = fs.Parse(args)

	evt, err := parseInject(fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		printUsage()
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
	defer func() { _ = rdb.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := relay.Publish(ctx, rdb, *channel, evt); err != nil {
		fatal(err)
	}
	fmt.Printf("published %s to %s\n", evt.ID, *channel)
}

func parseInject(args []string) (bus.Event, error) {
	if len(args) < 2 {
		return bus.Event{}, errors.New("inject needs a module id and an event kind")
	}
	module, kind, rest := args[0], args[1], args[2:]

	switch kind {
	case "alert":
		if len(rest) < 2 {
			return bus.Event{}, errors.New("alert needs a severity and a code")
		}
		return bus.NewEvent(module, bus.Alert{
			Severity: rest[0],
			Code:     rest[1],
			Message:  strings.Join(rest[2:], " "),
		}), nil
	case "control":
		if len(rest) < 2 {
			return bus.Event{}, errors.New("control needs a device and on|off")
		}
		cs := bus.ControlStatus{Device: rest[0], IsActive: rest[1] == "on"}
		if len(rest) > 2 {
			if _, err := fmt.Sscanf(rest[2], "%g", &cs.PowerLevel); err != nil {
				return bus.Event{}, fmt.Errorf("power %q: %w", rest[2], err)
			}
		}
		cs.Reason = strings.Join(rest[min(3, len(rest)):], " ")
		return bus.NewEvent(module, cs), nil
	default:
		return bus.Event{}, fmt.Errorf("unknown event kind %q", kind)
	}
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

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
