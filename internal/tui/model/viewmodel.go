package model

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/agrilink/mcubus/internal/tui/client"
	mcubusv1 "github.com/agrilink/mcubus/proto/mcubus/v1"
)

// MaxLogEntries bounds the control/alert log.
const MaxLogEntries = 200

// ModuleState is the latest sensor reading seen from one module.
type ModuleState struct {
	ModuleID string
	Sensor   *mcubusv1.SensorData
	LastSeen time.Time
	Events   int
}

// LogEntry is one control or alert line.
type LogEntry struct {
	Time     time.Time
	ModuleID string
	Kind     string
	Severity string
	Text     string
}

// ViewModel caches state from the event stream and signals UI refreshes.
type ViewModel struct {
	mu sync.RWMutex

	client     *client.Client
	modules    map[string]*ModuleState
	log        []LogEntry
	registered []*mcubusv1.ModuleInfo
	connected  bool
	events     int
	Flash      Flash

	refreshCh chan struct{}
}

// NewViewModel creates a new view model connected to the daemon client.
func NewViewModel(c *client.Client) *ViewModel {
	return &ViewModel{
		client:    c,
		modules:   make(map[string]*ModuleState),
		refreshCh: make(chan struct{}, 1),
	}
}

// RefreshCh returns the channel that signals UI refresh.
func (vm *ViewModel) RefreshCh() <-chan struct{} {
	return vm.refreshCh
}

func (vm *ViewModel) signalRefresh() {
	select {
	case vm.refreshCh <- struct{}{}:
	default:
	}
}

// Watch subscribes to the bus and applies events until the stream ends.
// It returns nil when the daemon closed the stream.
func (vm *ViewModel) Watch(ctx context.Context, req *mcubusv1.SubscribeRequest) error {
	stream, err := vm.client.Bus.SubscribeEvents(ctx, req)
	if err != nil {
		return err
	}
	vm.setConnected(true)
	defer vm.setConnected(false)

	for {
		evt, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		vm.Apply(evt)
	}
}

func (vm *ViewModel) setConnected(v bool) {
	vm.mu.Lock()
	vm.connected = v
	vm.mu.Unlock()
	vm.signalRefresh()
}

// Apply folds one event into the cached state.
func (vm *ViewModel) Apply(evt *mcubusv1.BusEvent) {
	ts := time.Now()
	if evt.GetTimestamp() != nil {
		ts = evt.GetTimestamp().AsTime().Local()
	}

	vm.mu.Lock()
	vm.events++
	m, ok := vm.modules[evt.GetModuleId()]
	if !ok {
		m = &ModuleState{ModuleID: evt.GetModuleId()}
		vm.modules[m.ModuleID] = m
	}
	m.LastSeen = ts
	m.Events++

	switch p := evt.GetPayload().(type) {
	case *mcubusv1.BusEvent_SensorData:
		m.Sensor = p.SensorData
	case *mcubusv1.BusEvent_ControlStatus:
		c := p.ControlStatus
		state := "OFF"
		if c.IsActive {
			state = "ON"
		}
		vm.appendLog(LogEntry{
			Time:     ts,
			ModuleID: m.ModuleID,
			Kind:     "control",
			Text:     fmt.Sprintf("%s %s %.0f%% %s", c.Device, state, c.PowerLevel, c.Reason),
		})
	case *mcubusv1.BusEvent_Alert:
		a := p.Alert
		vm.appendLog(LogEntry{
			Time:     ts,
			ModuleID: m.ModuleID,
			Kind:     "alert",
			Severity: strings.ToLower(a.Severity),
			Text:     strings.TrimSpace(a.Code + " " + a.Message),
		})
		if sev := strings.ToLower(a.Severity); sev == "critical" || sev == "error" {
			vm.Flash.Set(fmt.Sprintf("%s: %s", m.ModuleID, a.Code), FlashErr, 10*time.Second)
		}
	}
	vm.mu.Unlock()
	vm.signalRefresh()
}

func (vm *ViewModel) appendLog(e LogEntry) {
	vm.log = append(vm.log, e)
	if over := len(vm.log) - MaxLogEntries; over > 0 {
		vm.log = slices.Delete(vm.log, 0, over)
	}
}

// LoadModules fetches the registered module list.
func (vm *ViewModel) LoadModules(ctx context.Context) error {
	resp, err := vm.client.Bus.ListModules(ctx, &mcubusv1.ListModulesRequest{})
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.registered = resp.Modules
	vm.mu.Unlock()
	vm.signalRefresh()
	return nil
}

// ClearLog drops all log entries.
func (vm *ViewModel) ClearLog() {
	vm.mu.Lock()
	vm.log = nil
	vm.mu.Unlock()
	vm.signalRefresh()
}

// GetModules returns copies of the module states ordered by id.
func (vm *ViewModel) GetModules() []ModuleState {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	out := make([]ModuleState, 0, len(vm.modules))
	for _, m := range vm.modules {
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b ModuleState) int { return strings.Compare(a.ModuleID, b.ModuleID) })
	return out
}

// GetLog returns a snapshot of the log, oldest first.
func (vm *ViewModel) GetLog() []LogEntry {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return slices.Clone(vm.log)
}

// GetRegistered returns the last fetched module registrations.
func (vm *ViewModel) GetRegistered() []*mcubusv1.ModuleInfo {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.registered
}

// Connected reports whether the event stream is open.
func (vm *ViewModel) Connected() bool {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.connected
}

// EventCount returns the number of events applied.
func (vm *ViewModel) EventCount() int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.events
}
