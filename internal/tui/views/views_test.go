package views

import (
	"strings"
	"testing"
	"time"

	"github.com/agrilink/mcubus/internal/tui/model"
	"github.com/agrilink/mcubus/internal/tui/ui"
	mcubusv1 "github.com/agrilink/mcubus/proto/mcubus/v1"
)

func TestSanitizeForTerminal(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"line\nbreak\t", "linebreak"},
		{"👍🏻", "👍"},
		{"[red]boom[-]", "[red[]boom[-[]"},
	}
	for _, tt := range tests {
		if got := sanitizeForTerminal(tt.in); got != tt.want {
			t.Errorf("sanitizeForTerminal(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		seen time.Time
		want string
	}{
		{time.Time{}, ""},
		{now, "now"},
		{now.Add(-1500 * time.Millisecond), "2s ago"},
		{now.Add(-90 * time.Second), "1m30s ago"},
	}
	for _, tt := range tests {
		if got := formatAge(now, tt.seen); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.seen, got, tt.want)
		}
	}
}

func TestFormatMetadata(t *testing.T) {
	got := formatMetadata(map[string]string{"zone": "north", "fw": "1.2"})
	if got != "fw=1.2 zone=north" {
		t.Errorf("formatMetadata = %q", got)
	}
	if formatMetadata(nil) != "" {
		t.Error("nil metadata should format empty")
	}
}

func TestSensorTableUpdate(t *testing.T) {
	now := time.Now()
	st := NewSensorTable(ui.DefaultTheme())
	st.now = func() time.Time { return now }

	st.Update([]model.ModuleState{
		{ModuleID: "mcu_sensor_1", Sensor: &mcubusv1.SensorData{Temperature: 25.46, PhValue: 6.5}, LastSeen: now, Events: 3},
		{ModuleID: "mcu_control", LastSeen: now.Add(-time.Minute), Events: 1},
	})

	if rows := st.GetRowCount(); rows != 3 {
		t.Fatalf("rows = %d, want 3", rows)
	}
	if got := strings.TrimSpace(st.GetCell(1, 1).Text); got != "25.5" {
		t.Errorf("temperature cell = %q", got)
	}
	if got := strings.TrimSpace(st.GetCell(1, 6).Text); got != "6.50" {
		t.Errorf("pH cell = %q", got)
	}
	if got := strings.TrimSpace(st.GetCell(2, 1).Text); got != "-" {
		t.Errorf("module without readings = %q, want -", got)
	}
	if got := strings.TrimSpace(st.GetCell(2, 8).Text); got != "1m0s ago" {
		t.Errorf("last seen cell = %q", got)
	}
}

func TestEventLogFormat(t *testing.T) {
	el := NewEventLog(ui.DefaultTheme())
	line := el.format(model.LogEntry{
		Time:     time.Date(2026, 1, 1, 8, 30, 0, 0, time.Local),
		ModuleID: "mcu_alert",
		Kind:     "alert",
		Severity: "critical",
		Text:     "HIGH_TEMP Temperature above threshold",
	})
	for _, want := range []string{"08:30:00", "[red]ALRT", "mcu_alert", "HIGH_TEMP"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}

	if !el.TogglePause() {
		t.Error("first toggle should pause")
	}
	el.Update([]model.LogEntry{{Kind: "control", Text: "ignored"}})
	if el.GetText(true) != "" {
		t.Error("paused log should not render")
	}
}

func TestStatusBarLine(t *testing.T) {
	sb := NewStatusBar(ui.DefaultTheme())
	sb.SetAddr("localhost:50051")
	sb.SetStream(true, 42)
	sb.SetHints([]string{"q:quit"})
	sb.SetFlash("mcu_alert: HIGH_TEMP", model.FlashErr)

	line := sb.line(time.Date(2026, 1, 1, 9, 5, 0, 0, time.Local))
	for _, want := range []string{"localhost:50051", "streaming", "42 events", "09:05", "q:quit", "HIGH_TEMP"} {
		if !strings.Contains(line, want) {
			t.Errorf("status line %q missing %q", line, want)
		}
	}
}
