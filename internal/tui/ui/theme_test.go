package ui

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestSeverityColors(t *testing.T) {
	th := DefaultTheme()
	tests := []struct {
		severity string
		want     string
	}{
		{"critical", "critical"},
		{"error", "critical"},
		{"warning", "warning"},
		{"info", "info"},
		{"", "info"},
	}
	colors := map[string]tcell.Color{
		"critical": th.SeverityCritical,
		"warning":  th.SeverityWarning,
		"info":     th.SeverityInfo,
	}
	for _, tt := range tests {
		if got := th.Severity(tt.severity); got != colors[tt.want] {
			t.Errorf("Severity(%q) = %v, want %s color", tt.severity, got, tt.want)
		}
	}
}

func TestTag(t *testing.T) {
	if got := Tag(DefaultTheme().SeverityCritical); got != "[red]" {
		t.Errorf("Tag = %q, want [red]", got)
	}
}
