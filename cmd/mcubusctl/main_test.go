package main

import (
	"strings"
	"testing"

	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/agrilink/mcubus/internal/bus"
	mcubusv1 "github.com/agrilink/mcubus/proto/mcubus/v1"
)

func TestParseInject(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    bus.Payload
		wantErr bool
	}{
		{
			name: "alert with message",
			args: []string{"mcu_1", "alert", "warning", "LOW_WATER", "tank", "below", "20%"},
			want: bus.Alert{Severity: "warning", Code: "LOW_WATER", Message: "tank below 20%"},
		},
		{
			name: "control full",
			args: []string{"mcu_1", "control", "water_pump", "on", "85.5", "Auto", "irrigation"},
			want: bus.ControlStatus{Device: "water_pump", IsActive: true, PowerLevel: 85.5, Reason: "Auto irrigation"},
		},
		{
			name: "control minimal",
			args: []string{"mcu_1", "control", "heater", "off"},
			want: bus.ControlStatus{Device: "heater"},
		},
		{name: "missing kind", args: []string{"mcu_1"}, wantErr: true},
		{name: "alert without code", args: []string{"mcu_1", "alert", "info"}, wantErr: true},
		{name: "bad power", args: []string{"mcu_1", "control", "fan", "on", "lots"}, wantErr: true},
		{name: "unknown kind", args: []string{"mcu_1", "telemetry"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt, err := parseInject(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if evt.ModuleID != "mcu_1" || evt.ID == "" {
				t.Errorf("event = %+v", evt)
			}
			if evt.Payload != tt.want {
				t.Errorf("payload = %#v, want %#v", evt.Payload, tt.want)
			}
		})
	}
}

func TestFormatEvent(t *testing.T) {
	line := formatEvent(&mcubusv1.BusEvent{
		ModuleId:  "mcu_alert",
		Timestamp: timestamppb.Now(),
		Payload:   &mcubusv1.BusEvent_Alert{Alert: &mcubusv1.AlertEvent{Severity: "critical", Code: "HIGH_TEMP"}},
	})
	for _, want := range []string{"mcu_alert", "alert", "[critical] HIGH_TEMP"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
	if got := formatEvent(&mcubusv1.BusEvent{ModuleId: "x"}); !strings.Contains(got, "unknown") {
		t.Errorf("empty payload line = %q", got)
	}
}

func TestSplitList(t *testing.T) {
	if got := splitList(" a, ,b "); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("splitList = %q", got)
	}
	if got := splitList(""); got != nil {
		t.Errorf("splitList(\"\") = %q, want nil", got)
	}
}
