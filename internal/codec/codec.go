// Package codec converts bus events to and from the mcubus.v1 wire form.
package codec

import (
	"fmt"
	"slices"

	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/agrilink/mcubus/internal/bus"
	mcubusv1 "github.com/agrilink/mcubus/proto/mcubus/v1"
)

// EventTypes is the closed set of payload variants a subscriber can filter on.
var EventTypes = []string{bus.KindSensorData, bus.KindControlStatus, bus.KindAlert}

// ValidEventType reports whether name is one of EventTypes.
func ValidEventType(name string) bool {
	return slices.Contains(EventTypes, name)
}

// UnsupportedPayloadError is returned when an event carries a payload the
// wire schema has no variant for.
type UnsupportedPayloadError struct {
	EventID string
	Payload any
}

func (e *UnsupportedPayloadError) Error() string {
	if e.Payload == nil {
		return fmt.Sprintf("event %s: missing payload", e.EventID)
	}
	return fmt.Sprintf("event %s: unsupported payload type %T", e.EventID, e.Payload)
}

// Encode maps a bus event onto its wire message.
func Encode(evt bus.Event) (*mcubusv1.BusEvent, error) {
	out := &mcubusv1.BusEvent{
		EventId:  evt.ID,
		ModuleId: evt.ModuleID,
	}
	if !evt.Timestamp.IsZero() {
		out.Timestamp = timestamppb.New(evt.Timestamp)
	}

	switch p := evt.Payload.(type) {
	case bus.SensorData:
		out.Payload = &mcubusv1.BusEvent_SensorData{SensorData: &mcubusv1.SensorData{
			Temperature:  p.Temperature,
			Humidity:     p.Humidity,
			SoilMoisture: p.SoilMoisture,
			LightLevel:   p.LightLevel,
			WaterLevel:   p.WaterLevel,
			PhValue:      p.PHValue,
		}}
	case bus.ControlStatus:
		out.Payload = &mcubusv1.BusEvent_ControlStatus{ControlStatus: &mcubusv1.ControlStatus{
			Device:     p.Device,
			IsActive:   p.IsActive,
			PowerLevel: p.PowerLevel,
			Reason:     p.Reason,
		}}
	case bus.Alert:
		out.Payload = &mcubusv1.BusEvent_Alert{Alert: &mcubusv1.AlertEvent{
			Severity: p.Severity,
			Code:     p.Code,
			Message:  p.Message,
		}}
	default:
		return nil, &UnsupportedPayloadError{EventID: evt.ID, Payload: evt.Payload}
	}
	return out, nil
}

// Decode maps a wire message back onto a bus event.
func Decode(msg *mcubusv1.BusEvent) (bus.Event, error) {
	evt := bus.Event{
		ID:       msg.GetEventId(),
		ModuleID: msg.GetModuleId(),
	}
	if ts := msg.GetTimestamp(); ts != nil {
		evt.Timestamp = ts.AsTime()
	}

	switch p := msg.GetPayload().(type) {
	case *mcubusv1.BusEvent_SensorData:
		s := p.SensorData
		evt.Payload = bus.SensorData{
			Temperature:  s.Temperature,
			Humidity:     s.Humidity,
			SoilMoisture: s.SoilMoisture,
			LightLevel:   s.LightLevel,
			WaterLevel:   s.WaterLevel,
			PHValue:      s.PhValue,
		}
	case *mcubusv1.BusEvent_ControlStatus:
		c := p.ControlStatus
		evt.Payload = bus.ControlStatus{
			Device:     c.Device,
			IsActive:   c.IsActive,
			PowerLevel: c.PowerLevel,
			Reason:     c.Reason,
		}
	case *mcubusv1.BusEvent_Alert:
		a := p.Alert
		evt.Payload = bus.Alert{
			Severity: a.Severity,
			Code:     a.Code,
			Message:  a.Message,
		}
	default:
		return bus.Event{}, &UnsupportedPayloadError{EventID: msg.GetEventId(), Payload: msg.GetPayload()}
	}
	return evt, nil
}
