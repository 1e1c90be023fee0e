package bus

import (
	"time"

	"github.com/google/uuid"
)

// Payload variant names. They double as the subscribe filter values and the
// oneof field names on the wire.
const (
	KindSensorData    = "sensor_data"
	KindControlStatus = "control_status"
	KindAlert         = "alert"
)

// Payload is the closed set of event bodies a controller module can emit.
type Payload interface {
	Kind() string
	isPayload()
}

// SensorData is a periodic reading from a module's sensor array.
type SensorData struct {
	Temperature  float64
	Humidity     float64
	SoilMoisture float64
	LightLevel   float64
	WaterLevel   float64
	PHValue      float64
}

// ControlStatus reports an actuator changing state.
type ControlStatus struct {
	Device     string
	IsActive   bool
	PowerLevel float64
	Reason     string
}

// Alert is a condition raised by a module or by the daemon itself.
type Alert struct {
	Severity string
	Code     string
	Message  string
}

func (SensorData) Kind() string    { return KindSensorData }
func (ControlStatus) Kind() string { return KindControlStatus }
func (Alert) Kind() string         { return KindAlert }

func (SensorData) isPayload()    {}
func (ControlStatus) isPayload() {}
func (Alert) isPayload()         {}

// Event is a domain event published on the bus. Events are values and are
// never modified after creation, so one instance is shared by every inbox.
type Event struct {
	ID        string
	ModuleID  string
	Timestamp time.Time
	Payload   Payload
}

// NewEvent stamps a payload with a fresh id and the current time.
func NewEvent(moduleID string, p Payload) Event {
	return Event{
		ID:        uuid.NewString(),
		ModuleID:  moduleID,
		Timestamp: time.Now(),
		Payload:   p,
	}
}

// Kind returns the payload variant name, or "" for an event without payload.
func (e Event) Kind() string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Kind()
}
