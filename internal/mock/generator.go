// Package mock produces synthetic controller traffic so the daemon can be
// exercised without hardware attached.
package mock

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agrilink/mcubus/internal/bus"
	"github.com/agrilink/mcubus/internal/config"
)

// Publisher accepts events for fan-out.
type Publisher interface {
	Publish(evt bus.Event) int
}

// Generator runs the sensor, control and alert loops.
type Generator struct {
	pub    Publisher
	cfg    config.MockConfig
	logger *zap.Logger
	seed   uint64

	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewGenerator creates a generator publishing to pub. A zero seed picks a
// random one.
func NewGenerator(pub Publisher, cfg config.MockConfig, logger *zap.Logger, seed uint64) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Generator{pub: pub, cfg: cfg, logger: logger, seed: seed}
}

// Start launches the three loops. Each publishes once immediately and then on
// its interval.
func (g *Generator) Start(ctx context.Context) {
	ctx, g.cancel = context.WithCancel(ctx)
	g.group, ctx = errgroup.WithContext(ctx)

	loops := []struct {
		name     string
		interval time.Duration
		next     func(r *rand.Rand) bus.Event
	}{
		{"sensor", g.cfg.SensorInterval.Duration, g.sensorEvent},
		{"control", g.cfg.ControlInterval.Duration, g.controlEvent},
		{"alert", g.cfg.AlertInterval.Duration, g.alertEvent},
	}
	for i, l := range loops {
		r := rand.New(rand.NewPCG(g.seed, uint64(i)))
		g.group.Go(func() error {
			return g.run(ctx, l.name, l.interval, func() bus.Event { return l.next(r) })
		})
	}
	g.logger.Info("mock generator started",
		zap.Duration("sensor_interval", g.cfg.SensorInterval.Duration),
		zap.Duration("control_interval", g.cfg.ControlInterval.Duration),
		zap.Duration("alert_interval", g.cfg.AlertInterval.Duration),
	)
}

// Stop cancels the loops and waits for them to return.
func (g *Generator) Stop() {
	if g.cancel == nil {
		return
	}
	g.cancel()
	_ = g.group.Wait()
	g.logger.Info("mock generator stopped")
}

func (g *Generator) run(ctx context.Context, name string, interval time.Duration, next func() bus.Event) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		evt := next()
		n := g.pub.Publish(evt)
		g.logger.Debug("mock event published",
			zap.String("loop", name),
			zap.String("module", evt.ModuleID),
			zap.String("kind", evt.Kind()),
			zap.Int("delivered", n),
		)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil
		}
	}
}

func (g *Generator) sensorEvent(r *rand.Rand) bus.Event {
	p := g.cfg.Sensor
	return bus.NewEvent(g.cfg.SensorModule, bus.SensorData{
		Temperature:  jitter(r, p.BaseTemperature, p.TempVariance),
		Humidity:     jitter(r, p.BaseHumidity, p.HumidityVariance),
		SoilMoisture: clamp(jitter(r, p.BaseSoilMoisture, p.SoilVariance), 0, 100),
		LightLevel:   max(0, jitter(r, p.BaseLightLevel, p.LightVariance)),
		WaterLevel:   clamp(jitter(r, p.BaseWaterLevel, p.WaterVariance), 0, 100),
		PHValue:      jitter(r, p.BasePH, p.PHVariance),
	})
}

var devices = []string{"cooling_fan", "water_pump", "grow_light", "heater"}

func (g *Generator) controlEvent(r *rand.Rand) bus.Event {
	cs := bus.ControlStatus{
		Device:   devices[r.IntN(len(devices))],
		IsActive: r.IntN(2) == 1,
		Reason:   "threshold_reached",
	}
	if cs.IsActive {
		cs.PowerLevel = uniform(r, 50, 100)
		cs.Reason = "auto_regulation"
	}
	return bus.NewEvent(g.cfg.ControlModule, cs)
}

type weightedAlert struct {
	alert  bus.Alert
	weight float64
}

var alerts = []weightedAlert{
	{bus.Alert{Severity: "info", Code: "SENSOR_OK", Message: "All sensors operating normally"}, 0.40},
	{bus.Alert{Severity: "info", Code: "PUMP_CYCLE", Message: "Water pump completed cycle"}, 0.30},
	{bus.Alert{Severity: "warning", Code: "LOW_WATER", Message: "Water level below 30%"}, 0.10},
	{bus.Alert{Severity: "warning", Code: "HIGH_TEMP", Message: "Temperature exceeds 30°C"}, 0.08},
	{bus.Alert{Severity: "warning", Code: "LOW_HUMIDITY", Message: "Humidity below 40%"}, 0.07},
	{bus.Alert{Severity: "critical", Code: "SENSOR_FAIL", Message: "Soil moisture sensor not responding"}, 0.03},
	{bus.Alert{Severity: "critical", Code: "PUMP_ERROR", Message: "Water pump malfunction detected"}, 0.02},
}

func (g *Generator) alertEvent(r *rand.Rand) bus.Event {
	return bus.NewEvent(g.cfg.AlertModule, pickAlert(r.Float64()))
}

// pickAlert maps u in [0,1) onto the weighted alert table.
func pickAlert(u float64) bus.Alert {
	var total float64
	for _, a := range alerts {
		total += a.weight
	}
	target := u * total
	for _, a := range alerts {
		if target < a.weight {
			return a.alert
		}
		target -= a.weight
	}
	return alerts[len(alerts)-1].alert
}

func jitter(r *rand.Rand, base, variance float64) float64 {
	return base + uniform(r, -variance, variance)
}

func uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
