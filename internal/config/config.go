package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/agrilink/mcubus/internal/bus"
	"github.com/agrilink/mcubus/internal/paths"
)

// Config represents the daemon's config.toml.
type Config struct {
	DataDir string      `toml:"data_dir"`
	GRPC    GRPCConfig  `toml:"grpc"`
	HTTP    HTTPConfig  `toml:"http"`
	Log     LogConfig   `toml:"log"`
	Bus     BusConfig   `toml:"bus"`
	Mock    MockConfig  `toml:"mock"`
	Relay   RelayConfig `toml:"relay"`
}

// GRPCConfig holds the gRPC listener. Addr is host:port or unix:///path.
type GRPCConfig struct {
	Addr string `toml:"addr"`
}

// HTTPConfig holds the status/metrics/WebSocket listener. Empty Addr disables it.
type HTTPConfig struct {
	Addr string `toml:"addr"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// BusConfig tunes the event bus.
type BusConfig struct {
	FanOut       string   `toml:"fan_out"`
	ClosePolicy  string   `toml:"close_policy"`
	TombstoneTTL Duration `toml:"tombstone_ttl"`
}

// MockConfig drives the synthetic event generator.
type MockConfig struct {
	Enabled         bool          `toml:"enabled"`
	SensorInterval  Duration      `toml:"sensor_interval"`
	ControlInterval Duration      `toml:"control_interval"`
	AlertInterval   Duration      `toml:"alert_interval"`
	SensorModule    string        `toml:"sensor_module"`
	ControlModule   string        `toml:"control_module"`
	AlertModule     string        `toml:"alert_module"`
	Sensor          SensorProfile `toml:"sensor"`
}

// SensorProfile is the baseline and spread of each generated reading.
type SensorProfile struct {
	BaseTemperature  float64 `toml:"base_temperature"`
	BaseHumidity     float64 `toml:"base_humidity"`
	BaseSoilMoisture float64 `toml:"base_soil_moisture"`
	BaseLightLevel   float64 `toml:"base_light_level"`
	BaseWaterLevel   float64 `toml:"base_water_level"`
	BasePH           float64 `toml:"base_ph"`

	TempVariance     float64 `toml:"temp_variance"`
	HumidityVariance float64 `toml:"humidity_variance"`
	SoilVariance     float64 `toml:"soil_variance"`
	LightVariance    float64 `toml:"light_variance"`
	WaterVariance    float64 `toml:"water_variance"`
	PHVariance       float64 `toml:"ph_variance"`
}

// RelayConfig forwards events published on a Redis channel into the bus.
type RelayConfig struct {
	Enabled   bool   `toml:"enabled"`
	RedisAddr string `toml:"redis_addr"`
	Channel   string `toml:"channel"`
}

// Duration is a time.Duration that reads and writes as "2s" in TOML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir: paths.BaseDir(),
		GRPC:    GRPCConfig{Addr: ":50051"},
		HTTP:    HTTPConfig{Addr: ":8001"},
		Log:     LogConfig{Level: "info"},
		Bus: BusConfig{
			FanOut:       "snapshot",
			ClosePolicy:  "discard",
			TombstoneTTL: Duration{10 * time.Minute},
		},
		Mock: MockConfig{
			Enabled:         false,
			SensorInterval:  Duration{2 * time.Second},
			ControlInterval: Duration{10 * time.Second},
			AlertInterval:   Duration{30 * time.Second},
			SensorModule:    "mcu_sensor_1",
			ControlModule:   "mcu_control",
			AlertModule:     "mcu_alert",
			Sensor: SensorProfile{
				BaseTemperature:  25.0,
				BaseHumidity:     65.0,
				BaseSoilMoisture: 50.0,
				BaseLightLevel:   800.0,
				BaseWaterLevel:   80.0,
				BasePH:           6.5,
				TempVariance:     3.0,
				HumidityVariance: 10.0,
				SoilVariance:     15.0,
				LightVariance:    200.0,
				WaterVariance:    5.0,
				PHVariance:       0.5,
			},
		},
		Relay: RelayConfig{
			Enabled:   false,
			RedisAddr: "localhost:6379",
			Channel:   "mcubus:events",
		},
	}
}

// Load reads config from path on top of Default. A missing file yields the
// defaults; unknown keys are an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("decode %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// Environment overrides, applied after the config file.
const (
	EnvGRPCAddr    = "MCUBUS_GRPC_ADDR"
	EnvHTTPAddr    = "MCUBUS_HTTP_ADDR"
	EnvLogLevel    = "MCUBUS_LOG_LEVEL"
	EnvDataDir     = "MCUBUS_DATA_DIR"
	EnvMockEnabled = "MCUBUS_MOCK_ENABLED"
	EnvRedisAddr   = "MCUBUS_REDIS_ADDR"
)

// ApplyEnv loads envFiles (or ./.env when none are given) into the process
// environment and then applies the MCUBUS_* overrides. A missing ./.env is
// not an error; a missing explicit file is.
func (c *Config) ApplyEnv(envFiles ...string) error {
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return fmt.Errorf("load env: %w", err)
	}

	if v := os.Getenv(EnvGRPCAddr); v != "" {
		c.GRPC.Addr = v
	}
	if v, ok := os.LookupEnv(EnvHTTPAddr); ok {
		c.HTTP.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvMockEnabled); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMockEnabled, err)
		}
		c.Mock.Enabled = enabled
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Relay.RedisAddr = v
		c.Relay.Enabled = true
	}
	return nil
}

// Validate checks the values a daemon cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if c.GRPC.Addr == "" {
		errs = append(errs, errors.New("grpc.addr is required"))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, err := c.Bus.Options(); err != nil {
		errs = append(errs, err)
	}
	if c.Mock.Enabled {
		for name, d := range map[string]Duration{
			"sensor_interval":  c.Mock.SensorInterval,
			"control_interval": c.Mock.ControlInterval,
			"alert_interval":   c.Mock.AlertInterval,
		} {
			if d.Duration <= 0 {
				errs = append(errs, fmt.Errorf("mock.%s must be positive", name))
			}
		}
	}
	if c.Relay.Enabled {
		if c.Relay.RedisAddr == "" {
			errs = append(errs, errors.New("relay.redis_addr is required when the relay is enabled"))
		}
		if c.Relay.Channel == "" {
			errs = append(errs, errors.New("relay.channel is required when the relay is enabled"))
		}
	}
	return errors.Join(errs...)
}

// Options converts the bus section into bus constructor options.
func (b BusConfig) Options() ([]bus.Option, error) {
	fanOut, err := bus.ParseFanOut(b.FanOut)
	if err != nil {
		return nil, fmt.Errorf("bus.fan_out: %w", err)
	}
	policy, err := bus.ParseClosePolicy(b.ClosePolicy)
	if err != nil {
		return nil, fmt.Errorf("bus.close_policy: %w", err)
	}
	return []bus.Option{
		bus.WithFanOut(fanOut),
		bus.WithClosePolicy(policy),
		bus.WithTombstoneTTL(b.TombstoneTTL.Duration),
	}, nil
}
