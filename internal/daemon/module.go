package daemon

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/agrilink/mcubus/internal/api"
	"github.com/agrilink/mcubus/internal/bus"
	"github.com/agrilink/mcubus/internal/config"
	"github.com/agrilink/mcubus/internal/httpapi"
	"github.com/agrilink/mcubus/internal/lock"
	"github.com/agrilink/mcubus/internal/logging"
	"github.com/agrilink/mcubus/internal/metrics"
	"github.com/agrilink/mcubus/internal/mock"
	"github.com/agrilink/mcubus/internal/paths"
	"github.com/agrilink/mcubus/internal/relay"
	"github.com/agrilink/mcubus/internal/status"
	"github.com/agrilink/mcubus/internal/store"
)

// Params holds the resolved configuration passed to the fx module.
type Params struct {
	// ConfigPath is watched for log level changes; empty disables the watch.
	ConfigPath string
	Config     *config.Config
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideMetrics,
			provideStateMachine,
			provideLock,
			provideStore,
			provideService,
			provideHTTPServer,
			provideGenerator,
			provideRelay,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) (*config.Config, error) {
	if p.Config == nil {
		return nil, errors.New("daemon: no config")
	}
	if err := p.Config.Validate(); err != nil {
		return nil, err
	}
	return p.Config, nil
}

func provideLogger(cfg *config.Config) (*zap.Logger, zap.AtomicLevel, error) {
	return logging.New(paths.LogPath(cfg.DataDir), cfg.Log.Level)
}

func provideBus(cfg *config.Config) (*bus.Bus, error) {
	opts, err := cfg.Bus.Options()
	if err != nil {
		return nil, err
	}
	return bus.New(opts...), nil
}

func provideMetrics(b *bus.Bus) *metrics.Metrics {
	return metrics.New(b)
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(cfg *config.Config, logger *zap.Logger) (*lock.Lock, error) {
	if err := paths.EnsureDir(cfg.DataDir); err != nil {
		return nil, err
	}
	logger.Info("acquiring data directory lock", zap.String("dir", cfg.DataDir))
	l, err := lock.Acquire(cfg.DataDir, cfg.GRPC.Addr)
	if err != nil {
		return nil, err
	}
	logger.Info("data directory lock acquired")
	return l, nil
}

// provideStore takes the lock so the database is never opened by a second
// daemon.
func provideStore(cfg *config.Config, _ *lock.Lock, logger *zap.Logger) (*store.DB, error) {
	dbPath := paths.DBPath(cfg.DataDir)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideService(b *bus.Bus, db *store.DB, m *metrics.Metrics, logger *zap.Logger) *api.Service {
	return api.NewService(b, db, m, logger)
}

// The optional components below are nil when disabled in config.

func provideHTTPServer(cfg *config.Config, b *bus.Bus, db *store.DB, machine *status.Machine, m *metrics.Metrics, logger *zap.Logger) *httpapi.Server {
	if cfg.HTTP.Addr == "" {
		return nil
	}
	return httpapi.NewServer(cfg.HTTP.Addr, b, db, machine, m, logger)
}

func provideGenerator(cfg *config.Config, b *bus.Bus, logger *zap.Logger) *mock.Generator {
	if !cfg.Mock.Enabled {
		return nil
	}
	return mock.NewGenerator(b, cfg.Mock, logger, uint64(time.Now().UnixNano()))
}

func provideRelay(cfg *config.Config, b *bus.Bus, m *metrics.Metrics, logger *zap.Logger) *relay.Relay {
	if !cfg.Relay.Enabled {
		return nil
	}
	return relay.New(&redis.Options{Addr: cfg.Relay.RedisAddr}, cfg.Relay.Channel, b, m, logger)
}

type lifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Params    Params
	Server    *Server
	HTTP      *httpapi.Server
	Generator *mock.Generator
	Relay     *relay.Relay
	Lock      *lock.Lock
	DB        *store.DB
	Machine   *status.Machine
	Bus       *bus.Bus
	Level     zap.AtomicLevel
	Logger    *zap.Logger
}

func registerLifecycle(p lifecycleParams) {
	logger := p.Logger
	runCtx, cancel := context.WithCancel(context.Background())

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Producers that can fail come first so nothing needs undoing
			// beyond them.
			if p.Relay != nil {
				if err := p.Relay.Start(runCtx); err != nil {
					_ = p.Machine.Transition(status.Error)
					cancel()
					return err
				}
			}
			if p.HTTP != nil {
				if err := p.HTTP.Start(); err != nil {
					if p.Relay != nil {
						_ = p.Relay.Stop()
					}
					_ = p.Machine.Transition(status.Error)
					cancel()
					return err
				}
			}

			// Start gRPC server in background.
			go func() {
				if err := p.Server.Start(); err != nil {
					logger.Error("gRPC server error", zap.Error(err))
				}
			}()

			if p.Generator != nil {
				p.Generator.Start(runCtx)
			}

			if p.Params.ConfigPath != "" {
				err := config.Watch(runCtx, p.Params.ConfigPath, logger, func(c *config.Config) {
					if err := logging.SetLevel(p.Level, c.Log.Level); err != nil {
						logger.Warn("ignoring log level", zap.String("level", c.Log.Level), zap.Error(err))
						return
					}
					logger.Info("log level applied", zap.String("level", c.Log.Level))
				})
				if err != nil {
					logger.Warn("config watch disabled", zap.Error(err))
				}
			}

			if err := p.Machine.Transition(status.Serving); err != nil {
				logger.Warn("state transition", zap.Error(err))
			}
			logger.Info("daemon serving", zap.String("grpc", p.Server.Addr()))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := p.Machine.Transition(status.Draining); err != nil {
				logger.Warn("state transition", zap.Error(err))
			}

			if p.Generator != nil {
				p.Generator.Stop()
			}
			if p.Relay != nil {
				if err := p.Relay.Stop(); err != nil {
					logger.Warn("error stopping relay", zap.Error(err))
				}
			}

			// Closing every subscriber ends the open streams, so the graceful
			// stop below does not wait on them.
			n := p.Bus.DeregisterAll()
			logger.Info("subscribers closed", zap.Int("count", n))

			p.Server.Stop(ctx)
			if p.HTTP != nil {
				if err := p.HTTP.Stop(ctx); err != nil {
					logger.Warn("error stopping HTTP server", zap.Error(err))
				}
			}
			cancel()

			if err := p.DB.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := p.Machine.Transition(status.Stopped); err != nil {
				logger.Warn("state transition", zap.Error(err))
			}
			if err := p.Lock.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			_ = logger.Sync()
			return nil
		},
	})
}
