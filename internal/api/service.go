package api

import (
	"github.com/agrilink/mcubus/internal/bus"
	"github.com/agrilink/mcubus/internal/metrics"
	"github.com/agrilink/mcubus/internal/store"
	mcubusv1 "github.com/agrilink/mcubus/proto/mcubus/v1"
	"go.uber.org/zap"
)

// Service implements the MCUBusService gRPC service. The streaming half
// lives in bus_service.go and the module registry in module_service.go.
type Service struct {
	mcubusv1.UnimplementedMCUBusServiceServer

	bus     *bus.Bus
	db      *store.DB
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewService creates the service. db and m may be nil; logger may be nil.
func NewService(b *bus.Bus, db *store.DB, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		bus:     b,
		db:      db,
		metrics: m,
		logger:  logger,
	}
}
