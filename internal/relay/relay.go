// Package relay feeds events published on a Redis pub/sub channel into the
// bus, so producers outside the daemon process can reach subscribers.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/agrilink/mcubus/internal/bus"
	"github.com/agrilink/mcubus/internal/codec"
	"github.com/agrilink/mcubus/internal/metrics"
	mcubusv1 "github.com/agrilink/mcubus/proto/mcubus/v1"
)

// Relay outcomes recorded in metrics.
const (
	OutcomePublished = "published"
	OutcomeMalformed = "malformed"
)

// Publisher accepts events for fan-out.
type Publisher interface {
	Publish(evt bus.Event) int
}

// Relay subscribes one Redis channel. Payloads are BusEvent messages in the
// protobuf JSON mapping.
type Relay struct {
	client  *redis.Client
	channel string
	pub     Publisher
	metrics *metrics.Metrics
	logger  *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a relay. m and logger may be nil.
func New(opts *redis.Options, channel string, pub Publisher, m *metrics.Metrics, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{
		client:  redis.NewClient(opts),
		channel: channel,
		pub:     pub,
		metrics: m,
		logger:  logger.With(zap.String("channel", channel)),
	}
}

// Start subscribes and returns once Redis has confirmed the subscription.
func (r *Relay) Start(ctx context.Context) error {
	ctx, r.cancel = context.WithCancel(ctx)

	ps := r.client.Subscribe(ctx, r.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		r.cancel()
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	r.done = make(chan struct{})
	go r.loop(ctx, ps)
	r.logger.Info("redis relay started", zap.String("addr", r.client.Options().Addr))
	return nil
}

// Stop unsubscribes, waits for the receive loop and closes the client.
func (r *Relay) Stop() error {
	if r.cancel == nil {
		return r.client.Close()
	}
	r.cancel()
	if r.done != nil {
		<-r.done
	}
	r.logger.Info("redis relay stopped")
	return r.client.Close()
}

func (r *Relay) loop(ctx context.Context, ps *redis.PubSub) {
	defer close(r.done)
	defer func() { _ = ps.Close() }()

	for {
		msg, err := ps.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, redis.ErrClosed) {
				return
			}
			r.logger.Warn("redis receive", zap.Error(err))
			select {
			case <-time.After(time.Second):
				continue
			case <-ctx.Done():
				return
			}
		}
		r.handle(msg.Payload)
	}
}

func (r *Relay) handle(payload string) {
	var msg mcubusv1.BusEvent
	if err := msg.UnmarshalJSON([]byte(payload)); err != nil {
		r.metrics.Relayed(OutcomeMalformed)
		r.logger.Warn("malformed relay payload", zap.Error(err))
		return
	}
	evt, err := codec.Decode(&msg)
	if err != nil {
		r.metrics.Relayed(OutcomeMalformed)
		r.logger.Warn("undecodable relay event", zap.String("event", msg.GetEventId()), zap.Error(err))
		return
	}
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}

	n := r.pub.Publish(evt)
	r.metrics.Relayed(OutcomePublished)
	r.logger.Debug("relayed event",
		zap.String("event", evt.ID),
		zap.String("module", evt.ModuleID),
		zap.Int("delivered", n),
	)
}

// Publish encodes evt and publishes it on channel, in the form a Relay reads.
func Publish(ctx context.Context, client redis.UniversalClient, channel string, evt bus.Event) error {
	msg, err := codec.Encode(evt)
	if err != nil {
		return err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return client.Publish(ctx, channel, data).Err()
}
