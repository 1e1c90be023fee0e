package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/agrilink/mcubus/internal/bus"
	"github.com/agrilink/mcubus/internal/codec"
	"github.com/agrilink/mcubus/internal/metrics"
)

const writeTimeout = 10 * time.Second

// handleEvents streams bus events to a WebSocket client as protobuf JSON text
// frames. Filters come from the module_ids and event_types query parameters,
// either repeated or comma separated.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	moduleIDs := splitList(q["module_ids"])
	eventTypes := splitList(q["event_types"])
	for _, t := range eventTypes {
		if !codec.ValidEventType(t) {
			s.metrics.StreamClosed(metrics.TransportWebSocket, metrics.ResultRejected)
			http.Error(w, fmt.Sprintf("unknown event type %q", t), http.StatusBadRequest)
			return
		}
	}

	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept", zap.Error(err))
		return
	}
	defer c.CloseNow()

	sub := bus.NewSubscriber(bus.NewFilter(moduleIDs, eventTypes))
	if err := s.bus.Register(sub); err != nil {
		s.metrics.StreamClosed(metrics.TransportWebSocket, metrics.ResultRejected)
		_ = c.Close(websocket.StatusTryAgainLater, "bus unavailable")
		return
	}

	log := s.logger.With(
		zap.String("subscriber", sub.ID),
		zap.String("peer", r.RemoteAddr),
		zap.String("transport", metrics.TransportWebSocket),
	)
	log.Info("subscriber connected",
		zap.Strings("modules", sub.Filter.Modules()),
		zap.Strings("types", sub.Filter.Types()),
		zap.Int("active", s.bus.Len()),
	)

	// Clients never send data; CloseRead handles control frames and cancels
	// ctx when the peer goes away.
	ctx := c.CloseRead(r.Context())

	var once sync.Once
	disconnect := func() {
		once.Do(func() {
			if s.bus.Deregister(sub.ID) {
				log.Info("subscriber disconnected", zap.Int("remaining", s.bus.Len()))
			}
		})
	}
	stop := context.AfterFunc(ctx, disconnect)
	defer stop()
	defer disconnect()

	result := metrics.ResultCanceled
	defer func() { s.metrics.StreamClosed(metrics.TransportWebSocket, result) }()

	for ctx.Err() == nil {
		evt, err := s.bus.Next(ctx, sub.ID)
		if err != nil {
			if ctx.Err() == nil && (errors.Is(err, bus.ErrClosed) || errors.Is(err, bus.ErrNotFound)) {
				result = metrics.ResultClosed
				_ = c.Close(websocket.StatusGoingAway, "bus closed")
			}
			return
		}

		msg, err := codec.Encode(evt)
		if err != nil {
			log.Error("encode event", zap.String("event", evt.ID), zap.Error(err))
			result = metrics.ResultEncodeError
			_ = c.Close(websocket.StatusInternalError, "encode event")
			return
		}
		data, err := msg.MarshalJSON()
		if err != nil {
			log.Error("marshal event", zap.String("event", evt.ID), zap.Error(err))
			result = metrics.ResultEncodeError
			_ = c.Close(websocket.StatusInternalError, "encode event")
			return
		}

		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		err = c.Write(wctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			log.Warn("send event", zap.String("event", evt.ID), zap.Error(err))
			result = metrics.ResultSendError
			return
		}
	}
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
