package api

import (
	"context"
	"errors"
	"sync"

	"github.com/agrilink/mcubus/internal/bus"
	"github.com/agrilink/mcubus/internal/codec"
	"github.com/agrilink/mcubus/internal/metrics"
	mcubusv1 "github.com/agrilink/mcubus/proto/mcubus/v1"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	grpcstatus "google.golang.org/grpc/status"
)

// SubscribeEvents registers a bus subscriber for the lifetime of the stream
// and forwards every event it receives. The subscriber is removed exactly
// once, whichever of client cancel, send failure or bus shutdown comes first.
func (s *Service) SubscribeEvents(req *mcubusv1.SubscribeRequest, stream mcubusv1.MCUBusService_SubscribeEventsServer) error {
	for _, t := range req.GetEventTypes() {
		if !codec.ValidEventType(t) {
			s.metrics.StreamClosed(metrics.TransportGRPC, metrics.ResultRejected)
			return grpcstatus.Errorf(codes.InvalidArgument, "unknown event type %q", t)
		}
	}

	ctx := stream.Context()
	sub := bus.NewSubscriber(bus.NewFilter(req.GetModuleIds(), req.GetEventTypes()))
	if err := s.bus.Register(sub); err != nil {
		s.metrics.StreamClosed(metrics.TransportGRPC, metrics.ResultRejected)
		return grpcstatus.Errorf(codes.Unavailable, "register subscriber: %v", err)
	}

	log := s.logger.With(
		zap.String("subscriber", sub.ID),
		zap.String("peer", peerAddr(ctx)),
	)
	log.Info("subscriber connected",
		zap.Strings("modules", sub.Filter.Modules()),
		zap.Strings("types", sub.Filter.Types()),
		zap.Int("active", s.bus.Len()),
	)

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
	defer func() { s.metrics.StreamClosed(metrics.TransportGRPC, result) }()

	for ctx.Err() == nil {
		evt, err := s.bus.Next(ctx, sub.ID)
		if err != nil {
			if ctx.Err() == nil && (errors.Is(err, bus.ErrClosed) || errors.Is(err, bus.ErrNotFound)) {
				result = metrics.ResultClosed
			}
			return nil
		}

		msg, err := codec.Encode(evt)
		if err != nil {
			log.Error("encode event", zap.String("event", evt.ID), zap.Error(err))
			result = metrics.ResultEncodeError
			return grpcstatus.Errorf(codes.Internal, "encode event: %v", err)
		}

		if err := stream.Send(msg); err != nil {
			log.Warn("send event", zap.String("event", evt.ID), zap.Error(err))
			result = metrics.ResultSendError
			return err
		}
	}
	return nil
}

func peerAddr(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return p.Addr.String()
	}
	return "unknown"
}
