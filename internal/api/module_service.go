package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agrilink/mcubus/internal/paths"
	"github.com/agrilink/mcubus/internal/store"
	mcubusv1 "github.com/agrilink/mcubus/proto/mcubus/v1"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func (s *Service) Register(ctx context.Context, req *mcubusv1.RegisterRequest) (*mcubusv1.RegisterReply, error) {
	if s.db == nil {
		return nil, grpcstatus.Errorf(codes.Unavailable, "module store not initialized")
	}

	id := req.GetModuleId()
	if id == "" {
		id = "module_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	} else if err := paths.ValidateModuleID(id); err != nil {
		return nil, grpcstatus.Errorf(codes.InvalidArgument, "%v", err)
	}
	mod := &store.Module{
		ID:           id,
		Type:         req.GetModuleType(),
		Metadata:     req.GetMetadata(),
		Peer:         peerAddr(ctx),
		RegisteredAt: time.Now(),
	}
	if err := s.db.UpsertModule(mod); err != nil {
		return nil, grpcstatus.Errorf(codes.Internal, "register module: %v", err)
	}

	s.logger.Info("module registered",
		zap.String("module", id),
		zap.String("type", mod.Type),
		zap.String("peer", mod.Peer),
	)
	return &mcubusv1.RegisterReply{
		Success:    true,
		AssignedId: id,
		Message:    fmt.Sprintf("Registered successfully at %s", mod.RegisteredAt.Format(time.RFC3339)),
	}, nil
}

func (s *Service) UnRegister(_ context.Context, req *mcubusv1.UnRegisterRequest) (*mcubusv1.UnRegisterReply, error) {
	if s.db == nil {
		return nil, grpcstatus.Errorf(codes.Unavailable, "module store not initialized")
	}
	if req.GetModuleId() == "" {
		return nil, grpcstatus.Errorf(codes.InvalidArgument, "module_id is required")
	}

	removed, err := s.db.DeleteModule(req.GetModuleId())
	if err != nil {
		return nil, grpcstatus.Errorf(codes.Internal, "unregister module: %v", err)
	}
	if !removed {
		s.logger.Info("unregister of unknown module", zap.String("module", req.GetModuleId()))
		return &mcubusv1.UnRegisterReply{Success: false, Message: "Module not found"}, nil
	}

	s.logger.Info("module unregistered", zap.String("module", req.GetModuleId()))
	return &mcubusv1.UnRegisterReply{Success: true, Message: "Unregistered successfully"}, nil
}

func (s *Service) ListModules(_ context.Context, _ *mcubusv1.ListModulesRequest) (*mcubusv1.ListModulesReply, error) {
	if s.db == nil {
		return nil, grpcstatus.Errorf(codes.Unavailable, "module store not initialized")
	}

	mods, err := s.db.ListModules()
	if err != nil {
		return nil, grpcstatus.Errorf(codes.Internal, "list modules: %v", err)
	}

	reply := &mcubusv1.ListModulesReply{Modules: make([]*mcubusv1.ModuleInfo, 0, len(mods))}
	for _, m := range mods {
		reply.Modules = append(reply.Modules, moduleToProto(&m))
	}
	return reply, nil
}

func moduleToProto(m *store.Module) *mcubusv1.ModuleInfo {
	return &mcubusv1.ModuleInfo{
		ModuleId:     m.ID,
		ModuleType:   m.Type,
		Metadata:     m.Metadata,
		Peer:         m.Peer,
		RegisteredAt: timestamppb.New(m.RegisteredAt),
	}
}
