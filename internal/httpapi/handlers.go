package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/agrilink/mcubus/internal/bus"
	"github.com/agrilink/mcubus/internal/store"
)

type statusResponse struct {
	State         string    `json:"state"`
	StateSince    time.Time `json:"state_since"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	Subscribers   int       `json:"subscribers"`
	Modules       int       `json:"modules"`
	Bus           bus.Stats `json:"bus"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{
		State:         "UNKNOWN",
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Subscribers:   s.bus.Len(),
		Bus:           s.bus.Stats(),
	}
	if s.machine != nil {
		resp.State = string(s.machine.Current())
		resp.StateSince = s.machine.Since()
	}
	if s.db != nil {
		n, err := s.db.ModuleCount()
		if err != nil {
			s.logger.Error("count modules", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		resp.Modules = n
	}
	writeJSON(w, resp)
}

func (s *Server) handleSubscribers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.bus.Subscribers())
}

func (s *Server) handleModules(w http.ResponseWriter, _ *http.Request) {
	if s.db == nil {
		http.Error(w, "module registry unavailable", http.StatusServiceUnavailable)
		return
	}
	mods, err := s.db.ListModules()
	if err != nil {
		s.logger.Error("list modules", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if mods == nil {
		mods = []store.Module{}
	}
	writeJSON(w, mods)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
