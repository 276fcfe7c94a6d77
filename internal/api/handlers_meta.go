package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/policylens/policylens/internal/llm"
)

// handleHealth probes the external service with a cheap secondary-model
// call so the check reflects real readiness, not just process liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "healthy"
	probe := map[string]any{}

	resp, err := s.llm.Complete(ctx, llm.Request{
		Prompt:      "Respond with 'OK' if you can process this message.",
		Model:       s.cfg.SecondaryModel,
		Temperature: 0.1,
		MaxTokens:   10,
	})
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		status = "degraded"
		probe["error"] = err.Error()
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		probe["response"] = resp.Content
		probe["latency_ms"] = resp.Latency.Milliseconds()
	}

	json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"llm_probe": probe,
	})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"primary_model":   s.cfg.PrimaryModel,
		"secondary_model": s.cfg.SecondaryModel,
		"rate_limit":      s.cfg.MaxRequestsPerMinute,
	})
}

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"primary_model": s.cfg.PrimaryModel,
		"stats":         s.stats.Snapshot(),
	})
}
