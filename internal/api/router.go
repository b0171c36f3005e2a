package api

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "not found")
	})

	return r
}

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status  string      `json:"status"`
	Version string      `json:"version"`
	MQTT    MQTTHealth  `json:"mqtt"`
	Store   StoreHealth `json:"store"`
	Loop    LoopHealth  `json:"loop"`
}

// MQTTHealth reports the broker connection.
type MQTTHealth struct {
	Connected bool `json:"connected"`
}

// StoreHealth reports the result of a store probe.
type StoreHealth struct {
	Backend string `json:"backend"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// LoopHealth reports the subscription loop state.
type LoopHealth struct {
	State string `json:"state"`
}

// handleHealth probes the store and reports 503 unless both the broker
// and the store are available.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:  "ok",
		Version: s.version,
		MQTT:    MQTTHealth{Connected: s.runtime.BrokerConnected()},
		Store:   StoreHealth{Backend: s.backend, Healthy: true},
		Loop:    LoopHealth{State: s.runtime.LoopState()},
	}

	if err := s.store.HealthCheck(ctx); err != nil {
		resp.Store.Healthy = false
		resp.Store.Error = err.Error()
	}

	status := http.StatusOK
	if !resp.MQTT.Connected || !resp.Store.Healthy {
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, resp)
}

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	Timestamp     string         `json:"timestamp"`
	Version       string         `json:"version"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Backend       string         `json:"backend"`
	LoopState     string         `json:"loop_state"`
	Runtime       RuntimeMetrics `json:"runtime"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// handleStatus returns runtime statistics.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	writeJSON(w, http.StatusOK, StatusResponse{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Backend:       s.backend,
		LoopState:     s.runtime.LoopState(),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
	})
}
