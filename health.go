package shoot

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
)

// HealthStatus tracks application health
type HealthStatus struct {
	mu      sync.RWMutex
	healthy bool
	ready   bool
}

// NewHealthStatus returns a status that is neither healthy nor ready.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{}
}

func (h *HealthStatus) SetHealthy(healthy bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.healthy = healthy
}

func (h *HealthStatus) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = ready
}

func (h *HealthStatus) IsHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.healthy
}

func (h *HealthStatus) IsReady() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ready
}

// Handler serves /health (is the app alive?) and /ready (can it take traffic?).
func (h *HealthStatus) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, h.IsHealthy(), "healthy", "unhealthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, h.IsReady(), "ready", "not ready")
	})
	return mux
}

func writeStatus(w http.ResponseWriter, ok bool, up, down string) {
	w.Header().Set("Content-Type", "application/json")
	status, code := down, http.StatusServiceUnavailable
	if ok {
		status, code = up, http.StatusOK
	}
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func startHealthServer(addr string, status *HealthStatus, logger *slog.Logger) *http.Server {
	server := &http.Server{
		Addr:    addr,
		Handler: status.Handler(),
	}

	go func() {
		logger.Info("starting health server", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server error", slog.Any("error", err))
		}
	}()

	return server
}
