package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/vitalis/turnos/pkg/metrics"
)

// Статусы проверки
const (
	statusHealthy   = "healthy"
	statusWarning   = "warning"
	statusUnhealthy = "unhealthy"
)

// Pinger проверяет доступность зависимости
type Pinger interface {
	Ping(ctx context.Context) error
}

// CatalogState сообщает, загружен ли каталог процедур
type CatalogState interface {
	Loaded() bool
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
	Uptime    string                 `json:"uptime,omitempty"`
	Checks    map[string]string      `json:"checks"`
	Metrics   map[string]interface{} `json:"metrics,omitempty"`
}

// HealthChecker проверяет состояние системы
type HealthChecker struct {
	storage   Pinger
	catalog   CatalogState
	startTime time.Time
	version   string
}

// NewHealthChecker создает новый health checker
func NewHealthChecker(storage Pinger, catalog CatalogState, version string) *HealthChecker {
	return &HealthChecker{
		storage:   storage,
		catalog:   catalog,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthHandler обрабатывает запросы health check
func (h *HealthChecker) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	overall := statusHealthy

	if err := h.checkStorage(ctx); err != nil {
		checks["storage"] = statusUnhealthy + ": " + err.Error()
		overall = statusUnhealthy
	} else {
		checks["storage"] = statusHealthy
	}

	// Пустой каталог не ломает запись, только деградирует форму
	if h.catalog != nil && !h.catalog.Loaded() {
		checks["catalog"] = statusWarning + ": treatments not loaded"
		if overall == statusHealthy {
			overall = statusWarning
		}
	} else {
		checks["catalog"] = statusHealthy
	}

	checks["memory"] = h.checkMemory()
	checks["goroutines"] = h.checkGoroutines()
	if overall == statusHealthy && (checks["memory"] != statusHealthy || checks["goroutines"] != statusHealthy) {
		overall = statusWarning
	}

	response := HealthResponse{
		Status:    overall,
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Checks:    checks,
		Metrics:   h.collectMetrics(),
	}

	w.Header().Set("Content-Type", "application/json")
	if overall == statusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	_ = json.NewEncoder(w).Encode(response)
}

func (h *HealthChecker) checkStorage(ctx context.Context) error {
	if h.storage == nil {
		return nil
	}
	return h.storage.Ping(ctx)
}

// checkMemory проверяет использование памяти
func (h *HealthChecker) checkMemory() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	metrics.MemoryUsage.Set(float64(m.Alloc))

	const warningLimit = 256 * 1024 * 1024
	const criticalLimit = 512 * 1024 * 1024

	switch {
	case m.Alloc > criticalLimit:
		return "critical: memory usage > 512MB"
	case m.Alloc > warningLimit:
		return "warning: memory usage > 256MB"
	}
	return statusHealthy
}

// checkGoroutines проверяет количество горутин
func (h *HealthChecker) checkGoroutines() string {
	count := runtime.NumGoroutine()

	metrics.GoroutinesCount.Set(float64(count))

	switch {
	case count > 1000:
		return "critical: too many goroutines"
	case count > 200:
		return "warning: high goroutine count"
	}
	return statusHealthy
}

func (h *HealthChecker) collectMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"memory": map[string]interface{}{
			"alloc_bytes": m.Alloc,
			"sys_bytes":   m.Sys,
			"num_gc":      m.NumGC,
		},
		"runtime": map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"version":    runtime.Version(),
		},
		"uptime_seconds": time.Since(h.startTime).Seconds(),
	}
}
