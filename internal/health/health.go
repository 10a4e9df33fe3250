package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

const probeTimeout = 3 * time.Second

// Status — итог проверки зависимости.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// Probe проверяет доступность одной зависимости.
type Probe func(ctx context.Context) error

// Check — результат одной проверки в ответе.
type Check struct {
	Status     Status `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Response — тело ответа health-эндпоинта.
type Response struct {
	Status        Status           `json:"status"`
	Timestamp     time.Time        `json:"timestamp"`
	Checks        map[string]Check `json:"checks,omitempty"`
	Version       string           `json:"version,omitempty"`
	UptimeSeconds int64            `json:"uptime_seconds"`
}

// Handler прогоняет зарегистрированные проверки зависимостей.
type Handler struct {
	mu        sync.RWMutex
	probes    map[string]Probe
	version   string
	startTime time.Time
}

// NewHandler создаёт health-обработчик.
func NewHandler(version string) *Handler {
	return &Handler{
		probes:    make(map[string]Probe),
		version:   version,
		startTime: time.Now(),
	}
}

// RegisterProbe добавляет проверку зависимости под именем name.
func (h *Handler) RegisterProbe(name string, probe Probe) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.probes[name] = probe
}

func (h *Handler) snapshot() map[string]Probe {
	h.mu.RLock()
	defer h.mu.RUnlock()

	probes := make(map[string]Probe, len(h.probes))
	for name, probe := range h.probes {
		probes[name] = probe
	}
	return probes
}

// ServeHTTP возвращает развёрнутый статус всех зависимостей.
// 503, если хотя бы одна проверка провалилась.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]Check)
	overall := StatusHealthy

	for name, probe := range h.snapshot() {
		check := runProbe(r.Context(), probe)
		checks[name] = check
		if check.Status == StatusUnhealthy {
			overall = StatusUnhealthy
		}
	}

	statusCode := http.StatusOK
	if overall == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(Response{
		Status:        overall,
		Timestamp:     time.Now(),
		Checks:        checks,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	})
}

// ReadinessHandler — короткий ответ для probe оркестратора.
func (h *Handler) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	for _, probe := range h.snapshot() {
		if check := runProbe(r.Context(), probe); check.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// LivenessHandler всегда отвечает 200: процесс жив.
func LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func runProbe(ctx context.Context, probe Probe) Check {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	err := probe(probeCtx)
	elapsed := time.Since(start)

	if err != nil {
		return Check{Status: StatusUnhealthy, Message: err.Error(), DurationMs: elapsed.Milliseconds()}
	}
	return Check{Status: StatusHealthy, DurationMs: elapsed.Milliseconds()}
}
