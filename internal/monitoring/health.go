package monitoring

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

type HealthCheckFunc func(ctx context.Context) error

type HealthCheck struct {
	Name     string    `json:"name"`
	Status   string    `json:"status"`
	Message  string    `json:"message,omitempty"`
	Duration string    `json:"duration"`
	LastRun  time.Time `json:"last_run"`
}

// HealthChecker runs named dependency checks for the readiness probe.
type HealthChecker struct {
	mu        sync.RWMutex
	checks    map[string]HealthCheckFunc
	timeout   time.Duration
	startTime time.Time
}

func NewHealthChecker(timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthChecker{
		checks:    make(map[string]HealthCheckFunc),
		timeout:   timeout,
		startTime: time.Now(),
	}
}

// Register adds or replaces the check stored under name.
func (h *HealthChecker) Register(name string, check HealthCheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// RunChecks executes every registered check concurrently, each bounded by
// the checker's timeout. Results are sorted by name.
func (h *HealthChecker) RunChecks(ctx context.Context) []HealthCheck {
	h.mu.RLock()
	checks := make(map[string]HealthCheckFunc, len(h.checks))
	for name, fn := range h.checks {
		checks[name] = fn
	}
	h.mu.RUnlock()

	results := make([]HealthCheck, 0, len(checks))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, fn := range checks {
		wg.Add(1)
		go func(name string, fn HealthCheckFunc) {
			defer wg.Done()
			result := h.run(ctx, name, fn)

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		}(name, fn)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results
}

func (h *HealthChecker) run(ctx context.Context, name string, fn HealthCheckFunc) HealthCheck {
	checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	err := fn(checkCtx)

	result := HealthCheck{
		Name:     name,
		Status:   StatusHealthy,
		Duration: time.Since(start).String(),
		LastRun:  start.UTC(),
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Message = err.Error()
		HealthCheckStatus.WithLabelValues(name).Set(0)
	} else {
		HealthCheckStatus.WithLabelValues(name).Set(1)
	}
	return result
}

// Uptime reports how long the checker has existed.
func (h *HealthChecker) Uptime() time.Duration {
	return time.Since(h.startTime)
}

// LivenessHandler always answers {"status":"ok"}.
func LivenessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// ReadinessHandler answers 200 when every check passes and 503 otherwise.
func (h *HealthChecker) ReadinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := h.RunChecks(c.Request.Context())

		ready := true
		for _, check := range checks {
			if check.Status != StatusHealthy {
				ready = false
				break
			}
		}

		status := http.StatusOK
		label := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			label = "not ready"
		}

		c.JSON(status, gin.H{
			"status":    label,
			"checks":    checks,
			"uptime":    h.Uptime().Round(time.Second).String(),
			"timestamp": time.Now().UTC(),
		})
	}
}
