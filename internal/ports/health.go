package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrDuplicateChecker is returned when a checker name is registered twice.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// HealthChecker is implemented by adapters that can report their health.
//
//	func (s *GormStore) Name() string { return "postgres" }
//
//	func (s *GormStore) Check(ctx context.Context) error {
//	    return s.sqlDB.PingContext(ctx)
//	}
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// Optional is implemented by checkers whose failure degrades the service
// instead of taking it down. The assistant is optional: instant updates keep
// working without it.
type Optional interface {
	Optional() bool
}

// HealthRegistry aggregates health checks.
type HealthRegistry interface {
	Register(checker HealthChecker) error
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus represents the overall health state.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult contains the aggregated health check results.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// CheckResult contains the result of a single health check.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// DefaultHealthRegistry runs registered checks concurrently, each bounded by
// a per-check timeout.
type DefaultHealthRegistry struct {
	mu       sync.RWMutex
	checkers []HealthChecker
	timeout  time.Duration
}

// DefaultCheckTimeout bounds a single check when none is configured.
const DefaultCheckTimeout = 2 * time.Second

// NewHealthRegistry creates a registry. A non-positive timeout uses
// DefaultCheckTimeout.
func NewHealthRegistry(timeout time.Duration) *DefaultHealthRegistry {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}

	return &DefaultHealthRegistry{timeout: timeout}
}

// Register adds a checker. Names must be unique.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := checker.Name()
	for _, c := range r.checkers {
		if c.Name() == name {
			return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
		}
	}

	r.checkers = append(r.checkers, checker)

	return nil
}

// CheckAll runs every check. A failing required check makes the result
// unhealthy; a failing optional one makes it degraded.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	checkers := append([]HealthChecker(nil), r.checkers...)
	r.mu.RUnlock()

	result := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(checkers)),
		Timestamp: time.Now(),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, checker := range checkers {
		wg.Go(func() {
			checkCtx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()

			start := time.Now()
			err := checker.Check(checkCtx)

			cr := &CheckResult{Status: HealthStatusHealthy, Duration: time.Since(start)}

			if err != nil {
				cr.Status = HealthStatusUnhealthy
				cr.Message = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()

			result.Checks[checker.Name()] = cr

			if err == nil {
				return
			}

			if opt, ok := checker.(Optional); ok && opt.Optional() {
				if result.Status == HealthStatusHealthy {
					result.Status = HealthStatusDegraded
				}

				return
			}

			result.Status = HealthStatusUnhealthy
		})
	}

	wg.Wait()

	return result
}
