package clients

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// State is the position of a circuit breaker.
type State int

const (
	// StateClosed lets every call through.
	StateClosed State = iota

	// StateOpen rejects calls until the cool-down has passed.
	StateOpen

	// StateHalfOpen lets a bounded number of probes through.
	StateHalfOpen
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var circuitState = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "quote_engine",
	Subsystem: "client",
	Name:      "circuit_state",
	Help:      "Circuit breaker position per downstream (0 closed, 1 open, 2 half-open).",
}, []string{"downstream"})

// CircuitBreakerConfig configures a CircuitBreaker.
type CircuitBreakerConfig struct {
	// Name labels the breaker's gauge. Empty disables the gauge.
	Name string

	// MaxFailures consecutive failures open a closed breaker.
	MaxFailures int

	// Timeout is the cool-down before an open breaker admits a probe.
	Timeout time.Duration

	// HalfOpenLimit bounds concurrent probes, and is also the number of
	// successful probes needed to close again.
	HalfOpenLimit int
}

// CircuitBreaker stops calls to a downstream that keeps failing.
//
//	closed    --MaxFailures failures-->  open
//	open      --Timeout elapsed------->  half-open
//	half-open --HalfOpenLimit ok------>  closed
//	half-open --any failure----------->  open
type CircuitBreaker struct {
	mu        sync.RWMutex
	cfg       CircuitBreakerConfig
	state     State
	failures  int
	successes int
	probes    int
	openedAt  time.Time
	onChange  func(from, to State)
	now       func() time.Time
}

// NewCircuitBreaker returns a closed breaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	cb := &CircuitBreaker{cfg: cfg, now: time.Now}
	cb.publish()

	return cb
}

// OnStateChange registers fn to run, on its own goroutine, after every
// transition.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.onChange = fn
}

// Allow reports whether a call may proceed. Every true result must be
// followed by exactly one RecordSuccess or RecordFailure.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.cfg.Timeout {
			return false
		}

		cb.transitionTo(StateHalfOpen)
		cb.probes = 1

		return true
	case StateHalfOpen:
		if cb.probes >= cb.cfg.HalfOpenLimit {
			return false
		}

		cb.probes++

		return true
	default:
		return false
	}
}

// RecordSuccess reports a call that reached the downstream and got an answer.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.probes--
		cb.successes++

		if cb.successes >= cb.cfg.HalfOpenLimit {
			cb.transitionTo(StateClosed)
		}
	}
}

// RecordFailure reports a call that failed at the transport or with a 5xx.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failures++

		if cb.failures >= cb.cfg.MaxFailures {
			cb.openedAt = cb.now()
			cb.transitionTo(StateOpen)
		}
	case StateHalfOpen:
		cb.probes--
		cb.openedAt = cb.now()
		cb.transitionTo(StateOpen)
	}
}

// State returns the current position.
func (cb *CircuitBreaker) State() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	return cb.state
}

// transitionTo must be called with mu held.
func (cb *CircuitBreaker) transitionTo(next State) {
	if cb.state == next {
		return
	}

	prev := cb.state
	cb.state = next
	cb.failures = 0
	cb.successes = 0

	if next == StateClosed {
		cb.probes = 0
	}

	cb.publish()

	if cb.onChange != nil {
		go cb.onChange(prev, next)
	}
}

func (cb *CircuitBreaker) publish() {
	if cb.cfg.Name != "" {
		circuitState.WithLabelValues(cb.cfg.Name).Set(float64(cb.state))
	}
}
