package circuitbreaker

import (
	"sync"
	"time"
)

// State of the breaker.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config for a Breaker.
type Config struct {
	// FailureThreshold consecutive failures trip the breaker open.
	FailureThreshold int
	// ResetTimeout is how long the breaker stays open before probing.
	ResetTimeout time.Duration
	// HalfOpenMaxCalls bounds the probe calls allowed while half-open.
	HalfOpenMaxCalls int
}

// Breaker trips after consecutive failures and probes the upstream again
// after ResetTimeout. All transitions happen under one mutex; call volume
// here is a single dashboard's traffic, not a hot path.
type Breaker struct {
	mu            sync.Mutex
	cfg           Config
	state         State
	failures      int
	halfOpenCalls int
	changedAt     time.Time
}

func New(cfg Config) *Breaker {
	return &Breaker{cfg: cfg, state: Closed, changedAt: time.Now()}
}

// Allow reports whether a call may proceed right now.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return true
	case Open:
		if time.Since(b.changedAt) >= b.cfg.ResetTimeout {
			b.transition(HalfOpen)
			b.halfOpenCalls = 1
			return true
		}
		return false
	case HalfOpen:
		if b.halfOpenCalls < b.cfg.HalfOpenMaxCalls {
			b.halfOpenCalls++
			return true
		}
		return false
	default:
		return false
	}
}

// Success reports a successful call.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if b.state == HalfOpen {
		b.transition(Closed)
	}
}

// Failure reports a failed call.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.transition(Open)
		}
	case HalfOpen:
		b.transition(Open)
	}
}

// CurrentState returns the breaker state.
func (b *Breaker) CurrentState() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Metrics returns a snapshot for the admin surface.
func (b *Breaker) Metrics() map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return map[string]interface{}{
		"state":             b.state.String(),
		"failures":          b.failures,
		"failure_threshold": b.cfg.FailureThreshold,
		"reset_timeout":     b.cfg.ResetTimeout.String(),
		"time_in_state":     time.Since(b.changedAt).String(),
	}
}

func (b *Breaker) transition(s State) {
	b.state = s
	b.changedAt = time.Now()
	if s != HalfOpen {
		b.halfOpenCalls = 0
	}
	if s == Closed {
		b.failures = 0
	}
}
