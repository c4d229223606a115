// Package resilience holds the circuit breaker that guards calls to the
// upstream sentiment service.
package resilience

import (
	"log/slog"
	"sync"
	"time"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

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

type BreakerConfig struct {
	// FailureThreshold is the number of consecutive recorded failures that
	// trips the breaker from closed to open.
	FailureThreshold int
	// Cooldown is how long the breaker stays open before a single trial
	// call is allowed through.
	Cooldown time.Duration
}

// Breaker is shared by every pipeline invocation in the process and is safe
// for concurrent use. Only network-level and 5xx failures are recorded;
// 4xx responses never touch it.
type Breaker struct {
	mu              sync.Mutex
	cfg             BreakerConfig
	state           State
	failureCount    int
	lastFailureTime time.Time
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 60 * time.Second
	}
	return &Breaker{cfg: cfg, state: StateClosed}
}

// IsAvailable reports whether a call may be attempted. When the breaker is
// open and the cooldown has elapsed it moves to half-open as a side effect,
// letting exactly one trial call through.
func (b *Breaker) IsAvailable() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if time.Since(b.lastFailureTime) > b.cfg.Cooldown {
			b.setState(StateHalfOpen)
			return true
		}
		return false
	}
	return false
}

// RecordSuccess resets the failure count; a success during half-open closes
// the breaker.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount = 0
	if b.state == StateHalfOpen {
		b.setState(StateClosed)
	}
}

// RecordFailure counts a server-side or network failure. Reaching the
// threshold while closed opens the breaker; any failure during half-open
// sends it straight back to open.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount++
	b.lastFailureTime = time.Now()

	switch b.state {
	case StateClosed:
		if b.failureCount >= b.cfg.FailureThreshold {
			b.setState(StateOpen)
		}
	case StateHalfOpen:
		b.setState(StateOpen)
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) FailureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failureCount
}

// setState must be called with b.mu held.
func (b *Breaker) setState(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	slog.Warn("[Breaker] State changed",
		slog.String("from", from.String()),
		slog.String("to", to.String()),
		slog.Int("failure_count", b.failureCount))
}
