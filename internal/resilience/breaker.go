package resilience

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// State is a circuit breaker state.
type State int

const (
	// Closed lets calls through.
	Closed State = iota
	// Open rejects calls until the reset timeout passes.
	Open
	// HalfOpen lets a probe through to test recovery.
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

// ErrCircuitOpen is returned when a source's breaker rejects a call.
var ErrCircuitOpen = eris.New("resilience: circuit open")

// BreakerConfig controls when a breaker opens and how long it stays open.
type BreakerConfig struct {
	FailureThreshold int
	ResetTimeout     time.Duration
	// ShouldTrip decides which errors count as failures. Nil counts all.
	ShouldTrip func(err error) bool
}

// DefaultBreakerConfig returns the per-source defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{FailureThreshold: 5, ResetTimeout: 60 * time.Second}
}

// Breaker isolates one source after consecutive failures.
type Breaker struct {
	name     string
	cfg      BreakerConfig
	onChange func(name string, from, to State)
	now      func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
}

// NewBreaker creates a closed breaker.
func NewBreaker(name string, cfg BreakerConfig) *Breaker {
	def := DefaultBreakerConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = def.ResetTimeout
	}
	return &Breaker{name: name, cfg: cfg, now: time.Now}
}

// Execute runs fn unless the breaker is open.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.allow(); err != nil {
		return err
	}
	err := fn(ctx)
	b.record(err)
	return err
}

// State returns the current state, reporting an expired open breaker as
// half-open.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Open && b.now().Sub(b.openedAt) >= b.cfg.ResetTimeout {
		return HalfOpen
	}
	return b.state
}

// Failures returns the consecutive failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Reset closes the breaker.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.set(Closed)
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != Open {
		return nil
	}
	if b.now().Sub(b.openedAt) >= b.cfg.ResetTimeout {
		b.set(HalfOpen)
		return nil
	}
	return eris.Wrapf(ErrCircuitOpen, "source %s", b.name)
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	trip := err != nil
	if trip && b.cfg.ShouldTrip != nil {
		trip = b.cfg.ShouldTrip(err)
	}
	if !trip {
		b.failures = 0
		b.set(Closed)
		return
	}

	b.failures++
	if b.state == HalfOpen || b.failures >= b.cfg.FailureThreshold {
		b.openedAt = b.now()
		b.set(Open)
	}
}

// set must be called with mu held.
func (b *Breaker) set(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	zap.L().Info("resilience: breaker state change",
		zap.String("source", b.name),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
	)
	if b.onChange != nil {
		b.onChange(b.name, from, to)
	}
}

// Breakers hands out one breaker per source id.
type Breakers struct {
	cfg      BreakerConfig
	onChange func(name string, from, to State)

	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewBreakers creates a per-source breaker set. onChange may be nil.
func NewBreakers(cfg BreakerConfig, onChange func(name string, from, to State)) *Breakers {
	return &Breakers{cfg: cfg, onChange: onChange, breakers: make(map[string]*Breaker)}
}

// Get returns the breaker for a source, creating it on first use.
func (s *Breakers) Get(source string) *Breaker {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.breakers[source]
	if !ok {
		b = NewBreaker(source, s.cfg)
		b.onChange = s.onChange
		s.breakers[source] = b
	}
	return b
}

// States returns a snapshot of every breaker state keyed by source.
func (s *Breakers) States() map[string]State {
	s.mu.Lock()
	names := make([]string, 0, len(s.breakers))
	for n := range s.breakers {
		names = append(names, n)
	}
	s.mu.Unlock()
	sort.Strings(names)

	out := make(map[string]State, len(names))
	for _, n := range names {
		out[n] = s.Get(n).State()
	}
	return out
}
