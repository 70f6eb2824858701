package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// CBState is the state of a CircuitBreaker.
type CBState int

const (
	CBClosed   CBState = iota // calls pass through
	CBOpen                    // calls fail fast with ErrCircuitOpen
	CBHalfOpen                // probes allowed until SuccessThreshold
)

var cbStateNames = [...]string{CBClosed: "closed", CBOpen: "open", CBHalfOpen: "half-open"}

func (s CBState) String() string {
	if s < 0 || int(s) >= len(cbStateNames) {
		return "unknown"
	}
	return cbStateNames[s]
}

// ErrCircuitOpen is returned by Execute without calling fn.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig tunes a breaker. Zero values take the defaults of
// DefaultCBConfig.
type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
	Now              func() time.Time
}

// DefaultCBConfig is the breaker in front of the SMTP relay.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             "smtp",
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      time.Minute,
	}
}

// CircuitBreaker stops calling a failing dependency for OpenTimeout after
// FailureThreshold consecutive errors. Safe for concurrent use.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu        sync.Mutex
	state     CBState
	fallos    int
	exitos    int
	abiertoEn time.Time
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCBConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &CircuitBreaker{cfg: cfg}
}

// State reports the current state. An open breaker whose timeout elapsed is
// reported (and becomes) half-open.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.estadoLocked()
}

// Execute calls fn unless the breaker is open.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	if cb.estadoLocked() == CBOpen {
		cb.mu.Unlock()
		return ErrCircuitOpen
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.fallos++
		if cb.state == CBHalfOpen || cb.fallos >= cb.cfg.FailureThreshold {
			cb.mover(CBOpen)
		}
		return err
	}
	switch cb.state {
	case CBClosed:
		cb.fallos = 0
	case CBHalfOpen:
		cb.exitos++
		if cb.exitos >= cb.cfg.SuccessThreshold {
			cb.mover(CBClosed)
		}
	}
	return nil
}

func (cb *CircuitBreaker) estadoLocked() CBState {
	if cb.state == CBOpen && cb.cfg.Now().Sub(cb.abiertoEn) >= cb.cfg.OpenTimeout {
		cb.mover(CBHalfOpen)
	}
	return cb.state
}

// mover must be called with mu held.
func (cb *CircuitBreaker) mover(to CBState) {
	from := cb.state
	cb.state = to
	cb.fallos, cb.exitos = 0, 0
	if to == CBOpen {
		cb.abiertoEn = cb.cfg.Now()
	}
	log.Info().Str("breaker", cb.cfg.Name).Stringer("from", from).Stringer("to", to).Msg("circuit breaker transition")
}
