package httpclient

import (
	"errors"
	"sync"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"go.uber.org/zap"
)

type State int

const (
	StateClosed State = iota + 1
	StateOpen
	StateHalfOpen
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreaker struct {
	mu          sync.Mutex
	state       State
	failures    int
	maxFailures int
	openSince   time.Time
	openTimeout time.Duration
	now         func() time.Time
}

func NewCircuitBreaker(maxFailures int, openTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		state:       StateClosed,
		maxFailures: maxFailures,
		openTimeout: openTimeout,
		now:         time.Now,
	}
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) CheckBeforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil

	case StateOpen:
		if cb.now().Sub(cb.openSince) > cb.openTimeout {
			logger.Warn("circuit breaker: open -> half-open")
			cb.state = StateHalfOpen
			return nil
		}
		return ErrCircuitOpen

	case StateHalfOpen:
		// one probe at a time
		return ErrCircuitOpen
	}
	return nil
}

func (cb *CircuitBreaker) OnSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		logger.Info("circuit breaker: half-open -> closed")
		cb.state = StateClosed
		cb.failures = 0

	case StateClosed:
		cb.failures = 0
	}
}

func (cb *CircuitBreaker) OnFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		logger.Error("circuit breaker: half-open -> open (probe failed)")
		cb.state = StateOpen
		cb.openSince = cb.now()

	case StateClosed:
		cb.failures++
		logger.Warn("circuit breaker: failure recorded", zap.Int("count", cb.failures))

		if cb.failures >= cb.maxFailures {
			logger.Error("circuit breaker: closed -> open (threshold reached)")
			cb.state = StateOpen
			cb.openSince = cb.now()
		}
	}
}
