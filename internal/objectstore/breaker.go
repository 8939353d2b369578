package objectstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("object store circuit open")

type breakerState string

const (
	stateClosed   breakerState = "closed"
	stateOpen     breakerState = "open"
	stateHalfOpen breakerState = "half_open"
)

type BreakerConfig struct {
	Timeout          time.Duration // hard timeout per call
	FailureThreshold int           // consecutive failures to open
	Cooldown         time.Duration // time open before half-open
	HalfOpenMaxCalls int           // trial calls allowed while half-open
}

// Breaker guards a remote Store with a per-call timeout and a circuit breaker,
// so a hung bucket fails seller uploads fast instead of piling up requests.
// Calls are never retried.
type Breaker struct {
	inner Store
	cfg   BreakerConfig
	now   func() time.Time

	mu                  sync.Mutex
	state               breakerState
	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
}

func NewBreaker(inner Store, cfg BreakerConfig) *Breaker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}

	return &Breaker{
		inner: inner,
		cfg:   cfg,
		now:   time.Now,
		state: stateClosed,
	}
}

func (b *Breaker) Put(ctx context.Context, key, contentType string, data []byte) (Object, error) {
	if !b.allow() {
		return Object{}, fmt.Errorf("%w: %w", ErrUploadFailed, ErrCircuitOpen)
	}

	cctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	obj, err := b.inner.Put(cctx, key, contentType, data)
	b.record(err)

	return obj, err
}

func (b *Breaker) Delete(ctx context.Context, key string) error {
	if !b.allow() {
		return fmt.Errorf("%w: %w", ErrUploadFailed, ErrCircuitOpen)
	}

	cctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	err := b.inner.Delete(cctx, key)
	b.record(err)

	return err
}

func (b *Breaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.state)
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateOpen:
		if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
			return false
		}
		b.state = stateHalfOpen
		b.halfOpenInFlight = 1
		return true
	case stateHalfOpen:
		if b.halfOpenInFlight >= b.cfg.HalfOpenMaxCalls {
			return false
		}
		b.halfOpenInFlight++
		return true
	default:
		return true
	}
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == stateHalfOpen && b.halfOpenInFlight > 0 {
		b.halfOpenInFlight--
	}

	// a key collision says nothing about the bucket's health
	if err == nil || errors.Is(err, ErrExists) {
		b.consecutiveFailures = 0
		b.state = stateClosed
		return
	}

	b.consecutiveFailures++

	if b.state == stateHalfOpen || b.consecutiveFailures >= b.cfg.FailureThreshold {
		b.state = stateOpen
		b.openedAt = b.now()
	}
}
