// Package ratelimit paces UI interactions so the storefront is not hammered
// between clicks, selections and page loads.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

type Limiter interface {
	Wait(ctx context.Context) error
}

// FixedDelay enforces a minimum gap between consecutive actions on one
// session. It is safe for concurrent use, though each worker owns its own
// instance in practice.
type FixedDelay struct {
	mu         sync.Mutex
	delay      time.Duration
	lastAction time.Time
}

func NewFixedDelay(delay time.Duration) *FixedDelay {
	return &FixedDelay{delay: delay}
}

func (l *FixedDelay) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if elapsed := time.Since(l.lastAction); elapsed < l.delay {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.delay - elapsed):
		}
	}
	l.lastAction = time.Now()
	return nil
}

// None is a no-op limiter for tests.
type None struct{}

func (None) Wait(context.Context) error { return nil }
