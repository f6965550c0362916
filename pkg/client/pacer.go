package client

import (
	"context"
	"sync"
	"time"
)

// Pacer spaces outgoing requests at least delay apart.
type Pacer struct {
	mu       sync.Mutex
	lastCall time.Time
	delay    time.Duration
}

func NewPacer(delay time.Duration) *Pacer {
	return &Pacer{delay: delay}
}

// Wait blocks until delay has passed since the previous call returned, or
// until ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.lastCall.IsZero() {
		if remaining := p.delay - time.Since(p.lastCall); remaining > 0 {
			timer := time.NewTimer(remaining)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	p.lastCall = time.Now()
	return nil
}
