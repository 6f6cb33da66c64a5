package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Pacer keeps a fixed gap between sequential items. The gap is measured from
// the end of the previous item, so slow items never eat into it. Call Wait
// before an item and Done after it.
type Pacer struct {
	mu       sync.Mutex
	interval time.Duration
	lastDone time.Time
}

// NewPacer creates a pacer. A zero interval never blocks.
func NewPacer(interval time.Duration) *Pacer {
	if interval < 0 {
		interval = 0
	}
	return &Pacer{interval: interval}
}

// Wait blocks until interval has passed since the last Done. It returns
// immediately before the first Done.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	last := p.lastDone
	p.mu.Unlock()
	if p.interval == 0 || last.IsZero() {
		return nil
	}

	delay := time.Until(last.Add(p.interval))
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Done marks the end of the current item.
func (p *Pacer) Done() {
	p.mu.Lock()
	p.lastDone = time.Now()
	p.mu.Unlock()
}

// Interval returns the configured spacing.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}
