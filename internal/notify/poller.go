// Package notify provides a fixed-interval poller for data that is cheap to
// re-fetch and safe to show slightly stale, such as notification feeds and
// reference lists.
package notify

import (
	"context"
	"sync"
	"time"
)

// Poller re-runs Fetch on a fixed interval. Ticks are never skipped: a slow
// fetch overlaps the next one, and whichever completes last supplies the
// value readers see. Failed fetches keep the previous value.
type Poller[T any] struct {
	Interval time.Duration
	Fetch    func(ctx context.Context) (T, error)

	// OnError, when set, observes fetch failures.
	OnError func(err error)

	mu     sync.Mutex
	latest T
	ready  bool
}

// Run polls until ctx is done, fetching once immediately. In-flight fetches
// share ctx, so stopping the poller abandons them too.
func (p *Poller[T]) Run(ctx context.Context) {
	p.fetchOnce(ctx)
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			go p.fetchOnce(ctx)
		}
	}
}

func (p *Poller[T]) fetchOnce(ctx context.Context) {
	value, err := p.Fetch(ctx)
	if err != nil {
		if p.OnError != nil {
			p.OnError(err)
		}
		return
	}
	p.mu.Lock()
	p.latest = value
	p.ready = true
	p.mu.Unlock()
}

// Latest returns the most recently fetched value and whether any fetch has
// succeeded yet.
func (p *Poller[T]) Latest() (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.ready
}
