package timer

import (
	"context"
	"sync"
	"time"
)

// Loop is a cancellable periodic tick source running on its own goroutine.
type Loop struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Run starts a loop that calls fn with clock.Now() every interval until ctx
// is cancelled or Stop is called.
func Run(ctx context.Context, clock Clock, interval time.Duration, fn func(now time.Time)) *Loop {
	ctx, cancel := context.WithCancel(ctx)
	l := &Loop{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(l.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(clock.Now())
			}
		}
	}()

	return l
}

// Stop cancels the loop and waits for the goroutine to exit. Idempotent.
// Must not be called from inside fn.
func (l *Loop) Stop() {
	if l == nil {
		return
	}
	l.once.Do(func() {
		l.cancel()
		<-l.done
	})
}

// Cancel cancels the loop without waiting. Safe to call from inside fn.
func (l *Loop) Cancel() {
	if l == nil {
		return
	}
	l.cancel()
}
