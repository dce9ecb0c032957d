package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/autoparts/storefront/internal/domain/shared"
)

// Debouncer lets a request through only after the key has been quiet for
// the configured delay. A newer Wait on the same key supersedes the
// pending one, which returns shared.ErrSuperseded at once.
type Debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	pending map[string]*debounceWaiter
}

type debounceWaiter struct {
	superseded chan struct{}
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*debounceWaiter),
	}
}

// Wait blocks for the quiet period. It returns nil when this call is the
// last of its burst, shared.ErrSuperseded when a newer call arrived, or
// the context error.
func (d *Debouncer) Wait(ctx context.Context, key string) error {
	w := &debounceWaiter{superseded: make(chan struct{})}

	d.mu.Lock()
	if prev, ok := d.pending[key]; ok {
		close(prev.superseded)
	}
	d.pending[key] = w
	d.mu.Unlock()

	timer := time.NewTimer(d.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		if !d.release(key, w) {
			return shared.ErrSuperseded
		}
		return nil
	case <-w.superseded:
		return shared.ErrSuperseded
	case <-ctx.Done():
		d.release(key, w)
		return ctx.Err()
	}
}

// release drops w and reports true if it is still the pending waiter of
// key. A waiter superseded while its timer fired reports false.
func (d *Debouncer) release(key string, w *debounceWaiter) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending[key] != w {
		return false
	}
	delete(d.pending, key)
	return true
}

func (d *Debouncer) size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
