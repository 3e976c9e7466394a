// Package bus carries "screen changed" hints from the admin surface to
// display sessions. A notification carries no data: receivers re-read the
// store, which stays the single source of truth.
package bus

import (
	"context"
	"sync"
)

type Notifier interface {
	Notify(ctx context.Context, pin string) error
}

// Subscriber delivers a signal on the returned channel whenever pin changes.
// Signals coalesce: a slow reader sees at most one pending signal.
// cancel releases the subscription and closes the channel.
type Subscriber interface {
	Subscribe(pin string) (signals <-chan struct{}, cancel func())
}

// Local is an in-process bus.
type Local struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

var (
	_ Notifier   = (*Local)(nil)
	_ Subscriber = (*Local)(nil)
)

func NewLocal() *Local {
	return &Local{subs: make(map[string]map[chan struct{}]struct{})}
}

func (l *Local) Notify(_ context.Context, pin string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ch := range l.subs[pin] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

func (l *Local) Subscribe(pin string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	l.mu.Lock()
	if l.subs[pin] == nil {
		l.subs[pin] = make(map[chan struct{}]struct{})
	}
	l.subs[pin][ch] = struct{}{}
	l.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.subs[pin], ch)
			if len(l.subs[pin]) == 0 {
				delete(l.subs, pin)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers returns the number of live subscriptions for pin.
func (l *Local) Subscribers(pin string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs[pin])
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Notify(context.Context, string) error { return nil }
