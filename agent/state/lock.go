package state

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
)

type keyedSlot struct {
	ch   chan struct{}
	refs int
}

// KeyedLocker serializes work per key. Entries exist only while someone holds
// or waits for the key.
type KeyedLocker struct {
	slots *xsync.MapOf[string, *keyedSlot]
}

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{slots: xsync.NewMapOf[string, *keyedSlot]()}
}

// Lock blocks until key is free or ctx is done. The returned func releases
// the key and must be called exactly once.
func (l *KeyedLocker) Lock(ctx context.Context, key string) (func(), error) {
	s, _ := l.slots.Compute(key, func(old *keyedSlot, loaded bool) (*keyedSlot, bool) {
		if !loaded {
			old = &keyedSlot{ch: make(chan struct{}, 1)}
		}
		old.refs++
		return old, false
	})

	select {
	case s.ch <- struct{}{}:
		return func() {
			<-s.ch
			l.release(key)
		}, nil
	case <-ctx.Done():
		l.release(key)
		return nil, ctx.Err()
	}
}

func (l *KeyedLocker) release(key string) {
	l.slots.Compute(key, func(old *keyedSlot, loaded bool) (*keyedSlot, bool) {
		if !loaded {
			return nil, true
		}
		old.refs--
		return old, old.refs <= 0
	})
}

// Len reports how many keys are currently held or awaited.
func (l *KeyedLocker) Len() int { return l.slots.Size() }
