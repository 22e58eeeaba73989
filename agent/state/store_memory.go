package state

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore keeps sessions in process memory, bounded by an entry count
// (least recently saved evicted first) and a TTL measured from the last save.
// Sessions are deep-copied on the way in and out.
type MemoryStore struct {
	cache *expirable.LRU[Key, *Session]
}

type memoryOptions struct {
	maxEntries int
	ttl        time.Duration
}

type MemoryOption func(*memoryOptions)

// WithMaxEntries bounds the store; n <= 0 means unbounded.
func WithMaxEntries(n int) MemoryOption {
	return func(o *memoryOptions) { o.maxEntries = n }
}

// WithMemoryTTL expires sessions ttl after their last save; ttl <= 0 disables expiry.
func WithMemoryTTL(ttl time.Duration) MemoryOption {
	return func(o *memoryOptions) { o.ttl = ttl }
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	o := memoryOptions{ttl: defaultStoreTTL}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.maxEntries < 0 {
		o.maxEntries = 0
	}
	return &MemoryStore{cache: expirable.NewLRU[Key, *Session](o.maxEntries, nil, o.ttl)}
}

// Load peeks so that reads do not refresh recency; only Save does.
func (m *MemoryStore) Load(_ context.Context, key Key) (*Session, error) {
	if err := key.validate(); err != nil {
		return nil, err
	}
	st, ok := m.cache.Peek(key)
	if !ok {
		return nil, ErrStateNotFound
	}
	return st.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, st *Session) error {
	if err := st.Validate(); err != nil {
		return err
	}
	m.cache.Add(st.Key(), st.Clone())
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key Key) error {
	if err := key.validate(); err != nil {
		return err
	}
	m.cache.Remove(key)
	return nil
}

// Len reports the sessions that have not expired.
func (m *MemoryStore) Len() int {
	return len(m.cache.Keys())
}
