package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrStateNotFound  = errors.New("session state not found")
	ErrInvalidSession = errors.New("session id is empty")
	ErrUnknownBackend = errors.New("unknown session backend")
)

const defaultStoreTTL = 24 * time.Hour

// Store persists whole sessions. Load returns ErrStateNotFound for unknown
// or expired keys.
type Store interface {
	Load(ctx context.Context, key Key) (*Session, error)
	Save(ctx context.Context, st *Session) error
	Delete(ctx context.Context, key Key) error
}

var (
	_ Store = (*UpstashRedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

const (
	BackendMemory  = "memory"
	BackendUpstash = "upstash"
)

type Config struct {
	Backend    string        `envconfig:"BACKEND" default:"memory"`
	MaxEntries int           `envconfig:"MAX_ENTRIES" split_words:"true" default:"10000"`
	TTL        time.Duration `envconfig:"TTL" default:"24h"`
}

// NewStore builds the configured backend. redis is only read for the
// upstash backend.
func NewStore(cfg Config, redis *UpstashRedisConfig) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendMemory:
		return NewMemoryStore(
			WithMaxEntries(cfg.MaxEntries),
			WithMemoryTTL(cfg.TTL),
		), nil
	case BackendUpstash:
		if redis == nil {
			return nil, fmt.Errorf("%w: upstash backend needs redis config", ErrUnknownBackend)
		}
		return NewUpstashRedisStore(*redis, WithTTL(cfg.TTL))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
