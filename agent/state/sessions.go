package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionStore is the lazily-creating view over a Store that the dialogue
// engine works with.
type SessionStore struct {
	store Store
	now   func() time.Time
	newID func() string
}

func NewSessionStore(store Store) *SessionStore {
	return &SessionStore{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// EnsureID returns id trimmed, or a fresh random token when id is blank.
func (s *SessionStore) EnsureID(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return s.newID()
}

// GetOrCreate loads the session for key or returns a new empty one. A new
// session is not persisted until Put.
func (s *SessionStore) GetOrCreate(ctx context.Context, key Key) (*Session, bool, error) {
	st, err := s.store.Load(ctx, key)
	if err == nil {
		return st, false, nil
	}
	if !errors.Is(err, ErrStateNotFound) {
		return nil, false, fmt.Errorf("load session %s: %w", key, err)
	}
	return NewSession(key, s.now()), true, nil
}

// Put replaces the stored session as a whole.
func (s *SessionStore) Put(ctx context.Context, st *Session) error {
	if st == nil {
		return ErrNilSession
	}
	st.Touch(s.now())
	if err := s.store.Save(ctx, st); err != nil {
		return fmt.Errorf("save session %s: %w", st.Key(), err)
	}
	return nil
}

func (s *SessionStore) Reset(ctx context.Context, key Key) error {
	return s.store.Delete(ctx, key)
}
