package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSessionStoreEnsureID(t *testing.T) {
	t.Parallel()

	s := NewSessionStore(NewMemoryStore())
	if got := s.EnsureID("  abc "); got != "abc" {
		t.Fatalf("EnsureID() = %q, want abc", got)
	}
	a, b := s.EnsureID(""), s.EnsureID("   ")
	if a == "" || b == "" || a == b {
		t.Fatalf("expected distinct generated ids, got %q and %q", a, b)
	}
}

func TestSessionStoreGetOrCreateThenPut(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewSessionStore(NewMemoryStore())
	key := Key{Domain: "profile", ID: "s1"}

	st, created, err := s.GetOrCreate(ctx, key)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if !created || len(st.Transcript) != 0 || len(st.Slots) != 0 || st.AwaitingConfirmation {
		t.Fatalf("unexpected fresh session: created=%v %#v", created, st)
	}

	st.Slots["email"] = "taylor@example.com"
	st.AwaitingConfirmation = true
	if err := s.Put(ctx, st); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	again, created, err := s.GetOrCreate(ctx, key)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if created || again.Slots["email"] != "taylor@example.com" || !again.AwaitingConfirmation {
		t.Fatalf("unexpected stored session: created=%v %#v", created, again)
	}

	if err := s.Reset(ctx, key); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if _, created, _ := s.GetOrCreate(ctx, key); !created {
		t.Fatal("expected a fresh session after Reset")
	}
}

type failingStore struct{ err error }

func (f failingStore) Load(context.Context, Key) (*Session, error) { return nil, f.err }
func (f failingStore) Save(context.Context, *Session) error        { return f.err }
func (f failingStore) Delete(context.Context, Key) error           { return f.err }

func TestSessionStorePropagatesBackendErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	s := NewSessionStore(failingStore{err: boom})
	if _, _, err := s.GetOrCreate(context.Background(), Key{Domain: "profile", ID: "x"}); !errors.Is(err, boom) {
		t.Fatalf("GetOrCreate() error = %v, want boom", err)
	}
	if err := s.Put(context.Background(), NewSession(Key{Domain: "profile", ID: "x"}, time.Now())); !errors.Is(err, boom) {
		t.Fatalf("Put() error = %v, want boom", err)
	}
}

func TestLastTurns(t *testing.T) {
	t.Parallel()

	turns := []Turn{{RoleUser, "a"}, {RoleAssistant, "b"}, {RoleUser, "c"}}
	if got := LastTurns(turns, 2); len(got) != 2 || got[0].Content != "b" {
		t.Fatalf("LastTurns() = %#v", got)
	}
	if got := LastTurns(turns, 0); len(got) != 3 {
		t.Fatalf("LastTurns(0) = %#v", got)
	}
}

func TestKeyedLockerSerializesSameKey(t *testing.T) {
	t.Parallel()

	l := NewKeyedLocker()
	var (
		mu      sync.Mutex
		active  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "profile:s1")
			if err != nil {
				t.Errorf("Lock() error = %v", err)
				return
			}
			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("max concurrent holders = %d, want 1", maxSeen)
	}
	if l.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after all releases", l.Len())
	}
}

func TestKeyedLockerHonorsContext(t *testing.T) {
	t.Parallel()

	l := NewKeyedLocker()
	unlock, err := l.Lock(context.Background(), "k")
	if err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "k"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Lock() error = %v, want deadline exceeded", err)
	}

	other, err := l.Lock(context.Background(), "other")
	if err != nil {
		t.Fatalf("Lock(other) error = %v", err)
	}
	other()
	unlock()

	if l.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", l.Len())
	}
}
