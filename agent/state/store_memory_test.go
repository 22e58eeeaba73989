package state

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreRoundTripIsDeepCopy(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	key := Key{Domain: "profile", ID: "s1"}
	st := NewSession(key, time.Now())
	st.Slots["full_name"] = "Taylor"
	st.Append("hi", "Hello!")

	if err := store.Save(context.Background(), st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	st.Slots["full_name"] = "mutated"
	st.Transcript[0].Content = "mutated"

	got, err := store.Load(context.Background(), key)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Slots["full_name"] != "Taylor" || got.Transcript[0].Content != "hi" {
		t.Fatalf("stored session aliased caller memory: %#v", got)
	}

	got.Slots["email"] = "x@example.com"
	again, _ := store.Load(context.Background(), key)
	if _, ok := again.Slots["email"]; ok {
		t.Fatal("loaded session aliased store memory")
	}
}

func TestMemoryStoreDomainsAreIsolated(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	if err := store.Save(context.Background(), NewSession(Key{Domain: "profile", ID: "same"}, time.Now())); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	_, err := store.Load(context.Background(), Key{Domain: "sorting", ID: "same"})
	if !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Load() error = %v, want ErrStateNotFound", err)
	}
}

func TestMemoryStoreEvictsLeastRecentlySaved(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore(WithMaxEntries(2))
	for _, id := range []string{"a", "b"} {
		if err := store.Save(ctx, NewSession(Key{Domain: "profile", ID: id}, time.Now())); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}
	// re-saving "a" makes "b" the oldest
	if err := store.Save(ctx, NewSession(Key{Domain: "profile", ID: "a"}, time.Now())); err != nil {
		t.Fatalf("Save(a) error = %v", err)
	}
	if err := store.Save(ctx, NewSession(Key{Domain: "profile", ID: "c"}, time.Now())); err != nil {
		t.Fatalf("Save(c) error = %v", err)
	}

	if store.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", store.Len())
	}
	if _, err := store.Load(ctx, Key{Domain: "profile", ID: "b"}); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("expected b evicted, got %v", err)
	}
	for _, id := range []string{"a", "c"} {
		if _, err := store.Load(ctx, Key{Domain: "profile", ID: id}); err != nil {
			t.Fatalf("Load(%s) error = %v", id, err)
		}
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore(WithMemoryTTL(200 * time.Millisecond))

	key := Key{Domain: "sorting", ID: "s1"}
	if err := store.Save(ctx, NewSession(key, time.Now())); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := store.Load(ctx, key); err != nil {
		t.Fatalf("Load() before expiry error = %v", err)
	}

	time.Sleep(400 * time.Millisecond)
	if _, err := store.Load(ctx, key); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Load() after expiry error = %v, want ErrStateNotFound", err)
	}
	if store.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", store.Len())
	}
}

func TestMemoryStoreLoadDoesNotRefreshRecency(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore(WithMaxEntries(2))
	for _, id := range []string{"a", "b"} {
		if err := store.Save(ctx, NewSession(Key{Domain: "profile", ID: id}, time.Now())); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}
	if _, err := store.Load(ctx, Key{Domain: "profile", ID: "a"}); err != nil {
		t.Fatalf("Load(a) error = %v", err)
	}
	if err := store.Save(ctx, NewSession(Key{Domain: "profile", ID: "c"}, time.Now())); err != nil {
		t.Fatalf("Save(c) error = %v", err)
	}
	if _, err := store.Load(ctx, Key{Domain: "profile", ID: "a"}); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("expected a evicted despite the read, got %v", err)
	}
}

func TestMemoryStoreRejectsInvalidSession(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	if err := store.Save(context.Background(), nil); !errors.Is(err, ErrNilSession) {
		t.Fatalf("Save(nil) error = %v", err)
	}
	bad := NewSession(Key{Domain: "profile", ID: "x"}, time.Now())
	bad.Transcript = []Turn{{Role: "system", Content: "hi"}}
	if err := store.Save(context.Background(), bad); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("Save(bad role) error = %v", err)
	}
}
