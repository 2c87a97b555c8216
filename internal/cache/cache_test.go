package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestMemoryInsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.SetNX(ctx, "k", []byte("first")); err != nil {
		t.Fatalf("SetNX: %v", err)
	}
	if err := m.SetNX(ctx, "k", []byte("second")); err != nil {
		t.Fatalf("SetNX: %v", err)
	}

	got, ok, err := m.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(got) != "first" {
		t.Fatalf("value = %q, want first (insert-if-absent)", got)
	}

	if _, ok, _ := m.Get(ctx, "missing"); ok {
		t.Fatal("missing key should not be present")
	}
}

func TestGetOrFetchCachesResult(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	calls := 0
	fetch := func(context.Context) (any, error) {
		calls++
		return map[string]any{"id": float64(7)}, nil
	}

	for i := 0; i < 3; i++ {
		payload, hit, err := GetOrFetch(ctx, m, "encounter:7", fetch)
		if err != nil {
			t.Fatalf("GetOrFetch: %v", err)
		}
		if hit != (i > 0) {
			t.Fatalf("iteration %d: hit = %v", i, hit)
		}
		node, ok := payload.(map[string]any)
		if !ok || node["id"] != float64(7) {
			t.Fatalf("unexpected payload: %v", payload)
		}
	}
	if calls != 1 {
		t.Fatalf("fetch called %d times, want 1", calls)
	}
}

func TestGetOrFetchDoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	calls := 0
	fetch := func(context.Context) (any, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("upstream down")
		}
		return map[string]any{"ok": true}, nil
	}

	if _, _, err := GetOrFetch(ctx, m, "k", fetch); err == nil {
		t.Fatal("expected error from first fetch")
	}
	if _, _, err := GetOrFetch(ctx, m, "k", fetch); err != nil {
		t.Fatalf("second fetch should succeed: %v", err)
	}
	if calls != 2 {
		t.Fatalf("fetch called %d times, want 2", calls)
	}
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedisClient(mr.Addr(), "", false)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	store := NewRedis(client)

	if err := store.SetNX(ctx, "enc:1", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("SetNX: %v", err)
	}
	if err := store.SetNX(ctx, "enc:1", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("SetNX: %v", err)
	}

	got, ok, err := store.Get(ctx, "enc:1")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(got) != `{"a":1}` {
		t.Fatalf("value = %s, want first write kept", got)
	}

	if _, ok, err := store.Get(ctx, "enc:2"); err != nil || ok {
		t.Fatalf("absent key: ok=%v err=%v", ok, err)
	}
}
