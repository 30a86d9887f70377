package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStoreTest(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store, err := NewRedisStore(rdb, "store-secret")
	if err != nil {
		t.Fatalf("NewRedisStore returned error: %v", err)
	}
	return store, mr
}

func testPayload() Payload {
	return Payload{Name: "Ana", Email: "a@x.com", Role: "user"}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newRedisStoreTest(t)
	ctx := context.Background()

	if err := store.Set(ctx, "tok-1", testPayload(), time.Hour); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	got, err := store.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != testPayload() {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestRedisStoreMissingToken(t *testing.T) {
	store, _ := newRedisStoreTest(t)

	if _, err := store.Get(context.Background(), "no-such-token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisStoreTTLExpiry(t *testing.T) {
	store, mr := newRedisStoreTest(t)
	ctx := context.Background()

	if err := store.Set(ctx, "tok-1", testPayload(), time.Minute); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	mr.FastForward(time.Minute + time.Second)

	if _, err := store.Get(ctx, "tok-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestRedisStoreDestroyIdempotent(t *testing.T) {
	store, _ := newRedisStoreTest(t)
	ctx := context.Background()

	if err := store.Set(ctx, "tok-1", testPayload(), time.Hour); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := store.Destroy(ctx, "tok-1"); err != nil {
		t.Fatalf("first Destroy returned error: %v", err)
	}
	if err := store.Destroy(ctx, "tok-1"); err != nil {
		t.Fatalf("second Destroy returned error: %v", err)
	}
	if _, err := store.Get(ctx, "tok-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after Destroy, got %v", err)
	}
}

func TestRedisStoreEncryptsPayload(t *testing.T) {
	store, mr := newRedisStoreTest(t)
	ctx := context.Background()

	if err := store.Set(ctx, "tok-1", testPayload(), time.Hour); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	raw, err := mr.Get("session:tok-1")
	if err != nil {
		t.Fatalf("failed to read raw value: %v", err)
	}
	if strings.Contains(raw, "a@x.com") || strings.Contains(raw, "Ana") {
		t.Fatal("payload stored in plaintext")
	}
}

func TestRedisStoreWrongSecret(t *testing.T) {
	store, mr := newRedisStoreTest(t)
	ctx := context.Background()

	if err := store.Set(ctx, "tok-1", testPayload(), time.Hour); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	other, err := NewRedisStore(rdb, "different-secret")
	if err != nil {
		t.Fatalf("NewRedisStore returned error: %v", err)
	}

	if _, err := other.Get(ctx, "tok-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound with wrong secret, got %v", err)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "tok-1", testPayload(), time.Hour); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	got, err := store.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != testPayload() {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "tok-1", testPayload(), -time.Second); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if _, err := store.Get(ctx, "tok-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired entry, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired entry to be evicted, len=%d", store.Len())
	}
}

func TestMemoryStoreDestroyIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Destroy(ctx, "no-such-token"); err != nil {
		t.Fatalf("Destroy on missing token returned error: %v", err)
	}
}

func TestNewTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := NewToken()
		if err != nil {
			t.Fatalf("NewToken returned error: %v", err)
		}
		if len(token) != 64 {
			t.Fatalf("unexpected token length: %d", len(token))
		}
		if seen[token] {
			t.Fatal("duplicate token generated")
		}
		seen[token] = true
	}
}
