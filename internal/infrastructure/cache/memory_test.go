package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gifthub/engine/internal/domain"
)

// newTestMemoryCache returns a cache whose clock the test controls
func newTestMemoryCache(t *testing.T) (*MemoryCache, *time.Time) {
	t.Helper()
	now := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	cache := NewMemoryCache()
	cache.now = func() time.Time { return now }
	t.Cleanup(func() { cache.Close() })
	return cache, &now
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		key     string
		value   []byte
		ttl     time.Duration
		advance time.Duration
		wantHit bool
	}{
		{
			name:    "store and retrieve",
			key:     "paapi:us:B0AB12CD34",
			value:   []byte(`{"expires_at":1}`),
			ttl:     time.Minute,
			wantHit: true,
		},
		{
			name:    "zero ttl never expires",
			key:     "forever",
			value:   []byte("v"),
			ttl:     0,
			advance: 365 * 24 * time.Hour,
			wantHit: true,
		},
		{
			name:    "expired after ttl",
			key:     "related:7",
			value:   []byte("[1,2]"),
			ttl:     12 * time.Hour,
			advance: 12*time.Hour + time.Second,
			wantHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache, now := newTestMemoryCache(t)

			if err := cache.Set(ctx, tt.key, tt.value, tt.ttl); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			*now = now.Add(tt.advance)

			got, err := cache.Get(ctx, tt.key)
			if !tt.wantHit {
				if !errors.Is(err, domain.ErrCacheMiss) {
					t.Errorf("Get() error = %v, want ErrCacheMiss", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(got) != string(tt.value) {
				t.Errorf("Get() = %q, want %q", got, tt.value)
			}
		})
	}
}

func TestMemoryCache_ValuesAreCopied(t *testing.T) {
	cache, _ := newTestMemoryCache(t)
	ctx := context.Background()

	value := []byte("abc")
	if err := cache.Set(ctx, "k", value, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value[0] = 'z'

	got, _ := cache.Get(ctx, "k")
	got[1] = 'z'

	again, _ := cache.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value mutated: %q", again)
	}
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache, _ := newTestMemoryCache(t)

	_, err := cache.Get(context.Background(), "non-existent-key")
	if !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache, _ := newTestMemoryCache(t)
	ctx := context.Background()

	key := "delete-test"
	if err := cache.Set(ctx, key, []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := cache.Delete(ctx, key); err != nil {
		t.Errorf("Delete() error = %v", err)
	}

	_, err := cache.Get(ctx, key)
	if !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get() after delete error = %v, want %v", err, domain.ErrCacheMiss)
	}

	if err := cache.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete() of absent key error = %v", err)
	}
}

func TestMemoryCache_Exists(t *testing.T) {
	cache, now := newTestMemoryCache(t)
	ctx := context.Background()

	exists, err := cache.Exists(ctx, "exists-test")
	if err != nil || exists {
		t.Errorf("Exists() = %v, %v; want false, nil", exists, err)
	}

	if err := cache.Set(ctx, "exists-test", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	exists, _ = cache.Exists(ctx, "exists-test")
	if !exists {
		t.Errorf("Exists() = false, want true after setting value")
	}

	*now = now.Add(2 * time.Minute)

	exists, _ = cache.Exists(ctx, "exists-test")
	if exists {
		t.Errorf("Exists() = true, want false after expiration")
	}
}

func TestMemoryCache_RemoveExpired(t *testing.T) {
	cache, now := newTestMemoryCache(t)
	ctx := context.Background()

	_ = cache.Set(ctx, "short", []byte("1"), time.Minute)
	_ = cache.Set(ctx, "long", []byte("2"), time.Hour)
	_ = cache.Set(ctx, "forever", []byte("3"), 0)

	*now = now.Add(10 * time.Minute)
	cache.removeExpired()

	if size := cache.Size(); size != 2 {
		t.Errorf("Size() = %d, want 2 after cleanup", size)
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	cache, _ := newTestMemoryCache(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := cache.Set(ctx, string(rune('a'+i)), []byte{byte(i)}, time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	cache.Clear()

	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 after clear", size)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache, _ := newTestMemoryCache(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := string(rune('a' + id))
			if err := cache.Set(ctx, key, []byte{byte(id)}, time.Minute); err != nil {
				t.Errorf("Concurrent Set() error = %v", err)
			}
			if _, err := cache.Get(ctx, key); err != nil {
				t.Errorf("Concurrent Get() error = %v", err)
			}
		}(i)
	}
	wg.Wait()
}
