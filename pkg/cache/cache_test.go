package cache_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/yeisme/spacedash/pkg/cache"
	"github.com/yeisme/spacedash/pkg/internal/storage/kv"
)

// TestEntry 测试用的缓存值.
type TestEntry struct {
	User  string `json:"user"`
	Used  int64  `json:"used"`
	Files int    `json:"files"`
}

// flakyKVStore 读写都失败的存储，用于模拟缓存故障.
type flakyKVStore struct {
	mu     sync.Mutex
	writes int
}

var errBackend = errors.New("backend unavailable")

func (f *flakyKVStore) Get(context.Context, string) ([]byte, error) { return nil, errBackend }

func (f *flakyKVStore) Set(context.Context, string, []byte, time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.writes++

	return errBackend
}

func (f *flakyKVStore) Delete(context.Context, string) error { return errBackend }

func (f *flakyKVStore) Exists(context.Context, string) (bool, error) { return false, errBackend }

func (f *flakyKVStore) Keys(context.Context, string) ([]string, error) { return nil, errBackend }

func (f *flakyKVStore) Close() error { return nil }

func newMemoryCache(t *testing.T, opts ...cache.Option) *cache.Cache {
	t.Helper()

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("Failed to create memory store: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	return cache.NewCache(store, opts...)
}

// TestCache_Key 测试键生成.
func TestCache_Key(t *testing.T) {
	c := newMemoryCache(t, cache.WithPrefix("dashboard"))

	k1 := c.Key("alice@example.com")
	k2 := c.Key("alice@example.com")
	k3 := c.Key("bob@example.com")

	if k1 != k2 {
		t.Errorf("Key not stable: %s vs %s", k1, k2)
	}

	if k1 == k3 {
		t.Errorf("Different users share key %s", k1)
	}

	if ok := regexp.MustCompile(`^dashboard\.[0-9a-f]+$`).MatchString(k1); !ok {
		t.Errorf("Key %q contains unexpected characters", k1)
	}
}

// TestCache_GetSet 测试读写与未命中.
func TestCache_GetSet(t *testing.T) {
	c := newMemoryCache(t)
	ctx := context.Background()

	if _, err := cache.Get[TestEntry](ctx, c, "missing"); !cache.IsMiss(err) {
		t.Fatalf("Expected miss, got %v", err)
	}

	want := TestEntry{User: "alice@example.com", Used: 2048, Files: 3}
	if err := cache.Set(ctx, c, "entry", want, time.Minute); err != nil {
		t.Fatalf("Failed to set cache: %v", err)
	}

	got, err := cache.Get[TestEntry](ctx, c, "entry")
	if err != nil {
		t.Fatalf("Failed to get cache: %v", err)
	}

	if got != want {
		t.Errorf("Retrieved %+v does not match original %+v", got, want)
	}

	if err := c.Delete(ctx, "entry"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}

	exists, err := c.Exists(ctx, "entry")
	if err != nil || exists {
		t.Errorf("Key should not exist after deletion (exists=%v, err=%v)", exists, err)
	}
}

// TestGetOrSet 测试首次计算后命中缓存.
func TestGetOrSet(t *testing.T) {
	c := newMemoryCache(t)
	ctx := context.Background()

	calls := 0
	getter := func() (TestEntry, error) {
		calls++
		return TestEntry{User: "eve@example.com", Used: 10}, nil
	}

	first, err := cache.GetOrSet(ctx, c, "eve", getter, time.Minute)
	if err != nil {
		t.Fatalf("Failed to get or set: %v", err)
	}

	second, err := cache.GetOrSet(ctx, c, "eve", getter, time.Minute)
	if err != nil {
		t.Fatalf("Failed to get or set: %v", err)
	}

	if calls != 1 {
		t.Errorf("Expected getter to be called once, got %d", calls)
	}

	if first != second {
		t.Errorf("Results don't match: %+v vs %+v", first, second)
	}
}

// TestGetOrSet_GetterError 测试 getter 出错时不写入缓存.
func TestGetOrSet_GetterError(t *testing.T) {
	c := newMemoryCache(t)
	ctx := context.Background()

	boom := errors.New("getter error")

	_, err := cache.GetOrSet(ctx, c, "broken", func() (TestEntry, error) { return TestEntry{}, boom }, time.Minute)
	if !errors.Is(err, boom) {
		t.Fatalf("Expected getter error, got %v", err)
	}

	if exists, _ := c.Exists(ctx, "broken"); exists {
		t.Error("Failed value should not be cached")
	}
}

// TestGetOrSet_BackendDown 测试缓存不可用时仍返回计算结果.
func TestGetOrSet_BackendDown(t *testing.T) {
	store := &flakyKVStore{}
	c := cache.NewCache(store)

	got, err := cache.GetOrSet(context.Background(), c, "k", func() (TestEntry, error) {
		return TestEntry{User: "bob@example.com", Used: 1}, nil
	}, time.Minute)
	if err != nil {
		t.Fatalf("Cache failure should not fail the call: %v", err)
	}

	if got.Used != 1 {
		t.Errorf("Unexpected value %+v", got)
	}

	if store.writes != 1 {
		t.Errorf("Expected one write attempt, got %d", store.writes)
	}
}

// TestCache_Clear 测试只清理当前前缀.
func TestCache_Clear(t *testing.T) {
	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("Failed to create memory store: %v", err)
	}

	ctx := context.Background()
	dash := cache.NewCache(store, cache.WithPrefix("dashboard"))
	other := cache.NewCache(store, cache.WithPrefix("other"))

	for _, u := range []string{"a", "b", "c"} {
		if err := cache.Set(ctx, dash, dash.Key(u), u, 0); err != nil {
			t.Fatalf("Failed to set: %v", err)
		}
	}

	if err := cache.Set(ctx, other, other.Key("a"), "keep", 0); err != nil {
		t.Fatalf("Failed to set: %v", err)
	}

	if err := dash.Clear(ctx); err != nil {
		t.Fatalf("Failed to clear: %v", err)
	}

	keys, err := store.Keys(ctx, "")
	if err != nil {
		t.Fatalf("Failed to list keys: %v", err)
	}

	if len(keys) != 1 || keys[0] != other.Key("a") {
		t.Errorf("Expected only the other prefix to remain, got %v", keys)
	}
}

// BenchmarkGetOrSet 基准测试命中路径.
func BenchmarkGetOrSet(b *testing.B) {
	store, _ := kv.NewKVStore(context.Background(), kv.KVTypeMemory, nil)
	c := cache.NewCache(store)
	ctx := context.Background()
	getter := func() (TestEntry, error) { return TestEntry{User: "bench", Used: 1}, nil }

	b.ResetTimer()

	for b.Loop() {
		_, _ = cache.GetOrSet(ctx, c, "bench", getter, time.Minute)
	}
}
