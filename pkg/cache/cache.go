// Package cache 提供基于键值存储的泛型缓存，用于记忆仪表盘等计算结果.
//
// 基本用法:
//
//	c := cache.NewCache(kvClient, cache.WithPrefix("dashboard"))
//
//	key := c.Key(user)
//	dash, err := cache.GetOrSet(ctx, c, key, func() (types.Dashboard, error) {
//		return build(ctx, user)
//	}, time.Minute)
//
// 值使用 sonic 编码，键由前缀与 xxhash 摘要组成，
// 只包含 [-_.a-zA-Z0-9]，可直接用于 NATS KV.
//
// 缓存故障（连接错误、解码错误）不会让 GetOrSet 失败，只会退化为直接计算.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cespare/xxhash/v2"

	"github.com/yeisme/spacedash/pkg/internal/storage/kv"
	nlog "github.com/yeisme/spacedash/pkg/log"
)

// Cache 基于KV存储的缓存实现.
type Cache struct {
	kvStore kv.KVStore
	prefix  string
}

// Option 缓存选项.
type Option func(*Cache)

// WithPrefix 设置键前缀.
func WithPrefix(prefix string) Option {
	return func(c *Cache) { c.prefix = prefix }
}

// NewCache 创建一个新的缓存实例.
func NewCache(kvStore kv.KVStore, opts ...Option) *Cache {
	c := &Cache{kvStore: kvStore, prefix: "cache"}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Key 由若干部分生成稳定的缓存键.
func (c *Cache) Key(parts ...string) string {
	sum := xxhash.Sum64String(strings.Join(parts, "\x00"))

	return c.prefix + "." + strconv.FormatUint(sum, 16)
}

// IsMiss 判断错误是否为缓存未命中.
func IsMiss(err error) bool {
	return errors.Is(err, kv.ErrNotFound)
}

// Get 泛型获取缓存值，未命中时返回的错误满足 IsMiss.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var zero T

	data, err := c.kvStore.Get(ctx, key)
	if err != nil {
		return zero, err
	}

	var value T
	if err := sonic.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set 泛型设置缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return c.kvStore.Set(ctx, key, data, ttl)
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.kvStore.Delete(ctx, key)
}

// Exists 检查缓存键是否存在.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.kvStore.Exists(ctx, key)
}

// GetOrSet 获取缓存值，不存在或缓存不可用时调用 getter 并回填.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func() (T, error), ttl time.Duration) (T, error) {
	value, err := Get[T](ctx, c, key)
	if err == nil {
		return value, nil
	}

	if !IsMiss(err) {
		nlog.Logger().Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	value, err = getter()
	if err != nil {
		var zero T
		return zero, err
	}

	if setErr := Set(ctx, c, key, value, ttl); setErr != nil {
		// 回填失败不影响结果
		nlog.Logger().Warn().Err(setErr).Str("key", key).Msg("cache write failed")
	}

	return value, nil
}

// Clear 删除当前前缀下的所有键.
func (c *Cache) Clear(ctx context.Context) error {
	keys, err := c.kvStore.Keys(ctx, c.prefix+".*")
	if err != nil {
		return err
	}

	var errs []error
	for _, key := range keys {
		errs = append(errs, c.kvStore.Delete(ctx, key))
	}

	return errors.Join(errs...)
}
