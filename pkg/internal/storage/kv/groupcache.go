package kv

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang/groupcache"

	"github.com/yeisme/spacedash/pkg/configs"
)

// genSep 分隔原始键与版本号，groupcache 内部键为 key + genSep + gen.
const genSep = "\x00"

type gcEntry struct {
	value []byte // 已按 ttl 包装
	gen   uint64
}

// GroupcacheKV 基于 Groupcache 的 KV 实现.
//
// groupcache 不支持删除或覆盖已缓存的值，因此每次 Set/Delete 都会递增键的版本号，
// 查询时带上当前版本，旧版本的缓存自然失效.
type GroupcacheKV struct {
	group *groupcache.Group
	peers *groupcache.HTTPPool

	mu   sync.RWMutex
	data map[string]gcEntry
	gen  uint64
}

// groupcacheGetter 实现 groupcache.Getter，从本地数据表加载.
type groupcacheGetter struct {
	kv *GroupcacheKV
}

func (g groupcacheGetter) Get(_ context.Context, key string, dest groupcache.Sink) error {
	raw, genStr, ok := strings.Cut(key, genSep)
	if !ok {
		return notFound(key)
	}

	gen, err := strconv.ParseUint(genStr, 10, 64)
	if err != nil {
		return notFound(raw)
	}

	g.kv.mu.RLock()
	e, exists := g.kv.data[raw]
	g.kv.mu.RUnlock()

	if !exists || e.gen != gen {
		return notFound(raw)
	}

	return dest.SetBytes(e.value)
}

// groupcache 的组名全局唯一，重复创建同名组会 panic.
var (
	groupsMu sync.Mutex
	groups   = map[string]*GroupcacheKV{}
)

// NewGroupcacheKV 创建 Groupcache KV 实例，同名组在进程内复用.
func NewGroupcacheKV(_ context.Context, config any) (KVStore, error) {
	gcConfig, ok := config.(*configs.GroupcacheKVConfig)
	if !ok || gcConfig == nil {
		return nil, fmt.Errorf("invalid Groupcache config: %T", config)
	}

	groupsMu.Lock()
	defer groupsMu.Unlock()

	if kv, ok := groups[gcConfig.Name]; ok {
		return kv, nil
	}

	kv := &GroupcacheKV{data: make(map[string]gcEntry)}
	kv.group = groupcache.NewGroup(gcConfig.Name, gcConfig.CacheBytes, groupcacheGetter{kv: kv})

	if len(gcConfig.Peers) > 0 {
		kv.peers = groupcache.NewHTTPPoolOpts(gcConfig.Self, &groupcache.HTTPPoolOptions{})
		kv.peers.Set(gcConfig.Peers...)
	}

	groups[gcConfig.Name] = kv

	return kv, nil
}

func (g *GroupcacheKV) current(key string) (uint64, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	e, ok := g.data[key]

	return e.gen, ok
}

// Get 获取键的值.
func (g *GroupcacheKV) Get(ctx context.Context, key string) ([]byte, error) {
	gen, ok := g.current(key)
	if !ok {
		return nil, notFound(key)
	}

	var data []byte

	gk := key + genSep + strconv.FormatUint(gen, 10)
	if err := g.group.Get(ctx, gk, groupcache.AllocatingByteSliceSink(&data)); err != nil {
		return nil, notFound(key)
	}

	val, expired, err := decodeWithTTL(data, time.Now())
	if err != nil {
		return nil, err
	}

	if expired {
		g.mu.Lock()
		if e, ok := g.data[key]; ok && e.gen == gen {
			delete(g.data, key)
		}
		g.mu.Unlock()

		return nil, notFound(key)
	}

	return slices.Clone(val), nil
}

// Set 设置键的值.
func (g *GroupcacheKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, err := encodeWithTTL(slices.Clone(value), ttl, time.Now())
	if err != nil {
		return err
	}

	g.mu.Lock()
	g.gen++
	g.data[key] = gcEntry{value: encoded, gen: g.gen}
	g.mu.Unlock()

	return nil
}

// Delete 删除键.
func (g *GroupcacheKV) Delete(_ context.Context, key string) error {
	g.mu.Lock()
	delete(g.data, key)
	g.mu.Unlock()

	return nil
}

// Exists 检查键是否存在.
func (g *GroupcacheKV) Exists(ctx context.Context, key string) (bool, error) {
	_, err := g.Get(ctx, key)

	return err == nil, nil
}

// Keys 获取匹配模式的键.
func (g *GroupcacheKV) Keys(_ context.Context, pattern string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	now := time.Now()
	keys := make([]string, 0, len(g.data))

	for key, e := range g.data {
		if !matchKey(pattern, key) {
			continue
		}

		if _, expired, err := decodeWithTTL(e.value, now); err != nil || expired {
			continue
		}

		keys = append(keys, key)
	}

	slices.Sort(keys)

	return keys, nil
}

// Close 关闭缓存，groupcache 没有显式的关闭方法.
func (g *GroupcacheKV) Close() error {
	return nil
}

func init() {
	RegisterKVFactory(KVTypeGroupcache, NewGroupcacheKV)
}
