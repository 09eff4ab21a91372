// Package query 是视图与后端之间的查询缓存层。
//
// 同一个键的并发读取合并成一次后端调用；变更成功后按前缀使相关键失效，
// 下一次读取重新拉取。缓存只接受读取结果，不提供直接写入。
package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// State 键的加载状态
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateError   State = "error"
	StateData    State = "data"
)

// Observer 观察缓存事件（指标、推送）
type Observer interface {
	ObserveLookup(key Key, hit bool)
	ObserveInvalidation(prefixes []Key, removed int)
}

// Status 单个键的快照
type Status struct {
	State     State     `json:"state"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
	Error     string    `json:"error,omitempty"`
}

type entry struct {
	value     any
	fetchedAt time.Time
}

// flight 一次进行中的拉取，invalidated 为 true 时结果不会写入缓存
type flight struct {
	invalidated bool
}

// Client 查询缓存
//
// 特点：
// - singleflight 合并同一键的并发读取
// - 过期时间内直接返回缓存
// - 失效时丢弃进行中的拉取结果，旧响应不会覆盖新状态
// - 容量限制，超出时淘汰最早拉取的条目
type Client struct {
	mu        sync.Mutex
	entries   map[Key]*entry
	inflight  map[Key][]*flight
	errors    map[Key]error
	group     singleflight.Group
	staleTime time.Duration
	maxSize   int
	observers []Observer
	now       func() time.Time
	log       *zap.Logger
}

// Option 缓存可选配置
type Option func(*Client)

// WithStaleTime 设置数据保持新鲜的时长，0 表示每次读取都重新拉取（并发读取仍然合并）
func WithStaleTime(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.staleTime = d
		}
	}
}

// WithMaxEntries 设置最大条目数，<= 0 表示不限制
func WithMaxEntries(n int) Option {
	return func(c *Client) {
		c.maxSize = n
	}
}

// WithObserver 添加观察者
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// withClock 测试用时钟
func withClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New 创建查询缓存
func New(opts ...Option) *Client {
	c := &Client{
		entries:   make(map[Key]*entry),
		inflight:  make(map[Key][]*flight),
		errors:    make(map[Key]error),
		staleTime: 30 * time.Second,
		maxSize:   512,
		now:       time.Now,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch 读取键对应的数据
//
// 缓存新鲜时直接返回；否则执行 fn，同一键的并发调用共享一次执行。
// 调用方的 ctx 取消只会让该调用方提前返回，不会取消共享的拉取。
func (c *Client) Fetch(ctx context.Context, key Key, fn func(context.Context) (any, error)) (any, error) {
	if v, ok := c.lookup(key); ok {
		c.notifyLookup(key, true)
		return v, nil
	}
	c.notifyLookup(key, false)

	// 共享拉取与单个调用方的生命周期脱钩，超时由后端客户端负责
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(string(key), func() (any, error) {
		f := c.begin(key)
		v, err := fn(shared)
		c.finish(key, f, v, err)
		return v, err
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val, nil
	}
}

// Invalidate 按前缀使缓存失效
//
// 匹配的条目被删除，进行中的拉取被标记为过期并从 singleflight 中移除，
// 之后的读取会发起新的请求。
func (c *Client) Invalidate(prefixes ...Key) int {
	if len(prefixes) == 0 {
		return 0
	}

	c.mu.Lock()
	removed := 0
	for k := range c.entries {
		if matchAny(k, prefixes) {
			delete(c.entries, k)
			removed++
		}
	}
	for k := range c.errors {
		if matchAny(k, prefixes) {
			delete(c.errors, k)
		}
	}
	for k, flights := range c.inflight {
		if !matchAny(k, prefixes) {
			continue
		}
		for _, f := range flights {
			f.invalidated = true
		}
		c.group.Forget(string(k))
	}
	observers := c.observers
	c.mu.Unlock()

	c.log.Debug("query cache invalidated",
		zap.Any("prefixes", prefixes),
		zap.Int("removed", removed),
	)
	for _, o := range observers {
		o.ObserveInvalidation(prefixes, removed)
	}
	return removed
}

// Mutate 执行一次变更，成功后使 invalidate 中的键失效，失败时缓存保持不变
func (c *Client) Mutate(ctx context.Context, fn func(context.Context) (any, error), invalidate ...Key) (any, error) {
	v, err := fn(ctx)
	if err != nil {
		return nil, err
	}
	c.Invalidate(invalidate...)
	return v, nil
}

// Status 返回键的加载状态
func (c *Client) Status(key Key) Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.inflight[key]) > 0 {
		return Status{State: StateLoading}
	}
	if err, ok := c.errors[key]; ok {
		return Status{State: StateError, Error: err.Error()}
	}
	if e, ok := c.entries[key]; ok {
		return Status{State: StateData, UpdatedAt: e.fetchedAt}
	}
	return Status{State: StateIdle}
}

// Len 返回缓存条目数
func (c *Client) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear 清空缓存
func (c *Client) Clear() {
	c.mu.Lock()
	for k := range c.inflight {
		c.group.Forget(string(k))
		for _, f := range c.inflight[k] {
			f.invalidated = true
		}
	}
	c.entries = make(map[Key]*entry)
	c.errors = make(map[Key]error)
	c.mu.Unlock()
}

func (c *Client) lookup(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= c.staleTime {
		return nil, false
	}
	return e.value, true
}

func (c *Client) begin(key Key) *flight {
	f := &flight{}
	c.mu.Lock()
	c.inflight[key] = append(c.inflight[key], f)
	c.mu.Unlock()
	return f
}

func (c *Client) finish(key Key, f *flight, v any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	flights := c.inflight[key]
	for i, other := range flights {
		if other == f {
			flights = append(flights[:i], flights[i+1:]...)
			break
		}
	}
	if len(flights) == 0 {
		delete(c.inflight, key)
	} else {
		c.inflight[key] = flights
	}

	if f.invalidated {
		c.log.Debug("discarding invalidated fetch result", zap.String("key", string(key)))
		return
	}
	if err != nil {
		c.errors[key] = err
		return
	}
	delete(c.errors, key)
	c.entries[key] = &entry{value: v, fetchedAt: c.now()}
	c.evict()
}

// evict 超出容量时淘汰最早拉取的条目，调用方持有锁
func (c *Client) evict() {
	if c.maxSize <= 0 {
		return
	}
	for len(c.entries) > c.maxSize {
		var (
			oldestKey Key
			oldest    time.Time
			found     bool
		)
		for k, e := range c.entries {
			if !found || e.fetchedAt.Before(oldest) {
				oldestKey, oldest, found = k, e.fetchedAt, true
			}
		}
		delete(c.entries, oldestKey)
	}
}

func (c *Client) notifyLookup(key Key, hit bool) {
	c.mu.Lock()
	observers := c.observers
	c.mu.Unlock()
	for _, o := range observers {
		o.ObserveLookup(key, hit)
	}
}

func matchAny(k Key, prefixes []Key) bool {
	for _, p := range prefixes {
		if k.HasPrefix(p) {
			return true
		}
	}
	return false
}

// Query 带类型的 Fetch
func Query[T any](ctx context.Context, c *Client, key Key, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("query %s: cached value has type %T", key, v)
	}
	return t, nil
}

// Do 带类型的 Mutate
func Do[T any](ctx context.Context, c *Client, fn func(context.Context) (T, error), invalidate ...Key) (T, error) {
	var zero T
	v, err := c.Mutate(ctx, func(ctx context.Context) (any, error) {
		return fn(ctx)
	}, invalidate...)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("mutation result has type %T", v)
	}
	return t, nil
}
