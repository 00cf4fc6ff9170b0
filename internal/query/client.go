// Package query is a keyed cache for backend reads. Reads are coalesced per
// key, fresh results are served from memory, and mutations mark key prefixes
// stale so the next read refetches.
package query

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/metrics"
)

const DefaultStaleTime = 30 * time.Second

// ErrDisabled is returned for queries whose inputs are not ready yet.
var ErrDisabled = errors.New("query disabled")

type Options struct {
	// StaleTime overrides the client default when non-zero.
	StaleTime time.Duration
	// Disabled skips the fetch entirely.
	Disabled bool
}

type entry struct {
	key         Key
	data        any
	updatedAt   time.Time
	invalidated bool
}

// InvalidationListener observes local invalidations, e.g. to broadcast them.
type InvalidationListener func(ctx context.Context, prefix Key)

type Client struct {
	staleTime time.Duration
	now       func() time.Time
	metrics   *metrics.Metrics

	group singleflight.Group

	mu        sync.Mutex
	entries   map[string]*entry
	listeners []InvalidationListener
	version   uint64 // bumped by every invalidation
	epoch     uint64 // bumped by Clear
}

func NewClient(staleTime time.Duration, m *metrics.Metrics) *Client {
	if staleTime <= 0 {
		staleTime = DefaultStaleTime
	}
	return &Client{
		staleTime: staleTime,
		now:       time.Now,
		metrics:   m,
		entries:   map[string]*entry{},
	}
}

func (c *Client) OnInvalidate(l InvalidationListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Fetch returns the cached value for key when it is fresh, otherwise runs fn.
// Concurrent fetches of one key share a single call, which runs detached from
// any one caller's cancellation; each caller still stops waiting when its own
// ctx is done. Errors are not cached and never retried.
func Fetch[T any](ctx context.Context, c *Client, key Key, opts Options, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if opts.Disabled {
		return zero, ErrDisabled
	}

	stale := opts.StaleTime
	if stale <= 0 {
		stale = c.staleTime
	}
	id := key.String()

	c.mu.Lock()
	if e, ok := c.entries[id]; ok && !e.invalidated && c.now().Sub(e.updatedAt) < stale {
		data := e.data
		c.mu.Unlock()
		c.metrics.CacheLookup(key.Resource(), "hit")
		if v, ok := data.(T); ok {
			return v, nil
		}
		return zero, nil
	}
	c.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(id, func() (any, error) {
		c.mu.Lock()
		startVersion, startEpoch := c.version, c.epoch
		c.mu.Unlock()

		data, err := fn(detached)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.epoch != startEpoch {
			return data, nil
		}
		e, ok := c.entries[id]
		if !ok {
			e = &entry{key: append(Key(nil), key...)}
			c.entries[id] = e
		}
		e.data = data
		e.updatedAt = c.now()
		// Any invalidation that landed mid-flight keeps the result stale.
		e.invalidated = c.version != startVersion
		return data, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	if res.Shared {
		c.metrics.CacheLookup(key.Resource(), "coalesced")
	} else {
		c.metrics.CacheLookup(key.Resource(), "miss")
	}
	if res.Err != nil {
		return zero, res.Err
	}
	if t, ok := res.Val.(T); ok {
		return t, nil
	}
	return zero, nil
}

// Invalidate marks every key starting with prefix stale and tells the
// listeners.
func (c *Client) Invalidate(ctx context.Context, prefix Key) int {
	n := c.invalidate(prefix)
	c.metrics.Invalidated(prefix.Resource(), "local")

	c.mu.Lock()
	listeners := append([]InvalidationListener(nil), c.listeners...)
	c.mu.Unlock()
	for _, l := range listeners {
		l(ctx, prefix)
	}
	return n
}

// InvalidateRemote applies an invalidation that originated elsewhere; it is
// not passed on to the listeners.
func (c *Client) InvalidateRemote(prefix Key) int {
	n := c.invalidate(prefix)
	c.metrics.Invalidated(prefix.Resource(), "remote")
	return n
}

func (c *Client) invalidate(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	n := 0
	for _, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			e.invalidated = true
			n++
		}
	}
	return n
}

// GetQueryData returns whatever is cached for key, fresh or not.
func GetQueryData[T any](c *Client, key Key) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	e, ok := c.entries[key.String()]
	if !ok {
		return zero, false
	}
	v, ok := e.data.(T)
	return v, ok
}

// IsStale reports whether the next Fetch of key would go to the backend.
func (c *Client) IsStale(key Key, staleTime time.Duration) bool {
	if staleTime <= 0 {
		staleTime = c.staleTime
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	return !ok || e.invalidated || c.now().Sub(e.updatedAt) >= staleTime
}

// Clear drops every entry.
func (c *Client) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.entries = map[string]*entry{}
}
