// Package cache keeps fetched lists in memory until they are invalidated.
package cache

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
)

// TodoListKey identifies the list of all todos
const TodoListKey = "todo.all"

// Loader fetches the current contents of a list
type Loader[T any] func(ctx context.Context, key string) ([]T, error)

// ListCache caches lists by key. Invalidate drops an entry and notifies
// subscribers so they can refetch; it never waits for the refetch.
type ListCache[T any] struct {
	mu      sync.Mutex
	load    Loader[T]
	entries map[string][]T
	// gens counts invalidations per key so a load that raced one is not kept
	gens    map[string]uint64
	subs    []chan string
	logger  *log.Logger
}

// New creates a ListCache backed by load
func New[T any](load Loader[T], logger *log.Logger) *ListCache[T] {
	return &ListCache[T]{
		load:    load,
		entries: make(map[string][]T),
		gens:    make(map[string]uint64),
		logger:  logger,
	}
}

// Get returns the cached list for key, loading it on a miss
func (c *ListCache[T]) Get(ctx context.Context, key string) ([]T, error) {
	c.mu.Lock()
	items, ok := c.entries[key]
	gen := c.gens[key]
	c.mu.Unlock()
	if ok {
		return items, nil
	}

	items, err := c.load(ctx, key)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	stale := c.gens[key] != gen
	if !stale {
		c.entries[key] = items
	}
	c.mu.Unlock()
	if stale {
		c.logger.Debug("cache fill dropped", "key", key)
		return items, nil
	}
	c.logger.Debug("cache filled", "key", key, "items", len(items))
	return items, nil
}

// Invalidate drops key and tells subscribers it is stale
func (c *ListCache[T]) Invalidate(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	delete(c.entries, key)
	c.gens[key]++
	subs := append([]chan string(nil), c.subs...)
	c.mu.Unlock()

	for _, ch := range subs {
		// A pending notification already means "refetch"
		select {
		case ch <- key:
		default:
		}
	}
	c.logger.Debug("cache invalidated", "key", key, "subscribers", len(subs))
	return nil
}

// Subscribe returns a channel that receives the key of every invalidation
func (c *ListCache[T]) Subscribe() <-chan string {
	ch := make(chan string, 1)
	c.mu.Lock()
	c.subs = append(c.subs, ch)
	c.mu.Unlock()
	return ch
}
