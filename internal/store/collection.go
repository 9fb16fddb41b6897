package store

import (
	"github.com/goccy/go-json"
)

// Collection binds one store key to an ordered JSON array of T.
type Collection[T any] struct {
	store *Store
	key   string
}

func NewCollection[T any](s *Store, key string) *Collection[T] {
	return &Collection[T]{store: s, key: key}
}

func (c *Collection[T]) Key() string { return c.key }

// All returns the stored records in insertion order. Missing or unreadable
// documents yield an empty slice.
func (c *Collection[T]) All() []T {
	raw, ok := c.store.Get(c.key)
	if !ok {
		return nil
	}
	return c.decode(raw)
}

// Replace overwrites the whole collection.
func (c *Collection[T]) Replace(items []T) {
	data, ok := c.encode(items)
	if !ok {
		return
	}
	c.store.Set(c.key, data)
}

// Add appends item.
func (c *Collection[T]) Add(item T) {
	c.modify(func(items []T) ([]T, bool) {
		return append(items, item), true
	})
}

// Find returns the first record matching pred.
func (c *Collection[T]) Find(pred func(T) bool) (T, bool) {
	for _, item := range c.All() {
		if pred(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// RemoveWhere deletes every record matching pred and reports how many went.
func (c *Collection[T]) RemoveWhere(pred func(T) bool) int {
	removed := 0
	c.modify(func(items []T) ([]T, bool) {
		kept := items[:0]
		for _, item := range items {
			if pred(item) {
				removed++
				continue
			}
			kept = append(kept, item)
		}
		return kept, removed > 0
	})
	return removed
}

// UpdateWhere applies patch to every record matching pred and reports how
// many were touched.
func (c *Collection[T]) UpdateWhere(pred func(T) bool, patch func(*T)) int {
	updated := 0
	c.modify(func(items []T) ([]T, bool) {
		for i := range items {
			if pred(items[i]) {
				patch(&items[i])
				updated++
			}
		}
		return items, updated > 0
	})
	return updated
}

func (c *Collection[T]) modify(fn func([]T) ([]T, bool)) {
	c.store.Modify(c.key, func(old []byte, ok bool) ([]byte, bool) {
		var items []T
		if ok {
			items = c.decode(old)
		}
		next, changed := fn(items)
		if !changed {
			return nil, false
		}
		return c.encode(next)
	})
}

func (c *Collection[T]) decode(raw []byte) []T {
	if len(raw) == 0 {
		return nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		c.store.log.Error("decode collection", "key", c.key, "err", err)
		return nil
	}
	return items
}

func (c *Collection[T]) encode(items []T) ([]byte, bool) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		c.store.log.Error("encode collection", "key", c.key, "err", err)
		return nil, false
	}
	return data, true
}
