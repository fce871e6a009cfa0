// Package store holds the in-memory collections that make up the
// application state. Collections hand out copies only; every change goes
// through a mutator that runs under the collection's write lock.
package store

import (
	"sync"
)

// Collection is an ordered, id-addressed set of records.
type Collection[T any] struct {
	mu    sync.RWMutex
	items []T
	idOf  func(T) string
}

// NewCollection constructs an empty collection keyed by idOf.
func NewCollection[T any](idOf func(T) string) *Collection[T] {
	return &Collection[T]{idOf: idOf}
}

// All returns a snapshot in stored order.
func (c *Collection[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len reports the number of stored records.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Find returns the record with the given id.
func (c *Collection[T]) Find(id string) (T, bool) {
	return c.FindBy(func(item T) bool { return c.idOf(item) == id })
}

// FindBy returns the first record matching the predicate.
func (c *Collection[T]) FindBy(match func(T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, item := range c.items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Filter returns the records matching the predicate in stored order.
func (c *Collection[T]) Filter(match func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if match(item) {
			out = append(out, item)
		}
	}
	return out
}

// Append adds the record at the end.
func (c *Collection[T]) Append(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
}

// Prepend adds the record at the front.
func (c *Collection[T]) Prepend(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T{item}, c.items...)
}

// Update applies fn to the record with the given id. Unknown ids leave the
// collection untouched and report false.
func (c *Collection[T]) Update(id string, fn func(*T)) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.idOf(c.items[i]) == id {
			fn(&c.items[i])
			return c.items[i], true
		}
	}
	var zero T
	return zero, false
}

// Remove deletes the record with the given id and returns it.
func (c *Collection[T]) Remove(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.idOf(c.items[i]) == id {
			removed := c.items[i]
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			return removed, true
		}
	}
	var zero T
	return zero, false
}

// Transact runs fn with exclusive access to a copy of the records. When fn
// returns without error its result becomes the new content.
func (c *Collection[T]) Transact(fn func(items []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	working := make([]T, len(c.items))
	copy(working, c.items)

	next, err := fn(working)
	if err != nil {
		return err
	}
	c.items = next
	return nil
}

// Reset replaces the content wholesale.
func (c *Collection[T]) Reset(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make([]T, len(items))
	copy(c.items, items)
}
