package state

import "sync"

// Cell is a single mutable current value: once set, the latest value stays
// available to any later reader until superseded. All writes go through one
// cell, so read-modify-write folds (Update) never race.
type Cell[T any] struct {
	mu  sync.Mutex
	val T
	set bool
}

// NewCell returns an empty cell.
func NewCell[T any]() *Cell[T] {
	return &Cell[T]{}
}

// Set stores a new current value.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.val = v
	c.set = true
}

// Get returns the current value and whether one has ever been set.
func (c *Cell[T]) Get() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.val, c.set
}

// Update applies a fold to the current value (zero value if unset) and
// stores the result, returning it. The fold runs under the cell's lock.
func (c *Cell[T]) Update(f func(T) T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.val = f(c.val)
	c.set = true
	return c.val
}
