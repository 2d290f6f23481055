package ecs

import "fmt"

// Cache is a small append-only name-indexed registry used for the type
// registry's name -> DataTypeId lookups (the registry hands the core a
// stable id per registered component/relation name).
type Cache[T any] interface {
	GetIndex(string) (int, bool)
	GetItem(int) *T
	GetItem32(uint32) *T
	Register(string, T) (int, error)
}

// SimpleCache is the default Cache implementation: a dense slice of items
// plus a name -> index map. maxCapacity of 0 means unbounded.
type SimpleCache[T any] struct {
	items       []T
	itemIndices map[string]int
	maxCapacity int
}

var _ Cache[any] = &SimpleCache[any]{}

// NewCache creates a Cache with the given maximum capacity (0 = unbounded).
func NewCache[T any](maxCapacity int) *SimpleCache[T] {
	return &SimpleCache[T]{
		itemIndices: make(map[string]int),
		maxCapacity: maxCapacity,
	}
}

func (c *SimpleCache[T]) GetIndex(key string) (int, bool) {
	index, ok := c.itemIndices[key]
	return index, ok
}

func (c *SimpleCache[T]) GetItem(index int) *T {
	return &c.items[index]
}

func (c *SimpleCache[T]) GetItem32(index uint32) *T {
	return &c.items[index]
}

func (c *SimpleCache[T]) Register(key string, item T) (int, error) {
	if _, exists := c.itemIndices[key]; exists {
		return -1, fmt.Errorf("cache: key %q already registered", key)
	}
	if c.maxCapacity > 0 && len(c.itemIndices) >= c.maxCapacity {
		return -1, fmt.Errorf("cache at maximum capacity (%d)", c.maxCapacity)
	}

	idx := len(c.items)
	c.itemIndices[key] = idx
	c.items = append(c.items, item)

	return idx, nil
}

func (c *SimpleCache[T]) Clear() {
	c.items = nil
	c.itemIndices = make(map[string]int)
}

// Len reports the number of registered items.
func (c *SimpleCache[T]) Len() int {
	return len(c.items)
}
