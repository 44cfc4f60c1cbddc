// Package symbols provides symbolic name tables for decoded assets.
package symbols

import (
	"slices"
	"sync"

	"github.com/retroenv/retrogolib/set"
)

// Manager provides symbol tracking with bank support.
// T is the type of symbol being managed, usually a name string.
// Lookups are safe for concurrent use, registration is expected to be done
// before decoding starts.
type Manager[T any] struct {
	mu    sync.Mutex
	banks map[int]*Bank[T]
}

// Bank represents the symbols of one bank, keyed by offset or index.
type Bank[T any] struct {
	items map[uint32]T
	used  set.Set[uint32]
}

// Get returns the item for the given key in this bank.
func (b *Bank[T]) Get(key uint32) (T, bool) {
	item, ok := b.items[key]
	return item, ok
}

// Set sets the item for the given key in this bank.
func (b *Bank[T]) Set(key uint32, item T) {
	b.items[key] = item
}

// Len returns the number of items in this bank.
func (b *Bank[T]) Len() int {
	return len(b.items)
}

// Unused returns the sorted keys of all items that were never looked up.
func (b *Bank[T]) Unused() []uint32 {
	var keys []uint32
	for key := range b.items {
		if !b.used.Contains(key) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys
}

// New creates a new symbol manager.
func New[T any]() *Manager[T] {
	return &Manager[T]{
		banks: make(map[int]*Bank[T]),
	}
}

// Bank returns the bank with the given index, creating it if needed.
func (m *Manager[T]) Bank(index int) *Bank[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bank(index)
}

func (m *Manager[T]) bank(index int) *Bank[T] {
	bnk, ok := m.banks[index]
	if !ok {
		bnk = &Bank[T]{
			items: make(map[uint32]T),
			used:  set.New[uint32](),
		}
		m.banks[index] = bnk
	}
	return bnk
}

// Set sets the item for the given key in the given bank.
func (m *Manager[T]) Set(bank int, key uint32, item T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bank(bank).Set(key, item)
}

// Lookup returns the item for the given key in the given bank and marks it as used.
func (m *Manager[T]) Lookup(bank int, key uint32) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bnk, ok := m.banks[bank]
	if !ok {
		var empty T
		return empty, false
	}
	item, ok := bnk.Get(key)
	if ok {
		bnk.used.Add(key)
	}
	return item, ok
}

// BankIndexes returns the sorted indexes of all banks.
func (m *Manager[T]) BankIndexes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()

	indexes := make([]int, 0, len(m.banks))
	for index := range m.banks {
		indexes = append(indexes, index)
	}
	slices.Sort(indexes)
	return indexes
}

// Len returns the number of items over all banks.
func (m *Manager[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int
	for _, bnk := range m.banks {
		n += bnk.Len()
	}
	return n
}

// Names is the name table used for decoded assets.
type Names = Manager[string]

// NewNames returns an empty name table.
func NewNames() *Names {
	return New[string]()
}

// Name returns the name for the given key or an empty string if none is known.
func (m *Manager[T]) Name(bank int, key uint32) T {
	item, _ := m.Lookup(bank, key)
	return item
}
