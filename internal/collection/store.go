package collection

import (
	"slices"
	"sync"
)

// Store is an ordered sequence of items with equality-based lookup.
//
// Thread-safety model:
//   - Reads (Len, At, IndexOf, Contains, Items): safe from any goroutine
//   - Mutations: safe, but callers that care about ordering must serialize
//     them (engine.Machine does)
type Store[T any] struct {
	mu    sync.RWMutex
	items []T
	equal EqualFunc[T]
}

// New creates a store that matches items with equal, seeded with items.
// The items slice is copied.
func New[T any](equal EqualFunc[T], items ...T) *Store[T] {
	if equal == nil {
		panic("collection: nil EqualFunc")
	}
	return &Store[T]{
		items: slices.Clone(items),
		equal: equal,
	}
}

// NewComparable creates a store for a comparable item type using ==.
func NewComparable[T comparable](items ...T) *Store[T] {
	return New(Equal[T], items...)
}

// SetAll replaces the entire sequence. Always succeeds.
func (s *Store[T]) SetAll(items []T) Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = slices.Clone(items)
	return reloadChange()
}

// Clear empties the sequence. Always succeeds, and still reports a reload
// when the store was already empty.
func (s *Store[T]) Clear() Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.items)
	s.items = s.items[:0]
	return reloadChange()
}

// Insert places item at index, shifting later items right.
// Valid range is 0 <= index <= Len.
func (s *Store[T]) Insert(item T, index int) (Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index > len(s.items) {
		return Change{}, outOfRange("insert", index, len(s.items))
	}
	s.items = slices.Insert(s.items, index, item)
	return indexChange(ChangeInsert, index), nil
}

// Append adds item at the end. Always succeeds.
func (s *Store[T]) Append(item T) Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append(s.items, item)
	return indexChange(ChangeInsert, len(s.items)-1)
}

// Update replaces the item at index in place.
func (s *Store[T]) Update(item T, index int) (Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inRange(index) {
		return Change{}, outOfRange("update", index, len(s.items))
	}
	s.items[index] = item
	return indexChange(ChangeUpdate, index), nil
}

// UpdateItem replaces the first item equal to item.
func (s *Store[T]) UpdateItem(item T) (Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexOf(item)
	if index < 0 {
		return Change{}, notFound("update_item", len(s.items))
	}
	s.items[index] = item
	return indexChange(ChangeUpdate, index), nil
}

// Remove deletes the item at index, shifting later items left.
func (s *Store[T]) Remove(index int) (Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inRange(index) {
		return Change{}, outOfRange("remove", index, len(s.items))
	}
	s.removeAt(index)
	return indexChange(ChangeRemove, index), nil
}

// RemoveItem deletes the first item equal to item.
func (s *Store[T]) RemoveItem(item T) (Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexOf(item)
	if index < 0 {
		return Change{}, notFound("remove_item", len(s.items))
	}
	s.removeAt(index)
	return indexChange(ChangeRemove, index), nil
}

// Move relocates the item at from so that it ends up at to. Both indices
// refer to the pre-move sequence and must be in range. Move(i, i) succeeds
// with ChangeNone.
func (s *Store[T]) Move(from, to int) (Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkMove("move", from, to); err != nil {
		return Change{}, err
	}
	if from == to {
		return Change{}, nil
	}
	s.moveAt(from, to)
	return moveChange(from, to), nil
}

// MoveItem finds the first item equal to item, replaces it with item and
// moves it to to.
func (s *Store[T]) MoveItem(item T, to int) (Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.indexOf(item)
	if from < 0 {
		return Change{}, notFound("move_item", len(s.items))
	}
	if !s.inRange(to) {
		return Change{}, outOfRange("move_item", to, len(s.items))
	}
	return s.replaceAndMove(item, from, to), nil
}

// MoveUpdated replaces the item at from with item and moves it to to.
func (s *Store[T]) MoveUpdated(item T, from, to int) (Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkMove("move_updated", from, to); err != nil {
		return Change{}, err
	}
	return s.replaceAndMove(item, from, to), nil
}

// Len returns the number of items.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// At returns the item at index.
func (s *Store[T]) At(index int) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.inRange(index) {
		var zero T
		return zero, outOfRange("item_at", index, len(s.items))
	}
	return s.items[index], nil
}

// IndexOf returns the index of the first item equal to item.
func (s *Store[T]) IndexOf(item T) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index := s.indexOf(item)
	return index, index >= 0
}

// Contains reports whether any item equals item.
func (s *Store[T]) Contains(item T) bool {
	_, ok := s.IndexOf(item)
	return ok
}

// Items returns a snapshot of the current order.
func (s *Store[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// The helpers below assume s.mu is held.

func (s *Store[T]) inRange(index int) bool {
	return index >= 0 && index < len(s.items)
}

func (s *Store[T]) indexOf(item T) int {
	for i, existing := range s.items {
		if s.equal(existing, item) {
			return i
		}
	}
	return -1
}

func (s *Store[T]) checkMove(op string, from, to int) error {
	if !s.inRange(from) {
		return outOfRange(op, from, len(s.items))
	}
	if !s.inRange(to) {
		return outOfRange(op, to, len(s.items))
	}
	return nil
}

func (s *Store[T]) removeAt(index int) {
	s.items = slices.Delete(s.items, index, index+1)
}

func (s *Store[T]) moveAt(from, to int) {
	item := s.items[from]
	s.items = slices.Delete(s.items, from, from+1)
	s.items = slices.Insert(s.items, to, item)
}

// replaceAndMove reports an in-place update when the position is unchanged,
// since the content still changed.
func (s *Store[T]) replaceAndMove(item T, from, to int) Change {
	s.items[from] = item
	if from == to {
		return indexChange(ChangeUpdate, from)
	}
	s.moveAt(from, to)
	return moveChange(from, to)
}
