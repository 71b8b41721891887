// Package collection implements the ordered store behind a list view.
//
// A Store holds an ordered sequence of caller-owned items. Order changes only
// through explicit mutations (insert, append, move, remove, set-all, clear);
// nothing is ever sorted or reordered implicitly. Items are matched by an
// injected EqualFunc, so callers choose between identity and value equality.
//
// Every mutation validates its index or lookup before touching the sequence.
// A failed mutation returns an *Error and leaves the store unchanged. A
// successful mutation returns a Change describing what a view must do to
// reflect it.
//
// INDEX RULES:
//   - Insert accepts 0 <= index <= Len (the one-past-the-end slot appends).
//   - Every other index-taking operation requires 0 <= index < Len.
//   - Lookups return the first match in current order.
//   - Move(i, i) succeeds without a change.
//
// The store is safe for concurrent readers. Mutations are expected to come
// from a single writer (the engine worker); the internal lock exists so that
// reads from other goroutines see a consistent sequence.
package collection
