package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates predictable mutation IDs: "<prefix>-1", "<prefix>-2", ...
//
// This enables deterministic traces and golden snapshot comparison.
// The same script with a fresh SequentialIDs produces byte-identical traces.
//
// Thread-safety: SequentialIDs is safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs creates a generator. An empty prefix defaults to "mut".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "mut"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next ID.
//
// Implements engine.IDGenerator.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Reset restarts numbering at 1.
func (g *SequentialIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}

// Last returns the most recently generated ID, or "" before the first call.
func (g *SequentialIDs) Last() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.n == 0 {
		return ""
	}
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
