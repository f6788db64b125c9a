package testfixtures

import (
	"fmt"
	"sync/atomic"
)

// IDGenerator yields deterministic, sequential identifiers of the form
// "<prefix>-<n>", starting at 1. It is safe for concurrent use, so it can
// back services exercised from multiple goroutines in a test.
type IDGenerator struct {
	prefix  string
	counter atomic.Uint64
}

// NewIDGenerator returns a generator for the given prefix, defaulting to
// "id" when the prefix is empty.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.counter.Add(1))
}

// NextFunc adapts Next to the func() string shape services are wired with.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// Reset rewinds the sequence so the next identifier is "<prefix>-1" again.
func (g *IDGenerator) Reset() {
	g.counter.Store(0)
}
