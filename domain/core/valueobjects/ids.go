package valueobjects

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// NodeID identifies a node within a graph document
type NodeID string

// EdgeID identifies an edge within a graph document
type EdgeID string

// GraphID identifies a persisted graph document
type GraphID string

// String returns the string representation
func (id NodeID) String() string {
	return string(id)
}

// IsZero checks if the NodeID is the zero value
func (id NodeID) IsZero() bool {
	return id == ""
}

// String returns the string representation
func (id EdgeID) String() string {
	return string(id)
}

// String returns the string representation
func (id GraphID) String() string {
	return string(id)
}

// IsZero checks if the GraphID is the zero value
func (id GraphID) IsZero() bool {
	return id == ""
}

// DeriveEdgeID builds the directional edge identifier for a source/target pair.
// Identical directional connections always map to the same id.
func DeriveEdgeID(source, target NodeID) EdgeID {
	return EdgeID(string(source) + "-" + string(target))
}

// IdentifierGenerator produces globally unique opaque identifiers
type IdentifierGenerator interface {
	NewID() string
}

// UUIDGenerator generates random v4 UUIDs
type UUIDGenerator struct{}

// NewID returns a fresh random UUID string
func (UUIDGenerator) NewID() string {
	return uuid.New().String()
}

// SequenceGenerator hands out prefix1, prefix2, ... in order.
// Used where identifiers must be predictable, mostly tests and fixtures.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequenceGenerator creates a generator starting at 1
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix, next: 1}
}

// NewID returns the next identifier in the sequence
func (g *SequenceGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := fmt.Sprintf("%s%d", g.prefix, g.next)
	g.next++
	return id
}

// Issued reports how many identifiers have been handed out
func (g *SequenceGenerator) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.next - 1
}
