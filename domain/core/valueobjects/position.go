package valueobjects

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Position is a value object representing node coordinates on the canvas
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPosition creates a position, reporting false when a coordinate is not finite
func NewPosition(x, y float64) (Position, bool) {
	if !isValidCoordinate(x) || !isValidCoordinate(y) {
		return Position{}, false
	}
	return Position{X: x, Y: y}, true
}

// Equals checks if two positions are equal
func (p Position) Equals(other Position) bool {
	const epsilon = 1e-9
	return math.Abs(p.X-other.X) < epsilon &&
		math.Abs(p.Y-other.Y) < epsilon
}

// Translate moves the position by the given offsets
func (p Position) Translate(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// isValidCoordinate checks if a coordinate is a valid finite number
func isValidCoordinate(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// PositionSampler picks initial positions for newly added nodes
type PositionSampler interface {
	Sample() Position
}

// RandomSampler draws uniformly from [0,Width) x [0,Height)
type RandomSampler struct {
	mu     sync.Mutex
	rng    *rand.Rand
	width  float64
	height float64
}

// NewRandomSampler creates a sampler over the given canvas region
func NewRandomSampler(width, height float64) *RandomSampler {
	return NewSeededSampler(width, height, time.Now().UnixNano())
}

// NewSeededSampler creates a reproducible sampler
func NewSeededSampler(width, height float64, seed int64) *RandomSampler {
	return &RandomSampler{
		rng:    rand.New(rand.NewSource(seed)),
		width:  width,
		height: height,
	}
}

// Sample returns the next random position
func (s *RandomSampler) Sample() Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Position{
		X: s.rng.Float64() * s.width,
		Y: s.rng.Float64() * s.height,
	}
}

// FixedSampler replays a fixed list of positions, then repeats the last one
type FixedSampler struct {
	mu        sync.Mutex
	positions []Position
	next      int
}

// NewFixedSampler creates a sampler that returns positions in order
func NewFixedSampler(positions ...Position) *FixedSampler {
	return &FixedSampler{positions: positions}
}

// Sample returns the next configured position
func (s *FixedSampler) Sample() Position {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.positions) == 0 {
		return Position{}
	}
	if s.next >= len(s.positions) {
		return s.positions[len(s.positions)-1]
	}
	p := s.positions[s.next]
	s.next++
	return p
}
