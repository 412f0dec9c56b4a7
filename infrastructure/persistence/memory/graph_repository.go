package memory

import (
	"context"
	"sync"
	"time"

	"mediagraph/application/dto"
	"mediagraph/application/ports"
	"mediagraph/domain/core/valueobjects"
	appErrors "mediagraph/pkg/errors"
)

// GraphRepository keeps graphs in process memory
type GraphRepository struct {
	mu     sync.RWMutex
	graphs map[valueobjects.GraphID]*ports.GraphRecord
	order  []valueobjects.GraphID
	now    func() time.Time
}

// NewGraphRepository creates an empty in-memory repository
func NewGraphRepository() *GraphRepository {
	return &GraphRepository{
		graphs: make(map[valueobjects.GraphID]*ports.GraphRecord),
		now:    time.Now,
	}
}

// Create stores a new, empty graph
func (r *GraphRepository) Create(ctx context.Context, id valueobjects.GraphID, name string) (*ports.GraphRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.graphs[id]; exists {
		return nil, appErrors.NewConflictError("graph already exists")
	}
	now := r.now()
	record := &ports.GraphRecord{
		ID:        id,
		Name:      name,
		Nodes:     []dto.Node{},
		Edges:     []dto.Edge{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.graphs[id] = record
	r.order = append(r.order, id)
	return copyRecord(record), nil
}

// Get retrieves a graph
func (r *GraphRepository) Get(ctx context.Context, id valueobjects.GraphID) (*ports.GraphRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.graphs[id]
	if !ok {
		return nil, appErrors.NewNotFoundError("graph")
	}
	return copyRecord(record), nil
}

// List returns every graph in creation order
func (r *GraphRepository) List(ctx context.Context) ([]ports.GraphRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ports.GraphRecord, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *copyRecord(r.graphs[id]))
	}
	return out, nil
}

// Replace swaps the content of an existing graph
func (r *GraphRepository) Replace(ctx context.Context, id valueobjects.GraphID, nodes []dto.Node, edges []dto.Edge) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.graphs[id]
	if !ok {
		return time.Time{}, appErrors.NewNotFoundError("graph")
	}
	record.Nodes = append([]dto.Node{}, nodes...)
	record.Edges = append([]dto.Edge{}, edges...)
	record.UpdatedAt = r.now()
	return record.UpdatedAt, nil
}

func copyRecord(r *ports.GraphRecord) *ports.GraphRecord {
	c := *r
	c.Nodes = append([]dto.Node{}, r.Nodes...)
	c.Edges = append([]dto.Edge{}, r.Edges...)
	return &c
}
