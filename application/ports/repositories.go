package ports

import (
	"context"
	"time"

	"mediagraph/application/dto"
	"mediagraph/domain/core/valueobjects"
	"mediagraph/domain/events"
)

// GraphRecord is a graph as held by a store
type GraphRecord struct {
	ID        valueobjects.GraphID
	Name      string
	Nodes     []dto.Node
	Edges     []dto.Edge
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary returns the list view of the record
func (r GraphRecord) Summary() dto.GraphSummary {
	return dto.GraphSummary{ID: dto.ID(r.ID), Name: r.Name}
}

// Document returns the full wire view of the record
func (r GraphRecord) Document() dto.GraphDocument {
	nodes := r.Nodes
	if nodes == nil {
		nodes = []dto.Node{}
	}
	edges := r.Edges
	if edges == nil {
		edges = []dto.Edge{}
	}
	return dto.GraphDocument{ID: dto.ID(r.ID), Name: r.Name, Nodes: nodes, Edges: edges}
}

// GraphRepository defines the interface for graph persistence on the store side.
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type GraphRepository interface {
	// Create stores a new, empty graph. Timestamps are set by the repository.
	Create(ctx context.Context, id valueobjects.GraphID, name string) (*GraphRecord, error)

	// Get retrieves a graph; a missing graph is a NOT_FOUND AppError
	Get(ctx context.Context, id valueobjects.GraphID) (*GraphRecord, error)

	// List returns every graph in creation order. Nodes and edges may be omitted.
	List(ctx context.Context) ([]GraphRecord, error)

	// Replace swaps the nodes and edges of an existing graph and returns the new update time
	Replace(ctx context.Context, id valueobjects.GraphID, nodes []dto.Node, edges []dto.Edge) (time.Time, error)
}

// GraphBackend is the editor's view of the remote graph store
type GraphBackend interface {
	// Fetch returns the stored graph
	Fetch(ctx context.Context, id valueobjects.GraphID) (*dto.GraphDocument, error)

	// Replace overwrites the stored nodes and edges
	Replace(ctx context.Context, id valueobjects.GraphID, req dto.ReplaceGraphRequest) (*dto.ReplaceGraphResponse, error)

	// Create stores a new, empty graph
	Create(ctx context.Context, name string) (*dto.GraphSummary, error)

	// List returns the stored graphs
	List(ctx context.Context) ([]dto.GraphSummary, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}
