package handlers

import (
	"context"
	"fmt"

	"mediagraph/application/dto"
	"mediagraph/application/ports"
	"mediagraph/application/queries"
	"mediagraph/application/queries/bus"
)

// GetGraphHandler answers GetGraphQuery with a *dto.GraphDocument
type GetGraphHandler struct {
	repo ports.GraphRepository
}

func NewGetGraphHandler(repo ports.GraphRepository) *GetGraphHandler {
	return &GetGraphHandler{repo: repo}
}

// Handle implements bus.QueryHandler
func (h *GetGraphHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.GetGraphQuery)
	if !ok {
		return nil, fmt.Errorf("invalid query type: %T", q)
	}

	record, err := h.repo.Get(ctx, query.GraphID)
	if err != nil {
		return nil, err
	}
	doc := record.Document()
	return &doc, nil
}

// ListGraphsHandler answers ListGraphsQuery with a []dto.GraphSummary
type ListGraphsHandler struct {
	repo ports.GraphRepository
}

func NewListGraphsHandler(repo ports.GraphRepository) *ListGraphsHandler {
	return &ListGraphsHandler{repo: repo}
}

// Handle implements bus.QueryHandler
func (h *ListGraphsHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	if _, ok := q.(queries.ListGraphsQuery); !ok {
		return nil, fmt.Errorf("invalid query type: %T", q)
	}

	records, err := h.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.GraphSummary, 0, len(records))
	for _, r := range records {
		out = append(out, r.Summary())
	}
	return out, nil
}

// Register wires the graph query handlers into b
func Register(b *bus.QueryBus, repo ports.GraphRepository) error {
	if err := b.Register(queries.GetGraphQuery{}, NewGetGraphHandler(repo)); err != nil {
		return err
	}
	return b.Register(queries.ListGraphsQuery{}, NewListGraphsHandler(repo))
}
