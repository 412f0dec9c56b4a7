package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mediagraph/application/dto"
	"mediagraph/application/ports"
	"mediagraph/domain/config"
	"mediagraph/domain/core/aggregates"
	"mediagraph/domain/core/valueobjects"
	"mediagraph/domain/events"
	appErrors "mediagraph/pkg/errors"
	"mediagraph/pkg/utils"
)

// GraphService is the write side of the graph store. It creates and
// replaces whole graphs and announces each write. Reads go through the query bus.
type GraphService struct {
	repo      ports.GraphRepository
	publisher ports.EventPublisher
	ids       valueobjects.IdentifierGenerator
	config    *config.DomainConfig
	logger    *zap.Logger
}

// NewGraphService creates a new graph service
func NewGraphService(
	repo ports.GraphRepository,
	publisher ports.EventPublisher,
	ids valueobjects.IdentifierGenerator,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *GraphService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &GraphService{
		repo:      repo,
		publisher: publisher,
		ids:       ids,
		config:    cfg,
		logger:    logger,
	}
}

// Create stores a new, empty graph
func (s *GraphService) Create(ctx context.Context, req dto.CreateGraphRequest) (*dto.CreateGraphResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if len(req.Name) > s.config.MaxNameLength {
		return nil, appErrors.NewValidationError(fmt.Sprintf("name must be at most %d characters", s.config.MaxNameLength))
	}

	id := valueobjects.GraphID(s.ids.NewID())
	record, err := s.repo.Create(ctx, id, req.Name)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Graph created", zap.String("graphID", id.String()), zap.String("name", req.Name))
	s.publish(ctx, events.NewGraphCreated(id, req.Name, record.CreatedAt))

	summary := record.Summary()
	return &summary, nil
}

// Replace overwrites the content of an existing graph.
// The content is normalized through the document model first, so legacy
// kinds are rewritten and edges without both endpoints are dropped.
func (s *GraphService) Replace(ctx context.Context, id valueobjects.GraphID, req dto.ReplaceGraphRequest) (*dto.ReplaceGraphResponse, error) {
	if id.IsZero() {
		return nil, appErrors.NewValidationError("graph id is required")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := s.checkContent(req); err != nil {
		return nil, err
	}

	doc := aggregates.NewDocument(id, "").ReplaceAll("", dto.NodesToDomain(req.Nodes), dto.EdgesToDomain(req.Edges))
	normalized := dto.FromDocument(doc)
	if dropped := len(req.Edges) - len(normalized.Edges); dropped > 0 {
		s.logger.Warn("Dropped edges without both endpoints",
			zap.String("graphID", id.String()),
			zap.Int("dropped", dropped),
		)
	}

	updatedAt, err := s.repo.Replace(ctx, id, normalized.Nodes, normalized.Edges)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Graph replaced",
		zap.String("graphID", id.String()),
		zap.Int("nodes", len(normalized.Nodes)),
		zap.Int("edges", len(normalized.Edges)),
	)
	s.publish(ctx, events.NewGraphSaved(id, len(normalized.Nodes), len(normalized.Edges), updatedAt))

	return &dto.ReplaceGraphResponse{ID: dto.ID(id), UpdatedAt: utils.FormatTimestamp(updatedAt)}, nil
}

func (s *GraphService) checkContent(req dto.ReplaceGraphRequest) error {
	if len(req.Nodes) > s.config.MaxNodesPerGraph {
		return appErrors.NewValidationError(fmt.Sprintf("graph exceeds %d nodes", s.config.MaxNodesPerGraph))
	}
	if len(req.Edges) > s.config.MaxEdgesPerGraph {
		return appErrors.NewValidationError(fmt.Sprintf("graph exceeds %d edges", s.config.MaxEdgesPerGraph))
	}
	for i, n := range req.Nodes {
		if n.ResolvedKind() == "" {
			return appErrors.NewValidationError(fmt.Sprintf("nodes[%d].kind must be one of: media zone", i))
		}
	}
	return nil
}

// publish announces a write. Publishing failures never fail the write.
func (s *GraphService) publish(ctx context.Context, event events.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("type", event.GetEventType()),
			zap.String("aggregateID", event.GetAggregateID()),
			zap.Error(err),
		)
	}
}
