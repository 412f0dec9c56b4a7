// Package persistence holds the graph store decorators shared by every backend.
package persistence

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mediagraph/application/dto"
	"mediagraph/application/ports"
	"mediagraph/domain/core/valueobjects"
	"mediagraph/pkg/observability"
)

// InstrumentedGraphRepository records metrics and debug logs around another repository
type InstrumentedGraphRepository struct {
	inner   ports.GraphRepository
	store   string
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewInstrumentedGraphRepository wraps inner. store labels the metrics (memory, sqlite, dynamodb).
func NewInstrumentedGraphRepository(inner ports.GraphRepository, store string, metrics *observability.Collector, logger *zap.Logger) *InstrumentedGraphRepository {
	return &InstrumentedGraphRepository{inner: inner, store: store, metrics: metrics, logger: logger}
}

func (r *InstrumentedGraphRepository) observe(op string, id valueobjects.GraphID, start time.Time, err error) {
	elapsed := time.Since(start)
	r.metrics.ObserveStore(op, r.store, err, elapsed)
	if err != nil {
		r.logger.Debug("Store operation failed",
			zap.String("operation", op),
			zap.String("store", r.store),
			zap.String("graphID", id.String()),
			zap.Error(err),
		)
		return
	}
	r.logger.Debug("Store operation",
		zap.String("operation", op),
		zap.String("store", r.store),
		zap.String("graphID", id.String()),
		zap.Duration("duration", elapsed),
	)
}

// Create implements ports.GraphRepository
func (r *InstrumentedGraphRepository) Create(ctx context.Context, id valueobjects.GraphID, name string) (*ports.GraphRecord, error) {
	start := time.Now()
	rec, err := r.inner.Create(ctx, id, name)
	r.observe("create", id, start, err)
	return rec, err
}

// Get implements ports.GraphRepository
func (r *InstrumentedGraphRepository) Get(ctx context.Context, id valueobjects.GraphID) (*ports.GraphRecord, error) {
	start := time.Now()
	rec, err := r.inner.Get(ctx, id)
	r.observe("get", id, start, err)
	return rec, err
}

// List implements ports.GraphRepository
func (r *InstrumentedGraphRepository) List(ctx context.Context) ([]ports.GraphRecord, error) {
	start := time.Now()
	recs, err := r.inner.List(ctx)
	r.observe("list", "", start, err)
	return recs, err
}

// Replace implements ports.GraphRepository
func (r *InstrumentedGraphRepository) Replace(ctx context.Context, id valueobjects.GraphID, nodes []dto.Node, edges []dto.Edge) (time.Time, error) {
	start := time.Now()
	at, err := r.inner.Replace(ctx, id, nodes, edges)
	r.observe("replace", id, start, err)
	return at, err
}

// Ping checks the wrapped store when it supports health checks
func (r *InstrumentedGraphRepository) Ping(ctx context.Context) error {
	if p, ok := r.inner.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
