package editor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"mediagraph/application/commands"
	"mediagraph/application/pipeline"
	"mediagraph/application/ports"
	"mediagraph/application/session"
	"mediagraph/domain/config"
	"mediagraph/domain/core/validators"
	"mediagraph/domain/core/valueobjects"
	"mediagraph/pkg/observability"
)

// ManagerOptions configures how sessions are built
type ManagerOptions struct {
	Domain       *config.DomainConfig
	WriteTimeout time.Duration
	FlushOnClose bool
	Clock        pipeline.Clock
	IDs          valueobjects.IdentifierGenerator
	Positions    valueobjects.PositionSampler
}

type entry struct {
	session *session.Session
	hub     *Hub
}

// Manager hosts one editing session per graph id
type Manager struct {
	backend ports.GraphBackend
	opts    ManagerOptions
	surface *commands.Surface
	metrics *observability.Collector
	logger  *zap.Logger

	mu       sync.Mutex
	sessions map[valueobjects.GraphID]*entry
	opening  singleflight.Group
}

// NewManager creates a session manager against backend
func NewManager(backend ports.GraphBackend, opts ManagerOptions, metrics *observability.Collector, logger *zap.Logger) *Manager {
	if opts.Domain == nil {
		opts.Domain = config.DefaultDomainConfig()
	}
	if opts.IDs == nil {
		opts.IDs = valueobjects.UUIDGenerator{}
	}
	if opts.Positions == nil {
		opts.Positions = valueobjects.NewRandomSampler(opts.Domain.CanvasWidth, opts.Domain.CanvasHeight)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	surface := commands.NewSurface(opts.IDs, opts.Positions, validators.NewConnectionValidatorWithConfig(opts.Domain))
	return &Manager{
		backend:  backend,
		opts:     opts,
		surface:  surface,
		metrics:  metrics,
		logger:   logger,
		sessions: make(map[valueobjects.GraphID]*entry),
	}
}

// Get returns the session for id, opening it on first use. A graph that
// fails to load still gets a session with an empty document; the failure
// is visible in its status.
//
// Concurrent first requests for the same id share a single load. The load
// runs without m.mu held, so a slow store only delays that graph.
func (m *Manager) Get(ctx context.Context, id valueobjects.GraphID) (*session.Session, *Hub) {
	if e, ok := m.entry(id); ok {
		return e.session, e.hub
	}

	v, _, _ := m.opening.Do(id.String(), func() (interface{}, error) {
		if e, ok := m.entry(id); ok {
			return e, nil
		}
		// The session outlives the request that opened it
		e := m.open(context.WithoutCancel(ctx), id)
		m.mu.Lock()
		m.sessions[id] = e
		m.mu.Unlock()
		return e, nil
	})
	e := v.(*entry)
	return e.session, e.hub
}

func (m *Manager) entry(id valueobjects.GraphID) (*entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	return e, ok
}

func (m *Manager) open(ctx context.Context, id valueobjects.GraphID) *entry {
	logger := m.logger.With(zap.String("graphID", id.String()))
	hub := NewHub(logger)
	pipe := pipeline.New(m.backend, pipeline.Options{
		Debounce:     m.opts.Domain.SaveDebounce,
		WriteTimeout: m.opts.WriteTimeout,
		Clock:        m.opts.Clock,
		Logger:       logger,
		Metrics:      m.metrics,
	})
	s := session.New(id, m.surface, pipe, hub, logger, m.metrics)

	if err := s.Open(ctx); err != nil {
		logger.Warn("Graph failed to load, editing an empty document", zap.Error(err))
	}
	logger.Info("Session opened")
	return &entry{session: s, hub: hub}
}

// Lookup returns an already open session
func (m *Manager) Lookup(id valueobjects.GraphID) (*session.Session, bool) {
	e, ok := m.entry(id)
	if !ok {
		return nil, false
	}
	return e.session, true
}

// Count returns the number of open sessions
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close ends the session for id. Reports false when no session was open.
func (m *Manager) Close(ctx context.Context, id valueobjects.GraphID) (bool, error) {
	m.mu.Lock()
	e, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return false, nil
	}
	err := e.session.Close(ctx, m.opts.FlushOnClose)
	e.hub.Close()
	return true, err
}

// CloseAll ends every session
func (m *Manager) CloseAll(ctx context.Context) {
	m.mu.Lock()
	ids := make([]valueobjects.GraphID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		if _, err := m.Close(ctx, id); err != nil {
			m.logger.Warn("Failed to close session", zap.String("graphID", id.String()), zap.Error(err))
		}
	}
}
