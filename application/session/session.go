// Package session runs one editing session over a single graph.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"mediagraph/application/commands"
	"mediagraph/application/commands/bus"
	"mediagraph/application/pipeline"
	"mediagraph/application/ports"
	"mediagraph/application/projection"
	"mediagraph/domain/core/aggregates"
	"mediagraph/domain/core/valueobjects"
	"mediagraph/pkg/observability"
)

// Status summarizes the session for the editor chrome
type Status struct {
	GraphID   valueobjects.GraphID `json:"graphId"`
	Name      string               `json:"name"`
	Version   uint64               `json:"version"`
	Nodes     int                  `json:"nodes"`
	Edges     int                  `json:"edges"`
	Pending   bool                 `json:"pendingSave"`
	LastSaved *time.Time           `json:"lastSaved,omitempty"`
	LoadError string               `json:"loadError,omitempty"`
}

// Session owns the document and selection of one graph being edited.
// Commands are applied one at a time; every change is projected to the
// render sink and persisted through the pipeline.
type Session struct {
	graphID  valueobjects.GraphID
	surface  *commands.Surface
	pipeline *pipeline.Pipeline
	sink     ports.RenderSink
	bus      *bus.CommandBus
	logger   *zap.Logger

	mu        sync.Mutex
	doc       *aggregates.Document
	selection valueobjects.NodeID
	loadErr   error
	closed    bool
}

// New creates a session for graphID. Call Open to load its content.
func New(
	graphID valueobjects.GraphID,
	surface *commands.Surface,
	pipe *pipeline.Pipeline,
	sink ports.RenderSink,
	logger *zap.Logger,
	metrics *observability.Collector,
) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		graphID:  graphID,
		surface:  surface,
		pipeline: pipe,
		sink:     sink,
		logger:   logger.With(zap.String("graphID", graphID.String())),
		doc:      aggregates.NewDocument(graphID, ""),
	}

	s.bus = bus.NewCommandBus(bus.LoggingMiddleware(s.logger), bus.MetricsMiddleware(metrics))
	handler := bus.CommandHandlerFunc(s.handle)
	for _, cmd := range []bus.Command{
		commands.AddMediaNodeCommand{},
		commands.AddZoneNodeCommand{},
		commands.MoveNodeCommand{},
		commands.ConnectCommand{},
		commands.RemoveNodeCommand{},
		commands.RemoveEdgeCommand{},
		commands.SelectNodeCommand{},
		commands.ClearSelectionCommand{},
	} {
		// Each type is registered once on a fresh bus
		_ = s.bus.Register(cmd, handler)
	}
	return s
}

// Open loads the graph. A load failure is returned but leaves the session
// usable with an empty document carrying the graph id.
func (s *Session) Open(ctx context.Context) error {
	doc, err := s.pipeline.Load(ctx, s.graphID)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = doc
	s.selection = ""
	s.loadErr = err
	s.render(ctx)
	return err
}

// Dispatch applies one editing command
func (s *Session) Dispatch(ctx context.Context, cmd bus.Command) (commands.Result, error) {
	res, err := s.bus.Send(ctx, cmd)
	if err != nil {
		return commands.Result{}, err
	}
	out, _ := res.Data.(commands.Result)
	return out, nil
}

func (s *Session) handle(ctx context.Context, cmd bus.Command) (bus.CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return bus.CommandResult{Data: commands.Result{Doc: s.doc, Selection: s.selection}}, nil
	}

	res := s.surface.Apply(s.doc, s.selection, cmd)
	selectionChanged := res.Selection != s.selection

	s.doc = res.Doc
	s.selection = res.Selection

	if res.Persist {
		s.pipeline.Schedule(res.Doc)
	}
	if res.Changed || selectionChanged {
		s.render(ctx)
	}
	return bus.CommandResult{Changed: res.Changed, Data: res}, nil
}

func (s *Session) render(ctx context.Context) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Render(ctx, projection.Project(s.doc, s.selection)); err != nil {
		s.logger.Warn("Failed to render scene", zap.Error(err))
	}
}

// Scene returns the current projection
func (s *Session) Scene() projection.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return projection.Project(s.doc, s.selection)
}

// Document returns the current document
func (s *Session) Document() *aggregates.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Selection returns the selected node, or "" when nothing is selected
func (s *Session) Selection() valueobjects.NodeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// Status reports the session state
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		GraphID: s.graphID,
		Name:    s.doc.Name(),
		Version: s.doc.Version(),
		Nodes:   s.doc.NodeCount(),
		Edges:   s.doc.EdgeCount(),
		Pending: s.pipeline.HasPending(),
	}
	if at, ok := s.pipeline.LastSaved(); ok {
		st.LastSaved = &at
	}
	if s.loadErr != nil {
		st.LoadError = s.loadErr.Error()
	}
	return st
}

// Close ends the session. A pending save is canceled unless flush is set,
// in which case it is written first.
func (s *Session) Close(ctx context.Context, flush bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	var err error
	if flush {
		err = s.pipeline.Flush(ctx)
	}
	s.pipeline.Close()
	s.logger.Info("Session closed", zap.Bool("flushed", flush))
	return err
}
