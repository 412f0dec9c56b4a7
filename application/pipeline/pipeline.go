package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"mediagraph/application/dto"
	"mediagraph/application/ports"
	"mediagraph/domain/core/aggregates"
	"mediagraph/domain/core/valueobjects"
	appErrors "mediagraph/pkg/errors"
	"mediagraph/pkg/observability"
)

// DefaultDebounce is the quiet period before a scheduled save is written
const DefaultDebounce = time.Second

// DefaultWriteTimeout bounds a single background write
const DefaultWriteTimeout = 10 * time.Second

// Options configures a Pipeline. Zero values select the defaults.
type Options struct {
	Debounce     time.Duration
	WriteTimeout time.Duration
	Clock        Clock
	Logger       *zap.Logger
	Metrics      *observability.Collector

	// OnSaveError receives every SAVE_FAILURE. It runs on the writing goroutine.
	OnSaveError func(err error)
	// OnSaved is called after a successful write with the save time
	OnSaved func(doc *aggregates.Document, at time.Time)
}

// Pipeline loads a graph from the backend and writes edits back after a
// quiet period. Writes are serialized, and a document whose version is not
// newer than the last one written is never sent.
type Pipeline struct {
	backend      ports.GraphBackend
	clock        Clock
	logger       *zap.Logger
	metrics      *observability.Collector
	writeTimeout time.Duration
	onSaveError  func(error)
	onSaved      func(*aggregates.Document, time.Time)
	debouncer    *Debouncer

	mu        sync.Mutex
	pending   *aggregates.Document
	lastSaved time.Time
	closed    bool

	writeMu     sync.Mutex
	written     bool
	lastWritten uint64
}

// New creates a pipeline writing to backend
func New(backend ports.GraphBackend, opts Options) *Pipeline {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	p := &Pipeline{
		backend:      backend,
		clock:        opts.Clock,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		writeTimeout: opts.WriteTimeout,
		onSaveError:  opts.OnSaveError,
		onSaved:      opts.OnSaved,
	}
	p.debouncer = NewDebouncer(opts.Clock, opts.Debounce, p.fire)
	return p
}

// Load fetches a graph and returns it as a fresh document.
// On failure the document is empty, carries the requested id, and the
// error is a LOAD_FAILURE.
func (p *Pipeline) Load(ctx context.Context, id valueobjects.GraphID) (*aggregates.Document, error) {
	empty := aggregates.NewDocument(id, "")

	stored, err := p.backend.Fetch(ctx, id)
	if err != nil {
		p.metrics.LoadRecorded(false)
		p.logger.Warn("Failed to load graph", zap.String("graphID", id.String()), zap.Error(err))
		return empty, appErrors.NewLoadFailure(id.String(), err)
	}
	if stored == nil {
		stored = &dto.GraphDocument{}
	}

	doc := stored.ApplyTo(empty)
	p.metrics.LoadRecorded(true)

	// The loaded state is what the backend already holds
	p.writeMu.Lock()
	p.written = true
	p.lastWritten = doc.Version()
	p.writeMu.Unlock()

	p.logger.Info("Graph loaded",
		zap.String("graphID", id.String()),
		zap.Int("nodes", doc.NodeCount()),
		zap.Int("edges", doc.EdgeCount()),
	)
	return doc, nil
}

// Schedule records doc as the latest state and restarts the quiet period
func (p *Pipeline) Schedule(doc *aggregates.Document) {
	if doc == nil {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.pending = doc
	p.mu.Unlock()

	p.debouncer.Trigger()
}

// Flush writes the pending state now instead of waiting for the quiet period
func (p *Pipeline) Flush(ctx context.Context) error {
	p.debouncer.Cancel()
	doc := p.takePending()
	if doc == nil {
		return nil
	}
	return p.write(ctx, doc)
}

// Close cancels a pending save. A write already in flight completes on its own.
func (p *Pipeline) Close() {
	p.mu.Lock()
	p.closed = true
	p.pending = nil
	p.mu.Unlock()

	p.debouncer.Cancel()
}

// HasPending reports whether a save is waiting for its quiet period
func (p *Pipeline) HasPending() bool {
	return p.debouncer.Pending()
}

// LastSaved returns the time of the last successful write
func (p *Pipeline) LastSaved() (time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSaved, !p.lastSaved.IsZero()
}

func (p *Pipeline) fire() {
	doc := p.takePending()
	if doc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
	defer cancel()
	_ = p.write(ctx, doc)
}

func (p *Pipeline) takePending() *aggregates.Document {
	p.mu.Lock()
	defer p.mu.Unlock()
	doc := p.pending
	p.pending = nil
	return doc
}

func (p *Pipeline) write(ctx context.Context, doc *aggregates.Document) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	fields := []zap.Field{
		zap.String("graphID", doc.ID().String()),
		zap.Uint64("version", doc.Version()),
	}

	if p.written && doc.Version() <= p.lastWritten {
		p.metrics.SaveRecorded(observability.SaveSkipped)
		p.logger.Debug("Skipping stale save", append(fields, zap.Uint64("lastWritten", p.lastWritten))...)
		return nil
	}

	if _, err := p.backend.Replace(ctx, doc.ID(), dto.ReplaceRequestFromDocument(doc)); err != nil {
		saveErr := appErrors.NewSaveFailure(doc.ID().String(), err)
		p.metrics.SaveRecorded(observability.SaveFailed)
		p.logger.Error("Failed to save graph", append(fields, zap.Error(err))...)
		if p.onSaveError != nil {
			p.onSaveError(saveErr)
		}
		return saveErr
	}

	p.written = true
	p.lastWritten = doc.Version()
	now := p.clock.Now()

	p.mu.Lock()
	p.lastSaved = now
	p.mu.Unlock()

	p.metrics.SaveRecorded(observability.SaveSucceeded)
	p.logger.Debug("Graph saved", fields...)
	if p.onSaved != nil {
		p.onSaved(doc, now)
	}
	return nil
}
