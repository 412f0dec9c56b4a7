package bus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"

	"mediagraph/pkg/observability"
)

// Command represents a command that changes state
type Command interface {
	Validate() error
}

// CommandResult represents the result of a command execution
type CommandResult struct {
	Changed bool
	Data    interface{}
}

// CommandHandler handles a specific command type
type CommandHandler interface {
	Handle(ctx context.Context, cmd Command) (CommandResult, error)
}

// CommandHandlerFunc is an adapter to allow functions to be used as handlers
type CommandHandlerFunc func(ctx context.Context, cmd Command) (CommandResult, error)

// Handle implements CommandHandler
func (f CommandHandlerFunc) Handle(ctx context.Context, cmd Command) (CommandResult, error) {
	return f(ctx, cmd)
}

// Middleware defines command middleware
type Middleware func(next CommandHandler) CommandHandler

// Errors
var (
	ErrHandlerNotFound  = errors.New("command handler not found")
	ErrValidationFailed = errors.New("command validation failed")
)

// CommandBus dispatches commands to their handlers one at a time
type CommandBus struct {
	handlers    map[reflect.Type]CommandHandler
	middlewares []Middleware
	mu          sync.RWMutex
	serial      sync.Mutex
}

// NewCommandBus creates a new command bus. Middleware runs in the given order.
func NewCommandBus(middlewares ...Middleware) *CommandBus {
	return &CommandBus{
		handlers:    make(map[reflect.Type]CommandHandler),
		middlewares: middlewares,
	}
}

// Register registers a handler for a command type
func (b *CommandBus) Register(cmdType Command, handler CommandHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(cmdType)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for command type %s", t.Name())
	}

	b.handlers[t] = b.wrap(handler)
	return nil
}

// Send validates cmd and dispatches it to its handler.
// Concurrent sends are applied serially.
func (b *CommandBus) Send(ctx context.Context, cmd Command) (CommandResult, error) {
	if cmd == nil {
		return CommandResult{}, ErrHandlerNotFound
	}
	if err := cmd.Validate(); err != nil {
		return CommandResult{}, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(cmd)]
	b.mu.RUnlock()

	if !exists {
		return CommandResult{}, fmt.Errorf("%w: %T", ErrHandlerNotFound, cmd)
	}

	b.serial.Lock()
	defer b.serial.Unlock()
	return handler.Handle(ctx, cmd)
}

func (b *CommandBus) wrap(handler CommandHandler) CommandHandler {
	for i := len(b.middlewares) - 1; i >= 0; i-- {
		handler = b.middlewares[i](handler)
	}
	return handler
}

// CommandName returns the type name used in logs and metrics
func CommandName(cmd Command) string {
	t := reflect.TypeOf(cmd)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// LoggingMiddleware logs command execution
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) (CommandResult, error) {
			start := time.Now()
			cmdType := CommandName(cmd)

			res, err := next.Handle(ctx, cmd)
			if err != nil {
				logger.Error("Command failed", zap.String("type", cmdType), zap.Error(err))
				return res, err
			}
			logger.Debug("Command applied",
				zap.String("type", cmdType),
				zap.Bool("changed", res.Changed),
				zap.Duration("duration", time.Since(start)),
			)
			return res, nil
		})
	}
}

// MetricsMiddleware counts applied commands
func MetricsMiddleware(collector *observability.Collector) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) (CommandResult, error) {
			res, err := next.Handle(ctx, cmd)
			if err == nil {
				collector.CommandApplied(CommandName(cmd), res.Changed)
			}
			return res, err
		})
	}
}
