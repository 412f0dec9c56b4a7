// Package httpstore talks to the graph store over its HTTP API.
package httpstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"mediagraph/application/dto"
	"mediagraph/domain/core/valueobjects"
	appErrors "mediagraph/pkg/errors"
)

// Config holds configuration for the store client
type Config struct {
	BaseURL string
	Timeout time.Duration

	// Circuit breaker
	MaxRequests      uint32
	Interval         time.Duration
	OpenTimeout      time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultConfig returns a default configuration for the given store URL
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:          baseURL,
		Timeout:          10 * time.Second,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		OpenTimeout:      60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// Client implements ports.GraphBackend over HTTP
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// New creates a store client
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "graph-store",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// Client errors mean the store answered; only transport and 5xx failures count
		IsSuccessful: func(err error) bool {
			return err == nil || appErrors.IsNotFound(err) || appErrors.IsValidation(err) || appErrors.IsConflict(err)
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		logger:  logger,
	}
}

// Fetch implements ports.GraphBackend
func (c *Client) Fetch(ctx context.Context, id valueobjects.GraphID) (*dto.GraphDocument, error) {
	var body struct {
		dto.GraphDocument
		Error json.RawMessage `json:"error"`
	}
	if err := c.do(ctx, http.MethodGet, "/graph/"+url.PathEscape(id.String()), nil, &body); err != nil {
		return nil, err
	}
	// Older stores answer a missing graph with 200 and an error field
	if len(body.Error) > 0 && string(body.Error) != "null" && string(body.Error) != "false" {
		return nil, appErrors.NewNotFoundError("graph")
	}
	if body.ID == "" {
		body.ID = dto.ID(id)
	}
	return &body.GraphDocument, nil
}

// Replace implements ports.GraphBackend
func (c *Client) Replace(ctx context.Context, id valueobjects.GraphID, req dto.ReplaceGraphRequest) (*dto.ReplaceGraphResponse, error) {
	var out dto.ReplaceGraphResponse
	if err := c.do(ctx, http.MethodPut, "/graph/"+url.PathEscape(id.String()), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create implements ports.GraphBackend
func (c *Client) Create(ctx context.Context, name string) (*dto.GraphSummary, error) {
	var out dto.GraphSummary
	if err := c.do(ctx, http.MethodPost, "/graph/create", dto.CreateGraphRequest{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List implements ports.GraphBackend
func (c *Client) List(ctx context.Context) ([]dto.GraphSummary, error) {
	var out []dto.GraphSummary
	if err := c.do(ctx, http.MethodGet, "/graphs", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []dto.GraphSummary{}
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, method, path, in, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return appErrors.NewUnavailableError("graph-store").WithCause(err)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return appErrors.NewNetworkError(fmt.Sprintf("%s %s failed", method, path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return c.statusError(resp, method, path)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return appErrors.NewExternalError("graph-store", fmt.Errorf("failed to decode %s %s: %w", method, path, err))
	}
	return nil
}

func (c *Client) statusError(resp *http.Response, method, path string) error {
	var payload appErrors.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &payload)
	message := payload.Message
	if message == "" {
		message = strings.TrimSpace(string(raw))
	}

	c.logger.Debug("Graph store returned an error",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("message", message),
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return appErrors.NewNotFoundError("graph")
	case resp.StatusCode == http.StatusConflict:
		return appErrors.NewConflictError(message)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return appErrors.NewValidationError(message)
	default:
		return appErrors.NewExternalError("graph-store", fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, message))
	}
}
