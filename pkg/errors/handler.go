package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Response codes that tell editor clients how to react to a failure
const (
	CodeGraphLoadFailed  = "GRAPH_LOAD_FAILED"
	CodeGraphSaveFailed  = "GRAPH_SAVE_FAILED"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeStoreUnreachable = "STORE_UNREACHABLE"
	CodeStoreTimeout     = "STORE_TIMEOUT"
	CodeRouteNotFound    = "ROUTE_NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// ErrorResponse is the JSON body of every failed request. The error flag
// matches what older graph stores send, so clients can treat both alike.
type ErrorResponse struct {
	Error     bool                   `json:"error"`
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	GraphID   string                 `json:"graphId,omitempty"`
	Retryable bool                   `json:"retryable,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"requestId,omitempty"`
}

// ErrorHandler writes AppErrors as JSON responses
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

// NewErrorHandler creates a new error handler. In debug mode internal error
// messages and stack traces are included in responses.
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{logger: logger, debug: debug}
}

// Handle writes err to w
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	appErr := classify(err)
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}

	response := ErrorResponse{
		Error:     true,
		Type:      string(appErr.Type),
		Message:   appErr.Message,
		Code:      appErr.Code,
		Retryable: retryable(appErr.Type),
		RequestID: middleware.GetReqID(r.Context()),
	}
	if response.Code == "" {
		response.Code = defaultCode(appErr.Type)
	}
	for k, v := range appErr.Details {
		if k == "graph_id" {
			response.GraphID, _ = v.(string)
			continue
		}
		if response.Details == nil {
			response.Details = make(map[string]interface{}, len(appErr.Details))
		}
		response.Details[k] = v
	}
	if h.debug {
		if appErr.Cause != nil && appErr.Type == ErrorTypeInternal {
			response.Message = appErr.Cause.Error()
		}
		if appErr.StackTrace != "" {
			if response.Details == nil {
				response.Details = make(map[string]interface{})
			}
			response.Details["stack_trace"] = appErr.StackTrace
		}
	}

	h.log(r, appErr, status)
	if response.Retryable && status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "30")
	}
	h.sendJSON(w, status, response)
}

// HandleStatus answers with a bare status, used for routing failures
func (h *ErrorHandler) HandleStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	errType, code := statusToErrorType(status)
	h.logger.Debug("Request not routed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
	)
	h.sendJSON(w, status, ErrorResponse{
		Error:     true,
		Type:      string(errType),
		Message:   message,
		Code:      code,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// NotFound is a chi NotFound handler
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.HandleStatus(w, r, http.StatusNotFound, fmt.Sprintf("no route for %s", r.URL.Path))
}

// MethodNotAllowed is a chi MethodNotAllowed handler
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.HandleStatus(w, r, http.StatusMethodNotAllowed, fmt.Sprintf("%s is not supported on %s", r.Method, r.URL.Path))
}

// Recover turns a panic in a handler into an INTERNAL error response
func (h *ErrorHandler) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			h.logger.Error("Handler panicked",
				zap.Any("panic", rec),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.ByteString("stack", debug.Stack()),
			)
			h.Handle(w, r, NewInternalError(fmt.Sprintf("panic: %v", rec)))
		}()
		next.ServeHTTP(w, r)
	})
}

// classify maps err onto an AppError. Context errors come from a store call
// that outlived the request.
func classify(err error) *AppError {
	if appErr := GetAppError(err); appErr != nil {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(ErrorTypeUnavailable, http.StatusGatewayTimeout, "graph store did not answer in time", err).
			WithCode(CodeStoreTimeout)
	}
	return NewInternalError("An internal error occurred").WithCause(err)
}

func defaultCode(t ErrorType) string {
	switch t {
	case ErrorTypeLoadFailure:
		return CodeGraphLoadFailed
	case ErrorTypeSaveFailure:
		return CodeGraphSaveFailed
	case ErrorTypeUnavailable:
		return CodeStoreUnavailable
	case ErrorTypeNetwork, ErrorTypeExternal:
		return CodeStoreUnreachable
	default:
		return ""
	}
}

// retryable reports whether the same request may succeed later unchanged
func retryable(t ErrorType) bool {
	switch t {
	case ErrorTypeLoadFailure, ErrorTypeSaveFailure, ErrorTypeUnavailable, ErrorTypeNetwork, ErrorTypeExternal:
		return true
	default:
		return false
	}
}

func (h *ErrorHandler) log(r *http.Request, err *AppError, status int) {
	fields := []zap.Field{
		zap.String("error_type", string(err.Type)),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	}
	if err.Code != "" {
		fields = append(fields, zap.String("error_code", err.Code))
	}
	if err.Cause != nil {
		fields = append(fields, zap.Error(err.Cause))
	}
	if id, ok := err.Details["graph_id"].(string); ok {
		fields = append(fields, zap.String("graphID", id))
	}

	if status >= 500 {
		h.logger.Error(err.Message, fields...)
		return
	}
	h.logger.Warn(err.Message, fields...)
}

func (h *ErrorHandler) sendJSON(w http.ResponseWriter, status int, data ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}

func statusToErrorType(status int) (ErrorType, string) {
	switch {
	case status == http.StatusNotFound:
		return ErrorTypeNotFound, CodeRouteNotFound
	case status == http.StatusMethodNotAllowed:
		return ErrorTypeValidation, CodeMethodNotAllowed
	case status == http.StatusConflict:
		return ErrorTypeConflict, ""
	case status == http.StatusServiceUnavailable:
		return ErrorTypeUnavailable, CodeStoreUnavailable
	case status >= 400 && status < 500:
		return ErrorTypeValidation, ""
	default:
		return ErrorTypeInternal, ""
	}
}
