package editor

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mediagraph/application/commands"
	"mediagraph/application/commands/bus"
	"mediagraph/domain/core/validators"
	"mediagraph/domain/core/valueobjects"
	"mediagraph/pkg/common"
	appErrors "mediagraph/pkg/errors"
)

// CommandResponse reports the outcome of one editing command
type CommandResponse struct {
	Changed   bool                `json:"changed"`
	Version   uint64              `json:"version"`
	Selection valueobjects.NodeID `json:"selection,omitempty"`
	EdgeID    valueobjects.EdgeID `json:"edgeId,omitempty"`
	Outcome   validators.Outcome  `json:"outcome,omitempty"`
	Reason    string              `json:"reason,omitempty"`
}

type connectRequest struct {
	Source       valueobjects.NodeID     `json:"source"`
	SourceHandle valueobjects.HandleSide `json:"sourceHandle"`
	Target       valueobjects.NodeID     `json:"target"`
	TargetHandle valueobjects.HandleSide `json:"targetHandle"`
}

type moveRequest struct {
	ID       valueobjects.NodeID   `json:"id"`
	Position valueobjects.Position `json:"position"`
}

type selectRequest struct {
	ID valueobjects.NodeID `json:"id"`
}

// SessionHandler turns HTTP requests into session commands
type SessionHandler struct {
	manager *Manager
	errors  *appErrors.ErrorHandler
	logger  *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(manager *Manager, errorHandler *appErrors.ErrorHandler, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{manager: manager, errors: errorHandler, logger: logger}
}

func graphID(r *http.Request) valueobjects.GraphID {
	return valueobjects.GraphID(chi.URLParam(r, "graphID"))
}

// Scene handles GET /sessions/{graphID}/scene
func (h *SessionHandler) Scene(w http.ResponseWriter, r *http.Request) {
	s, _ := h.manager.Get(r.Context(), graphID(r))
	common.RespondJSON(w, http.StatusOK, s.Scene())
}

// Events handles GET /sessions/{graphID}/events
func (h *SessionHandler) Events(w http.ResponseWriter, r *http.Request) {
	_, hub := h.manager.Get(r.Context(), graphID(r))
	hub.ServeHTTP(w, r)
}

// Status handles GET /sessions/{graphID}/status
func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	s, _ := h.manager.Get(r.Context(), graphID(r))
	common.RespondJSON(w, http.StatusOK, s.Status())
}

// AddMedia handles POST /sessions/{graphID}/nodes/media
func (h *SessionHandler) AddMedia(w http.ResponseWriter, r *http.Request) {
	var cmd commands.AddMediaNodeCommand
	if err := common.ParseJSONBody(w, r, &cmd, 0); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, cmd)
}

// AddZone handles POST /sessions/{graphID}/nodes/zone
func (h *SessionHandler) AddZone(w http.ResponseWriter, r *http.Request) {
	var cmd commands.AddZoneNodeCommand
	if err := common.ParseJSONBody(w, r, &cmd, 0); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, cmd)
}

// Move handles POST /sessions/{graphID}/move
func (h *SessionHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := common.ParseJSONBody(w, r, &req, 0); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, commands.MoveNodeCommand{ID: req.ID, Position: req.Position})
}

// Connect handles POST /sessions/{graphID}/connect
func (h *SessionHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := common.ParseJSONBody(w, r, &req, 0); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	conn := validators.Connection{Source: req.Source, Target: req.Target}
	if req.SourceHandle != "" {
		ref, ok := valueobjects.NewHandleRef(req.SourceHandle)
		if !ok {
			h.errors.Handle(w, r, appErrors.NewValidationError("unknown source handle"))
			return
		}
		conn.SourceHandle = &ref
	}
	if req.TargetHandle != "" {
		ref, ok := valueobjects.NewHandleRef(req.TargetHandle)
		if !ok {
			h.errors.Handle(w, r, appErrors.NewValidationError("unknown target handle"))
			return
		}
		conn.TargetHandle = &ref
	}
	h.dispatch(w, r, commands.ConnectCommand{Connection: conn})
}

// Select handles POST /sessions/{graphID}/select
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := common.ParseJSONBody(w, r, &req, 0); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.dispatch(w, r, commands.SelectNodeCommand{ID: req.ID})
}

// Deselect handles POST /sessions/{graphID}/deselect
func (h *SessionHandler) Deselect(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, commands.ClearSelectionCommand{})
}

// RemoveNode handles DELETE /sessions/{graphID}/nodes/{nodeID}
func (h *SessionHandler) RemoveNode(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, commands.RemoveNodeCommand{ID: valueobjects.NodeID(chi.URLParam(r, "nodeID"))})
}

// RemoveEdge handles DELETE /sessions/{graphID}/edges/{edgeID}
func (h *SessionHandler) RemoveEdge(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, commands.RemoveEdgeCommand{ID: valueobjects.EdgeID(chi.URLParam(r, "edgeID"))})
}

// CloseSession handles DELETE /sessions/{graphID}
func (h *SessionHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	found, err := h.manager.Close(r.Context(), graphID(r))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if !found {
		h.errors.Handle(w, r, appErrors.NewNotFoundError("session"))
		return
	}
	common.RespondNoContent(w)
}

func (h *SessionHandler) dispatch(w http.ResponseWriter, r *http.Request, cmd bus.Command) {
	s, _ := h.manager.Get(r.Context(), graphID(r))

	res, err := s.Dispatch(r.Context(), cmd)
	if err != nil {
		if errors.Is(err, bus.ErrValidationFailed) {
			h.errors.Handle(w, r, appErrors.NewValidationError(err.Error()))
			return
		}
		h.errors.Handle(w, r, err)
		return
	}

	resp := CommandResponse{Changed: res.Changed, Selection: res.Selection}
	if res.Doc != nil {
		resp.Version = res.Doc.Version()
	}
	if res.Connection != nil {
		resp.EdgeID = res.Connection.EdgeID
		resp.Outcome = res.Connection.Outcome
		resp.Reason = res.Connection.Reason
	}
	common.RespondJSON(w, http.StatusOK, resp)
}
