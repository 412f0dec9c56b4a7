package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mediagraph/application/dto"
	"mediagraph/application/queries"
	querybus "mediagraph/application/queries/bus"
	"mediagraph/application/services"
	"mediagraph/domain/core/valueobjects"
	"mediagraph/pkg/common"
	appErrors "mediagraph/pkg/errors"
)

// GraphHandler serves the graph store API
type GraphHandler struct {
	service  *services.GraphService
	queryBus *querybus.QueryBus
	errors   *appErrors.ErrorHandler
	logger   *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(
	service *services.GraphService,
	queryBus *querybus.QueryBus,
	errorHandler *appErrors.ErrorHandler,
	logger *zap.Logger,
) *GraphHandler {
	return &GraphHandler{
		service:  service,
		queryBus: queryBus,
		errors:   errorHandler,
		logger:   logger,
	}
}

// CreateGraph handles POST /graph/create
func (h *GraphHandler) CreateGraph(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateGraphRequest
	if err := common.ParseJSONBody(w, r, &req, 0); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	resp, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, resp)
}

// ListGraphs handles GET /graphs
func (h *GraphHandler) ListGraphs(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListGraphsQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// GetGraph handles GET /graph/{graphID}
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	graphID := valueobjects.GraphID(chi.URLParam(r, "graphID"))

	result, err := h.queryBus.Ask(r.Context(), queries.GetGraphQuery{GraphID: graphID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// ReplaceGraph handles PUT /graph/{graphID}
func (h *GraphHandler) ReplaceGraph(w http.ResponseWriter, r *http.Request) {
	graphID := valueobjects.GraphID(chi.URLParam(r, "graphID"))

	var req dto.ReplaceGraphRequest
	if err := common.ParseJSONBody(w, r, &req, 0); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	resp, err := h.service.Replace(r.Context(), graphID, req)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, resp)
}
