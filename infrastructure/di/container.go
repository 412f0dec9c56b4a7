package di

import (
	"go.uber.org/zap"

	"mediagraph/application/ports"
	querybus "mediagraph/application/queries/bus"
	"mediagraph/application/services"
	"mediagraph/infrastructure/config"
	"mediagraph/infrastructure/persistence/httpstore"
	"mediagraph/interfaces/http/editor"
	"mediagraph/interfaces/http/rest"
	"mediagraph/pkg/observability"
)

// Container holds the dependencies of the graph store service
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Metrics      *observability.Collector
	GraphRepo    ports.GraphRepository
	Publisher    ports.EventPublisher
	GraphService *services.GraphService
	QueryBus     *querybus.QueryBus
	Router       *rest.Router
}

// EditorContainer holds the dependencies of the editing session host
type EditorContainer struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *observability.Collector
	Backend  *httpstore.Client
	Sessions *editor.Manager
}
