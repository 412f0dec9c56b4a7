//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"mediagraph/application/ports"
	"mediagraph/application/services"
	"mediagraph/infrastructure/config"
	"mediagraph/infrastructure/persistence"
	"mediagraph/infrastructure/persistence/httpstore"
)

// StoreSet wires the graph store service
var StoreSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideDomainConfig,
	ProvideIdentifierGenerator,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideGraphRepository,
	wire.Bind(new(ports.GraphRepository), new(*persistence.InstrumentedGraphRepository)),
	ProvideEventPublisher,
	services.NewGraphService,
	ProvideQueryBus,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// EditorSet wires the editing session host
var EditorSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideDomainConfig,
	ProvideGraphBackend,
	wire.Bind(new(ports.GraphBackend), new(*httpstore.Client)),
	ProvideSessionManager,
	wire.Struct(new(EditorContainer), "*"),
)

// InitializeContainer creates a fully wired graph store container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(StoreSet)
	return nil, nil, nil
}

// InitializeEditor creates a fully wired editor container
func InitializeEditor(cfg *config.Config) (*EditorContainer, error) {
	wire.Build(EditorSet)
	return nil, nil
}
