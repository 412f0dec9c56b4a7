package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mediagraph/application/ports"
	querybus "mediagraph/application/queries/bus"
	queryhandlers "mediagraph/application/queries/handlers"
	"mediagraph/application/services"
	domainconfig "mediagraph/domain/config"
	"mediagraph/domain/core/valueobjects"
	"mediagraph/infrastructure/config"
	"mediagraph/infrastructure/messaging/eventbridge"
	"mediagraph/infrastructure/messaging/logging"
	"mediagraph/infrastructure/persistence"
	"mediagraph/infrastructure/persistence/dynamodb"
	"mediagraph/infrastructure/persistence/httpstore"
	"mediagraph/infrastructure/persistence/memory"
	"mediagraph/infrastructure/persistence/sqlite"
	"mediagraph/interfaces/http/editor"
	"mediagraph/interfaces/http/rest"
	"mediagraph/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zcfg.Build()
}

// ProvideMetrics creates the prometheus collector. Nil when metrics are disabled.
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector("mediagraph")
}

// ProvideDomainConfig returns the domain rules for the environment
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return cfg.Domain()
}

// ProvideIdentifierGenerator returns the graph id source
func ProvideIdentifierGenerator() valueobjects.IdentifierGenerator {
	return valueobjects.UUIDGenerator{}
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideGraphRepository selects the store named by STORE and wraps it with
// metrics. The cleanup closes the sqlite database.
func ProvideGraphRepository(
	cfg *config.Config,
	client *awsdynamodb.Client,
	metrics *observability.Collector,
	logger *zap.Logger,
) (*persistence.InstrumentedGraphRepository, func(), error) {
	var inner ports.GraphRepository
	cleanup := func() {}

	switch cfg.Store {
	case config.StoreMemory:
		inner = memory.NewGraphRepository()
	case config.StoreSQLite:
		repo, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		inner = repo
		cleanup = func() {
			if err := repo.Close(); err != nil {
				logger.Error("Failed to close sqlite store", zap.Error(err))
			}
		}
	case config.StoreDynamoDB:
		inner = dynamodb.NewGraphRepository(client, cfg.DynamoDBTable, logger)
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	logger.Info("Graph store selected", zap.String("store", cfg.Store))
	return persistence.NewInstrumentedGraphRepository(inner, cfg.Store, metrics, logger), cleanup, nil
}

// ProvideEventPublisher publishes to EventBridge when EVENT_BUS_NAME is set,
// otherwise events are only logged
func ProvideEventPublisher(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return logging.NewPublisher(logger)
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideQueryBus creates the query bus with the graph read handlers
func ProvideQueryBus(repo ports.GraphRepository, logger *zap.Logger) (*querybus.QueryBus, error) {
	qb := querybus.NewQueryBus(querybus.LoggingMiddleware(logger))
	if err := queryhandlers.Register(qb, repo); err != nil {
		return nil, err
	}
	return qb, nil
}

// ProvideRouter creates the graph store router
func ProvideRouter(
	cfg *config.Config,
	service *services.GraphService,
	queryBus *querybus.QueryBus,
	metrics *observability.Collector,
	repo *persistence.InstrumentedGraphRepository,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(service, queryBus, metrics, rest.Options{
		CORSOrigins: cfg.CORSOrigins,
		EnableCORS:  cfg.EnableCORS,
		Debug:       cfg.IsDevelopment(),
		Ready:       repo.Ping,
	}, logger)
}

// ProvideGraphBackend creates the HTTP client of the graph store
func ProvideGraphBackend(cfg *config.Config, logger *zap.Logger) *httpstore.Client {
	storeCfg := httpstore.DefaultConfig(cfg.BackendURL)
	storeCfg.Timeout = cfg.BackendTimeout
	return httpstore.New(storeCfg, logger)
}

// ProvideSessionManager creates the editing session host
func ProvideSessionManager(
	cfg *config.Config,
	domain *domainconfig.DomainConfig,
	backend ports.GraphBackend,
	metrics *observability.Collector,
	logger *zap.Logger,
) *editor.Manager {
	return editor.NewManager(backend, editor.ManagerOptions{
		Domain:       domain,
		WriteTimeout: cfg.BackendTimeout,
		FlushOnClose: cfg.FlushOnClose,
	}, metrics, logger)
}
