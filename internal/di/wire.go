//go:build wireinject
// +build wireinject

package di

import (
	"PUM/pkg/config"
	"PUM/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisClient,

		// Ingestion repositories
		ProvidePointStorage,
		ProvidePointPublisher,
		ProvideFeedStream,

		// Read-side repositories
		ProvideMarketReader,
		ProvideEventReader,
		ProvideUpgradeStore,
		ProvideAssessmentStore,
		ProvidePredictionStore,

		// Engines
		ProvideRiskEngine,
		ProvideVolatilityEngine,
		ProvideLiquidityEngine,
		ProvideEvaluator,

		// Use cases
		ProvidePointProcessor,
		ProvidePointCollector,
		ProvideKafkaMarketHandler,
		ProvideRiskUsecase,
		ProvideVolatilityUsecase,
		ProvideLiquidityUsecase,
		ProvideAssessmentQueue,

		// HTTP
		ProvideAnalyticsHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
