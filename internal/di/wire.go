//go:build wireinject
// +build wireinject

package di

import (
	"RentPredict/pkg/config"
	"RentPredict/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideClickHouseClient,
		ProvideRedisStore,

		// Repositories
		ProvideAuditSink,
		ProvideMetrics,

		// Services
		ProvideInferenceModel,
		ProvideTokenSource,

		// Use cases
		ProvideRentPredictor,

		// HTTP
		ProvideRateLimit,
		ProvidePredictHandler,
		ProvideFormHandler,
		ProvideAPIDoc,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
