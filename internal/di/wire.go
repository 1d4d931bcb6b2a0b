//go:build wireinject
// +build wireinject

package di

import (
	"PairWatch/pkg/config"
	"PairWatch/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideCache,

		// Repositories
		ProvideAlertPublisher,
		ProvideAlertStorage,
		ProvideHistorySource,

		// Monitor pipeline and stream collectors
		ProvideAlertDispatcher,
		ProvidePipeline,
		ProvideRouter,
		ProvideCollectors,

		// HTTP and application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
