//go:build wireinject
// +build wireinject

package di

import (
	"NavPulse/pkg/config"
	"NavPulse/pkg/server"

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
		ProvideReportCache,

		// Ports
		ProvideSeriesStore,
		ProvideNavSource,
		ProvideResultPublisher,
		ProvideHistoryStore,

		// Use cases
		ProvideProgressHub,
		ProvideScheduler,
		ProvideAllocator,
		ProvideMonitor,

		// HTTP and application server
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
