//go:build wireinject
// +build wireinject

package di

import (
	"VolScan/pkg/config"
	"VolScan/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// The returned cleanup closes sink clients.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Adapters
		ProvideMarketData,
		ProvideUniverse,
		ProvideNotifier,
		ProvideSinks,
		ProvideBarCache,

		// Use cases
		ProvideFetcher,
		ProvideScorer,
		ProvideLedger,
		ProvideAlertEngine,
		ProvideScanBoard,
		ProvideDispatcher,
		ProvideScheduler,

		// Delivery
		ProvideHandler,
		ProvideApp,
	)
	return nil, nil, nil
}
