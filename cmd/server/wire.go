//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/creditx/creditx-server/internal/config"
	"github.com/creditx/creditx-server/internal/interfaces/httpserver"
)

var storageSet = wire.NewSet(
	provideDatabase,
	provideRedis,
	provideApplicationRepository,
	provideProfileRepository,
	provideConversationStore,
	provideLocker,
	provideReadinessChecks,
)

var serviceSet = wire.NewSet(
	provideSanitizer,
	provideGateway,
	provideBureau,
	provideExtractor,
	provideLoanService,
	provideConversationService,
	provideProfileService,
	provideExpenseService,
	provideWelfareFetcher,
	provideWelfareService,
)

// BuildApplication assembles the credit service with Wire.
func BuildApplication(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Application, func(), error) {
	wire.Build(
		storageSet,
		serviceSet,
		provideAuthValidator,
		provideHandlers,
		httpserver.New,
		NewApplication,
	)
	return nil, nil, nil
}
