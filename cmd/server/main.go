package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/creditx/creditx-server/internal/config"
	"github.com/creditx/creditx-server/internal/infrastructure/logger"
	"github.com/creditx/creditx-server/internal/infrastructure/observability"
	"github.com/creditx/creditx-server/internal/interfaces/httpserver"
)

// @title CreditX API
// @version 1.0
// @description Scores credit applications from uploaded documents and answers follow-up questions per application.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
type Application struct {
	httpServer *httpserver.HTTPServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HTTPServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	app, cleanup, err := buildApplication(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build application")
	}
	defer cleanup()

	if err := app.Start(ctx); err != nil {
		log.Error().Err(err).Msg("application stopped with error")
		return
	}

	log.Info().Msg("application exited cleanly")
}

// buildApplication assembles the service by hand, in the order wire.go declares.
func buildApplication(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Application, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	fail := func(err error) (*Application, func(), error) {
		cleanup()
		return nil, nil, err
	}

	db, closeDB, err := provideDatabase(ctx, cfg, log)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeDB)

	redisClient, closeRedis, err := provideRedis(ctx, cfg, log)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeRedis)

	store, closeStore, err := provideConversationStore(cfg, db, redisClient, log)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeStore)

	sanitizer := provideSanitizer(cfg)
	gateway, err := provideGateway(cfg, sanitizer, log)
	if err != nil {
		return fail(err)
	}
	bureauProvider, err := provideBureau(cfg, log)
	if err != nil {
		return fail(err)
	}
	validator, err := provideAuthValidator(ctx, cfg, log)
	if err != nil {
		return fail(err)
	}

	applications := provideApplicationRepository(db)
	ext := provideExtractor(log)
	loanService := provideLoanService(cfg, applications, gateway, ext, bureauProvider, log)
	chatService := provideConversationService(cfg, applications, store, provideLocker(cfg, redisClient, log), gateway, log)
	profileService := provideProfileService(cfg, provideProfileRepository(db), gateway, log)
	expenseService := provideExpenseService(cfg, gateway, ext, log)
	welfareService := provideWelfareService(cfg, provideWelfareFetcher(cfg), gateway, log)

	handlerProvider := provideHandlers(cfg, loanService, chatService, profileService, expenseService, welfareService, sanitizer, log)
	server := httpserver.New(cfg, log, handlerProvider, validator, provideReadinessChecks(db, redisClient))
	return NewApplication(server, log), cleanup, nil
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
