package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/creditx/creditx-server/internal/config"
	"github.com/creditx/creditx-server/internal/domain/bureau"
	"github.com/creditx/creditx-server/internal/domain/conversation"
	"github.com/creditx/creditx-server/internal/domain/document"
	"github.com/creditx/creditx-server/internal/domain/expense"
	"github.com/creditx/creditx-server/internal/domain/llm"
	"github.com/creditx/creditx-server/internal/domain/loan"
	"github.com/creditx/creditx-server/internal/domain/profile"
	"github.com/creditx/creditx-server/internal/domain/welfare"
	"github.com/creditx/creditx-server/internal/infrastructure/auth"
	bureauprovider "github.com/creditx/creditx-server/internal/infrastructure/bureau"
	"github.com/creditx/creditx-server/internal/infrastructure/cache"
	"github.com/creditx/creditx-server/internal/infrastructure/database"
	"github.com/creditx/creditx-server/internal/infrastructure/extractor"
	"github.com/creditx/creditx-server/internal/infrastructure/llmprovider"
	"github.com/creditx/creditx-server/internal/infrastructure/locker"
	"github.com/creditx/creditx-server/internal/infrastructure/memorystore"
	appRepo "github.com/creditx/creditx-server/internal/infrastructure/repository/application"
	profileRepo "github.com/creditx/creditx-server/internal/infrastructure/repository/profile"
	"github.com/creditx/creditx-server/internal/infrastructure/telemetry"
	"github.com/creditx/creditx-server/internal/infrastructure/webpage"
	"github.com/creditx/creditx-server/internal/interfaces/httpserver"
	"github.com/creditx/creditx-server/internal/interfaces/httpserver/handlers"
)

// provideDatabase connects and migrates postgres. It returns a nil handle for STORAGE_DRIVER=memory.
func provideDatabase(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*gorm.DB, func(), error) {
	if cfg.StorageDriver != "postgres" {
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		return nil, func() {}, nil
	}
	db, err := database.Connect(ctx, database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		_ = database.Close(db)
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}, nil
}

// provideRedis connects to redis only when a component needs it.
func provideRedis(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*cache.RedisClient, func(), error) {
	if !cfg.UsesRedis() {
		return nil, func() {}, nil
	}
	client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	log.Info().Msg("redis connected")
	return client, func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("close redis")
		}
	}, nil
}

func provideApplicationRepository(db *gorm.DB) loan.Repository {
	if db == nil {
		return appRepo.NewInMemoryRepository()
	}
	return appRepo.NewPostgresRepository(db)
}

func provideProfileRepository(db *gorm.DB) profile.Repository {
	if db == nil {
		return profileRepo.NewInMemoryRepository()
	}
	return profileRepo.NewPostgresRepository(db)
}

// provideConversationStore selects the memory backend named by MEMORY_BACKEND.
func provideConversationStore(cfg *config.Config, db *gorm.DB, redisClient *cache.RedisClient, log zerolog.Logger) (conversation.Store, func(), error) {
	var (
		store   conversation.Store
		cleanup = func() {}
	)
	switch cfg.MemoryBackend {
	case "postgres":
		if db == nil {
			return nil, nil, fmt.Errorf("postgres memory backend needs a database")
		}
		store = memorystore.NewPostgresStore(db)
	case "redis":
		store = memorystore.NewRedisStore(redisClient.Universal(), cfg.RedisPrefix)
	case "bolt":
		bolt, err := memorystore.OpenBoltStore(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		store = bolt
		cleanup = func() {
			if err := bolt.Close(); err != nil {
				log.Error().Err(err).Msg("close bolt store")
			}
		}
	case "memory":
		store = memorystore.NewInMemoryStore()
	default:
		return nil, nil, fmt.Errorf("unsupported MEMORY_BACKEND %q", cfg.MemoryBackend)
	}
	log.Info().Str("backend", cfg.MemoryBackend).Msg("conversation memory configured")
	return memorystore.Instrument(store, cfg.MemoryBackend), cleanup, nil
}

func provideLocker(cfg *config.Config, redisClient *cache.RedisClient, log zerolog.Logger) conversation.Locker {
	switch cfg.ChatLock {
	case "redis":
		return locker.NewRedis(redisClient, cfg.RedisPrefix+"lock:", cfg.ChatLockTTL, log)
	case "none":
		return conversation.NoopLocker{}
	default:
		return locker.NewLocal()
	}
}

func provideSanitizer(cfg *config.Config) *telemetry.Sanitizer {
	return telemetry.NewSanitizer(telemetry.PIILevel(cfg.PIILevel), cfg.PIISalt)
}

func provideGateway(cfg *config.Config, sanitizer *telemetry.Sanitizer, log zerolog.Logger) (llm.Gateway, error) {
	return llmprovider.NewGateway(cfg, sanitizer, log)
}

func provideBureau(cfg *config.Config, log zerolog.Logger) (bureau.Provider, error) {
	return bureauprovider.NewProvider(cfg, log)
}

func provideExtractor(log zerolog.Logger) document.Extractor {
	return extractor.New(log)
}

func provideLoanService(
	cfg *config.Config,
	repo loan.Repository,
	gateway llm.Gateway,
	ext document.Extractor,
	bureauProvider bureau.Provider,
	log zerolog.Logger,
) *loan.Service {
	pipeline := loan.NewPipeline(gateway, llm.Options{
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
	})
	return loan.NewService(repo, pipeline, ext, bureauProvider, loan.ServiceConfig{
		ExtractionTimeout: cfg.ExtractionTimeout,
		BureauTimeout:     cfg.BureauTimeout,
		StoreTimeout:      cfg.StoreTimeout,
		MinExtractedChars: cfg.MinExtractedChars,
		StrictVerdict:     cfg.VerdictStrict,
	}, log)
}

func provideConversationService(
	cfg *config.Config,
	repo loan.Repository,
	store conversation.Store,
	lock conversation.Locker,
	gateway llm.Gateway,
	log zerolog.Logger,
) *conversation.Service {
	return conversation.NewService(repo, store, lock, gateway, llm.Options{
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMChatMaxTokens,
	}, cfg.ChatHistoryWindow, cfg.StoreTimeout, log)
}

func provideProfileService(cfg *config.Config, repo profile.Repository, gateway llm.Gateway, log zerolog.Logger) *profile.Service {
	return profile.NewService(repo, gateway, llm.Options{
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMChatMaxTokens,
	}, log)
}

func provideExpenseService(cfg *config.Config, gateway llm.Gateway, ext document.Extractor, log zerolog.Logger) *expense.Service {
	return expense.NewService(ext, gateway, llm.Options{
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
	}, expense.ServiceConfig{
		ExtractionTimeout:  cfg.ExtractionTimeout,
		MinStatementChars:  cfg.ExpenseMinStatementChars,
		MaxStatementChars:  cfg.ExpenseMaxStatementChars,
		MaxAdditionalChars: cfg.ExpenseMaxAdditionalChars,
	}, log)
}

func provideWelfareFetcher(cfg *config.Config) welfare.Fetcher {
	return webpage.NewFetcher(cfg.WelfareFetchTimeout, cfg.WelfareMaxPageBytes, cfg.WelfareAllowedHosts)
}

func provideWelfareService(cfg *config.Config, fetcher welfare.Fetcher, gateway llm.Gateway, log zerolog.Logger) *welfare.Service {
	return welfare.NewService(fetcher, gateway, llm.Options{
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMChatMaxTokens,
	}, welfare.ServiceConfig{
		FetchTimeout: cfg.WelfareFetchTimeout,
		MaxPageChars: cfg.WelfareMaxPageChars,
		MinPageChars: cfg.MinExtractedChars,
	}, log)
}

func provideHandlers(
	cfg *config.Config,
	loanService *loan.Service,
	chatService *conversation.Service,
	profileService *profile.Service,
	expenseService *expense.Service,
	welfareService *welfare.Service,
	sanitizer *telemetry.Sanitizer,
	log zerolog.Logger,
) *handlers.Provider {
	return handlers.NewProvider(loanService, chatService, profileService, expenseService, welfareService, cfg.MaxUploadBytes, sanitizer, log)
}

func provideAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}

func provideReadinessChecks(db *gorm.DB, redisClient *cache.RedisClient) map[string]httpserver.ReadinessCheck {
	checks := map[string]httpserver.ReadinessCheck{}
	if db != nil {
		checks["database"] = func(ctx context.Context) error { return database.Ping(ctx, db) }
	}
	if redisClient != nil {
		checks["redis"] = redisClient.HealthCheck
	}
	return checks
}
