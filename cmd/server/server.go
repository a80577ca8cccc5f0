package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"policylens/services/chat-api/internal/config"
	"policylens/services/chat-api/internal/domain/company"
	"policylens/services/chat-api/internal/domain/conversation"
	"policylens/services/chat-api/internal/domain/metasummary"
	"policylens/services/chat-api/internal/domain/query"
	"policylens/services/chat-api/internal/infrastructure/analysisapi"
	"policylens/services/chat-api/internal/infrastructure/auth"
	"policylens/services/chat-api/internal/infrastructure/crontab"
	"policylens/services/chat-api/internal/infrastructure/database"
	"policylens/services/chat-api/internal/infrastructure/logger"
	"policylens/services/chat-api/internal/infrastructure/observability"
	"policylens/services/chat-api/internal/infrastructure/queue"
	conversationrepo "policylens/services/chat-api/internal/infrastructure/repository/conversation"
	"policylens/services/chat-api/internal/interfaces/httpserver"
	"policylens/services/chat-api/internal/webhook"
	"policylens/services/chat-api/internal/worker"
)

// @title PolicyLens Chat API
// @version 1.0
// @description Conversation gateway for the PolicyLens legal document analysis platform.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
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

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}

	analysisClient := analysisapi.NewClient(cfg.AnalysisAPIURL, cfg.AnalysisTimeout)

	summaryService, err := metasummary.NewService(analysisClient, cfg.SummaryCacheSize, cfg.SummaryTTL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize meta-summary service")
	}

	companyService, err := company.NewService(analysisClient, summaryService, cfg.LogoCacheSize, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize company service")
	}

	queryService := query.NewService(analysisClient, log)

	conversationRepository := conversationrepo.NewRepository(db)
	messageRepository := conversationrepo.NewMessageRepository(db)
	taskQueue := queue.NewPostgresQueue(db, log)
	webhookService := webhook.NewHTTPService(log)

	conversationService := conversation.NewService(
		conversationRepository,
		messageRepository,
		analysisClient,
		taskQueue,
		webhookService,
		log,
	)

	workerPool := worker.NewPool(
		taskQueue,
		conversationService,
		worker.Config{
			WorkerCount: cfg.BackgroundWorkerCount,
			TaskTimeout: cfg.BackgroundTaskTimeout,
		},
		log,
	)

	workerPool.Start(ctx)
	defer func() {
		log.Info().Msg("stopping worker pool")
		workerPool.Stop()
	}()

	scheduler := crontab.New(cfg, summaryService, log)
	go func() {
		if err := scheduler.Run(ctx); err != nil {
			log.Error().Err(err).Msg("scheduler stopped with error")
		}
	}()

	httpServer := httpserver.New(
		cfg,
		log,
		conversationService,
		companyService,
		summaryService,
		queryService,
		authValidator,
	)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
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
