package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/baselinehq/tennis-league/internal/config"
	"github.com/baselinehq/tennis-league/internal/infrastructure/account/clubauth"
	"github.com/baselinehq/tennis-league/internal/infrastructure/notify/email"
	repo "github.com/baselinehq/tennis-league/internal/infrastructure/repository/docstore"
	"github.com/baselinehq/tennis-league/internal/interfaces/httpapi"
	"github.com/baselinehq/tennis-league/internal/platform/cache"
	"github.com/baselinehq/tennis-league/internal/platform/docstore"
	"github.com/baselinehq/tennis-league/internal/platform/id"
	"github.com/baselinehq/tennis-league/internal/platform/logging"
	"github.com/baselinehq/tennis-league/internal/platform/resilience"
	"github.com/baselinehq/tennis-league/internal/usecase"
)

// App holds the wired service graph. The HTTP entrypoint uses Router; the
// migration CLI reaches straight for the services.
type App struct {
	Config    config.Config
	Logger    *logging.Logger
	Router    http.Handler
	Challenge *usecase.ChallengeService
	Match     *usecase.MatchService
	Migration *usecase.MigrationService
	Points    *usecase.PointsService

	store docstore.Store
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	challengeRepo := repo.NewChallengeRepository(store)
	matchRepo := repo.NewMatchRepository(store)
	teamRepo := repo.NewTeamRepository(store)
	playerRepo := repo.NewPlayerRepository(store)
	standingsRepo := repo.NewStandingsRepository(store)
	blobRepo := repo.NewBlobRepository(store)
	idGen := id.NewEntityGenerator()

	var notifier usecase.ResultNotifier
	if cfg.EmailEnabled {
		notifier = email.NewClient(email.Config{
			Endpoint:      cfg.EmailEndpoint,
			APIKey:        cfg.EmailAPIKey,
			Timeout:       cfg.EmailTimeout,
			RatePerSecond: cfg.EmailRatePerSecond,
			Burst:         cfg.EmailBurst,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.EmailCircuitEnabled,
				FailureThreshold: cfg.EmailCircuitFailureCount,
				OpenTimeout:      cfg.EmailCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.EmailCircuitHalfOpenMaxRq,
			},
		}, logger)
	} else {
		logger.Info("result notifications disabled", "reason", "EMAIL_ENABLED=false")
	}

	challengeSvc := usecase.NewChallengeService(challengeRepo, matchRepo, teamRepo, playerRepo, idGen, logger)
	matchSvc := usecase.NewMatchService(matchRepo, challengeRepo, teamRepo, playerRepo, idGen, notifier, logger)
	migrationSvc := usecase.NewMigrationService(blobRepo, matchRepo, challengeRepo, idGen, usecase.MigrationConfig{
		BlobName:   cfg.MigrationBlobName,
		BackupName: cfg.MigrationBackupName,
		BatchSize:  cfg.MigrationBatchSize,
		MaxWorkers: cfg.MigrationWorkers,
	}, logger)
	pointsSvc := usecase.NewPointsService(matchRepo, teamRepo, standingsRepo, usecase.PointsPolicy{
		WinPointsByMonth:  cfg.PointsWinByMonth,
		DefaultWinPoints:  cfg.PointsDefaultWin,
		BonusPerSetInLoss: cfg.PointsBonusPerSet,
		BonusCapRatio:     cfg.PointsBonusCapPct,
		Epsilon:           cfg.StandingsEpsilon,
	}, cache.NewStore(cfg.CacheTTL), logger)

	verifier := clubauth.NewClient(
		&http.Client{Timeout: cfg.AuthTimeout},
		cfg.AuthBaseURL,
		cfg.AuthIntrospectPath,
		logger,
	)

	handler := httpapi.NewHandler(challengeSvc, matchSvc, migrationSvc, pointsSvc, teamRepo, playerRepo, logger)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Router:    router,
		Challenge: challengeSvc,
		Match:     matchSvc,
		Migration: migrationSvc,
		Points:    pointsSvc,
		store:     store,
	}, nil
}

// Close releases the backing store connection.
func (a *App) Close(ctx context.Context) error {
	if closer, ok := a.store.(interface{ Close(context.Context) error }); ok {
		return closer.Close(ctx)
	}
	return nil
}

func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, *App, error) {
	application, err := New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      application.Router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, application, nil
}

func openStore(ctx context.Context, cfg config.Config, logger *logging.Logger) (docstore.Store, error) {
	switch cfg.DocstoreBackend {
	case config.BackendMongo:
		openCtx, cancel := context.WithTimeout(ctx, cfg.MongoTimeout)
		defer cancel()

		store, err := docstore.NewMongoStore(openCtx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("open mongo store: %w", err)
		}
		logger.Info("docstore ready", "backend", config.BackendMongo, "database", cfg.MongoDatabase)
		return store, nil
	default:
		logger.Info("docstore ready", "backend", config.BackendMemory)
		return docstore.NewMemoryStore(), nil
	}
}
