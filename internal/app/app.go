package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovran/internal/common"
	"github.com/ternarybob/sovran/internal/handlers"
	"github.com/ternarybob/sovran/internal/interfaces"
	"github.com/ternarybob/sovran/internal/services/engine"
	"github.com/ternarybob/sovran/internal/services/judgment"
	"github.com/ternarybob/sovran/internal/services/memory"
	"github.com/ternarybob/sovran/internal/services/news"
	"github.com/ternarybob/sovran/internal/services/research"
	"github.com/ternarybob/sovran/internal/services/scheduler"
	"github.com/ternarybob/sovran/internal/services/worldbank"
	"github.com/ternarybob/sovran/internal/storage/sqlite"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Domain services
	FundamentalsService interfaces.FundamentalsService
	NewsService         interfaces.NewsService
	MemoryService       interfaces.MemoryService
	JudgmentService     interfaces.JudgmentService
	ResearchService     interfaces.ResearchService
	RatingEngine        interfaces.RatingEngine
	SchedulerService    interfaces.SchedulerService

	// HTTP handlers
	APIHandler          *handlers.APIHandler
	CountryHandler      *handlers.CountryHandler
	RatingHandler       *handlers.RatingHandler
	FundamentalsHandler *handlers.FundamentalsHandler
	NewsHandler         *handlers.NewsHandler
	MemoryHandler       *handlers.MemoryHandler
	JobHandler          *handlers.JobHandler
}

// New wires the application together: storage, provider clients, domain
// services and HTTP handlers.
func New(ctx context.Context, config *common.Config, logger arbor.ILogger) (*App, error) {
	storageManager, err := sqlite.NewManager(logger, &config.Storage.SQLite)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	wbClient := worldbank.NewClient(
		worldbank.WithBaseURL(config.WorldBank.BaseURL),
		worldbank.WithLogger(logger),
		worldbank.WithRateLimit(config.WorldBank.RateLimit),
		worldbank.WithTimeout(config.WorldBank.RequestTimeout),
	)
	fundamentalsService := worldbank.NewService(wbClient, storageManager, logger)

	newsClient := news.NewClient(config.News.APIKey,
		news.WithBaseURL(config.News.BaseURL),
		news.WithLogger(logger),
		news.WithPageSize(config.News.PageSize),
		news.WithTimeout(config.News.RequestTimeout),
	)
	newsService := news.NewService(newsClient, storageManager, logger, config.News.StalenessDays)

	memoryService := memory.NewService(storageManager, logger)

	judgmentService, err := judgment.NewService(&config.Claude, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize judgment service: %w", err)
	}

	researchService, err := research.NewService(ctx, &config.Gemini, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize research service: %w", err)
	}

	ratingEngine := engine.NewEngine(storageManager, fundamentalsService, memoryService,
		judgmentService, researchService, logger)

	schedulerService := scheduler.NewService(&config.Scheduler, storageManager,
		fundamentalsService, newsService, ratingEngine, logger)

	app := &App{
		Config:         config,
		Logger:         logger,
		StorageManager: storageManager,

		FundamentalsService: fundamentalsService,
		NewsService:         newsService,
		MemoryService:       memoryService,
		JudgmentService:     judgmentService,
		ResearchService:     researchService,
		RatingEngine:        ratingEngine,
		SchedulerService:    schedulerService,

		APIHandler:          handlers.NewAPIHandler(),
		CountryHandler:      handlers.NewCountryHandler(storageManager, logger),
		RatingHandler:       handlers.NewRatingHandler(ratingEngine, storageManager, logger),
		FundamentalsHandler: handlers.NewFundamentalsHandler(fundamentalsService, storageManager, logger),
		NewsHandler:         handlers.NewNewsHandler(newsService, storageManager, logger),
		MemoryHandler:       handlers.NewMemoryHandler(memoryService, logger),
		JobHandler:          handlers.NewJobHandler(schedulerService, logger),
	}

	if err := app.seedCountriesIfEmpty(ctx); err != nil {
		// Seeding needs the World Bank API; start anyway and let the weekly
		// sync or a manual trigger retry it.
		logger.Warn().Err(err).Msg("Country seeding failed, continuing with empty country set")
	}

	if err := schedulerService.Start(); err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	logger.Info().Msg("Application initialized")
	return app, nil
}

// seedCountriesIfEmpty populates the country reference set on first boot.
func (a *App) seedCountriesIfEmpty(ctx context.Context) error {
	count, err := a.StorageManager.Countries().Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		a.Logger.Debug().Int("countries", count).Msg("Country set already seeded")
		return nil
	}

	a.Logger.Info().Msg("Empty country set, seeding from World Bank")
	seeded, err := a.FundamentalsService.SeedCountries(ctx)
	if err != nil {
		return err
	}
	a.Logger.Info().Int("countries", seeded).Msg("Initial country seeding complete")
	return nil
}

// Close releases application resources in reverse dependency order.
func (a *App) Close() error {
	a.Logger.Info().Msg("Shutting down application")

	a.SchedulerService.Stop()

	if err := a.StorageManager.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	return nil
}
