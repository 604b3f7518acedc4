// Package app wires configuration, storage, clients, and services into one
// application core shared by the server binary and tests.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/tickerpress/internal/clients/fmp"
	"github.com/bobmcallan/tickerpress/internal/clients/gemini"
	"github.com/bobmcallan/tickerpress/internal/clients/newsapi"
	"github.com/bobmcallan/tickerpress/internal/clients/tradestie"
	"github.com/bobmcallan/tickerpress/internal/clients/yahoo"
	"github.com/bobmcallan/tickerpress/internal/common"
	"github.com/bobmcallan/tickerpress/internal/interfaces"
	"github.com/bobmcallan/tickerpress/internal/services/article"
	"github.com/bobmcallan/tickerpress/internal/services/market"
	"github.com/bobmcallan/tickerpress/internal/services/news"
	"github.com/bobmcallan/tickerpress/internal/services/pipeline"
	"github.com/bobmcallan/tickerpress/internal/services/social"
	"github.com/bobmcallan/tickerpress/internal/services/trending"
	"github.com/bobmcallan/tickerpress/internal/storage"
)

// App holds all initialized services and clients.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	Storage         interfaces.StorageManager
	MarketClient    interfaces.MarketDataClient
	TrendingService interfaces.TrendingService
	MarketService   interfaces.MarketService
	SocialService   interfaces.SocialService
	NewsService     interfaces.NewsService
	ArticleService  interfaces.ArticleService
	Pipeline        interfaces.PipelineService
	Scheduler       interfaces.Scheduler
	StartupTime     time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("TICKERPRESS_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "tickerpress.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/tickerpress.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	a := &App{
		Config:      config,
		Logger:      logger,
		Storage:     storageManager,
		StartupTime: time.Now(),
	}
	if err := a.wireServices(); err != nil {
		storageManager.Close()
		return nil, err
	}
	return a, nil
}

// wireServices builds the client and service graph from the loaded config.
func (a *App) wireServices() error {
	config, logger := a.Config, a.Logger

	if config.Clients.FMP.APIKey == "" {
		logger.Warn().Msg("FMP API key not configured - market data fetches will fail")
	}
	a.MarketClient = fmp.NewClient(config.Clients.FMP.APIKey,
		fmp.WithBaseURL(config.Clients.FMP.BaseURL),
		fmp.WithRateLimit(config.Clients.FMP.RateLimit),
		fmp.WithTimeout(config.Clients.FMP.GetTimeout()),
		fmp.WithLogger(logger),
	)

	trendingClient := tradestie.NewClient(
		tradestie.WithBaseURL(config.Clients.Tradestie.BaseURL),
		tradestie.WithTimeout(config.Clients.Tradestie.GetTimeout()),
		tradestie.WithLogger(logger),
	)
	a.TrendingService = trending.NewService(trendingClient, logger)

	a.MarketService = market.NewService(
		a.Storage.Snapshots(),
		a.MarketClient,
		a.TrendingService,
		logger,
		market.WithUniverseCap(config.Pipeline.GetUniverseCap()),
	)

	// Yahoo first: keyless, and its copy of a duplicate headline wins.
	newsClients := []interfaces.NewsClient{
		yahoo.NewClient(
			yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
			yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
			yahoo.WithLogger(logger),
		),
	}
	if config.Clients.NewsAPI.APIKey != "" {
		newsClients = append(newsClients, newsapi.NewClient(config.Clients.NewsAPI.APIKey,
			newsapi.WithBaseURL(config.Clients.NewsAPI.BaseURL),
			newsapi.WithTimeout(config.Clients.NewsAPI.GetTimeout()),
			newsapi.WithLogger(logger),
		))
	} else {
		logger.Warn().Msg("NewsAPI key not configured - using Yahoo Finance only")
	}
	a.NewsService = news.NewService(a.Storage.News(), newsClients, logger)

	a.SocialService = social.NewService(logger)

	var generator interfaces.GenerativeClient
	if config.Clients.Gemini.APIKey != "" {
		geminiOpts := []gemini.ClientOption{gemini.WithLogger(logger)}
		if config.Clients.Gemini.Model != "" {
			geminiOpts = append(geminiOpts, gemini.WithModel(config.Clients.Gemini.Model))
		}
		client, err := gemini.NewClient(context.Background(), config.Clients.Gemini.APIKey, geminiOpts...)
		if err != nil {
			return fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		generator = client
	} else {
		logger.Warn().Msg("Gemini API key not configured - articles will use fallback generation")
	}
	a.ArticleService = article.NewService(a.Storage.Articles(), a.NewsService, a.SocialService, generator, logger)

	a.Pipeline = pipeline.NewService(a.MarketService, a.ArticleService, a.Storage.Jobs(), logger,
		pipeline.WithDefaultTopN(config.Pipeline.GetTopN()),
	)

	scheduler, err := NewScheduler(config, a.Pipeline, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize scheduler: %w", err)
	}
	a.Scheduler = scheduler

	return nil
}

// Start launches the pipeline processor and, when enabled, the scheduler.
func (a *App) Start() error {
	a.Pipeline.Start()
	if a.Config.Scheduler.Enabled {
		if err := a.Scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	} else {
		a.Logger.Info().Msg("Scheduler disabled by configuration")
	}
	return nil
}

// Close stops background work and releases storage.
func (a *App) Close() error {
	a.Scheduler.Stop()
	a.Pipeline.Stop()
	return a.Storage.Close()
}
