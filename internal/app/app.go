// Package app wires storage, cache, metadata source and services together for
// the server and the CLI.
package app

import (
	"errors"
	"log/slog"

	"questlog/database"
	"questlog/internal/cache"
	"questlog/internal/config"
	"questlog/internal/ingestion/igdb"
	"questlog/internal/repository"
	"questlog/internal/service"

	"gorm.io/gorm"
)

type App struct {
	DB       *gorm.DB
	Games    service.GameService
	Ingester *service.IngestService
	Library  service.LibraryService
	Logger   *slog.Logger

	redis *cache.RedisProjectionCache
}

// New opens the database and builds every service. A missing redis or IGDB
// configuration degrades to no cache or no metadata source.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := database.Open(cfg.DatabasePath, logger)
	if err != nil {
		return nil, err
	}

	a := &App{DB: db, Logger: logger}

	var projectionCache cache.ProjectionCache = cache.Noop{}
	if cfg.CacheEnabled() {
		rc, err := cache.NewRedisProjectionCache(cfg.RedisURL, cfg.RedisPassword, cfg.CacheTTL)
		if err != nil {
			logger.Warn("Projection cache disabled", "error", err)
		} else {
			a.redis = rc
			projectionCache = rc
			logger.Info("Projection cache enabled", "ttl", cfg.CacheTTL)
		}
	}

	var (
		source  service.MetadataSource
		fetcher service.BatchFetcher
	)
	if cfg.IGDBEnabled() {
		client := igdb.NewClient(igdb.Config{
			ClientID:     cfg.IGDBClientID,
			ClientSecret: cfg.IGDBClientSecret,
			APIURL:       cfg.IGDBAPIURL,
			TokenURL:     cfg.TwitchTokenURL,
			RateLimit:    cfg.IGDBRateLimit,
			Logger:       logger,
		})
		source = client
		fetcher = igdb.NewImporter(client, cfg.ImportWorkers, logger)
	} else {
		logger.Warn("IGDB credentials not set, metadata source disabled")
	}

	projection := repository.NewProjectionRepo(db, logger)
	a.Games = service.NewGameService(projection, projectionCache, logger)
	a.Ingester = service.NewIngestService(db, projection, projectionCache, source, logger)
	a.Library = service.NewLibraryService(repository.NewQuestRepository(db), a.Games, a.Ingester, source, fetcher, logger)
	return a, nil
}

func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	errs = append(errs, database.Close(a.DB))
	return errors.Join(errs...)
}
