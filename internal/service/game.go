package service

import (
	"context"
	"log/slog"

	"questlog/internal/cache"
	"questlog/internal/models"
	"questlog/internal/repository"
)

type GameService interface {
	GetFull(ctx context.Context, id int64) (*models.GameDocument, error)
	GetMinimal(ctx context.Context, id int64) (*models.MinimalGameDocument, error)
	ListMinimal(ctx context.Context, ids []int64) ([]models.MinimalGameDocument, error)
	SearchLocal(ctx context.Context, name string, limit int) ([]models.MinimalGameDocument, error)
}

type gameService struct {
	projection *repository.ProjectionRepo
	cache      cache.ProjectionCache
	logger     *slog.Logger
}

func NewGameService(projection *repository.ProjectionRepo, projectionCache cache.ProjectionCache, logger *slog.Logger) GameService {
	if projectionCache == nil {
		projectionCache = cache.Noop{}
	}
	return &gameService{
		projection: projection,
		cache:      projectionCache,
		logger:     logger,
	}
}

// GetFull reads through the projection cache. Cache failures only cost a rebuild.
func (s *gameService) GetFull(ctx context.Context, id int64) (*models.GameDocument, error) {
	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.Warn("Projection cache read failed", "game_id", id, "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	doc, err := s.projection.GetFull(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, models.ErrGameNotFound
	}

	if err := s.cache.Set(ctx, doc); err != nil {
		s.logger.Warn("Projection cache write failed", "game_id", id, "error", err)
	}
	return doc, nil
}

func (s *gameService) GetMinimal(ctx context.Context, id int64) (*models.MinimalGameDocument, error) {
	doc, err := s.projection.GetMinimal(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, models.ErrGameNotFound
	}
	return doc, nil
}

func (s *gameService) ListMinimal(ctx context.Context, ids []int64) ([]models.MinimalGameDocument, error) {
	return s.projection.ListMinimal(ctx, ids)
}

func (s *gameService) SearchLocal(ctx context.Context, name string, limit int) ([]models.MinimalGameDocument, error) {
	return s.projection.SearchLocal(ctx, name, limit)
}
