package repository

import (
	"context"
	"fmt"
	"time"

	"questlog/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GameRepo writes the base game row and the detail rows owned by a game.
// Details are replaced per kind through the DeleteXForGame operations; the schema
// has no cascading deletes.
type GameRepo struct {
	db *gorm.DB
}

func NewGameRepo(db *gorm.DB) *GameRepo {
	return &GameRepo{db: db}
}

// WithTx returns a copy bound to tx.
func (r *GameRepo) WithTx(tx *gorm.DB) *GameRepo {
	return &GameRepo{db: tx}
}

// UpsertGame inserts the base row or replaces its descriptive columns.
func (r *GameRepo) UpsertGame(ctx context.Context, g *models.Game) error {
	g.UpdatedAt = time.Now().UTC()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = g.UpdatedAt
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "summary", "storyline", "rating", "aggregated_rating", "updated_at"}),
	}).Create(g).Error
	if err != nil {
		return fmt.Errorf("upsert game %d: %w", g.ID, err)
	}
	return nil
}

func (r *GameRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Game{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check game %d: %w", id, err)
	}
	return count > 0, nil
}

// deleteForGame removes every T row owned by the game.
func deleteForGame[T any](ctx context.Context, db *gorm.DB, gameID int64) error {
	return db.WithContext(ctx).Where("game_id = ?", gameID).Delete(new(T)).Error
}

// insertRows is a no-op for an empty slice.
func insertRows[T any](ctx context.Context, db *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&rows).Error
}

func (r *GameRepo) DeleteCoverForGame(ctx context.Context, gameID int64) error {
	if err := deleteForGame[models.Cover](ctx, r.db, gameID); err != nil {
		return fmt.Errorf("delete cover for game %d: %w", gameID, err)
	}
	return nil
}

func (r *GameRepo) DeleteScreenshotsForGame(ctx context.Context, gameID int64) error {
	if err := deleteForGame[models.Screenshot](ctx, r.db, gameID); err != nil {
		return fmt.Errorf("delete screenshots for game %d: %w", gameID, err)
	}
	return nil
}

func (r *GameRepo) DeleteAlternativeNamesForGame(ctx context.Context, gameID int64) error {
	if err := deleteForGame[models.AlternativeNameRow](ctx, r.db, gameID); err != nil {
		return fmt.Errorf("delete alternative names for game %d: %w", gameID, err)
	}
	return nil
}

func (r *GameRepo) DeleteReleaseDatesForGame(ctx context.Context, gameID int64) error {
	if err := deleteForGame[models.ReleaseDateRow](ctx, r.db, gameID); err != nil {
		return fmt.Errorf("delete release dates for game %d: %w", gameID, err)
	}
	return nil
}

func (r *GameRepo) DeleteVideosForGame(ctx context.Context, gameID int64) error {
	if err := deleteForGame[models.VideoRow](ctx, r.db, gameID); err != nil {
		return fmt.Errorf("delete videos for game %d: %w", gameID, err)
	}
	return nil
}

func (r *GameRepo) DeleteWebsitesForGame(ctx context.Context, gameID int64) error {
	if err := deleteForGame[models.WebsiteRow](ctx, r.db, gameID); err != nil {
		return fmt.Errorf("delete websites for game %d: %w", gameID, err)
	}
	return nil
}

func (r *GameRepo) DeleteAgeRatingsForGame(ctx context.Context, gameID int64) error {
	if err := deleteForGame[models.AgeRatingRow](ctx, r.db, gameID); err != nil {
		return fmt.Errorf("delete age ratings for game %d: %w", gameID, err)
	}
	return nil
}

func (r *GameRepo) DeleteDLCsForGame(ctx context.Context, gameID int64) error {
	if err := deleteForGame[models.DLCRow](ctx, r.db, gameID); err != nil {
		return fmt.Errorf("delete dlcs for game %d: %w", gameID, err)
	}
	return nil
}

func (r *GameRepo) DeleteMultiplayerModesForGame(ctx context.Context, gameID int64) error {
	if err := deleteForGame[models.MultiplayerModeRow](ctx, r.db, gameID); err != nil {
		return fmt.Errorf("delete multiplayer modes for game %d: %w", gameID, err)
	}
	return nil
}

// DeleteDetailsForGame clears every detail kind of a game.
func (r *GameRepo) DeleteDetailsForGame(ctx context.Context, gameID int64) error {
	steps := []func(context.Context, int64) error{
		r.DeleteCoverForGame,
		r.DeleteScreenshotsForGame,
		r.DeleteAlternativeNamesForGame,
		r.DeleteReleaseDatesForGame,
		r.DeleteVideosForGame,
		r.DeleteWebsitesForGame,
		r.DeleteAgeRatingsForGame,
		r.DeleteDLCsForGame,
		r.DeleteMultiplayerModesForGame,
	}
	for _, step := range steps {
		if err := step(ctx, gameID); err != nil {
			return err
		}
	}
	return nil
}

func (r *GameRepo) SaveCover(ctx context.Context, cover models.Cover) error {
	if err := r.db.WithContext(ctx).Create(&cover).Error; err != nil {
		return fmt.Errorf("save cover for game %d: %w", cover.GameID, err)
	}
	return nil
}

func (r *GameRepo) AddScreenshots(ctx context.Context, rows []models.Screenshot) error {
	if err := insertRows(ctx, r.db, rows); err != nil {
		return fmt.Errorf("add screenshots: %w", err)
	}
	return nil
}

func (r *GameRepo) AddAlternativeNames(ctx context.Context, rows []models.AlternativeNameRow) error {
	if err := insertRows(ctx, r.db, rows); err != nil {
		return fmt.Errorf("add alternative names: %w", err)
	}
	return nil
}

func (r *GameRepo) AddReleaseDates(ctx context.Context, rows []models.ReleaseDateRow) error {
	if err := insertRows(ctx, r.db, rows); err != nil {
		return fmt.Errorf("add release dates: %w", err)
	}
	return nil
}

func (r *GameRepo) AddVideos(ctx context.Context, rows []models.VideoRow) error {
	if err := insertRows(ctx, r.db, rows); err != nil {
		return fmt.Errorf("add videos: %w", err)
	}
	return nil
}

func (r *GameRepo) AddWebsites(ctx context.Context, rows []models.WebsiteRow) error {
	if err := insertRows(ctx, r.db, rows); err != nil {
		return fmt.Errorf("add websites: %w", err)
	}
	return nil
}

func (r *GameRepo) AddAgeRatings(ctx context.Context, rows []models.AgeRatingRow) error {
	if err := insertRows(ctx, r.db, rows); err != nil {
		return fmt.Errorf("add age ratings: %w", err)
	}
	return nil
}

func (r *GameRepo) AddDLCs(ctx context.Context, rows []models.DLCRow) error {
	if err := insertRows(ctx, r.db, rows); err != nil {
		return fmt.Errorf("add dlcs: %w", err)
	}
	return nil
}

func (r *GameRepo) AddMultiplayerModes(ctx context.Context, rows []models.MultiplayerModeRow) error {
	if err := insertRows(ctx, r.db, rows); err != nil {
		return fmt.Errorf("add multiplayer modes: %w", err)
	}
	return nil
}
