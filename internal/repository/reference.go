package repository

import (
	"context"
	"fmt"

	"questlog/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReferenceRepo owns the shared lookup entities (companies, genres, platforms, ...)
// and the join rows linking them to games. Every write is idempotent.
type ReferenceRepo struct {
	db *gorm.DB
}

func NewReferenceRepo(db *gorm.DB) *ReferenceRepo {
	return &ReferenceRepo{db: db}
}

// WithTx returns a copy bound to tx.
func (r *ReferenceRepo) WithTx(tx *gorm.DB) *ReferenceRepo {
	return &ReferenceRepo{db: tx}
}

// getOrCreate returns the row stored under id, inserting attrs only when the id is
// unknown. The first write wins: a later call with another name is a pure read.
func getOrCreate[T any](ctx context.Context, db *gorm.DB, id int64, attrs T) (*T, error) {
	if id <= 0 {
		return nil, fmt.Errorf("reference id %d: %w", id, models.ErrInvalidDocument)
	}
	var stored T
	if err := db.WithContext(ctx).Where("id = ?", id).Attrs(attrs).FirstOrCreate(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// link inserts a join row unless it already exists.
func link(ctx context.Context, db *gorm.DB, row any) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error
}

func (r *ReferenceRepo) GetOrCreateCompany(ctx context.Context, c models.Company) (*models.Company, error) {
	stored, err := getOrCreate(ctx, r.db, c.ID, c)
	if err != nil {
		return nil, fmt.Errorf("get or create company %d: %w", c.ID, err)
	}
	return stored, nil
}

func (r *ReferenceRepo) GetOrCreateGenre(ctx context.Context, g models.Genre) (*models.Genre, error) {
	stored, err := getOrCreate(ctx, r.db, g.ID, g)
	if err != nil {
		return nil, fmt.Errorf("get or create genre %d: %w", g.ID, err)
	}
	return stored, nil
}

func (r *ReferenceRepo) GetOrCreatePlatform(ctx context.Context, p models.Platform) (*models.Platform, error) {
	stored, err := getOrCreate(ctx, r.db, p.ID, p)
	if err != nil {
		return nil, fmt.Errorf("get or create platform %d: %w", p.ID, err)
	}
	return stored, nil
}

func (r *ReferenceRepo) GetOrCreateGameMode(ctx context.Context, m models.GameMode) (*models.GameMode, error) {
	stored, err := getOrCreate(ctx, r.db, m.ID, m)
	if err != nil {
		return nil, fmt.Errorf("get or create game mode %d: %w", m.ID, err)
	}
	return stored, nil
}

func (r *ReferenceRepo) GetOrCreatePerspective(ctx context.Context, p models.PlayerPerspective) (*models.PlayerPerspective, error) {
	stored, err := getOrCreate(ctx, r.db, p.ID, p)
	if err != nil {
		return nil, fmt.Errorf("get or create player perspective %d: %w", p.ID, err)
	}
	return stored, nil
}

func (r *ReferenceRepo) GetOrCreateTheme(ctx context.Context, t models.Theme) (*models.Theme, error) {
	stored, err := getOrCreate(ctx, r.db, t.ID, t)
	if err != nil {
		return nil, fmt.Errorf("get or create theme %d: %w", t.ID, err)
	}
	return stored, nil
}

func (r *ReferenceRepo) GetOrCreateFranchise(ctx context.Context, f models.Franchise) (*models.Franchise, error) {
	stored, err := getOrCreate(ctx, r.db, f.ID, f)
	if err != nil {
		return nil, fmt.Errorf("get or create franchise %d: %w", f.ID, err)
	}
	return stored, nil
}

func (r *ReferenceRepo) AddGenreToGame(ctx context.Context, gameID, genreID int64) error {
	if err := link(ctx, r.db, &models.GameGenre{GameID: gameID, GenreID: genreID}); err != nil {
		return fmt.Errorf("link genre %d to game %d: %w", genreID, gameID, err)
	}
	return nil
}

func (r *ReferenceRepo) AddPlatformToGame(ctx context.Context, gameID, platformID int64) error {
	if err := link(ctx, r.db, &models.GamePlatform{GameID: gameID, PlatformID: platformID}); err != nil {
		return fmt.Errorf("link platform %d to game %d: %w", platformID, gameID, err)
	}
	return nil
}

func (r *ReferenceRepo) AddGameModeToGame(ctx context.Context, gameID, modeID int64) error {
	if err := link(ctx, r.db, &models.GameModeLink{GameID: gameID, GameModeID: modeID}); err != nil {
		return fmt.Errorf("link game mode %d to game %d: %w", modeID, gameID, err)
	}
	return nil
}

func (r *ReferenceRepo) AddPerspectiveToGame(ctx context.Context, gameID, perspectiveID int64) error {
	if err := link(ctx, r.db, &models.GamePerspective{GameID: gameID, PerspectiveID: perspectiveID}); err != nil {
		return fmt.Errorf("link perspective %d to game %d: %w", perspectiveID, gameID, err)
	}
	return nil
}

func (r *ReferenceRepo) AddThemeToGame(ctx context.Context, gameID, themeID int64) error {
	if err := link(ctx, r.db, &models.GameTheme{GameID: gameID, ThemeID: themeID}); err != nil {
		return fmt.Errorf("link theme %d to game %d: %w", themeID, gameID, err)
	}
	return nil
}

func (r *ReferenceRepo) AddFranchiseToGame(ctx context.Context, gameID, franchiseID int64) error {
	if err := link(ctx, r.db, &models.GameFranchise{GameID: gameID, FranchiseID: franchiseID}); err != nil {
		return fmt.Errorf("link franchise %d to game %d: %w", franchiseID, gameID, err)
	}
	return nil
}

// AddCompanyToGame links a company with its roles. Repeating the call for the same
// pair merges the flags, so a company listed once as developer and once as
// publisher ends up as both.
func (r *ReferenceRepo) AddCompanyToGame(ctx context.Context, gameID, companyID int64, developer, publisher bool) error {
	row := models.InvolvedCompanyRow{
		GameID:    gameID,
		CompanyID: companyID,
		Developer: developer,
		Publisher: publisher,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "game_id"}, {Name: "company_id"}},
		DoUpdates: clause.Set{
			{Column: clause.Column{Name: "developer"}, Value: gorm.Expr("involved_companies.developer OR excluded.developer")},
			{Column: clause.Column{Name: "publisher"}, Value: gorm.Expr("involved_companies.publisher OR excluded.publisher")},
		},
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("link company %d to game %d: %w", companyID, gameID, err)
	}
	return nil
}
