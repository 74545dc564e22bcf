package service

import (
	"context"
	"fmt"
	"log/slog"

	"questlog/internal/cache"
	"questlog/internal/models"
	"questlog/internal/repository"

	"gorm.io/gorm"
)

// MetadataSource fetches game documents from the remote catalog.
type MetadataSource interface {
	// FetchGameByID returns nil, nil when the source has no such game.
	FetchGameByID(ctx context.Context, id int64) (*models.GameDocument, error)
	Search(ctx context.Context, query string) ([]models.GameDocument, error)
}

// IngestService persists nested game documents into normalized storage.
type IngestService struct {
	db         *gorm.DB
	games      *repository.GameRepo
	refs       *repository.ReferenceRepo
	projection *repository.ProjectionRepo
	cache      cache.ProjectionCache
	source     MetadataSource
	logger     *slog.Logger
}

func NewIngestService(db *gorm.DB, projection *repository.ProjectionRepo, projectionCache cache.ProjectionCache, source MetadataSource, logger *slog.Logger) *IngestService {
	if projectionCache == nil {
		projectionCache = cache.Noop{}
	}
	return &IngestService{
		db:         db,
		games:      repository.NewGameRepo(db),
		refs:       repository.NewReferenceRepo(db),
		projection: projection,
		cache:      projectionCache,
		source:     source,
		logger:     logger,
	}
}

// Ingest stores doc and everything it references in one transaction, replacing
// any details stored for the same game, and returns the stored projection.
func (s *IngestService) Ingest(ctx context.Context, doc *models.GameDocument) (*models.GameDocument, error) {
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin ingest %d: %w", doc.ID, tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := s.store(ctx, tx, doc); err != nil {
		tx.Rollback()
		s.logger.Error("Ingest failed, rolled back", "game_id", doc.ID, "error", err)
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("commit ingest %d: %w", doc.ID, err)
	}

	if err := s.cache.Invalidate(ctx, doc.ID); err != nil {
		s.logger.Warn("Failed to invalidate cached projection", "game_id", doc.ID, "error", err)
	}
	s.logger.Info("Game ingested", "game_id", doc.ID, "name", doc.Name)

	stored, err := s.projection.GetFull(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, models.ErrGameNotFound
	}
	return stored, nil
}

// EnsureGame ingests the game from the metadata source unless it is already stored.
func (s *IngestService) EnsureGame(ctx context.Context, id int64) error {
	exists, err := s.games.Exists(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = s.Refresh(ctx, id)
	return err
}

// Refresh re-fetches a game from the metadata source and re-ingests it.
func (s *IngestService) Refresh(ctx context.Context, id int64) (*models.GameDocument, error) {
	if s.source == nil {
		return nil, fmt.Errorf("refresh %d: %w", id, models.ErrNoSource)
	}
	doc, err := s.source.FetchGameByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch game %d: %w", id, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("fetch game %d: %w", id, models.ErrMetadataNotFound)
	}
	return s.Ingest(ctx, doc)
}

func validateDocument(doc *models.GameDocument) error {
	if doc == nil {
		return fmt.Errorf("nil document: %w", models.ErrInvalidDocument)
	}
	if doc.ID <= 0 {
		return fmt.Errorf("game id %d: %w", doc.ID, models.ErrInvalidDocument)
	}
	if doc.Name == "" {
		return fmt.Errorf("game %d has no name: %w", doc.ID, models.ErrInvalidDocument)
	}
	return nil
}

func requireID(kind string, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%s id %d: %w", kind, id, models.ErrInvalidDocument)
	}
	return nil
}

func (s *IngestService) store(ctx context.Context, tx *gorm.DB, doc *models.GameDocument) error {
	games := s.games.WithTx(tx)
	refs := s.refs.WithTx(tx)

	if err := games.UpsertGame(ctx, &models.Game{
		ID:               doc.ID,
		Name:             doc.Name,
		Summary:          doc.Summary,
		Storyline:        doc.Storyline,
		Rating:           doc.Rating,
		AggregatedRating: doc.AggregatedRating,
	}); err != nil {
		return err
	}

	if err := games.DeleteDetailsForGame(ctx, doc.ID); err != nil {
		return err
	}
	if err := s.storeDetails(ctx, games, refs, doc); err != nil {
		return err
	}
	return s.storeAssociations(ctx, refs, doc)
}

func (s *IngestService) storeDetails(ctx context.Context, games *repository.GameRepo, refs *repository.ReferenceRepo, doc *models.GameDocument) error {
	gameID := doc.ID

	if c := doc.Cover; c != nil {
		if err := requireID("cover", c.ID); err != nil {
			return err
		}
		if err := games.SaveCover(ctx, models.Cover{
			ID: c.ID, GameID: gameID, ImageID: c.ImageID, URL: c.URL, Width: c.Width, Height: c.Height,
		}); err != nil {
			return err
		}
	}

	screenshots := make([]models.Screenshot, 0, len(doc.Screenshots))
	for _, sc := range doc.Screenshots {
		if err := requireID("screenshot", sc.ID); err != nil {
			return err
		}
		screenshots = append(screenshots, models.Screenshot{
			ID: sc.ID, GameID: gameID, ImageID: sc.ImageID, URL: sc.URL, Width: sc.Width, Height: sc.Height,
		})
	}
	if err := games.AddScreenshots(ctx, screenshots); err != nil {
		return err
	}

	names := make([]models.AlternativeNameRow, 0, len(doc.AlternativeNames))
	for _, a := range doc.AlternativeNames {
		if err := requireID("alternative name", a.ID); err != nil {
			return err
		}
		names = append(names, models.AlternativeNameRow{ID: a.ID, GameID: gameID, Name: a.Name, Comment: a.Comment})
	}
	if err := games.AddAlternativeNames(ctx, names); err != nil {
		return err
	}

	releases := make([]models.ReleaseDateRow, 0, len(doc.ReleaseDates))
	for _, rd := range doc.ReleaseDates {
		if err := requireID("release date", rd.ID); err != nil {
			return err
		}
		row := models.ReleaseDateRow{ID: rd.ID, GameID: gameID, Date: rd.Date, Human: rd.Human}
		if rd.Platform != nil {
			p, err := refs.GetOrCreatePlatform(ctx, models.Platform{ID: rd.Platform.ID, Name: rd.Platform.Name})
			if err != nil {
				return err
			}
			row.PlatformID = &p.ID
		}
		releases = append(releases, row)
	}
	if err := games.AddReleaseDates(ctx, releases); err != nil {
		return err
	}

	videos := make([]models.VideoRow, 0, len(doc.Videos))
	for _, v := range doc.Videos {
		if err := requireID("video", v.ID); err != nil {
			return err
		}
		videos = append(videos, models.VideoRow{ID: v.ID, GameID: gameID, VideoID: v.VideoID, Name: v.Name})
	}
	if err := games.AddVideos(ctx, videos); err != nil {
		return err
	}

	websites := make([]models.WebsiteRow, 0, len(doc.Websites))
	for _, w := range doc.Websites {
		if err := requireID("website", w.ID); err != nil {
			return err
		}
		websites = append(websites, models.WebsiteRow{ID: w.ID, GameID: gameID, Category: w.Category, URL: w.URL})
	}
	if err := games.AddWebsites(ctx, websites); err != nil {
		return err
	}

	ageRatings := make([]models.AgeRatingRow, 0, len(doc.AgeRatings))
	for _, ar := range doc.AgeRatings {
		if err := requireID("age rating", ar.ID); err != nil {
			return err
		}
		ageRatings = append(ageRatings, models.AgeRatingRow{ID: ar.ID, GameID: gameID, Category: ar.Category, Rating: ar.Rating})
	}
	if err := games.AddAgeRatings(ctx, ageRatings); err != nil {
		return err
	}

	dlcs := make([]models.DLCRow, 0, len(doc.DLCs))
	for _, d := range doc.DLCs {
		if err := requireID("dlc", d.ID); err != nil {
			return err
		}
		dlcs = append(dlcs, models.DLCRow{ID: d.ID, GameID: gameID, Name: d.Name, Summary: d.Summary})
	}
	if err := games.AddDLCs(ctx, dlcs); err != nil {
		return err
	}

	modes := make([]models.MultiplayerModeRow, 0, len(doc.MultiplayerModes))
	for _, m := range doc.MultiplayerModes {
		if err := requireID("multiplayer mode", m.ID); err != nil {
			return err
		}
		modes = append(modes, models.MultiplayerModeRow{
			ID:                m.ID,
			GameID:            gameID,
			CampaignCoop:      m.CampaignCoop,
			DropIn:            m.DropIn,
			LANCoop:           m.LANCoop,
			OfflineCoop:       m.OfflineCoop,
			OfflineCoopMax:    m.OfflineCoopMax,
			OfflineMax:        m.OfflineMax,
			OnlineCoop:        m.OnlineCoop,
			OnlineCoopMax:     m.OnlineCoopMax,
			OnlineMax:         m.OnlineMax,
			SplitScreen:       m.SplitScreen,
			SplitScreenOnline: m.SplitScreenOnline,
		})
	}
	return games.AddMultiplayerModes(ctx, modes)
}

func (s *IngestService) storeAssociations(ctx context.Context, refs *repository.ReferenceRepo, doc *models.GameDocument) error {
	gameID := doc.ID

	for _, g := range doc.Genres {
		stored, err := refs.GetOrCreateGenre(ctx, models.Genre{ID: g.ID, Name: g.Name})
		if err != nil {
			return err
		}
		if err := refs.AddGenreToGame(ctx, gameID, stored.ID); err != nil {
			return err
		}
	}
	for _, p := range doc.Platforms {
		stored, err := refs.GetOrCreatePlatform(ctx, models.Platform{ID: p.ID, Name: p.Name})
		if err != nil {
			return err
		}
		if err := refs.AddPlatformToGame(ctx, gameID, stored.ID); err != nil {
			return err
		}
	}
	for _, m := range doc.GameModes {
		stored, err := refs.GetOrCreateGameMode(ctx, models.GameMode{ID: m.ID, Name: m.Name})
		if err != nil {
			return err
		}
		if err := refs.AddGameModeToGame(ctx, gameID, stored.ID); err != nil {
			return err
		}
	}
	for _, p := range doc.PlayerPerspectives {
		stored, err := refs.GetOrCreatePerspective(ctx, models.PlayerPerspective{ID: p.ID, Name: p.Name})
		if err != nil {
			return err
		}
		if err := refs.AddPerspectiveToGame(ctx, gameID, stored.ID); err != nil {
			return err
		}
	}
	for _, t := range doc.Themes {
		stored, err := refs.GetOrCreateTheme(ctx, models.Theme{ID: t.ID, Name: t.Name})
		if err != nil {
			return err
		}
		if err := refs.AddThemeToGame(ctx, gameID, stored.ID); err != nil {
			return err
		}
	}
	for _, f := range doc.Franchises {
		stored, err := refs.GetOrCreateFranchise(ctx, models.Franchise{ID: f.ID, Name: f.Name})
		if err != nil {
			return err
		}
		if err := refs.AddFranchiseToGame(ctx, gameID, stored.ID); err != nil {
			return err
		}
	}
	for _, ic := range doc.InvolvedCompanies {
		stored, err := refs.GetOrCreateCompany(ctx, models.Company{ID: ic.Company.ID, Name: ic.Company.Name})
		if err != nil {
			return err
		}
		if err := refs.AddCompanyToGame(ctx, gameID, stored.ID, ic.Developer, ic.Publisher); err != nil {
			return err
		}
	}
	return nil
}
