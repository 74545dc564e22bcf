package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"questlog/internal/models"

	"gorm.io/gorm"
)

// ProjectionRepo rebuilds game documents from normalized storage.
type ProjectionRepo struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewProjectionRepo(db *gorm.DB, logger *slog.Logger) *ProjectionRepo {
	return &ProjectionRepo{db: db, logger: logger}
}

const coverColumns = `
	c.id AS cover_id, c.image_id AS cover_image_id, c.url AS cover_url,
	c.width AS cover_width, c.height AS cover_height`

const genresAggregate = `
	(SELECT json_group_array(json_object('id', x.id, 'name', x.name))
	   FROM game_genres gg JOIN genres x ON x.id = gg.genre_id
	  WHERE gg.game_id = g.id) AS genres`

const releaseDatesAggregate = `
	(SELECT json_group_array(json_object(
	          'id', r.id, 'date', r.date, 'human', r.human,
	          'platform_id', p.id, 'platform_name', p.name))
	   FROM release_dates r LEFT JOIN platforms p ON p.id = r.platform_id
	  WHERE r.game_id = g.id) AS release_dates`

// fullGameQuery joins the cover and aggregates every many-to-many relation and
// websites into JSON arrays. One-to-many detail lists are loaded separately.
const fullGameQuery = `
SELECT g.id, g.name, g.summary, g.storyline, g.rating, g.aggregated_rating,` + coverColumns + `,` + genresAggregate + `,
	(SELECT json_group_array(json_object('id', x.id, 'name', x.name))
	   FROM game_platforms gp JOIN platforms x ON x.id = gp.platform_id
	  WHERE gp.game_id = g.id) AS platforms,
	(SELECT json_group_array(json_object('id', x.id, 'name', x.name))
	   FROM game_modes_map gm JOIN game_modes x ON x.id = gm.game_mode_id
	  WHERE gm.game_id = g.id) AS game_modes,
	(SELECT json_group_array(json_object('id', x.id, 'name', x.name))
	   FROM game_perspectives gpp JOIN player_perspectives x ON x.id = gpp.perspective_id
	  WHERE gpp.game_id = g.id) AS perspectives,
	(SELECT json_group_array(json_object('id', x.id, 'name', x.name))
	   FROM game_themes gt JOIN themes x ON x.id = gt.theme_id
	  WHERE gt.game_id = g.id) AS themes,
	(SELECT json_group_array(json_object('id', x.id, 'name', x.name))
	   FROM game_franchises gf JOIN franchises x ON x.id = gf.franchise_id
	  WHERE gf.game_id = g.id) AS franchises,
	(SELECT json_group_array(json_object('id', w.id, 'category', w.category, 'url', w.url))
	   FROM websites w
	  WHERE w.game_id = g.id) AS websites,
	(SELECT json_group_array(json_object(
	          'id', x.id, 'name', x.name, 'developer', ic.developer, 'publisher', ic.publisher))
	   FROM involved_companies ic JOIN companies x ON x.id = ic.company_id
	  WHERE ic.game_id = g.id) AS involved_companies
FROM games g
LEFT JOIN covers c ON c.game_id = g.id
WHERE g.id = ?`

const minimalGameSelect = `
SELECT g.id, g.name,` + coverColumns + `,` + genresAggregate + `,` + releaseDatesAggregate + `
FROM games g
LEFT JOIN covers c ON c.game_id = g.id`

type coverRow struct {
	CoverID      *int64
	CoverImageID *string
	CoverURL     *string
	CoverWidth   *int
	CoverHeight  *int
}

func (r coverRow) image() *models.Image {
	if r.CoverID == nil || r.CoverImageID == nil {
		return nil
	}
	img := &models.Image{ID: *r.CoverID, ImageID: *r.CoverImageID}
	if r.CoverURL != nil {
		img.URL = *r.CoverURL
	}
	if r.CoverWidth != nil {
		img.Width = *r.CoverWidth
	}
	if r.CoverHeight != nil {
		img.Height = *r.CoverHeight
	}
	return img
}

type fullGameRow struct {
	ID               int64
	Name             string
	Summary          *string
	Storyline        *string
	Rating           *float64
	AggregatedRating *float64
	Cover            coverRow `gorm:"embedded"`

	Genres            string
	Platforms         string
	GameModes         string
	Perspectives      string
	Themes            string
	Franchises        string
	Websites          string
	InvolvedCompanies string
}

type minimalGameRow struct {
	ID    int64
	Name  string
	Cover coverRow `gorm:"embedded"`

	Genres       string
	ReleaseDates string
}

// GetFull returns nil, nil for an unknown game.
func (r *ProjectionRepo) GetFull(ctx context.Context, id int64) (*models.GameDocument, error) {
	var row fullGameRow
	res := r.db.WithContext(ctx).Raw(fullGameQuery, id).Scan(&row)
	if res.Error != nil {
		return nil, fmt.Errorf("project game %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	doc := &models.GameDocument{
		ID:                 row.ID,
		Name:               row.Name,
		Summary:            row.Summary,
		Storyline:          row.Storyline,
		Rating:             row.Rating,
		AggregatedRating:   row.AggregatedRating,
		Cover:              row.Cover.image(),
		Genres:             decodeNamedRefs(r.logger, "genres", row.Genres),
		Platforms:          decodeNamedRefs(r.logger, "platforms", row.Platforms),
		GameModes:          decodeNamedRefs(r.logger, "game_modes", row.GameModes),
		PlayerPerspectives: decodeNamedRefs(r.logger, "player_perspectives", row.Perspectives),
		Themes:             decodeNamedRefs(r.logger, "themes", row.Themes),
		Franchises:         decodeNamedRefs(r.logger, "franchises", row.Franchises),
		Websites:           decodeWebsites(r.logger, row.Websites),
		InvolvedCompanies:  decodeCompanies(r.logger, row.InvolvedCompanies),
	}

	doc.Screenshots = loadDetail(ctx, r, id, "screenshots", r.screenshots)
	doc.AlternativeNames = loadDetail(ctx, r, id, "alternative_names", r.alternativeNames)
	doc.ReleaseDates = loadDetail(ctx, r, id, "release_dates", r.releaseDates)
	doc.Videos = loadDetail(ctx, r, id, "videos", r.videos)
	doc.AgeRatings = loadDetail(ctx, r, id, "age_ratings", r.ageRatings)
	doc.DLCs = loadDetail(ctx, r, id, "dlcs", r.dlcs)
	doc.MultiplayerModes = loadDetail(ctx, r, id, "multiplayer_modes", r.multiplayerModes)

	return doc, nil
}

// GetMinimal returns nil, nil for an unknown game.
func (r *ProjectionRepo) GetMinimal(ctx context.Context, id int64) (*models.MinimalGameDocument, error) {
	var rows []minimalGameRow
	if err := r.db.WithContext(ctx).Raw(minimalGameSelect+" WHERE g.id = ?", id).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("project minimal game %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	doc := r.toMinimal(rows[0])
	return &doc, nil
}

// ListMinimal projects the given games, preserving the order of ids and skipping
// unknown ones.
func (r *ProjectionRepo) ListMinimal(ctx context.Context, ids []int64) ([]models.MinimalGameDocument, error) {
	if len(ids) == 0 {
		return []models.MinimalGameDocument{}, nil
	}

	var rows []minimalGameRow
	if err := r.db.WithContext(ctx).Raw(minimalGameSelect+" WHERE g.id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("project minimal games: %w", err)
	}

	byID := make(map[int64]minimalGameRow, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	out := make([]models.MinimalGameDocument, 0, len(rows))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			out = append(out, r.toMinimal(row))
		}
	}
	return out, nil
}

// SearchLocal matches cached games by name substring, case-insensitively.
func (r *ProjectionRepo) SearchLocal(ctx context.Context, name string, limit int) ([]models.MinimalGameDocument, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return []models.MinimalGameDocument{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	pattern := "%" + escapeLike(name) + "%"
	var rows []minimalGameRow
	err := r.db.WithContext(ctx).
		Raw(minimalGameSelect+` WHERE g.name LIKE ? ESCAPE '\' ORDER BY g.name, g.id LIMIT ?`, pattern, limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("search games %q: %w", name, err)
	}

	out := make([]models.MinimalGameDocument, 0, len(rows))
	for _, row := range rows {
		out = append(out, r.toMinimal(row))
	}
	return out, nil
}

func (r *ProjectionRepo) toMinimal(row minimalGameRow) models.MinimalGameDocument {
	return models.MinimalGameDocument{
		ID:           row.ID,
		Name:         row.Name,
		Cover:        row.Cover.image(),
		Genres:       decodeNamedRefs(r.logger, "genres", row.Genres),
		ReleaseDates: decodeReleaseDates(r.logger, row.ReleaseDates),
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// loadDetail runs one secondary query. A failure is logged and degrades to an
// empty list so the rest of the document still renders.
func loadDetail[T any](ctx context.Context, r *ProjectionRepo, gameID int64, kind string, load func(context.Context, int64) ([]T, error)) []T {
	items, err := load(ctx, gameID)
	if err != nil {
		r.logger.Warn("Failed to load game details", "kind", kind, "game_id", gameID, "error", err)
		return []T{}
	}
	return items
}

func (r *ProjectionRepo) screenshots(ctx context.Context, gameID int64) ([]models.Image, error) {
	var rows []models.Screenshot
	if err := r.db.WithContext(ctx).Where("game_id = ?", gameID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.Image, 0, len(rows))
	for _, s := range rows {
		out = append(out, models.Image{ID: s.ID, ImageID: s.ImageID, URL: s.URL, Width: s.Width, Height: s.Height})
	}
	return out, nil
}

func (r *ProjectionRepo) alternativeNames(ctx context.Context, gameID int64) ([]models.AlternativeName, error) {
	var rows []models.AlternativeNameRow
	if err := r.db.WithContext(ctx).Where("game_id = ?", gameID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.AlternativeName, 0, len(rows))
	for _, a := range rows {
		out = append(out, models.AlternativeName{ID: a.ID, Name: a.Name, Comment: a.Comment})
	}
	return out, nil
}

type releaseDateJoinRow struct {
	ID           int64
	Date         *int64
	Human        *string
	PlatformID   *int64
	PlatformName *string
}

func (r *ProjectionRepo) releaseDates(ctx context.Context, gameID int64) ([]models.ReleaseDate, error) {
	var rows []releaseDateJoinRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT r.id, r.date, r.human, p.id AS platform_id, p.name AS platform_name
		FROM release_dates r
		LEFT JOIN platforms p ON p.id = r.platform_id
		WHERE r.game_id = ?`, gameID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]models.ReleaseDate, 0, len(rows))
	for _, row := range rows {
		agg := releaseAggregate(row)
		if validRelease(agg) {
			out = append(out, agg.toReleaseDate())
		}
	}
	sortReleaseDates(out)
	return out, nil
}

func (r *ProjectionRepo) videos(ctx context.Context, gameID int64) ([]models.Video, error) {
	var rows []models.VideoRow
	if err := r.db.WithContext(ctx).Where("game_id = ?", gameID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.Video, 0, len(rows))
	for _, v := range rows {
		out = append(out, models.Video{ID: v.ID, VideoID: v.VideoID, Name: v.Name})
	}
	return out, nil
}

func (r *ProjectionRepo) ageRatings(ctx context.Context, gameID int64) ([]models.AgeRating, error) {
	var rows []models.AgeRatingRow
	if err := r.db.WithContext(ctx).Where("game_id = ?", gameID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.AgeRating, 0, len(rows))
	for _, a := range rows {
		out = append(out, models.AgeRating{ID: a.ID, Category: a.Category, Rating: a.Rating})
	}
	return out, nil
}

func (r *ProjectionRepo) dlcs(ctx context.Context, gameID int64) ([]models.DLC, error) {
	var rows []models.DLCRow
	if err := r.db.WithContext(ctx).Where("game_id = ?", gameID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.DLC, 0, len(rows))
	for _, d := range rows {
		out = append(out, models.DLC{ID: d.ID, Name: d.Name, Summary: d.Summary})
	}
	return out, nil
}

func (r *ProjectionRepo) multiplayerModes(ctx context.Context, gameID int64) ([]models.MultiplayerMode, error) {
	var rows []models.MultiplayerModeRow
	if err := r.db.WithContext(ctx).Where("game_id = ?", gameID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.MultiplayerMode, 0, len(rows))
	for _, m := range rows {
		out = append(out, models.MultiplayerMode{
			ID:                m.ID,
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
	return out, nil
}
