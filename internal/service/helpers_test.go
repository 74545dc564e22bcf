package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"questlog/database"
	"questlog/internal/models"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "questlog_test.db"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	return db
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func int64Ptr(i int64) *int64 { return &i }

// MockMetadataSource mocks the MetadataSource interface
type MockMetadataSource struct {
	mock.Mock
}

func (m *MockMetadataSource) FetchGameByID(ctx context.Context, id int64) (*models.GameDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameDocument), args.Error(1)
}

func (m *MockMetadataSource) Search(ctx context.Context, query string) ([]models.GameDocument, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GameDocument), args.Error(1)
}

// recordingCache is an in-memory ProjectionCache.
type recordingCache struct {
	docs        map[int64]*models.GameDocument
	invalidated []int64
	getErr      error
}

func newRecordingCache() *recordingCache {
	return &recordingCache{docs: map[int64]*models.GameDocument{}}
}

func (c *recordingCache) Get(_ context.Context, id int64) (*models.GameDocument, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.docs[id], nil
}

func (c *recordingCache) Set(_ context.Context, doc *models.GameDocument) error {
	c.docs[doc.ID] = doc
	return nil
}

func (c *recordingCache) Invalidate(_ context.Context, id int64) error {
	delete(c.docs, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

func witcherDocument() *models.GameDocument {
	return &models.GameDocument{
		ID:               1942,
		Name:             "The Witcher 3: Wild Hunt",
		Summary:          strPtr("Geralt searches for Ciri."),
		AggregatedRating: func() *float64 { f := 92.5; return &f }(),
		Cover:            &models.Image{ID: 89386, ImageID: "co1wyy", Width: 264, Height: 374},
		Screenshots: []models.Image{
			{ID: 1, ImageID: "sc1"},
			{ID: 2, ImageID: "sc2"},
		},
		AlternativeNames: []models.AlternativeName{{ID: 5, Name: "TW3"}},
		ReleaseDates: []models.ReleaseDate{
			{ID: 21, Date: int64Ptr(1431993600), Human: "May 19, 2015", Platform: &models.NamedRef{ID: 6, Name: "PC (Microsoft Windows)"}},
		},
		Videos:     []models.Video{{ID: 7, VideoID: "c0i88t0Kacs", Name: "Trailer"}},
		Websites:   []models.Website{{ID: 9, Category: 1, URL: "https://thewitcher.com"}},
		AgeRatings: []models.AgeRating{{ID: 11, Category: 1, Rating: 11}},
		DLCs:       []models.DLC{{ID: 12, Name: "Blood and Wine"}},
		MultiplayerModes: []models.MultiplayerMode{
			{ID: 13, OnlineCoop: true, OnlineCoopMax: 2},
		},
		Genres:             []models.NamedRef{{ID: 12, Name: "Role-playing (RPG)"}, {ID: 31, Name: "Adventure"}},
		Platforms:          []models.NamedRef{{ID: 6, Name: "PC (Microsoft Windows)"}, {ID: 48, Name: "PlayStation 4"}},
		GameModes:          []models.NamedRef{{ID: 1, Name: "Single player"}},
		PlayerPerspectives: []models.NamedRef{{ID: 2, Name: "Third person"}},
		Themes:             []models.NamedRef{{ID: 38, Name: "Open world"}},
		Franchises:         []models.NamedRef{{ID: 452, Name: "The Witcher"}},
		InvolvedCompanies: []models.InvolvedCompany{
			{Company: models.NamedRef{ID: 908, Name: "CD Projekt RED"}, Developer: true},
			{Company: models.NamedRef{ID: 908, Name: "CD Projekt RED"}, Publisher: true},
			{Company: models.NamedRef{ID: 1, Name: "Bandai Namco"}, Publisher: true},
		},
	}
}
