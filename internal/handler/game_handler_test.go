package handler_test

import (
	"errors"
	"net/http"
	"testing"

	"questlog/internal/dto"
	"questlog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGetGame(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := setupRouter(t)
		f.games.On("GetFull", mock.Anything, int64(1942)).
			Return(&models.GameDocument{ID: 1942, Name: "The Witcher 3"}, nil)

		w := f.do(t, http.MethodGet, "/api/v1/games/1942", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		got := decode[models.GameDocument](t, w)
		assert.Equal(t, "The Witcher 3", got.Name)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("NotFound", func(t *testing.T) {
		f := setupRouter(t)
		f.games.On("GetFull", mock.Anything, int64(7)).Return(nil, models.ErrGameNotFound)

		w := f.do(t, http.MethodGet, "/api/v1/games/7", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		f := setupRouter(t)

		w := f.do(t, http.MethodGet, "/api/v1/games/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("StorageErrorIsHidden", func(t *testing.T) {
		f := setupRouter(t)
		f.games.On("GetFull", mock.Anything, int64(7)).Return(nil, errors.New("disk I/O error"))

		w := f.do(t, http.MethodGet, "/api/v1/games/7", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "disk")
	})
}

func TestGetMinimalGame(t *testing.T) {
	f := setupRouter(t)
	f.games.On("GetMinimal", mock.Anything, int64(5)).
		Return(&models.MinimalGameDocument{ID: 5, Name: "Hades", Genres: []models.NamedRef{}}, nil)

	w := f.do(t, http.MethodGet, "/api/v1/games/5/minimal", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hades", decode[models.MinimalGameDocument](t, w).Name)
}

func TestIngestGame(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		f := setupRouter(t)
		f.ingester.On("Ingest", mock.Anything, mock.MatchedBy(func(d *models.GameDocument) bool {
			return d.ID == 3 && d.Name == "Celeste"
		})).Return(&models.GameDocument{ID: 3, Name: "Celeste"}, nil)

		w := f.do(t, http.MethodPost, "/api/v1/games", map[string]any{"id": 3, "name": "Celeste"})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("InvalidDocument", func(t *testing.T) {
		f := setupRouter(t)
		f.ingester.On("Ingest", mock.Anything, mock.Anything).Return(nil, models.ErrInvalidDocument)

		w := f.do(t, http.MethodPost, "/api/v1/games", map[string]any{"name": "no id"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		f := setupRouter(t)

		w := f.do(t, http.MethodPost, "/api/v1/games", "not an object")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSearch(t *testing.T) {
	t.Run("Local", func(t *testing.T) {
		f := setupRouter(t)
		date := int64(1431993600)
		f.games.On("SearchLocal", mock.Anything, "witcher", 20).Return([]models.MinimalGameDocument{{
			ID:           1942,
			Name:         "The Witcher 3",
			Genres:       []models.NamedRef{{ID: 12, Name: "RPG"}},
			ReleaseDates: []models.ReleaseDate{{ID: 1, Date: &date}},
		}}, nil)

		w := f.do(t, http.MethodGet, "/api/v1/search?q=witcher", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode[dto.SearchResponse](t, w)
		assert.Equal(t, 1, resp.Total)
		assert.Equal(t, "local", resp.Results[0].Source)
		assert.Equal(t, []string{"RPG"}, resp.Results[0].Genres)
		assert.Equal(t, 2015, *resp.Results[0].ReleaseYear)
	})

	t.Run("Remote", func(t *testing.T) {
		f := setupRouter(t)
		f.library.On("Search", mock.Anything, "hades").
			Return([]models.GameDocument{{ID: 1, Name: "Hades"}}, nil)

		w := f.do(t, http.MethodGet, "/api/v1/search?q=hades&source=igdb", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode[dto.SearchResponse](t, w)
		assert.Equal(t, "igdb", resp.Results[0].Source)
		assert.Nil(t, resp.Results[0].ReleaseYear)
	})

	t.Run("NoSource", func(t *testing.T) {
		f := setupRouter(t)
		f.library.On("Search", mock.Anything, "hades").Return([]models.GameDocument(nil), models.ErrNoSource)

		w := f.do(t, http.MethodGet, "/api/v1/search?q=hades&source=igdb", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("MissingQuery", func(t *testing.T) {
		f := setupRouter(t)

		w := f.do(t, http.MethodGet, "/api/v1/search", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHealth(t *testing.T) {
	f := setupRouter(t)

	w := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	f := setupRouter(t)
	const id = "6f1c2a52-8d0e-4c44-9a0c-2b8f7d3e9a11"

	req := newRequest(http.MethodGet, "/health")
	req.Header.Set("X-Request-ID", id)
	w := serve(f, req)

	assert.Equal(t, id, w.Header().Get("X-Request-ID"))
}
