package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"questlog/internal/handler"
	"questlog/internal/models"
	"questlog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int          { return &i }
func stringPtr(s string) *string { return &s }

// --- MOCK SERVICES ---

type MockGameService struct {
	mock.Mock
}

func (m *MockGameService) GetFull(ctx context.Context, id int64) (*models.GameDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameDocument), args.Error(1)
}

func (m *MockGameService) GetMinimal(ctx context.Context, id int64) (*models.MinimalGameDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MinimalGameDocument), args.Error(1)
}

func (m *MockGameService) ListMinimal(ctx context.Context, ids []int64) ([]models.MinimalGameDocument, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.MinimalGameDocument), args.Error(1)
}

func (m *MockGameService) SearchLocal(ctx context.Context, name string, limit int) ([]models.MinimalGameDocument, error) {
	args := m.Called(ctx, name, limit)
	return args.Get(0).([]models.MinimalGameDocument), args.Error(1)
}

type MockIngester struct {
	mock.Mock
}

func (m *MockIngester) Ingest(ctx context.Context, doc *models.GameDocument) (*models.GameDocument, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameDocument), args.Error(1)
}

func (m *MockIngester) EnsureGame(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockLibraryService struct {
	mock.Mock
}

func (m *MockLibraryService) Discover(ctx context.Context, id int64, status models.Status) (*models.QuestState, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuestState), args.Error(1)
}

func (m *MockLibraryService) ChangeStatus(ctx context.Context, id int64, to models.Status) error {
	return m.Called(ctx, id, to).Error(0)
}

func (m *MockLibraryService) Remove(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockLibraryService) Reorder(ctx context.Context, status models.Status, fromIndex, toIndex int) error {
	return m.Called(ctx, status, fromIndex, toIndex).Error(0)
}

func (m *MockLibraryService) Arrange(ctx context.Context, status models.Status, orderedIDs []int64) error {
	return m.Called(ctx, status, orderedIDs).Error(0)
}

func (m *MockLibraryService) Board(ctx context.Context, status models.Status) ([]models.LibraryEntry, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]models.LibraryEntry), args.Error(1)
}

func (m *MockLibraryService) Summary(ctx context.Context) (map[models.Status]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[models.Status]int64), args.Error(1)
}

func (m *MockLibraryService) Rate(ctx context.Context, id int64, rating *int) error {
	return m.Called(ctx, id, rating).Error(0)
}

func (m *MockLibraryService) Annotate(ctx context.Context, id int64, notes *string) error {
	return m.Called(ctx, id, notes).Error(0)
}

func (m *MockLibraryService) Complete(ctx context.Context, id int64, date *time.Time) error {
	return m.Called(ctx, id, date).Error(0)
}

func (m *MockLibraryService) SelectPlatform(ctx context.Context, id int64, platformID *int64) error {
	return m.Called(ctx, id, platformID).Error(0)
}

func (m *MockLibraryService) Search(ctx context.Context, query string) ([]models.GameDocument, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]models.GameDocument), args.Error(1)
}

func (m *MockLibraryService) Import(ctx context.Context, ids []int64, status models.Status) (*service.ImportReport, error) {
	args := m.Called(ctx, ids, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ImportReport), args.Error(1)
}

// --- SETUP ---

type fixture struct {
	games    *MockGameService
	ingester *MockIngester
	library  *MockLibraryService
	router   *gin.Engine
}

func setupRouter(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		games:    new(MockGameService),
		ingester: new(MockIngester),
		library:  new(MockLibraryService),
	}
	f.router = handler.NewRouter(handler.Services{
		Games:    f.games,
		Ingester: f.ingester,
		Library:  f.library,
	}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	t.Cleanup(func() {
		f.games.AssertExpectations(t)
		f.ingester.AssertExpectations(t)
		f.library.AssertExpectations(t)
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func serve(f *fixture, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}
