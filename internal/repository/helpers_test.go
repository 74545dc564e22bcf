package repository

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"questlog/database"
	"questlog/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "questlog_test.db"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	return db
}

func seedGames(t testing.TB, db *gorm.DB, ids ...int64) {
	t.Helper()
	games := NewGameRepo(db)
	for _, id := range ids {
		require.NoError(t, games.UpsertGame(context.Background(), &models.Game{ID: id, Name: fmt.Sprintf("Game %d", id)}))
	}
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }
