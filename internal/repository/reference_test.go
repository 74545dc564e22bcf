package repository

import (
	"context"
	"testing"

	"questlog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	refs := NewReferenceRepo(db)
	ctx := context.Background()

	first, err := refs.GetOrCreateGenre(ctx, models.Genre{ID: 12, Name: "Role-playing (RPG)"})
	require.NoError(t, err)

	second, err := refs.GetOrCreateGenre(ctx, models.Genre{ID: 12, Name: "Renamed"})
	require.NoError(t, err)

	assert.Equal(t, *first, *second)
	assert.Equal(t, "Role-playing (RPG)", second.Name)

	var count int64
	require.NoError(t, db.Model(&models.Genre{}).Where("id = ?", 12).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetOrCreateEveryKind(t *testing.T) {
	db := newTestDB(t)
	refs := NewReferenceRepo(db)
	ctx := context.Background()

	c, err := refs.GetOrCreateCompany(ctx, models.Company{ID: 70, Name: "Nintendo"})
	require.NoError(t, err)
	assert.Equal(t, "Nintendo", c.Name)

	p, err := refs.GetOrCreatePlatform(ctx, models.Platform{ID: 130, Name: "Nintendo Switch"})
	require.NoError(t, err)
	assert.Equal(t, int64(130), p.ID)

	m, err := refs.GetOrCreateGameMode(ctx, models.GameMode{ID: 1, Name: "Single player"})
	require.NoError(t, err)
	assert.Equal(t, "Single player", m.Name)

	pp, err := refs.GetOrCreatePerspective(ctx, models.PlayerPerspective{ID: 2, Name: "Third person"})
	require.NoError(t, err)
	assert.Equal(t, "Third person", pp.Name)

	th, err := refs.GetOrCreateTheme(ctx, models.Theme{ID: 17, Name: "Fantasy"})
	require.NoError(t, err)
	assert.Equal(t, "Fantasy", th.Name)

	f, err := refs.GetOrCreateFranchise(ctx, models.Franchise{ID: 596, Name: "The Legend of Zelda"})
	require.NoError(t, err)
	assert.Equal(t, "The Legend of Zelda", f.Name)

	var platforms int64
	require.NoError(t, refs.db.Model(&models.Platform{}).Count(&platforms).Error)
	assert.Equal(t, int64(1), platforms)
}

func TestGetOrCreateRejectsInvalidID(t *testing.T) {
	refs := NewReferenceRepo(newTestDB(t))

	_, err := refs.GetOrCreateTheme(context.Background(), models.Theme{ID: 0, Name: "Nameless"})
	assert.ErrorIs(t, err, models.ErrInvalidDocument)
}

func TestLinksAreInsertIfAbsent(t *testing.T) {
	db := newTestDB(t)
	seedGames(t, db, 1)
	refs := NewReferenceRepo(db)
	ctx := context.Background()

	_, err := refs.GetOrCreateGenre(ctx, models.Genre{ID: 5, Name: "Shooter"})
	require.NoError(t, err)
	require.NoError(t, refs.AddGenreToGame(ctx, 1, 5))
	require.NoError(t, refs.AddGenreToGame(ctx, 1, 5))

	var count int64
	require.NoError(t, db.Model(&models.GameGenre{}).Where("game_id = ?", 1).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAddCompanyToGameMergesRoles(t *testing.T) {
	db := newTestDB(t)
	seedGames(t, db, 1)
	refs := NewReferenceRepo(db)
	ctx := context.Background()

	_, err := refs.GetOrCreateCompany(ctx, models.Company{ID: 70, Name: "Nintendo"})
	require.NoError(t, err)

	require.NoError(t, refs.AddCompanyToGame(ctx, 1, 70, true, false))
	require.NoError(t, refs.AddCompanyToGame(ctx, 1, 70, false, true))
	require.NoError(t, refs.AddCompanyToGame(ctx, 1, 70, false, false))

	var rows []models.InvolvedCompanyRow
	require.NoError(t, db.Where("game_id = ?", 1).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Developer)
	assert.True(t, rows[0].Publisher)
}

func TestLinkToUnknownGameFails(t *testing.T) {
	db := newTestDB(t)
	refs := NewReferenceRepo(db)
	ctx := context.Background()

	_, err := refs.GetOrCreateTheme(ctx, models.Theme{ID: 1, Name: "Action"})
	require.NoError(t, err)
	assert.Error(t, refs.AddThemeToGame(ctx, 404, 1))
}
