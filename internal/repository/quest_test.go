package repository

import (
	"context"
	"testing"
	"time"

	"questlog/internal/models"
	"questlog/internal/ranking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newQuestRepo(t *testing.T, games ...int64) (QuestRepository, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	seedGames(t, db, games...)
	return NewQuestRepository(db), db
}

func track(t *testing.T, repo QuestRepository, status models.Status, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		_, err := repo.Create(context.Background(), id, status)
		require.NoError(t, err)
	}
}

// priorities maps game id to stored priority; nil priorities map to 0.
func priorities(t *testing.T, repo QuestRepository, status models.Status) map[int64]int {
	t.Helper()
	list, err := repo.ListByStatus(context.Background(), status)
	require.NoError(t, err)
	out := make(map[int64]int, len(list))
	for _, q := range list {
		if q.Priority == nil {
			out[q.GameID] = 0
			continue
		}
		out[q.GameID] = *q.Priority
	}
	return out
}

func order(t *testing.T, repo QuestRepository, status models.Status) []int64 {
	t.Helper()
	list, err := repo.ListByStatus(context.Background(), status)
	require.NoError(t, err)
	ids := make([]int64, 0, len(list))
	for _, q := range list {
		ids = append(ids, q.GameID)
	}
	return ids
}

func assertDense(t *testing.T, repo QuestRepository) {
	t.Helper()
	for _, st := range models.Statuses {
		list, err := repo.ListByStatus(context.Background(), st)
		require.NoError(t, err)
		items := make([]ranking.Item, 0, len(list))
		for _, q := range list {
			items = append(items, ranking.Item{ID: q.GameID, Priority: q.Priority})
			if !st.Ranked() {
				assert.Nil(t, q.Priority, "game %d in %s", q.GameID, st)
			}
		}
		if st.Ranked() {
			assert.True(t, ranking.Dense(items), "bucket %s is not densely ranked: %v", st, priorities(t, repo, st))
		}
	}
}

func TestCreateAppendsToBucket(t *testing.T) {
	repo, _ := newQuestRepo(t, 1, 2, 3, 4)
	ctx := context.Background()

	track(t, repo, models.StatusBacklog, 1, 2, 3)
	assert.Equal(t, map[int64]int{1: 1, 2: 2, 3: 3}, priorities(t, repo, models.StatusBacklog))

	q, err := repo.Create(ctx, 4, models.StatusUndiscovered)
	require.NoError(t, err)
	assert.Nil(t, q.Priority)
	assert.Equal(t, models.StatusUndiscovered, q.Status)
	assert.False(t, q.DateAdded.IsZero())
}

func TestCreateRejectsDuplicatesAndUnknownGames(t *testing.T) {
	repo, _ := newQuestRepo(t, 1)
	ctx := context.Background()

	track(t, repo, models.StatusOngoing, 1)

	_, err := repo.Create(ctx, 1, models.StatusBacklog)
	assert.ErrorIs(t, err, models.ErrAlreadyTracked)

	_, err = repo.Create(ctx, 99, models.StatusBacklog)
	assert.ErrorIs(t, err, models.ErrGameNotFound)
}

func TestGetUnknownQuest(t *testing.T) {
	repo, _ := newQuestRepo(t)

	_, err := repo.Get(context.Background(), 42)
	assert.ErrorIs(t, err, models.ErrQuestNotFound)

	exists, err := repo.Exists(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestReorderScenario(t *testing.T) {
	const a, b, c = 10, 20, 30
	repo, _ := newQuestRepo(t, a, b, c)
	track(t, repo, models.StatusBacklog, a, b, c)

	require.NoError(t, repo.Reorder(context.Background(), 0, 2, models.StatusBacklog))

	assert.Equal(t, []int64{b, c, a}, order(t, repo, models.StatusBacklog))
	assert.Equal(t, map[int64]int{b: 1, c: 2, a: 3}, priorities(t, repo, models.StatusBacklog))
}

func TestReorderRejectsBadInput(t *testing.T) {
	repo, _ := newQuestRepo(t, 1, 2)
	track(t, repo, models.StatusBacklog, 1, 2)
	ctx := context.Background()

	assert.ErrorIs(t, repo.Reorder(ctx, 0, 2, models.StatusBacklog), models.ErrIndexOutOfRange)
	assert.ErrorIs(t, repo.Reorder(ctx, -1, 0, models.StatusBacklog), models.ErrIndexOutOfRange)
	assert.ErrorIs(t, repo.Reorder(ctx, 0, 0, models.StatusUndiscovered), models.ErrUnrankedBucket)
	assert.Equal(t, []int64{1, 2}, order(t, repo, models.StatusBacklog))
}

func TestMoveAppendScenario(t *testing.T) {
	const x, y = 100, 200
	repo, db := newQuestRepo(t, 1, 2, 3, x, y)
	ctx := context.Background()

	track(t, repo, models.StatusOngoing, 1, 2, 3)
	track(t, repo, models.StatusBacklog, x, y)

	var before []models.QuestGame
	require.NoError(t, db.Where("game_id IN ?", []int64{1, 2, 3}).Order("game_id").Find(&before).Error)

	require.NoError(t, repo.Move(ctx, x, models.StatusBacklog, models.StatusOngoing))

	assert.Equal(t, map[int64]int{y: 1}, priorities(t, repo, models.StatusBacklog))
	assert.Equal(t, map[int64]int{1: 1, 2: 2, 3: 3, x: 4}, priorities(t, repo, models.StatusOngoing))

	var after []models.QuestGame
	require.NoError(t, db.Where("game_id IN ?", []int64{1, 2, 3}).Order("game_id").Find(&after).Error)
	for i := range before {
		assert.True(t, before[i].UpdatedAt.Equal(after[i].UpdatedAt), "game %d was rewritten", before[i].GameID)
	}
}

func TestMoveToUndiscoveredClearsPriority(t *testing.T) {
	repo, _ := newQuestRepo(t, 1, 2, 3)
	ctx := context.Background()
	track(t, repo, models.StatusCompleted, 1, 2, 3)

	require.NoError(t, repo.Move(ctx, 1, models.StatusCompleted, models.StatusUndiscovered))

	q, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, q.Priority)
	assert.Equal(t, models.StatusUndiscovered, q.Status)
	assert.Equal(t, map[int64]int{2: 1, 3: 2}, priorities(t, repo, models.StatusCompleted))
}

func TestMoveFromUndiscoveredAppends(t *testing.T) {
	repo, _ := newQuestRepo(t, 1, 2, 3)
	ctx := context.Background()
	track(t, repo, models.StatusOngoing, 1, 2)
	track(t, repo, models.StatusUndiscovered, 3)

	require.NoError(t, repo.Move(ctx, 3, models.StatusUndiscovered, models.StatusOngoing))

	assert.Equal(t, map[int64]int{1: 1, 2: 2, 3: 3}, priorities(t, repo, models.StatusOngoing))
}

func TestMoveRejectsStaleSource(t *testing.T) {
	repo, _ := newQuestRepo(t, 1)
	ctx := context.Background()
	track(t, repo, models.StatusBacklog, 1)

	err := repo.Move(ctx, 1, models.StatusOngoing, models.StatusCompleted)
	assert.ErrorIs(t, err, models.ErrStatusMismatch)

	err = repo.Move(ctx, 7, models.StatusOngoing, models.StatusCompleted)
	assert.ErrorIs(t, err, models.ErrQuestNotFound)
}

func TestComplete(t *testing.T) {
	repo, _ := newQuestRepo(t, 1, 2, 3)
	ctx := context.Background()
	track(t, repo, models.StatusOngoing, 1, 2)
	track(t, repo, models.StatusCompleted, 3)

	done := time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Complete(ctx, 1, done))

	q, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, q.Status)
	require.NotNil(t, q.CompletionDate)
	assert.True(t, done.Equal(*q.CompletionDate))
	assert.Equal(t, map[int64]int{3: 1, 1: 2}, priorities(t, repo, models.StatusCompleted))
	assert.Equal(t, map[int64]int{2: 1}, priorities(t, repo, models.StatusOngoing))

	later := done.AddDate(0, 0, 1)
	require.NoError(t, repo.Complete(ctx, 1, later))
	q, err = repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, later.Equal(*q.CompletionDate))
	assert.Equal(t, map[int64]int{3: 1, 1: 2}, priorities(t, repo, models.StatusCompleted))

	assert.ErrorIs(t, repo.Complete(ctx, 9, done), models.ErrQuestNotFound)
}

func TestCompleteIsAtomic(t *testing.T) {
	repo, db := newQuestRepo(t, 1)
	ctx := context.Background()
	track(t, repo, models.StatusOngoing, 1)

	require.NoError(t, db.Exec(`
		CREATE TRIGGER reject_completion BEFORE UPDATE OF completion_date ON quest_games
		BEGIN SELECT RAISE(ABORT, 'completion rejected'); END`).Error)

	require.Error(t, repo.Complete(ctx, 1, time.Now()))

	q, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOngoing, q.Status)
	assert.Nil(t, q.CompletionDate)
	assert.Equal(t, map[int64]int{1: 1}, priorities(t, repo, models.StatusOngoing))
}

func TestDenseRankingSurvivesMixedOperations(t *testing.T) {
	ids := []int64{1, 2, 3, 4, 5, 6, 7, 8}
	repo, _ := newQuestRepo(t, ids...)
	ctx := context.Background()

	track(t, repo, models.StatusBacklog, 1, 2, 3, 4)
	track(t, repo, models.StatusOngoing, 5, 6)
	track(t, repo, models.StatusUndiscovered, 7, 8)

	steps := []func() error{
		func() error { return repo.Move(ctx, 2, models.StatusBacklog, models.StatusOngoing) },
		func() error { return repo.Reorder(ctx, 2, 0, models.StatusOngoing) },
		func() error { return repo.Move(ctx, 7, models.StatusUndiscovered, models.StatusBacklog) },
		func() error { return repo.Move(ctx, 5, models.StatusOngoing, models.StatusUndiscovered) },
		func() error { return repo.Reorder(ctx, 0, 3, models.StatusBacklog) },
		func() error { return repo.Move(ctx, 3, models.StatusBacklog, models.StatusDropped) },
		func() error { return repo.Move(ctx, 8, models.StatusUndiscovered, models.StatusDropped) },
		func() error { return repo.Move(ctx, 3, models.StatusDropped, models.StatusOnHold) },
	}
	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)
		assertDense(t, repo)
	}
}

func TestMoveRepairsGapsInSource(t *testing.T) {
	repo, db := newQuestRepo(t, 1, 2, 3, 4)
	ctx := context.Background()
	track(t, repo, models.StatusBacklog, 1, 2, 3, 4)

	// simulate a damaged bucket: 1, 5, NULL, 9
	require.NoError(t, db.Model(&models.QuestGame{}).Where("game_id = ?", 2).Update("priority", 5).Error)
	require.NoError(t, db.Model(&models.QuestGame{}).Where("game_id = ?", 3).Update("priority", nil).Error)
	require.NoError(t, db.Model(&models.QuestGame{}).Where("game_id = ?", 4).Update("priority", 9).Error)

	require.NoError(t, repo.Move(ctx, 1, models.StatusBacklog, models.StatusOngoing))

	assert.Equal(t, []int64{2, 4, 3}, order(t, repo, models.StatusBacklog))
	assert.Equal(t, map[int64]int{2: 1, 4: 2, 3: 3}, priorities(t, repo, models.StatusBacklog))
}

func TestApplyPrioritiesBatch(t *testing.T) {
	repo, _ := newQuestRepo(t, 1, 2, 3)
	ctx := context.Background()
	track(t, repo, models.StatusBacklog, 1, 2, 3)

	err := repo.ApplyPriorities(ctx, []models.PriorityUpdate{
		{GameID: 1, Priority: intPtr(3)},
		{GameID: 2, Priority: intPtr(1)},
		{GameID: 3, Priority: intPtr(2)},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 1}, order(t, repo, models.StatusBacklog))

	require.NoError(t, repo.ApplyPriorities(ctx, []models.PriorityUpdate{{GameID: 1, Priority: nil}}))
	q, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, q.Priority)

	assert.NoError(t, repo.ApplyPriorities(ctx, nil))
}

func TestApplyPrioritiesIsAtomic(t *testing.T) {
	repo, db := newQuestRepo(t, 1, 2, 3)
	ctx := context.Background()
	track(t, repo, models.StatusBacklog, 1, 2, 3)

	require.NoError(t, db.Exec(`
		CREATE TRIGGER reject_priority BEFORE UPDATE OF priority ON quest_games
		WHEN NEW.game_id = 3
		BEGIN SELECT RAISE(ABORT, 'priority rejected'); END`).Error)

	err := repo.ApplyPriorities(ctx, []models.PriorityUpdate{
		{GameID: 1, Priority: intPtr(3)},
		{GameID: 2, Priority: intPtr(1)},
		{GameID: 3, Priority: intPtr(2)},
	})
	require.Error(t, err)

	assert.Equal(t, map[int64]int{1: 1, 2: 2, 3: 3}, priorities(t, repo, models.StatusBacklog))
}

func TestApplyPrioritiesUnknownGameRollsBack(t *testing.T) {
	repo, _ := newQuestRepo(t, 1, 2)
	ctx := context.Background()
	track(t, repo, models.StatusBacklog, 1, 2)

	err := repo.ApplyPriorities(ctx, []models.PriorityUpdate{
		{GameID: 1, Priority: intPtr(2)},
		{GameID: 99, Priority: intPtr(1)},
	})
	assert.ErrorIs(t, err, models.ErrQuestNotFound)
	assert.Equal(t, map[int64]int{1: 1, 2: 2}, priorities(t, repo, models.StatusBacklog))
}

func TestSetters(t *testing.T) {
	repo, _ := newQuestRepo(t, 1)
	ctx := context.Background()
	track(t, repo, models.StatusOngoing, 1)

	require.NoError(t, repo.SetRating(ctx, 1, intPtr(9)))
	assert.ErrorIs(t, repo.SetRating(ctx, 1, intPtr(11)), models.ErrInvalidRating)
	assert.ErrorIs(t, repo.SetRating(ctx, 1, intPtr(0)), models.ErrInvalidRating)

	require.NoError(t, repo.SetNotes(ctx, 1, strPtr("beat the first boss")))

	q, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, q.PersonalRating)
	assert.Equal(t, 9, *q.PersonalRating)
	require.NotNil(t, q.Notes)
	assert.Equal(t, "beat the first boss", *q.Notes)

	require.NoError(t, repo.SetRating(ctx, 1, nil))
	q, err = repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, q.PersonalRating)

	assert.ErrorIs(t, repo.SetNotes(ctx, 2, strPtr("nope")), models.ErrQuestNotFound)
}

func TestSetSelectedPlatform(t *testing.T) {
	repo, db := newQuestRepo(t, 1)
	ctx := context.Background()
	track(t, repo, models.StatusOngoing, 1)

	_, err := NewReferenceRepo(db).GetOrCreatePlatform(ctx, models.Platform{ID: 6, Name: "PC (Microsoft Windows)"})
	require.NoError(t, err)

	platform := int64(6)
	require.NoError(t, repo.SetSelectedPlatform(ctx, 1, &platform))

	q, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, q.SelectedPlatformID)
	assert.Equal(t, int64(6), *q.SelectedPlatformID)

	unknown := int64(999)
	assert.Error(t, repo.SetSelectedPlatform(ctx, 1, &unknown))
}

func TestCountByStatus(t *testing.T) {
	repo, _ := newQuestRepo(t, 1, 2, 3)
	track(t, repo, models.StatusBacklog, 1, 2)
	track(t, repo, models.StatusDropped, 3)

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[models.StatusBacklog])
	assert.Equal(t, int64(1), counts[models.StatusDropped])
	assert.Equal(t, int64(0), counts[models.StatusOngoing])
	assert.Len(t, counts, len(models.Statuses))
}
