package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"questlog/internal/models"
	"questlog/internal/ranking"

	"gorm.io/gorm"
)

// QuestRepository owns the quest_games table and keeps every ranked status
// bucket densely ranked 1..N.
type QuestRepository interface {
	Create(ctx context.Context, gameID int64, status models.Status) (*models.QuestState, error)
	Get(ctx context.Context, gameID int64) (*models.QuestState, error)
	Exists(ctx context.Context, gameID int64) (bool, error)
	ListByStatus(ctx context.Context, status models.Status) ([]models.QuestState, error)
	CountByStatus(ctx context.Context) (map[models.Status]int64, error)
	Move(ctx context.Context, gameID int64, from, to models.Status) error
	Complete(ctx context.Context, gameID int64, date time.Time) error
	Reorder(ctx context.Context, fromIndex, toIndex int, status models.Status) error
	ApplyPriorities(ctx context.Context, updates []models.PriorityUpdate) error
	SetRating(ctx context.Context, gameID int64, rating *int) error
	SetNotes(ctx context.Context, gameID int64, notes *string) error
	SetSelectedPlatform(ctx context.Context, gameID int64, platformID *int64) error
}

type questRepository struct {
	db *gorm.DB
}

func NewQuestRepository(db *gorm.DB) QuestRepository {
	return &questRepository{db: db}
}

type questRow struct {
	models.QuestGame
	Status string
}

func (r questRow) state() models.QuestState {
	return models.QuestState{
		GameID:             r.GameID,
		Status:             models.Status(r.Status),
		PersonalRating:     r.PersonalRating,
		CompletionDate:     r.CompletionDate,
		Notes:              r.Notes,
		DateAdded:          r.DateAdded,
		Priority:           r.Priority,
		SelectedPlatformID: r.SelectedPlatformID,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

const questSelect = `
SELECT q.game_id, q.status_id, q.personal_rating, q.completion_date, q.notes, q.date_added,
       q.priority, q.selected_platform_id, q.created_at, q.updated_at, s.name AS status
FROM quest_games q
JOIN quest_game_status s ON s.id = q.status_id`

func statusID(ctx context.Context, db *gorm.DB, status models.Status) (int64, error) {
	var ids []int64
	if err := db.WithContext(ctx).Model(&models.QuestGameStatus{}).
		Where("name = ?", string(status)).
		Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("resolve status %q: %w", status, err)
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("resolve status %q: %w", status, models.ErrUnknownStatus)
	}
	return ids[0], nil
}

func getState(ctx context.Context, db *gorm.DB, gameID int64) (*models.QuestState, error) {
	var rows []questRow
	if err := db.WithContext(ctx).Raw(questSelect+" WHERE q.game_id = ?", gameID).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("get quest %d: %w", gameID, err)
	}
	if len(rows) == 0 {
		return nil, models.ErrQuestNotFound
	}
	state := rows[0].state()
	return &state, nil
}

// bucket loads the members of a status with their stored priorities.
func bucket(ctx context.Context, db *gorm.DB, status models.Status) ([]ranking.Item, error) {
	var items []ranking.Item
	err := db.WithContext(ctx).Raw(`
		SELECT q.game_id AS id, q.priority
		FROM quest_games q
		JOIN quest_game_status s ON s.id = q.status_id
		WHERE s.name = ?`, string(status)).Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("load %s bucket: %w", status, err)
	}
	return items, nil
}

// Create starts tracking a game, appended to the end of its bucket.
func (r *questRepository) Create(ctx context.Context, gameID int64, status models.Status) (*models.QuestState, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var games int64
		if err := tx.Model(&models.Game{}).Where("id = ?", gameID).Count(&games).Error; err != nil {
			return fmt.Errorf("check game %d: %w", gameID, err)
		}
		if games == 0 {
			return models.ErrGameNotFound
		}

		var tracked int64
		if err := tx.Model(&models.QuestGame{}).Where("game_id = ?", gameID).Count(&tracked).Error; err != nil {
			return fmt.Errorf("check quest %d: %w", gameID, err)
		}
		if tracked > 0 {
			return models.ErrAlreadyTracked
		}

		sid, err := statusID(ctx, tx, status)
		if err != nil {
			return err
		}

		var priority *int
		if status.Ranked() {
			members, err := bucket(ctx, tx, status)
			if err != nil {
				return err
			}
			p := len(members) + 1
			priority = &p
		}

		now := time.Now().UTC()
		row := models.QuestGame{
			GameID:    gameID,
			StatusID:  sid,
			DateAdded: now,
			Priority:  priority,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create quest %d: %w", gameID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, gameID)
}

func (r *questRepository) Get(ctx context.Context, gameID int64) (*models.QuestState, error) {
	return getState(ctx, r.db, gameID)
}

func (r *questRepository) Exists(ctx context.Context, gameID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.QuestGame{}).Where("game_id = ?", gameID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check quest %d: %w", gameID, err)
	}
	return count > 0, nil
}

// ListByStatus returns a bucket in rank order; unranked members come last.
func (r *questRepository) ListByStatus(ctx context.Context, status models.Status) ([]models.QuestState, error) {
	var rows []questRow
	err := r.db.WithContext(ctx).
		Raw(questSelect+" WHERE s.name = ? ORDER BY q.priority IS NULL, q.priority, q.game_id", string(status)).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", status, err)
	}
	out := make([]models.QuestState, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.state())
	}
	return out, nil
}

func (r *questRepository) CountByStatus(ctx context.Context) (map[models.Status]int64, error) {
	var rows []struct {
		Name  string
		Total int64
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT s.name, COUNT(q.game_id) AS total
		FROM quest_game_status s
		LEFT JOIN quest_games q ON q.status_id = s.id
		GROUP BY s.id, s.name`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	counts := make(map[models.Status]int64, len(rows))
	for _, row := range rows {
		counts[models.Status(row.Name)] = row.Total
	}
	return counts, nil
}

// Move transitions a game between buckets in one transaction. The destination's
// members keep their order and are re-ranked 1..N with the game appended at N+1;
// a move to undiscovered clears the priority instead. The source bucket is then
// re-ranked from 1 with unranked members last. Only changed rows are written.
func (r *questRepository) Move(ctx context.Context, gameID int64, from, to models.Status) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := getState(ctx, tx, gameID)
		if err != nil {
			return err
		}
		if current.Status != from {
			return fmt.Errorf("move %d from %s (stored %s): %w", gameID, from, current.Status, models.ErrStatusMismatch)
		}
		return move(ctx, tx, gameID, from, to)
	})
}

// Complete stamps the completion date and moves the game to completed from
// whatever bucket it is in, in one transaction.
func (r *questRepository) Complete(ctx context.Context, gameID int64, date time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := getState(ctx, tx, gameID)
		if err != nil {
			return err
		}
		if err := move(ctx, tx, gameID, current.Status, models.StatusCompleted); err != nil {
			return err
		}
		res := tx.Model(&models.QuestGame{}).
			Where("game_id = ?", gameID).
			Updates(map[string]any{"completion_date": date.UTC(), "updated_at": time.Now().UTC()})
		if res.Error != nil {
			return fmt.Errorf("set completion_date for %d: %w", gameID, res.Error)
		}
		return nil
	})
}

func move(ctx context.Context, tx *gorm.DB, gameID int64, from, to models.Status) error {
	if from == to {
		return nil
	}

	toID, err := statusID(ctx, tx, to)
	if err != nil {
		return err
	}

	var updates []models.PriorityUpdate
	if to.Ranked() {
		dest, err := bucket(ctx, tx, to)
		if err != nil {
			return err
		}
		updates = ranking.AppendTo(dest, ranking.Item{ID: gameID})
	}

	now := time.Now().UTC()
	res := tx.Model(&models.QuestGame{}).
		Where("game_id = ?", gameID).
		Updates(map[string]any{"status_id": toID, "priority": nil, "updated_at": now})
	if res.Error != nil {
		return fmt.Errorf("move %d to %s: %w", gameID, to, res.Error)
	}

	if from.Ranked() {
		src, err := bucket(ctx, tx, from)
		if err != nil {
			return err
		}
		updates = append(updates, ranking.Rank(ranking.Sorted(ranking.Without(src, gameID)))...)
	}

	return applyPriorities(ctx, tx, updates, now)
}

// Reorder moves the member at fromIndex of the rank-ordered bucket to toIndex and
// re-ranks the whole bucket.
func (r *questRepository) Reorder(ctx context.Context, fromIndex, toIndex int, status models.Status) error {
	if !status.Ranked() {
		return models.ErrUnrankedBucket
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		members, err := bucket(ctx, tx, status)
		if err != nil {
			return err
		}
		spliced, err := ranking.Splice(ranking.Sorted(members), fromIndex, toIndex)
		if err != nil {
			return fmt.Errorf("reorder %s %d -> %d: %w", status, fromIndex, toIndex, err)
		}
		return applyPriorities(ctx, tx, ranking.Rank(spliced), time.Now().UTC())
	})
}

// ApplyPriorities persists the updates atomically.
func (r *questRepository) ApplyPriorities(ctx context.Context, updates []models.PriorityUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return applyPriorities(ctx, tx, updates, time.Now().UTC())
	})
}

// applyPriorities writes a single row directly and several rows with one
// UPDATE ... SET priority = CASE game_id WHEN ? THEN ? ... END.
func applyPriorities(ctx context.Context, tx *gorm.DB, updates []models.PriorityUpdate, now time.Time) error {
	switch len(updates) {
	case 0:
		return nil
	case 1:
		u := updates[0]
		res := tx.WithContext(ctx).Model(&models.QuestGame{}).
			Where("game_id = ?", u.GameID).
			Updates(map[string]any{"priority": u.Priority, "updated_at": now})
		if res.Error != nil {
			return fmt.Errorf("apply priority to %d: %w", u.GameID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("apply priority to %d: %w", u.GameID, models.ErrQuestNotFound)
		}
		return nil
	}

	var sb strings.Builder
	args := make([]any, 0, len(updates)*2)
	ids := make([]int64, 0, len(updates))
	sb.WriteString("CASE game_id")
	for _, u := range updates {
		sb.WriteString(" WHEN ? THEN ?")
		args = append(args, u.GameID, u.Priority)
		ids = append(ids, u.GameID)
	}
	sb.WriteString(" END")

	res := tx.WithContext(ctx).Model(&models.QuestGame{}).
		Where("game_id IN ?", ids).
		Updates(map[string]any{"priority": gorm.Expr(sb.String(), args...), "updated_at": now})
	if res.Error != nil {
		return fmt.Errorf("apply %d priorities: %w", len(updates), res.Error)
	}
	if res.RowsAffected != int64(len(distinct(ids))) {
		return fmt.Errorf("apply %d priorities: %w", len(updates), models.ErrQuestNotFound)
	}
	return nil
}

func distinct(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (r *questRepository) SetRating(ctx context.Context, gameID int64, rating *int) error {
	if rating != nil && (*rating < 1 || *rating > 10) {
		return models.ErrInvalidRating
	}
	return r.updateColumn(ctx, gameID, "personal_rating", rating)
}

func (r *questRepository) SetNotes(ctx context.Context, gameID int64, notes *string) error {
	return r.updateColumn(ctx, gameID, "notes", notes)
}

func (r *questRepository) SetSelectedPlatform(ctx context.Context, gameID int64, platformID *int64) error {
	return r.updateColumn(ctx, gameID, "selected_platform_id", platformID)
}

func (r *questRepository) updateColumn(ctx context.Context, gameID int64, column string, value any) error {
	res := r.db.WithContext(ctx).Model(&models.QuestGame{}).
		Where("game_id = ?", gameID).
		Updates(map[string]any{column: value, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return fmt.Errorf("set %s for %d: %w", column, gameID, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrQuestNotFound
	}
	return nil
}
