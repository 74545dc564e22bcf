package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"questlog/internal/models"
	"questlog/internal/repository"
)

// Ingester stores game metadata locally.
type Ingester interface {
	Ingest(ctx context.Context, doc *models.GameDocument) (*models.GameDocument, error)
	EnsureGame(ctx context.Context, id int64) error
}

// BatchFetcher fetches many games from the metadata source concurrently. Games the
// source does not know are reported in the error map.
type BatchFetcher interface {
	FetchAll(ctx context.Context, ids []int64) ([]*models.GameDocument, map[int64]error)
}

type ImportReport struct {
	Imported []int64          `json:"imported"`
	Failed   map[int64]string `json:"failed,omitempty"`
}

// LibraryService implements the user's library actions. Every mutation updates the
// in-memory board first, then persists; if persistence fails the touched buckets
// are reloaded from storage and the error is returned.
type LibraryService interface {
	Discover(ctx context.Context, id int64, status models.Status) (*models.QuestState, error)
	ChangeStatus(ctx context.Context, id int64, to models.Status) error
	Remove(ctx context.Context, id int64) error
	Reorder(ctx context.Context, status models.Status, fromIndex, toIndex int) error
	Arrange(ctx context.Context, status models.Status, orderedIDs []int64) error
	Board(ctx context.Context, status models.Status) ([]models.LibraryEntry, error)
	Summary(ctx context.Context) (map[models.Status]int64, error)
	Rate(ctx context.Context, id int64, rating *int) error
	Annotate(ctx context.Context, id int64, notes *string) error
	Complete(ctx context.Context, id int64, date *time.Time) error
	SelectPlatform(ctx context.Context, id int64, platformID *int64) error
	Search(ctx context.Context, query string) ([]models.GameDocument, error)
	Import(ctx context.Context, ids []int64, status models.Status) (*ImportReport, error)
}

type libraryService struct {
	quests   repository.QuestRepository
	games    GameService
	ingester Ingester
	source   MetadataSource
	fetcher  BatchFetcher
	logger   *slog.Logger

	mu     sync.Mutex
	boards map[models.Status][]models.QuestState
}

func NewLibraryService(quests repository.QuestRepository, games GameService, ingester Ingester, source MetadataSource, fetcher BatchFetcher, logger *slog.Logger) LibraryService {
	return &libraryService{
		quests:   quests,
		games:    games,
		ingester: ingester,
		source:   source,
		fetcher:  fetcher,
		logger:   logger,
		boards:   make(map[models.Status][]models.QuestState),
	}
}

func (s *libraryService) Discover(ctx context.Context, id int64, status models.Status) (*models.QuestState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ingester.EnsureGame(ctx, id); err != nil {
		return nil, err
	}
	return s.discoverLocked(ctx, id, status)
}

func (s *libraryService) discoverLocked(ctx context.Context, id int64, status models.Status) (*models.QuestState, error) {
	exists, err := s.quests.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if exists {
		current, err := s.quests.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.Status != status {
			if err := s.moveLocked(ctx, *current, status); err != nil {
				return nil, err
			}
		}
		return s.quests.Get(ctx, id)
	}

	s.placeLocal(models.QuestState{GameID: id, Status: status, DateAdded: time.Now().UTC()})
	created, err := s.quests.Create(ctx, id, status)
	if err != nil {
		s.reload(ctx, status)
		return nil, err
	}
	s.replaceLocal(*created)
	s.logger.Info("Game discovered", "game_id", id, "status", status)
	return created, nil
}

func (s *libraryService) ChangeStatus(ctx context.Context, id int64, to models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.quests.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == to {
		return nil
	}
	return s.moveLocked(ctx, *current, to)
}

// Remove takes a game out of every ranked bucket. The quest row stays.
func (s *libraryService) Remove(ctx context.Context, id int64) error {
	return s.ChangeStatus(ctx, id, models.StatusUndiscovered)
}

func (s *libraryService) moveLocked(ctx context.Context, current models.QuestState, to models.Status) error {
	from := current.Status
	s.moveLocal(current, to)
	if err := s.quests.Move(ctx, current.GameID, from, to); err != nil {
		s.reload(ctx, from, to)
		return err
	}
	s.logger.Info("Game moved", "game_id", current.GameID, "from", from, "to", to)
	return nil
}

func (s *libraryService) Reorder(ctx context.Context, status models.Status, fromIndex, toIndex int) error {
	if !status.Ranked() {
		return models.ErrUnrankedBucket
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx, status); err != nil {
		return err
	}
	board := s.boards[status]
	if fromIndex < 0 || fromIndex >= len(board) || toIndex < 0 || toIndex >= len(board) {
		return models.ErrIndexOutOfRange
	}
	s.boards[status] = rerank(splice(board, fromIndex, toIndex))

	if err := s.quests.Reorder(ctx, fromIndex, toIndex, status); err != nil {
		s.reload(ctx, status)
		return err
	}
	return nil
}

// Arrange sets the full order of a bucket. orderedIDs must list every member once.
func (s *libraryService) Arrange(ctx context.Context, status models.Status, orderedIDs []int64) error {
	if !status.Ranked() {
		return models.ErrUnrankedBucket
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	members, err := s.quests.ListByStatus(ctx, status)
	if err != nil {
		return err
	}
	byID := make(map[int64]models.QuestState, len(members))
	for _, m := range members {
		byID[m.GameID] = m
	}
	if len(orderedIDs) != len(members) {
		return fmt.Errorf("arrange %s: got %d ids for %d members: %w", status, len(orderedIDs), len(members), models.ErrIncompleteOrder)
	}

	ordered := make([]models.QuestState, 0, len(orderedIDs))
	var updates []models.PriorityUpdate
	for i, id := range orderedIDs {
		m, ok := byID[id]
		if !ok {
			return fmt.Errorf("arrange %s: game %d: %w", status, id, models.ErrIncompleteOrder)
		}
		delete(byID, id)
		rank := i + 1
		if m.Priority == nil || *m.Priority != rank {
			updates = append(updates, models.PriorityUpdate{GameID: id, Priority: &rank})
		}
		ordered = append(ordered, m)
	}

	s.boards[status] = rerank(ordered)
	if err := s.quests.ApplyPriorities(ctx, updates); err != nil {
		s.reload(ctx, status)
		return err
	}
	return nil
}

func (s *libraryService) Board(ctx context.Context, status models.Status) ([]models.LibraryEntry, error) {
	s.mu.Lock()
	if err := s.ensureLoaded(ctx, status); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	board := slices.Clone(s.boards[status])
	s.mu.Unlock()

	ids := make([]int64, 0, len(board))
	for _, q := range board {
		ids = append(ids, q.GameID)
	}
	docs, err := s.games.ListMinimal(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*models.MinimalGameDocument, len(docs))
	for i := range docs {
		byID[docs[i].ID] = &docs[i]
	}

	entries := make([]models.LibraryEntry, 0, len(board))
	for _, q := range board {
		entries = append(entries, models.LibraryEntry{Quest: q, Game: byID[q.GameID]})
	}
	return entries, nil
}

func (s *libraryService) Summary(ctx context.Context) (map[models.Status]int64, error) {
	return s.quests.CountByStatus(ctx)
}

func (s *libraryService) Rate(ctx context.Context, id int64, rating *int) error {
	if rating != nil && (*rating < 1 || *rating > 10) {
		return models.ErrInvalidRating
	}
	return s.updateField(ctx, id, func(q *models.QuestState) { q.PersonalRating = rating }, func() error {
		return s.quests.SetRating(ctx, id, rating)
	})
}

func (s *libraryService) Annotate(ctx context.Context, id int64, notes *string) error {
	return s.updateField(ctx, id, func(q *models.QuestState) { q.Notes = notes }, func() error {
		return s.quests.SetNotes(ctx, id, notes)
	})
}

func (s *libraryService) SelectPlatform(ctx context.Context, id int64, platformID *int64) error {
	return s.updateField(ctx, id, func(q *models.QuestState) { q.SelectedPlatformID = platformID }, func() error {
		return s.quests.SetSelectedPlatform(ctx, id, platformID)
	})
}

// Complete stamps the completion date, now when date is nil, and moves the game
// to completed. Both land in storage together or not at all.
func (s *libraryService) Complete(ctx context.Context, id int64, date *time.Time) error {
	stamp := time.Now().UTC()
	if date != nil {
		stamp = date.UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.quests.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Status != models.StatusCompleted {
		s.moveLocal(*current, models.StatusCompleted)
	}
	s.applyLocal(id, func(q *models.QuestState) { q.CompletionDate = &stamp })

	if err := s.quests.Complete(ctx, id, stamp); err != nil {
		s.reload(ctx, current.Status, models.StatusCompleted)
		return err
	}
	s.refreshLocal(ctx, id, models.StatusCompleted)
	s.logger.Info("Game completed", "game_id", id, "from", current.Status)
	return nil
}

func (s *libraryService) updateField(ctx context.Context, id int64, apply func(*models.QuestState), persist func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, found := s.applyLocal(id, apply)
	if err := persist(); err != nil {
		if found {
			s.reload(ctx, status)
		}
		return err
	}
	if found {
		s.refreshLocal(ctx, id, status)
	}
	return nil
}

func (s *libraryService) Search(ctx context.Context, query string) ([]models.GameDocument, error) {
	if s.source == nil {
		return nil, models.ErrNoSource
	}
	return s.source.Search(ctx, query)
}

// Import fetches the games concurrently, then ingests and discovers each one
// under the writer lock. Per-game failures are reported, not returned.
func (s *libraryService) Import(ctx context.Context, ids []int64, status models.Status) (*ImportReport, error) {
	if s.fetcher == nil {
		return nil, models.ErrNoSource
	}

	report := &ImportReport{Imported: []int64{}, Failed: map[int64]string{}}
	docs, fetchErrs := s.fetcher.FetchAll(ctx, ids)
	for id, err := range fetchErrs {
		report.Failed[id] = err.Error()
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.importOne(ctx, doc, status); err != nil {
			s.logger.Warn("Import failed", "game_id", doc.ID, "error", err)
			report.Failed[doc.ID] = err.Error()
			continue
		}
		report.Imported = append(report.Imported, doc.ID)
	}

	s.logger.Info("Import finished", "imported", len(report.Imported), "failed", len(report.Failed))
	return report, nil
}

func (s *libraryService) importOne(ctx context.Context, doc *models.GameDocument, status models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ingester.Ingest(ctx, doc); err != nil {
		return err
	}
	_, err := s.discoverLocked(ctx, doc.ID, status)
	return err
}

// ============================================
// OPTIMISTIC BOARD
// ============================================

func (s *libraryService) ensureLoaded(ctx context.Context, status models.Status) error {
	if _, ok := s.boards[status]; ok {
		return nil
	}
	members, err := s.quests.ListByStatus(ctx, status)
	if err != nil {
		return err
	}
	s.boards[status] = slices.Clone(members)
	return nil
}

// reload replaces the given buckets with storage's view. A bucket that cannot be
// read is dropped so the next Board call loads it again.
func (s *libraryService) reload(ctx context.Context, statuses ...models.Status) {
	for _, st := range statuses {
		members, err := s.quests.ListByStatus(ctx, st)
		if err != nil {
			s.logger.Error("Failed to reload bucket", "status", st, "error", err)
			delete(s.boards, st)
			continue
		}
		s.boards[st] = slices.Clone(members)
	}
}

// placeLocal appends a new member to its bucket if that bucket is loaded.
func (s *libraryService) placeLocal(q models.QuestState) {
	board, ok := s.boards[q.Status]
	if !ok {
		return
	}
	board = append(withoutState(board, q.GameID), q)
	if q.Status.Ranked() {
		board = rerank(board)
	} else {
		sortUnranked(board)
	}
	s.boards[q.Status] = board
}

func (s *libraryService) replaceLocal(q models.QuestState) {
	board, ok := s.boards[q.Status]
	if !ok {
		return
	}
	for i := range board {
		if board[i].GameID == q.GameID {
			board[i] = q
			return
		}
	}
}

// refreshLocal replaces a loaded board entry with the stored row so that
// storage-assigned columns such as updated_at are current.
func (s *libraryService) refreshLocal(ctx context.Context, id int64, status models.Status) {
	if _, ok := s.boards[status]; !ok {
		return
	}
	fresh, err := s.quests.Get(ctx, id)
	if err != nil {
		s.logger.Warn("Failed to refresh board entry", "game_id", id, "error", err)
		delete(s.boards, status)
		return
	}
	s.replaceLocal(*fresh)
}

func (s *libraryService) moveLocal(q models.QuestState, to models.Status) {
	if board, ok := s.boards[q.Status]; ok {
		board = withoutState(board, q.GameID)
		if q.Status.Ranked() {
			board = rerank(board)
		}
		s.boards[q.Status] = board
	}
	q.Status = to
	q.Priority = nil
	s.placeLocal(q)
}

func (s *libraryService) applyLocal(id int64, apply func(*models.QuestState)) (models.Status, bool) {
	for status, board := range s.boards {
		for i := range board {
			if board[i].GameID == id {
				apply(&board[i])
				return status, true
			}
		}
	}
	return "", false
}

func withoutState(board []models.QuestState, id int64) []models.QuestState {
	out := make([]models.QuestState, 0, len(board))
	for _, q := range board {
		if q.GameID != id {
			out = append(out, q)
		}
	}
	return out
}

// rerank assigns 1..N in slice order.
func rerank(board []models.QuestState) []models.QuestState {
	for i := range board {
		p := i + 1
		board[i].Priority = &p
	}
	return board
}

func splice(board []models.QuestState, from, to int) []models.QuestState {
	moved := board[from]
	out := slices.Delete(slices.Clone(board), from, from+1)
	return slices.Insert(out, to, moved)
}

func sortUnranked(board []models.QuestState) {
	for i := range board {
		board[i].Priority = nil
	}
	slices.SortFunc(board, func(a, b models.QuestState) int { return cmp.Compare(a.GameID, b.GameID) })
}
