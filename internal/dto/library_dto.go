package dto

import (
	"time"

	"questlog/internal/models"
)

// DiscoverRequest: payload to start tracking a game. Status defaults to backlog.
type DiscoverRequest struct {
	Status string `json:"status"`
}

// ChangeStatusRequest: payload to move a game between buckets
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ReorderRequest: move the item at FromIndex to ToIndex inside one bucket
type ReorderRequest struct {
	Status    string `json:"status" binding:"required"`
	FromIndex *int   `json:"from_index" binding:"required"`
	ToIndex   *int   `json:"to_index" binding:"required"`
}

// ArrangeRequest: the complete new order of a bucket
type ArrangeRequest struct {
	Status  string  `json:"status" binding:"required"`
	GameIDs []int64 `json:"game_ids" binding:"required"`
}

// RatingRequest: a null rating clears it
type RatingRequest struct {
	Rating *int `json:"rating"`
}

type NotesRequest struct {
	Notes *string `json:"notes"`
}

type PlatformRequest struct {
	PlatformID *int64 `json:"platform_id"`
}

// CompleteRequest: CompletionDate defaults to now
type CompleteRequest struct {
	CompletionDate *time.Time `json:"completion_date"`
}

type ImportRequest struct {
	GameIDs []int64 `json:"game_ids" binding:"required,min=1"`
	Status  string  `json:"status"`
}

// LibraryResponse: one tracked game
type LibraryResponse struct {
	GameID             int64                       `json:"game_id"`
	Status             models.Status               `json:"status"`
	Priority           *int                        `json:"priority,omitempty"`
	PersonalRating     *int                        `json:"personal_rating,omitempty"`
	Notes              *string                     `json:"notes,omitempty"`
	CompletionDate     *time.Time                  `json:"completion_date,omitempty"`
	SelectedPlatformID *int64                      `json:"selected_platform_id,omitempty"`
	DateAdded          time.Time                   `json:"date_added"`
	UpdatedAt          time.Time                   `json:"updated_at"`
	Game               *models.MinimalGameDocument `json:"game,omitempty"`
}

// LibraryListResponse: one bucket in priority order
type LibraryListResponse struct {
	Status models.Status     `json:"status"`
	Items  []LibraryResponse `json:"items"`
	Total  int               `json:"total"`
}

func FromQuestState(q models.QuestState) LibraryResponse {
	return LibraryResponse{
		GameID:             q.GameID,
		Status:             q.Status,
		Priority:           q.Priority,
		PersonalRating:     q.PersonalRating,
		Notes:              q.Notes,
		CompletionDate:     q.CompletionDate,
		SelectedPlatformID: q.SelectedPlatformID,
		DateAdded:          q.DateAdded,
		UpdatedAt:          q.UpdatedAt,
	}
}

func FromLibraryEntries(status models.Status, entries []models.LibraryEntry) LibraryListResponse {
	items := make([]LibraryResponse, 0, len(entries))
	for _, e := range entries {
		item := FromQuestState(e.Quest)
		item.Game = e.Game
		items = append(items, item)
	}
	return LibraryListResponse{Status: status, Items: items, Total: len(items)}
}

// ParseStatusOr resolves a status name, falling back when it is empty.
func ParseStatusOr(name string, fallback models.Status) (models.Status, error) {
	if name == "" {
		return fallback, nil
	}
	return models.ParseStatus(name)
}
