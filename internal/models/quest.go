package models

import "time"

// QuestGameStatus is the status lookup row; names are unique.
type QuestGameStatus struct {
	ID          int64  `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex;not null"`
	Description *string
}

func (QuestGameStatus) TableName() string { return "quest_game_status" }

// QuestGame is the user-tracking row, one per tracked game.
type QuestGame struct {
	GameID             int64 `gorm:"primaryKey;autoIncrement:false"`
	StatusID           int64 `gorm:"not null"`
	PersonalRating     *int
	CompletionDate     *time.Time
	Notes              *string
	DateAdded          time.Time
	Priority           *int
	SelectedPlatformID *int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (QuestGame) TableName() string { return "quest_games" }

// QuestState is a QuestGame with its status resolved to a name.
type QuestState struct {
	GameID             int64      `json:"game_id"`
	Status             Status     `json:"status"`
	PersonalRating     *int       `json:"personal_rating,omitempty"`
	CompletionDate     *time.Time `json:"completion_date,omitempty"`
	Notes              *string    `json:"notes,omitempty"`
	DateAdded          time.Time  `json:"date_added"`
	Priority           *int       `json:"priority,omitempty"`
	SelectedPlatformID *int64     `json:"selected_platform_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// PriorityUpdate sets one game's rank. A nil Priority clears it.
type PriorityUpdate struct {
	GameID   int64 `json:"game_id"`
	Priority *int  `json:"priority"`
}

// LibraryEntry pairs a tracked game's state with its list-view projection.
type LibraryEntry struct {
	Quest QuestState           `json:"quest"`
	Game  *MinimalGameDocument `json:"game,omitempty"`
}
