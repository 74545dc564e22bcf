package models

import "time"

// Game is the base row of a cached game. The id is the metadata source's id.
type Game struct {
	ID               int64  `gorm:"primaryKey;autoIncrement:false"`
	Name             string `gorm:"not null"`
	Summary          *string
	Storyline        *string
	Rating           *float64
	AggregatedRating *float64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Game) TableName() string { return "games" }

// ============================================
// REFERENCE ENTITIES
// ============================================

type Company struct {
	ID   int64  `gorm:"primaryKey;autoIncrement:false"`
	Name string `gorm:"not null"`
}

func (Company) TableName() string { return "companies" }

type Genre struct {
	ID   int64  `gorm:"primaryKey;autoIncrement:false"`
	Name string `gorm:"not null"`
}

func (Genre) TableName() string { return "genres" }

type Platform struct {
	ID   int64  `gorm:"primaryKey;autoIncrement:false"`
	Name string `gorm:"not null"`
}

func (Platform) TableName() string { return "platforms" }

type GameMode struct {
	ID   int64  `gorm:"primaryKey;autoIncrement:false"`
	Name string `gorm:"not null"`
}

func (GameMode) TableName() string { return "game_modes" }

type PlayerPerspective struct {
	ID   int64  `gorm:"primaryKey;autoIncrement:false"`
	Name string `gorm:"not null"`
}

func (PlayerPerspective) TableName() string { return "player_perspectives" }

type Theme struct {
	ID   int64  `gorm:"primaryKey;autoIncrement:false"`
	Name string `gorm:"not null"`
}

func (Theme) TableName() string { return "themes" }

type Franchise struct {
	ID   int64  `gorm:"primaryKey;autoIncrement:false"`
	Name string `gorm:"not null"`
}

func (Franchise) TableName() string { return "franchises" }

// ============================================
// GAME-OWNED DETAILS
// ============================================

type Cover struct {
	ID      int64 `gorm:"primaryKey;autoIncrement:false"`
	GameID  int64 `gorm:"primaryKey;autoIncrement:false"`
	ImageID string
	URL     string `gorm:"column:url"`
	Width   int
	Height  int
}

func (Cover) TableName() string { return "covers" }

type Screenshot struct {
	ID      int64 `gorm:"primaryKey;autoIncrement:false"`
	GameID  int64 `gorm:"primaryKey;autoIncrement:false"`
	ImageID string
	URL     string `gorm:"column:url"`
	Width   int
	Height  int
}

func (Screenshot) TableName() string { return "screenshots" }

type AlternativeNameRow struct {
	ID      int64 `gorm:"primaryKey;autoIncrement:false"`
	GameID  int64 `gorm:"primaryKey;autoIncrement:false"`
	Name    string
	Comment string
}

func (AlternativeNameRow) TableName() string { return "alternative_names" }

type ReleaseDateRow struct {
	ID         int64 `gorm:"primaryKey;autoIncrement:false"`
	GameID     int64 `gorm:"primaryKey;autoIncrement:false"`
	Date       *int64
	Human      string
	PlatformID *int64
}

func (ReleaseDateRow) TableName() string { return "release_dates" }

type VideoRow struct {
	ID      int64 `gorm:"primaryKey;autoIncrement:false"`
	GameID  int64 `gorm:"primaryKey;autoIncrement:false"`
	VideoID string
	Name    string
}

func (VideoRow) TableName() string { return "videos" }

type WebsiteRow struct {
	ID       int64 `gorm:"primaryKey;autoIncrement:false"`
	GameID   int64 `gorm:"primaryKey;autoIncrement:false"`
	Category int
	URL      string `gorm:"column:url"`
}

func (WebsiteRow) TableName() string { return "websites" }

type AgeRatingRow struct {
	ID       int64 `gorm:"primaryKey;autoIncrement:false"`
	GameID   int64 `gorm:"primaryKey;autoIncrement:false"`
	Category int
	Rating   int
}

func (AgeRatingRow) TableName() string { return "age_ratings" }

type DLCRow struct {
	ID      int64 `gorm:"primaryKey;autoIncrement:false"`
	GameID  int64 `gorm:"primaryKey;autoIncrement:false"`
	Name    string
	Summary string
}

func (DLCRow) TableName() string { return "dlcs" }

type MultiplayerModeRow struct {
	ID                int64 `gorm:"primaryKey;autoIncrement:false"`
	GameID            int64 `gorm:"primaryKey;autoIncrement:false"`
	CampaignCoop      bool  `gorm:"column:campaigncoop"`
	DropIn            bool  `gorm:"column:dropin"`
	LANCoop           bool  `gorm:"column:lancoop"`
	OfflineCoop       bool  `gorm:"column:offlinecoop"`
	OfflineCoopMax    int   `gorm:"column:offlinecoopmax"`
	OfflineMax        int   `gorm:"column:offlinemax"`
	OnlineCoop        bool  `gorm:"column:onlinecoop"`
	OnlineCoopMax     int   `gorm:"column:onlinecoopmax"`
	OnlineMax         int   `gorm:"column:onlinemax"`
	SplitScreen       bool  `gorm:"column:splitscreen"`
	SplitScreenOnline bool  `gorm:"column:splitscreenonline"`
}

func (MultiplayerModeRow) TableName() string { return "multiplayer_modes" }

// ============================================
// ASSOCIATIONS
// ============================================

type GameGenre struct {
	GameID  int64 `gorm:"primaryKey;autoIncrement:false"`
	GenreID int64 `gorm:"primaryKey;autoIncrement:false"`
}

func (GameGenre) TableName() string { return "game_genres" }

type GamePlatform struct {
	GameID     int64 `gorm:"primaryKey;autoIncrement:false"`
	PlatformID int64 `gorm:"primaryKey;autoIncrement:false"`
}

func (GamePlatform) TableName() string { return "game_platforms" }

type GameModeLink struct {
	GameID     int64 `gorm:"primaryKey;autoIncrement:false"`
	GameModeID int64 `gorm:"primaryKey;autoIncrement:false"`
}

func (GameModeLink) TableName() string { return "game_modes_map" }

type GamePerspective struct {
	GameID        int64 `gorm:"primaryKey;autoIncrement:false"`
	PerspectiveID int64 `gorm:"primaryKey;autoIncrement:false"`
}

func (GamePerspective) TableName() string { return "game_perspectives" }

type GameTheme struct {
	GameID  int64 `gorm:"primaryKey;autoIncrement:false"`
	ThemeID int64 `gorm:"primaryKey;autoIncrement:false"`
}

func (GameTheme) TableName() string { return "game_themes" }

type GameFranchise struct {
	GameID      int64 `gorm:"primaryKey;autoIncrement:false"`
	FranchiseID int64 `gorm:"primaryKey;autoIncrement:false"`
}

func (GameFranchise) TableName() string { return "game_franchises" }

// InvolvedCompanyRow carries two independent role flags; one row may be both.
type InvolvedCompanyRow struct {
	GameID    int64 `gorm:"primaryKey;autoIncrement:false"`
	CompanyID int64 `gorm:"primaryKey;autoIncrement:false"`
	Developer bool
	Publisher bool
}

func (InvolvedCompanyRow) TableName() string { return "involved_companies" }
