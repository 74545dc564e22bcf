package models

// GameDocument is the nested game shape returned by the metadata source and rebuilt by
// the full projection. Field names follow the IGDB wire format.
type GameDocument struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	Summary          *string  `json:"summary,omitempty"`
	Storyline        *string  `json:"storyline,omitempty"`
	Rating           *float64 `json:"rating,omitempty"`
	AggregatedRating *float64 `json:"aggregated_rating,omitempty"`

	Cover *Image `json:"cover,omitempty"`

	Screenshots      []Image           `json:"screenshots,omitempty"`
	AlternativeNames []AlternativeName `json:"alternative_names,omitempty"`
	ReleaseDates     []ReleaseDate     `json:"release_dates,omitempty"`
	Videos           []Video           `json:"videos,omitempty"`
	Websites         []Website         `json:"websites,omitempty"`
	AgeRatings       []AgeRating       `json:"age_ratings,omitempty"`
	DLCs             []DLC             `json:"dlcs,omitempty"`
	MultiplayerModes []MultiplayerMode `json:"multiplayer_modes,omitempty"`

	Genres             []NamedRef        `json:"genres,omitempty"`
	Platforms          []NamedRef        `json:"platforms,omitempty"`
	GameModes          []NamedRef        `json:"game_modes,omitempty"`
	PlayerPerspectives []NamedRef        `json:"player_perspectives,omitempty"`
	Themes             []NamedRef        `json:"themes,omitempty"`
	Franchises         []NamedRef        `json:"franchises,omitempty"`
	InvolvedCompanies  []InvolvedCompany `json:"involved_companies,omitempty"`
}

// MinimalGameDocument is the list-view projection.
type MinimalGameDocument struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Cover        *Image        `json:"cover,omitempty"`
	Genres       []NamedRef    `json:"genres"`
	ReleaseDates []ReleaseDate `json:"release_dates"`
}

// NamedRef is any shared (id, name) reference entity.
type NamedRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Image struct {
	ID      int64  `json:"id"`
	ImageID string `json:"image_id"`
	URL     string `json:"url,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

type AlternativeName struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Comment string `json:"comment,omitempty"`
}

type ReleaseDate struct {
	ID       int64     `json:"id"`
	Date     *int64    `json:"date,omitempty"` // unix seconds
	Human    string    `json:"human,omitempty"`
	Platform *NamedRef `json:"platform,omitempty"`
}

type Video struct {
	ID      int64  `json:"id"`
	VideoID string `json:"video_id"`
	Name    string `json:"name,omitempty"`
}

type Website struct {
	ID       int64  `json:"id"`
	Category int    `json:"category"`
	URL      string `json:"url"`
}

type AgeRating struct {
	ID       int64 `json:"id"`
	Category int   `json:"category"`
	Rating   int   `json:"rating"`
}

type DLC struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Summary string `json:"summary,omitempty"`
}

// MultiplayerMode flags absent from the source decode as false/zero.
type MultiplayerMode struct {
	ID                int64 `json:"id"`
	CampaignCoop      bool  `json:"campaigncoop"`
	DropIn            bool  `json:"dropin"`
	LANCoop           bool  `json:"lancoop"`
	OfflineCoop       bool  `json:"offlinecoop"`
	OfflineCoopMax    int   `json:"offlinecoopmax"`
	OfflineMax        int   `json:"offlinemax"`
	OnlineCoop        bool  `json:"onlinecoop"`
	OnlineCoopMax     int   `json:"onlinecoopmax"`
	OnlineMax         int   `json:"onlinemax"`
	SplitScreen       bool  `json:"splitscreen"`
	SplitScreenOnline bool  `json:"splitscreenonline"`
}

// InvolvedCompany links a company to a game with independent role flags.
type InvolvedCompany struct {
	ID        int64    `json:"id,omitempty"`
	Company   NamedRef `json:"company"`
	Developer bool     `json:"developer"`
	Publisher bool     `json:"publisher"`
}
