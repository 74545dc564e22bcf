package dto

import (
	"time"

	"questlog/internal/models"
)

// SearchResult: a game found by name, locally or in the metadata source
type SearchResult struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Cover       *models.Image `json:"cover,omitempty"`
	Genres      []string      `json:"genres,omitempty"`
	ReleaseYear *int          `json:"release_year,omitempty"`
	Source      string        `json:"source"`
}

type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
}

func FromMinimal(g models.MinimalGameDocument) SearchResult {
	return SearchResult{
		ID:          g.ID,
		Name:        g.Name,
		Cover:       g.Cover,
		Genres:      genreNames(g.Genres),
		ReleaseYear: earliestYear(g.ReleaseDates),
		Source:      "local",
	}
}

func FromDocument(g models.GameDocument) SearchResult {
	return SearchResult{
		ID:          g.ID,
		Name:        g.Name,
		Cover:       g.Cover,
		Genres:      genreNames(g.Genres),
		ReleaseYear: earliestYear(g.ReleaseDates),
		Source:      "igdb",
	}
}

func genreNames(refs []models.NamedRef) []string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.Name)
	}
	return names
}

func earliestYear(dates []models.ReleaseDate) *int {
	var earliest *int64
	for _, d := range dates {
		if d.Date != nil && (earliest == nil || *d.Date < *earliest) {
			earliest = d.Date
		}
	}
	if earliest == nil {
		return nil
	}
	year := time.Unix(*earliest, 0).UTC().Year()
	return &year
}
