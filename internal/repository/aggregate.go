package repository

import (
	"cmp"
	"encoding/json"
	"log/slog"
	"slices"

	"questlog/internal/models"
)

// decodeAggregate parses a json_group_array column. Malformed JSON is logged and
// yields an empty list; entries rejected by valid are dropped silently.
func decodeAggregate[T any](logger *slog.Logger, field, raw string, valid func(T) bool) []T {
	out := []T{}
	if raw == "" {
		return out
	}

	var entries []T
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		logger.Warn("Malformed aggregate column", "field", field, "error", err)
		return out
	}

	for _, e := range entries {
		if valid(e) {
			out = append(out, e)
		}
	}
	return out
}

func validNamedRef(r models.NamedRef) bool {
	return r.ID > 0 && r.Name != ""
}

func validWebsite(w models.Website) bool {
	return w.ID > 0 && w.URL != ""
}

// companyAggregate mirrors the involved_companies json_object; SQLite booleans
// arrive as 0/1.
type companyAggregate struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Developer int    `json:"developer"`
	Publisher int    `json:"publisher"`
}

func validCompany(c companyAggregate) bool {
	return c.ID > 0 && c.Name != ""
}

func (c companyAggregate) toInvolvedCompany() models.InvolvedCompany {
	return models.InvolvedCompany{
		Company:   models.NamedRef{ID: c.ID, Name: c.Name},
		Developer: c.Developer != 0,
		Publisher: c.Publisher != 0,
	}
}

// releaseAggregate is a release date with its platform flattened.
type releaseAggregate struct {
	ID           int64   `json:"id"`
	Date         *int64  `json:"date"`
	Human        *string `json:"human"`
	PlatformID   *int64  `json:"platform_id"`
	PlatformName *string `json:"platform_name"`
}

func validRelease(r releaseAggregate) bool {
	if r.ID <= 0 {
		return false
	}
	// a platform reference must be complete or absent
	if r.PlatformID != nil && (r.PlatformName == nil || *r.PlatformName == "") {
		return false
	}
	return true
}

func (r releaseAggregate) toReleaseDate() models.ReleaseDate {
	rd := models.ReleaseDate{ID: r.ID, Date: r.Date}
	if r.Human != nil {
		rd.Human = *r.Human
	}
	if r.PlatformID != nil {
		rd.Platform = &models.NamedRef{ID: *r.PlatformID, Name: *r.PlatformName}
	}
	return rd
}

func decodeNamedRefs(logger *slog.Logger, field, raw string) []models.NamedRef {
	refs := decodeAggregate(logger, field, raw, validNamedRef)
	slices.SortFunc(refs, func(a, b models.NamedRef) int { return cmp.Compare(a.ID, b.ID) })
	return refs
}

func decodeWebsites(logger *slog.Logger, raw string) []models.Website {
	sites := decodeAggregate(logger, "websites", raw, validWebsite)
	slices.SortFunc(sites, func(a, b models.Website) int { return cmp.Compare(a.ID, b.ID) })
	return sites
}

func decodeCompanies(logger *slog.Logger, raw string) []models.InvolvedCompany {
	rows := decodeAggregate(logger, "involved_companies", raw, validCompany)
	slices.SortFunc(rows, func(a, b companyAggregate) int { return cmp.Compare(a.ID, b.ID) })
	out := make([]models.InvolvedCompany, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toInvolvedCompany())
	}
	return out
}

func decodeReleaseDates(logger *slog.Logger, raw string) []models.ReleaseDate {
	rows := decodeAggregate(logger, "release_dates", raw, validRelease)
	out := make([]models.ReleaseDate, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toReleaseDate())
	}
	sortReleaseDates(out)
	return out
}

func sortReleaseDates(dates []models.ReleaseDate) {
	slices.SortFunc(dates, compareReleaseDates)
}

// compareReleaseDates orders by date, undated last, then by id.
func compareReleaseDates(a, b models.ReleaseDate) int {
	switch {
	case a.Date == nil && b.Date == nil:
		return cmp.Compare(a.ID, b.ID)
	case a.Date == nil:
		return 1
	case b.Date == nil:
		return -1
	}
	if c := cmp.Compare(*a.Date, *b.Date); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
