package igdb

import (
	"fmt"
	"strings"
)

// gameFields expands every relation a GameDocument carries. Expanded objects
// always include their id.
var gameFields = strings.Join([]string{
	"name", "summary", "storyline", "rating", "aggregated_rating",
	"cover.image_id", "cover.url", "cover.width", "cover.height",
	"screenshots.image_id", "screenshots.url", "screenshots.width", "screenshots.height",
	"alternative_names.name", "alternative_names.comment",
	"release_dates.date", "release_dates.human", "release_dates.platform.name",
	"videos.video_id", "videos.name",
	"websites.category", "websites.url",
	"age_ratings.category", "age_ratings.rating",
	"dlcs.name", "dlcs.summary",
	"multiplayer_modes.*",
	"genres.name", "platforms.name", "game_modes.name", "player_perspectives.name",
	"themes.name", "franchises.name",
	"involved_companies.company.name", "involved_companies.developer", "involved_companies.publisher",
}, ",")

var searchFields = strings.Join([]string{
	"name", "summary", "cover.image_id", "cover.url", "genres.name",
	"release_dates.date", "release_dates.human", "release_dates.platform.name",
}, ",")

var searchEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// GameByIDQuery builds the Apicalypse body that loads one full game.
func GameByIDQuery(id int64) string {
	return fmt.Sprintf("fields %s; where id = %d; limit 1;", gameFields, id)
}

// SearchQuery builds a search body. The text is quoted and escaped so it can
// never terminate the search clause.
func SearchQuery(text string, limit int) string {
	return fmt.Sprintf(`search "%s"; fields %s; limit %d;`, searchEscaper.Replace(text), searchFields, limit)
}
