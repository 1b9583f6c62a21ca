package models

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// RecipeRecord is a recipe as stored in the similarity index. The ingredient
// embedding is kept alongside it in the index, not on the record itself.
type RecipeRecord struct {
	ID              string   `json:"id"`
	DishName        string   `json:"dish_name"`
	Ingredients     []string `json:"ingredients"`
	CookingSteps    []string `json:"cooking_steps"`
	Story           string   `json:"story,omitempty"`
	ThumbnailURL    string   `json:"thumbnail_url,omitempty"`
	SourceRecipeURL string   `json:"source_recipe_url"`
	SourceVideoURL  string   `json:"source_video_url,omitempty"`
}

// EmbeddingText is the text embedded for a record at ingestion time. It must
// match the way ingredient queries are joined at match time.
func (r *RecipeRecord) EmbeddingText() string {
	return strings.Join(r.Ingredients, " ")
}

// MatchResult is a recipe returned to callers, enriched with related videos.
type MatchResult struct {
	DishName      string      `json:"dish_name"`
	Ingredients   []string    `json:"ingredients"`
	CookingSteps  []string    `json:"cooking_steps"`
	Story         string      `json:"story"`
	ThumbnailURL  string      `json:"thumbnail_url"`
	RecipeURL     string      `json:"recipe_url"`
	YoutubeLink   string      `json:"youtube_link"`
	SimilarVideos []VideoInfo `json:"similar_videos"`
	MatchScore    *float64    `json:"match_score,omitempty"`
	MatchedQuery  string      `json:"matched_query"`
}

// Score returns the match score, or 0 when the result was not scored.
func (m *MatchResult) Score() float64 {
	if m.MatchScore == nil {
		return 0
	}
	return *m.MatchScore
}

// VideoInfo describes a related cooking video.
type VideoInfo struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	PublishedAt  string `json:"published_at"`
	ChannelTitle string `json:"channel_title"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// FestivalDishCandidate is a dish suggested for a festival before it has been
// matched against the index.
type FestivalDishCandidate struct {
	FestivalName string
	DishName     string
}

// Festival is a single calendar holiday mapped to a recipe category name.
type Festival struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

var nonIDChars = regexp.MustCompile(`[^a-z0-9]+`)

// RecipeID derives the index key for a dish name. Non-ASCII characters are
// dropped; a name with nothing left falls back to a name-based UUID so that
// re-ingesting the same dish still overwrites the same entry.
func RecipeID(dishName string) string {
	id := nonIDChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(dishName)), "-")
	id = strings.Trim(id, "-")
	if id == "" {
		return uuid.NewSHA1(uuid.NameSpaceURL, []byte(dishName)).String()
	}
	return id
}
