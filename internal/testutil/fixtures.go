package testutil

import (
	"github.com/windoze95/dishfinder-api/internal/models"
	"github.com/windoze95/dishfinder-api/internal/vectorstore"
)

// TestRecipeRecord creates a test RecipeRecord with realistic fields.
func TestRecipeRecord(dishName string) models.RecipeRecord {
	id := models.RecipeID(dishName)
	return models.RecipeRecord{
		ID:              id,
		DishName:        dishName,
		Ingredients:     []string{"paneer", "butter", "tomato", "cream"},
		CookingSteps:    []string{"Saute onions", "Add tomato puree", "Simmer with paneer"},
		Story:           "A restaurant favourite.",
		ThumbnailURL:    "https://img.example.com/" + id + ".jpg",
		SourceRecipeURL: "https://www.example.com/category/north-indian/recipes/" + id,
		SourceVideoURL:  "https://www.youtube.com/embed/" + id,
	}
}

// TestHit creates an index hit for a dish with the given score.
func TestHit(dishName string, score float64) vectorstore.Hit {
	record := TestRecipeRecord(dishName)
	return vectorstore.Hit{
		ID:     record.ID,
		Score:  score,
		Record: record,
	}
}

// TestVideos creates n related videos for a dish.
func TestVideos(dishName string, n int) []models.VideoInfo {
	videos := make([]models.VideoInfo, n)
	for i := range videos {
		id := models.RecipeID(dishName) + "-v" + string(rune('a'+i))
		videos[i] = models.VideoInfo{
			VideoID:      id,
			Title:        dishName + " recipe",
			URL:          "https://www.youtube.com/watch?v=" + id,
			PublishedAt:  "2024-01-01T00:00:00Z",
			ChannelTitle: "India Food Network",
			ThumbnailURL: "https://i.ytimg.com/vi/" + id + "/hqdefault.jpg",
		}
	}
	return videos
}
