package ai

import "context"

// EmbeddingProvider turns text into a fixed-length vector (OpenAI).
type EmbeddingProvider interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// TextProvider handles completion tasks (Claude). Both methods return the
// model's raw text; callers own validation and parsing.
type TextProvider interface {
	ExtractDishName(ctx context.Context, query string) (string, error)
	SuggestFestivalDishes(ctx context.Context, festival string, count int) (string, error)
}

// VisionProvider detects food ingredients in a photo (Claude).
type VisionProvider interface {
	DetectIngredients(ctx context.Context, imageData []byte) ([]string, error)
}
