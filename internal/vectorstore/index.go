package vectorstore

import (
	"context"

	"github.com/windoze95/dishfinder-api/internal/models"
)

// Index is a nearest-neighbour store keyed by recipe ID. Implementations
// return hits ordered by descending similarity, with scores in [0,1].
type Index interface {
	Upsert(ctx context.Context, record *models.RecipeRecord, vector []float32) error
	Query(ctx context.Context, vector []float32, topK int) ([]Hit, error)
}

// Hit is one query result with its stored record.
type Hit struct {
	ID     string
	Score  float64
	Record models.RecipeRecord
}

// clampScore keeps cosine-derived scores inside [0,1].
func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
