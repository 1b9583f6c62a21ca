package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/windoze95/dishfinder-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pgVectorDimensions is the width of the embedding column. It must match the
// vector(N) type in recipeRow.
const pgVectorDimensions = 1536

// recipeRow is the Postgres representation of an indexed recipe.
type recipeRow struct {
	ID           string          `gorm:"primaryKey"`
	DishName     string          `gorm:"not null"`
	Ingredients  pq.StringArray  `gorm:"type:text[]"`
	CookingSteps pq.StringArray  `gorm:"type:text[]"`
	Story        string
	ThumbnailURL string
	RecipeURL    string
	VideoURL     string
	Embedding    pgvector.Vector `gorm:"type:vector(1536)"`
	UpdatedAt    time.Time
}

func (recipeRow) TableName() string {
	return "recipe_embeddings"
}

// scoredRow is a query result row; the embedding column is not selected.
type scoredRow struct {
	ID           string
	DishName     string
	Ingredients  pq.StringArray `gorm:"type:text[]"`
	CookingSteps pq.StringArray `gorm:"type:text[]"`
	Story        string
	ThumbnailURL string
	RecipeURL    string
	VideoURL     string
	Score        float64
}

// PgVectorIndex implements Index on Postgres with the pgvector extension.
type PgVectorIndex struct {
	DB *gorm.DB
}

// NewPgVectorIndex migrates the recipe table and returns the index.
// dimensions is the embedder's vector length; a value other than the
// column width is an error.
func NewPgVectorIndex(db *gorm.DB, dimensions int) (*PgVectorIndex, error) {
	if dimensions != pgVectorDimensions {
		return nil, fmt.Errorf("embedding dimensions %d do not match the vector(%d) column", dimensions, pgVectorDimensions)
	}
	if err := db.AutoMigrate(&recipeRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate recipe embeddings table: %w", err)
	}
	return &PgVectorIndex{DB: db}, nil
}

// Upsert implements Index.
func (p *PgVectorIndex) Upsert(ctx context.Context, record *models.RecipeRecord, vector []float32) error {
	if len(vector) != pgVectorDimensions {
		return fmt.Errorf("recipe %q has a %d-dimension vector, want %d", record.ID, len(vector), pgVectorDimensions)
	}
	row := rowFromRecord(record, vector)
	err := p.DB.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert recipe %q: %w", record.ID, err)
	}
	return nil
}

// Query implements Index. Cosine similarity is 1 minus pgvector's cosine
// distance.
func (p *PgVectorIndex) Query(ctx context.Context, vector []float32, topK int) ([]Hit, error) {
	vec := pgvector.NewVector(vector)

	var rows []scoredRow
	err := p.DB.WithContext(ctx).
		Model(&recipeRow{}).
		Select("id, dish_name, ingredients, cooking_steps, story, thumbnail_url, recipe_url, video_url, 1 - (embedding <=> ?) AS score", vec).
		Clauses(clause.OrderBy{Expression: clause.Expr{SQL: "embedding <=> ?", Vars: []interface{}{vec}}}).
		Limit(topK).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find similar recipes: %w", err)
	}

	hits := make([]Hit, 0, len(rows))
	for _, r := range rows {
		hits = append(hits, Hit{
			ID:     r.ID,
			Score:  clampScore(r.Score),
			Record: r.record(),
		})
	}
	return hits, nil
}

func rowFromRecord(r *models.RecipeRecord, vector []float32) recipeRow {
	return recipeRow{
		ID:           r.ID,
		DishName:     r.DishName,
		Ingredients:  pq.StringArray(r.Ingredients),
		CookingSteps: pq.StringArray(r.CookingSteps),
		Story:        r.Story,
		ThumbnailURL: r.ThumbnailURL,
		RecipeURL:    r.SourceRecipeURL,
		VideoURL:     r.SourceVideoURL,
		Embedding:    pgvector.NewVector(vector),
	}
}

func (r scoredRow) record() models.RecipeRecord {
	return models.RecipeRecord{
		ID:              r.ID,
		DishName:        r.DishName,
		Ingredients:     []string(r.Ingredients),
		CookingSteps:    []string(r.CookingSteps),
		Story:           r.Story,
		ThumbnailURL:    r.ThumbnailURL,
		SourceRecipeURL: r.RecipeURL,
		SourceVideoURL:  r.VideoURL,
	}
}
