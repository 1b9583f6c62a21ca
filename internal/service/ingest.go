package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/asaskevich/govalidator"
	"github.com/windoze95/dishfinder-api/internal/ai"
	"github.com/windoze95/dishfinder-api/internal/logger"
	"github.com/windoze95/dishfinder-api/internal/metrics"
	"github.com/windoze95/dishfinder-api/internal/models"
	"github.com/windoze95/dishfinder-api/internal/vectorstore"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const ingestConcurrency = 4

// Ingestion outcomes.
const (
	OutcomeStored  = "stored"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// RecipeSource supplies recipes to ingest and the video embedded on each
// recipe page.
type RecipeSource interface {
	FetchRecipes(ctx context.Context) ([]models.RecipeRecord, error)
	VideoLink(ctx context.Context, pageURL string) (string, error)
}

// IngestSummary counts what happened to each fetched recipe.
type IngestSummary struct {
	Fetched int `json:"fetched"`
	Stored  int `json:"stored"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// IngestService loads the recipe feed into the similarity index.
type IngestService struct {
	Source   RecipeSource
	Embedder ai.EmbeddingProvider
	Index    vectorstore.Index
}

// NewIngestService creates a new IngestService.
func NewIngestService(source RecipeSource, embedder ai.EmbeddingProvider, index vectorstore.Index) *IngestService {
	return &IngestService{
		Source:   source,
		Embedder: embedder,
		Index:    index,
	}
}

// IngestAll fetches the feed and upserts every usable recipe. Only a failed
// fetch is returned as an error; per-recipe failures are counted.
func (s *IngestService) IngestAll(ctx context.Context) (*IngestSummary, error) {
	log := logger.FromContext(ctx)

	records, err := s.Source.FetchRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recipes: %w", err)
	}

	summary := &IngestSummary{Fetched: len(records)}
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(ingestConcurrency)

	for i := range records {
		g.Go(func() error {
			outcome := s.ingestOne(ctx, &records[i])
			metrics.IngestRecordsTotal.WithLabelValues(outcome).Inc()

			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case OutcomeStored:
				summary.Stored++
			case OutcomeSkipped:
				summary.Skipped++
			default:
				summary.Failed++
			}
			return nil
		})
	}
	_ = g.Wait()

	log.Info("recipe ingestion finished",
		zap.Int("fetched", summary.Fetched),
		zap.Int("stored", summary.Stored),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (s *IngestService) ingestOne(ctx context.Context, record *models.RecipeRecord) string {
	log := logger.FromContext(ctx).With(zap.String("dish_name", record.DishName))

	if record.DishName == "" || len(record.Ingredients) == 0 {
		log.Debug("skipping recipe without a name or ingredients")
		return OutcomeSkipped
	}
	if !govalidator.IsURL(record.SourceRecipeURL) {
		log.Debug("skipping recipe with invalid url", zap.String("recipe_url", record.SourceRecipeURL))
		return OutcomeSkipped
	}
	if record.ID == "" {
		record.ID = models.RecipeID(record.DishName)
	}

	if record.SourceVideoURL == "" {
		link, err := s.Source.VideoLink(ctx, record.SourceRecipeURL)
		if err != nil {
			log.Warn("failed to resolve recipe video", zap.Error(err))
		}
		record.SourceVideoURL = link
	}

	vector, err := s.Embedder.GenerateEmbedding(ctx, record.EmbeddingText())
	if err != nil {
		log.Error("failed to embed recipe", zap.Error(err))
		return OutcomeFailed
	}
	if err := s.Index.Upsert(ctx, record, vector); err != nil {
		log.Error("failed to upsert recipe", zap.Error(err))
		return OutcomeFailed
	}
	return OutcomeStored
}
