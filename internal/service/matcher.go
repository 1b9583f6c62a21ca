package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/windoze95/dishfinder-api/internal/ai"
	"github.com/windoze95/dishfinder-api/internal/logger"
	"github.com/windoze95/dishfinder-api/internal/metrics"
	"github.com/windoze95/dishfinder-api/internal/models"
	"github.com/windoze95/dishfinder-api/internal/vectorstore"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultIngredientTopK is the number of recipes returned for an ingredient list.
	DefaultIngredientTopK = 3
	// DefaultQueryTopK is the number of recipes returned for a dish query.
	DefaultQueryTopK = 24

	ingredientVideoCount = 3
	queryVideoCount      = 5
	enrichConcurrency    = 8
)

// VideoSearcher finds cooking videos for a dish. Implementations return a
// non-nil slice even when they fail.
type VideoSearcher interface {
	SearchRecipeVideos(ctx context.Context, dish string, limit int) ([]models.VideoInfo, error)
}

// MatcherService matches ingredient lists and dish queries against the recipe
// index and enriches the results with videos.
type MatcherService struct {
	Embedder   ai.EmbeddingProvider
	Index      vectorstore.Index
	Videos     VideoSearcher
	Normalizer *NormalizeService
}

// NewMatcherService creates a new MatcherService.
func NewMatcherService(embedder ai.EmbeddingProvider, index vectorstore.Index, videos VideoSearcher, normalizer *NormalizeService) *MatcherService {
	return &MatcherService{
		Embedder:   embedder,
		Index:      index,
		Videos:     videos,
		Normalizer: normalizer,
	}
}

// MatchByIngredients finds the recipes closest to the given ingredients.
// Blank entries are ignored; an empty list is an InvalidInputError. No hits
// is an empty result, not an error. Results carry no match score.
func (s *MatcherService) MatchByIngredients(ctx context.Context, ingredients []string, topK int) ([]models.MatchResult, error) {
	cleaned := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if ing = strings.TrimSpace(ing); ing != "" {
			cleaned = append(cleaned, ing)
		}
	}
	if len(cleaned) == 0 {
		return nil, &InvalidInputError{Message: "at least one ingredient is required"}
	}
	if topK <= 0 {
		topK = DefaultIngredientTopK
	}

	text := strings.Join(cleaned, " ")
	hits, err := s.embedAndSearch(ctx, text, topK)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	results := make([]models.MatchResult, len(hits))
	for i, hit := range hits {
		results[i] = hitToResult(hit, text, false)
	}
	s.enrich(ctx, results, ingredientVideoCount)
	return results, nil
}

// MatchByQuery normalizes a free-text request to a dish name and returns the
// closest recipes, scored and sorted by descending score.
func (s *MatcherService) MatchByQuery(ctx context.Context, query string, topK int) ([]models.MatchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &InvalidInputError{Message: "query is required"}
	}
	if topK <= 0 {
		topK = DefaultQueryTopK
	}

	dish := s.normalize(ctx, query)
	hits, err := s.embedAndSearch(ctx, dish, topK)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	results := make([]models.MatchResult, len(hits))
	for i, hit := range hits {
		results[i] = hitToResult(hit, dish, true)
	}
	s.enrich(ctx, results, queryVideoCount)
	sortByScore(results)
	return results, nil
}

// SearchDish looks up a single dish name without video enrichment. Results
// are scored and sorted by descending score.
func (s *MatcherService) SearchDish(ctx context.Context, dish string, topK int) ([]models.MatchResult, error) {
	text := strings.ToLower(strings.TrimSpace(dish))
	if text == "" {
		return nil, &InvalidInputError{Message: "dish name is required"}
	}
	if topK <= 0 {
		topK = DefaultIngredientTopK
	}

	hits, err := s.embedAndSearch(ctx, text, topK)
	if err != nil {
		return nil, err
	}

	results := make([]models.MatchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, hitToResult(hit, text, true))
	}
	sortByScore(results)
	return results, nil
}

func (s *MatcherService) normalize(ctx context.Context, query string) string {
	if s.Normalizer == nil {
		return FallbackNormalize(query)
	}
	return s.Normalizer.Normalize(ctx, query)
}

// embedAndSearch embeds text and queries the index, wrapping failures in
// EmbeddingError and SearchError.
func (s *MatcherService) embedAndSearch(ctx context.Context, text string, topK int) ([]vectorstore.Hit, error) {
	start := time.Now()
	vector, err := s.Embedder.GenerateEmbedding(ctx, text)
	metrics.ObserveStage(metrics.StageEmbed, start, err)
	if err != nil {
		return nil, &EmbeddingError{Err: err}
	}

	start = time.Now()
	hits, err := s.Index.Query(ctx, vector, topK)
	metrics.ObserveStage(metrics.StageSearch, start, err)
	if err != nil {
		return nil, &SearchError{Err: err}
	}
	return hits, nil
}

// enrich fills SimilarVideos for every result concurrently. A failed lookup
// leaves that result with an empty list.
func (s *MatcherService) enrich(ctx context.Context, results []models.MatchResult, count int) {
	if s.Videos == nil {
		return
	}

	var g errgroup.Group
	g.SetLimit(enrichConcurrency)
	for i := range results {
		g.Go(func() error {
			start := time.Now()
			videos, err := s.Videos.SearchRecipeVideos(ctx, results[i].DishName, count)
			metrics.ObserveStage(metrics.StageEnrich, start, err)
			if err != nil {
				logger.FromContext(ctx).Warn("video enrichment failed",
					zap.Error(&EnrichmentError{Dish: results[i].DishName, Err: err}),
				)
				videos = nil
			}
			if videos == nil {
				videos = []models.VideoInfo{}
			}
			results[i].SimilarVideos = videos
			return nil
		})
	}
	_ = g.Wait()
}

func hitToResult(hit vectorstore.Hit, matchedQuery string, scored bool) models.MatchResult {
	r := hit.Record
	result := models.MatchResult{
		DishName:      r.DishName,
		Ingredients:   r.Ingredients,
		CookingSteps:  r.CookingSteps,
		Story:         r.Story,
		ThumbnailURL:  r.ThumbnailURL,
		RecipeURL:     NormalizeRecipeURL(r.SourceRecipeURL),
		YoutubeLink:   r.SourceVideoURL,
		SimilarVideos: []models.VideoInfo{},
		MatchedQuery:  matchedQuery,
	}
	if scored {
		score := hit.Score
		result.MatchScore = &score
	}
	return result
}

func sortByScore(results []models.MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score() > results[j].Score()
	})
}
