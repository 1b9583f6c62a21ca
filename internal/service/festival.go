package service

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/windoze95/dishfinder-api/internal/ai"
	"github.com/windoze95/dishfinder-api/internal/logger"
	"github.com/windoze95/dishfinder-api/internal/metrics"
	"github.com/windoze95/dishfinder-api/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultDishesPerFestival is how many dishes are requested from the LLM.
	DefaultDishesPerFestival = 5
	// DefaultRecipesPerDish is how many index entries are fetched per dish.
	DefaultRecipesPerDish = 3

	// festivalScoreFloor drops weak matches instead of returning them as noise.
	festivalScoreFloor  = 0.7
	festivalConcurrency = 4
)

// enumerationMarker matches list prefixes such as "1.", "2)", "-" or "•".
var enumerationMarker = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s*`)

// DishSearcher looks up recipes for a single dish name.
type DishSearcher interface {
	SearchDish(ctx context.Context, dish string, topK int) ([]models.MatchResult, error)
}

// FestivalService resolves festivals to recipes through LLM-suggested dishes.
type FestivalService struct {
	AIProvider ai.TextProvider
	Searcher   DishSearcher
}

// NewFestivalService creates a new FestivalService.
func NewFestivalService(aiProvider ai.TextProvider, searcher DishSearcher) *FestivalService {
	return &FestivalService{
		AIProvider: aiProvider,
		Searcher:   searcher,
	}
}

// Resolve returns the recipes for each festival, keyed by festival name.
// Every festival gets an entry. A festival whose dish suggestions fail maps
// to an empty list without affecting the others.
func (s *FestivalService) Resolve(ctx context.Context, festivals []models.Festival, dishesPerFestival, recipesPerDish int) map[string][]models.MatchResult {
	if dishesPerFestival <= 0 {
		dishesPerFestival = DefaultDishesPerFestival
	}
	if recipesPerDish <= 0 {
		recipesPerDish = DefaultRecipesPerDish
	}

	var (
		mu      sync.Mutex
		results = make(map[string][]models.MatchResult, len(festivals))
		g       errgroup.Group
	)
	g.SetLimit(festivalConcurrency)

	var names []string
	for _, f := range festivals {
		if _, seen := results[f.Name]; seen {
			continue
		}
		results[f.Name] = []models.MatchResult{}
		names = append(names, f.Name)
	}

	for _, name := range names {
		g.Go(func() error {
			matches := s.resolveFestival(ctx, name, dishesPerFestival, recipesPerDish)
			mu.Lock()
			results[name] = matches
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *FestivalService) resolveFestival(ctx context.Context, festival string, dishes, recipesPerDish int) []models.MatchResult {
	log := logger.FromContext(ctx).With(zap.String("festival", festival))

	candidates, err := s.suggestDishes(ctx, festival, dishes)
	if err != nil {
		log.Warn("festival dish suggestion failed", zap.Error(err))
		return []models.MatchResult{}
	}

	// Each search fills its own slot so ties keep candidate order.
	perDish := make([][]models.MatchResult, len(candidates))
	var g errgroup.Group
	for i, c := range candidates {
		g.Go(func() error {
			matches, err := s.Searcher.SearchDish(ctx, c.DishName, recipesPerDish)
			if err != nil {
				log.Warn("festival dish search failed", zap.String("dish", c.DishName), zap.Error(err))
				return nil
			}
			perDish[i] = matches
			return nil
		})
	}
	_ = g.Wait()

	var hits []models.MatchResult
	for _, matches := range perDish {
		hits = append(hits, matches...)
	}
	return collapseFestivalMatches(hits)
}

// suggestDishes asks the LLM for dish names, one per line.
func (s *FestivalService) suggestDishes(ctx context.Context, festival string, count int) ([]models.FestivalDishCandidate, error) {
	start := time.Now()
	resp, err := s.AIProvider.SuggestFestivalDishes(ctx, festival, count)
	metrics.ObserveStage(metrics.StageSuggest, start, err)
	if err != nil {
		return nil, err
	}

	names := ParseDishList(resp, count)
	candidates := make([]models.FestivalDishCandidate, len(names))
	for i, name := range names {
		candidates[i] = models.FestivalDishCandidate{FestivalName: festival, DishName: name}
	}
	return candidates, nil
}

// ParseDishList splits an LLM reply into at most limit dish names, stripping
// enumeration markers and blank lines.
func ParseDishList(text string, limit int) []string {
	var names []string
	for _, line := range strings.Split(text, "\n") {
		name := strings.TrimSpace(enumerationMarker.ReplaceAllString(line, ""))
		if name == "" {
			continue
		}
		names = append(names, name)
		if limit > 0 && len(names) == limit {
			break
		}
	}
	return names
}

// collapseFestivalMatches keeps matches above the score floor, collapses
// repeated dish names to their best-scoring entry and sorts by score.
func collapseFestivalMatches(hits []models.MatchResult) []models.MatchResult {
	best := make(map[string]int)
	out := make([]models.MatchResult, 0, len(hits))
	for _, h := range hits {
		if h.Score() <= festivalScoreFloor {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(h.DishName))
		if i, ok := best[key]; ok {
			if h.Score() > out[i].Score() {
				out[i] = h
			}
			continue
		}
		best[key] = len(out)
		out = append(out, h)
	}
	sortByScore(out)
	return out
}
