package calendar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/windoze95/dishfinder-api/internal/cache"
	"github.com/windoze95/dishfinder-api/internal/logger"
	"github.com/windoze95/dishfinder-api/internal/metrics"
	"github.com/windoze95/dishfinder-api/internal/models"
	"go.uber.org/zap"
)

const festivalCacheTTL = 30 * 24 * time.Hour

// festivalMappings maps a keyword in a holiday name to the recipe category
// used for it. The first matching keyword wins.
var festivalMappings = []struct {
	keyword  string
	category string
}{
	{"eid", "Eid Recipes"},
	{"milad un-nabi", "Eid Recipes"},
	{"diwali", "Diwali Recipes"},
	{"durga", "durga-puja"},
	{"onam", "Onam recipes"},
	{"navratri", "Navratri Recipes"},
	{"raksha bandhan", "Raksha Bandhan Recipes"},
}

// NormalizeFestivalName maps a holiday name to its recipe category, or
// returns it unchanged when no keyword matches.
func NormalizeFestivalName(name string) string {
	lower := strings.ToLower(name)
	for _, m := range festivalMappings {
		if strings.Contains(lower, m.keyword) {
			return m.category
		}
	}
	return name
}

// MonthKey formats the grouping key for a month, e.g. "September 2025".
func MonthKey(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", month.String(), year)
}

// GroupByMonth buckets events under their MonthKey with mapped names. Repeats
// of the same mapped name within a month are dropped and each month is
// sorted by date.
func GroupByMonth(events []Event) map[string][]models.Festival {
	grouped := make(map[string][]models.Festival)
	seen := make(map[string]bool)

	for _, e := range events {
		name := strings.TrimSpace(e.Summary)
		if name == "" {
			continue
		}
		date, err := time.Parse(time.DateOnly, e.Date)
		if err != nil {
			continue
		}

		mapped := NormalizeFestivalName(name)
		month := MonthKey(date.Year(), date.Month())
		dupKey := month + "_" + mapped
		if seen[dupKey] {
			continue
		}
		seen[dupKey] = true

		grouped[month] = append(grouped[month], models.Festival{
			Name: mapped,
			Date: date.Format(time.DateOnly),
		})
	}

	for _, festivals := range grouped {
		sort.SliceStable(festivals, func(i, j int) bool {
			return festivals[i].Date < festivals[j].Date
		})
	}
	return grouped
}

// Service serves festival dates grouped by month, cached per year.
type Service struct {
	api        EventsAPI
	cache      cache.Cache
	calendarID string
}

// NewService creates a Service. A nil cache disables caching.
func NewService(api EventsAPI, c cache.Cache, calendarID string) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{api: api, cache: c, calendarID: calendarID}
}

// GetFestivalsForYear returns the year's festivals keyed by MonthKey.
func (s *Service) GetFestivalsForYear(ctx context.Context, year int) (map[string][]models.Festival, error) {
	log := logger.FromContext(ctx).With(zap.Int("year", year))
	key := fmt.Sprintf("festivals:%d", year)

	var cached map[string][]models.Festival
	ok, err := s.cache.Get(ctx, key, &cached)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("festivals", "error").Inc()
		log.Warn("festival cache read failed", zap.Error(err))
	case ok && len(cached) > 0:
		metrics.CacheLookups.WithLabelValues("festivals", "hit").Inc()
		return cached, nil
	default:
		metrics.CacheLookups.WithLabelValues("festivals", "miss").Inc()
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	events, err := s.api.ListEvents(ctx, s.calendarID, from, from.AddDate(1, 0, 0))
	if err != nil {
		return nil, err
	}

	grouped := GroupByMonth(events)
	if len(grouped) == 0 {
		return grouped, nil
	}
	if err := s.cache.Set(ctx, key, grouped, festivalCacheTTL); err != nil {
		log.Warn("festival cache write failed", zap.Error(err))
	}
	return grouped, nil
}

// GetFestivalsForMonth returns one month's festivals sorted by date. The
// slice is never nil.
func (s *Service) GetFestivalsForMonth(ctx context.Context, year int, month time.Month) ([]models.Festival, error) {
	grouped, err := s.GetFestivalsForYear(ctx, year)
	if err != nil {
		return nil, err
	}
	festivals := grouped[MonthKey(year, month)]
	if festivals == nil {
		festivals = []models.Festival{}
	}
	return festivals, nil
}
