package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/windoze95/dishfinder-api/internal/ai"
	"github.com/windoze95/dishfinder-api/internal/logger"
	"github.com/windoze95/dishfinder-api/internal/metrics"
	"go.uber.org/zap"
)

// maxDishNameLength bounds an acceptable LLM answer in characters, not
// bytes. Anything longer is a non-compliant reply rather than a bare dish name.
const maxDishNameLength = 100

var (
	// fillerPattern matches request phrasing around a dish name. Longer
	// alternatives come first so "cooking" wins over "cook".
	fillerPattern = regexp.MustCompile(`(?i)\b(?:i want to make|how to make|recipe for|best way to|what's the|help me|can you|please|cooking|prepare|cook)\b`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// NormalizeService turns a free-text request into a dish-name phrase.
type NormalizeService struct {
	AIProvider ai.TextProvider
}

// NewNormalizeService creates a new NormalizeService. A nil provider means
// only the regex fallback is used.
func NewNormalizeService(aiProvider ai.TextProvider) *NormalizeService {
	return &NormalizeService{AIProvider: aiProvider}
}

// Normalize returns the dish name in rawQuery, lower-cased. LLM failures are
// logged and the regex fallback is used instead. The result is never empty
// for a non-blank query.
func (s *NormalizeService) Normalize(ctx context.Context, rawQuery string) string {
	start := time.Now()
	dish, err := s.extractWithLLM(ctx, rawQuery)
	metrics.ObserveStage(metrics.StageNormalize, start, err)
	if err == nil {
		return dish
	}

	logger.FromContext(ctx).Warn("dish name extraction fell back to regex",
		zap.Error(&NormalizationError{Query: rawQuery, Err: err}),
	)
	return FallbackNormalize(rawQuery)
}

func (s *NormalizeService) extractWithLLM(ctx context.Context, rawQuery string) (string, error) {
	if s.AIProvider == nil {
		return "", errors.New("no text provider configured")
	}

	resp, err := s.AIProvider.ExtractDishName(ctx, rawQuery)
	if err != nil {
		return "", err
	}

	dish := strings.Trim(strings.TrimSpace(resp), `"'`+"`")
	dish = whitespace.ReplaceAllString(strings.TrimSpace(dish), " ")
	if dish == "" {
		return "", errors.New("empty response")
	}
	if n := utf8.RuneCountInString(dish); n > maxDishNameLength {
		return "", fmt.Errorf("response of %d characters exceeds %d", n, maxDishNameLength)
	}
	return strings.ToLower(dish), nil
}

// FallbackNormalize strips filler phrases and trailing punctuation, collapses
// whitespace and lower-cases. If nothing is left, the lower-cased trimmed
// query is returned instead.
func FallbackNormalize(rawQuery string) string {
	s := fillerPattern.ReplaceAllString(rawQuery, " ")
	s = strings.TrimRight(strings.TrimSpace(s), "?!.,")
	s = whitespace.ReplaceAllString(strings.TrimSpace(s), " ")
	s = strings.ToLower(s)
	if s == "" {
		return strings.ToLower(strings.TrimSpace(rawQuery))
	}
	return s
}
