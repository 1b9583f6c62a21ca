package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/dishfinder-api/internal/calendar"
	"github.com/windoze95/dishfinder-api/internal/logger"
	"github.com/windoze95/dishfinder-api/internal/models"
	"github.com/windoze95/dishfinder-api/internal/service"
	"go.uber.org/zap"
)

// FestivalCalendar looks up festival dates.
type FestivalCalendar interface {
	GetFestivalsForYear(ctx context.Context, year int) (map[string][]models.Festival, error)
	GetFestivalsForMonth(ctx context.Context, year int, month time.Month) ([]models.Festival, error)
}

// FestivalResolver maps festivals to recipes.
type FestivalResolver interface {
	Resolve(ctx context.Context, festivals []models.Festival, dishesPerFestival, recipesPerDish int) map[string][]models.MatchResult
}

// FestivalHandler serves festival dates and festival recipes.
type FestivalHandler struct {
	Calendar FestivalCalendar
	Resolver FestivalResolver
	now      func() time.Time
}

// NewFestivalHandler creates a new FestivalHandler.
func NewFestivalHandler(cal FestivalCalendar, resolver FestivalResolver) *FestivalHandler {
	return &FestivalHandler{Calendar: cal, Resolver: resolver, now: time.Now}
}

// ListFestivals handles GET /v1/festivals
// Without a month the whole year is returned grouped by month.
func (h *FestivalHandler) ListFestivals(c *gin.Context) {
	ctx := c.Request.Context()
	now := h.now()

	year, err := parseIntQuery(c, "year", now.Year(), 2000, 2100)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	month, err := parseIntQuery(c, "month", 0, 1, 12)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if month == 0 {
		grouped, err := h.Calendar.GetFestivalsForYear(ctx, year)
		if err != nil {
			logger.FromContext(ctx).Error("failed to fetch festivals", zap.Int("year", year), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch festivals"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"year": year, "festivals": grouped})
		return
	}

	festivals, err := h.Calendar.GetFestivalsForMonth(ctx, year, time.Month(month))
	if err != nil {
		logger.FromContext(ctx).Error("failed to fetch festivals", zap.Int("year", year), zap.Int("month", month), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch festivals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"month":     calendar.MonthKey(year, time.Month(month)),
		"festivals": festivals,
	})
}

// FestivalRecipes handles GET /v1/festivals/recipes
// Year and month default to the current month.
func (h *FestivalHandler) FestivalRecipes(c *gin.Context) {
	ctx := c.Request.Context()
	now := h.now()

	year, err := parseIntQuery(c, "year", now.Year(), 2000, 2100)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	month, err := parseIntQuery(c, "month", int(now.Month()), 1, 12)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dishes, err := parseIntQuery(c, "dishes", service.DefaultDishesPerFestival, 1, 10)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	recipes, err := parseIntQuery(c, "recipes", service.DefaultRecipesPerDish, 1, 10)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	festivals, err := h.Calendar.GetFestivalsForMonth(ctx, year, time.Month(month))
	if err != nil {
		logger.FromContext(ctx).Error("failed to fetch festivals", zap.Int("year", year), zap.Int("month", month), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch festivals"})
		return
	}
	if len(festivals) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No festivals found for this month"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"month":     calendar.MonthKey(year, time.Month(month)),
		"festivals": festivals,
		"recipes":   h.Resolver.Resolve(ctx, festivals, dishes, recipes),
	})
}
