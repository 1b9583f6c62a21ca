package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/gin-gonic/gin"
	"github.com/windoze95/dishfinder-api/internal/logger"
	"github.com/windoze95/dishfinder-api/internal/service"
	"go.uber.org/zap"
)

// parseIntQuery reads an optional integer query parameter. A missing value
// yields def; anything outside [lo, hi] is an error.
func parseIntQuery(c *gin.Context, name string, def, lo, hi int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	if !govalidator.IsInt(raw) {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("%s must be between %d and %d", name, lo, hi)
	}
	return v, nil
}

// parseIngredients accepts repeated and comma-separated ingredients
// parameters and drops blanks.
func parseIngredients(c *gin.Context) []string {
	var out []string
	for _, raw := range c.QueryArray("ingredients") {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// respondMatchError maps a matching failure to an HTTP status.
func respondMatchError(c *gin.Context, err error, msg string) {
	var (
		invalid   *service.InvalidInputError
		embedErr  *service.EmbeddingError
		searchErr *service.SearchError
	)
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Message})
	case errors.As(err, &embedErr), errors.As(err, &searchErr):
		logger.FromContext(c.Request.Context()).Error(msg, zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": msg})
	default:
		logger.FromContext(c.Request.Context()).Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
