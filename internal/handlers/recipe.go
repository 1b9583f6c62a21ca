package handlers

import (
	"net/http"
	"strings"

	goaway "github.com/TwiN/go-away"
	"github.com/gin-gonic/gin"
	"github.com/windoze95/dishfinder-api/internal/ai"
	"github.com/windoze95/dishfinder-api/internal/logger"
	"github.com/windoze95/dishfinder-api/internal/service"
	"go.uber.org/zap"
)

const (
	maxQueryLength = 200
	maxTopK        = 50
)

// RecipeHandler serves recipe matching by ingredients, photo and query.
type RecipeHandler struct {
	Matcher   *service.MatcherService
	Vision    ai.VisionProvider
	Archive   UploadArchive
	profanity *goaway.ProfanityDetector
}

// NewRecipeHandler creates a new RecipeHandler. archive may be nil.
func NewRecipeHandler(matcher *service.MatcherService, vision ai.VisionProvider, archive UploadArchive) *RecipeHandler {
	return &RecipeHandler{
		Matcher:   matcher,
		Vision:    vision,
		Archive:   archive,
		profanity: goaway.NewProfanityDetector().WithSanitizeLeetSpeak(true).WithSanitizeSpecialCharacters(true).WithSanitizeAccents(false),
	}
}

// ByIngredients handles GET /v1/recipes/by-ingredients
func (h *RecipeHandler) ByIngredients(c *gin.Context) {
	ingredients := parseIngredients(c)
	if len(ingredients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No ingredients provided"})
		return
	}
	topK, err := parseIntQuery(c, "top_k", service.DefaultIngredientTopK, 1, maxTopK)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.Matcher.MatchByIngredients(c.Request.Context(), ingredients, topK)
	if err != nil {
		respondMatchError(c, err, "Failed to match recipes")
		return
	}
	if len(results) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No matching recipe found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": results})
}

// Search handles GET /v1/recipes/search
func (h *RecipeHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query is required"})
		return
	}
	if len(query) > maxQueryLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query is too long"})
		return
	}
	if h.profanity.IsProfane(query) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query contains inappropriate language"})
		return
	}
	topK, err := parseIntQuery(c, "top_k", service.DefaultQueryTopK, 1, maxTopK)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.Matcher.MatchByQuery(c.Request.Context(), query, topK)
	if err != nil {
		respondMatchError(c, err, "Failed to search recipes")
		return
	}
	if len(results) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No matching recipe found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": results})
}

// FromImage handles POST /v1/recipes/from-image
func (h *RecipeHandler) FromImage(c *gin.Context) {
	up, err := readImageUpload(c)
	if err != nil {
		respondUploadError(c, err)
		return
	}
	ctx := c.Request.Context()
	archiveUpload(ctx, h.Archive, up)

	ingredients, err := h.Vision.DetectIngredients(ctx, up.data)
	if err != nil {
		logger.FromContext(ctx).Error("failed to detect ingredients", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process image"})
		return
	}
	if len(ingredients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No ingredients detected"})
		return
	}

	results, err := h.Matcher.MatchByIngredients(ctx, ingredients, service.DefaultIngredientTopK)
	if err != nil {
		respondMatchError(c, err, "Failed to match recipes")
		return
	}
	if len(results) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No matching recipes found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"detected_items": ingredients,
		"recipes":        results,
	})
}
