package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/dishfinder-api/internal/logger"
	"github.com/windoze95/dishfinder-api/internal/service"
	"go.uber.org/zap"
)

// Ingester loads the recipe feed into the index.
type Ingester interface {
	IngestAll(ctx context.Context) (*service.IngestSummary, error)
}

// AdminHandler serves administrative operations.
type AdminHandler struct {
	Ingester Ingester
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(ingester Ingester) *AdminHandler {
	return &AdminHandler{Ingester: ingester}
}

// Ingest handles POST /v1/admin/ingest
func (h *AdminHandler) Ingest(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx).With(zap.String("subject", c.GetString("subject")))
	log.Info("recipe ingestion requested")

	summary, err := h.Ingester.IngestAll(ctx)
	if err != nil {
		log.Error("recipe ingestion failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch recipe feed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": summary})
}
