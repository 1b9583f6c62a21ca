package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/dishfinder-api/internal/ai"
	"github.com/windoze95/dishfinder-api/internal/logger"
	"go.uber.org/zap"
)

// maxImageSize is the largest accepted upload.
const maxImageSize = 10 << 20

// allowedImageTypes is the set of accepted image file extensions.
var allowedImageTypes = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// UploadArchive keeps a copy of uploaded photos.
type UploadArchive interface {
	StoreUpload(ctx context.Context, filename string, data []byte, contentType string) (string, error)
}

// upload is a validated image from a multipart request.
type upload struct {
	filename    string
	contentType string
	data        []byte
}

// errUpload carries a client-facing message for a rejected upload.
type errUpload struct{ msg string }

func (e *errUpload) Error() string { return e.msg }

// readImageUpload reads and validates the multipart "file" field.
func readImageUpload(c *gin.Context) (*upload, error) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		return nil, &errUpload{"No file provided"}
	}
	defer file.Close()

	if header.Filename == "" {
		return nil, &errUpload{"No selected file"}
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageTypes[ext] {
		return nil, &errUpload{"Invalid file type. Please upload a jpg, jpeg or png image"}
	}
	if header.Size > maxImageSize {
		return nil, &errUpload{"Image exceeds maximum size of 10MB"}
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, &errUpload{"Image file is empty"}
	}
	if len(data) > maxImageSize {
		return nil, &errUpload{"Image exceeds maximum size of 10MB"}
	}

	return &upload{
		filename:    header.Filename,
		contentType: header.Header.Get("Content-Type"),
		data:        data,
	}, nil
}

// respondUploadError writes 400 for a rejected upload and 500 otherwise.
func respondUploadError(c *gin.Context, err error) {
	var rejected *errUpload
	if errors.As(err, &rejected) {
		c.JSON(http.StatusBadRequest, gin.H{"error": rejected.msg})
		return
	}
	logger.FromContext(c.Request.Context()).Error("failed to read upload", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
}

// archiveUpload stores the photo when an archive is configured. Failures are
// logged and do not affect the request.
func archiveUpload(ctx context.Context, archive UploadArchive, up *upload) {
	if archive == nil {
		return
	}
	location, err := archive.StoreUpload(ctx, up.filename, up.data, up.contentType)
	if err != nil {
		logger.FromContext(ctx).Warn("failed to archive upload", zap.String("filename", up.filename), zap.Error(err))
		return
	}
	logger.FromContext(ctx).Debug("archived upload", zap.String("location", location))
}

// ImageHandler handles ingredient detection on uploaded photos.
type ImageHandler struct {
	Vision  ai.VisionProvider
	Archive UploadArchive
}

// NewImageHandler creates a new ImageHandler. archive may be nil.
func NewImageHandler(vision ai.VisionProvider, archive UploadArchive) *ImageHandler {
	return &ImageHandler{Vision: vision, Archive: archive}
}

// DetectIngredients handles POST /v1/ingredients/detect
func (h *ImageHandler) DetectIngredients(c *gin.Context) {
	up, err := readImageUpload(c)
	if err != nil {
		respondUploadError(c, err)
		return
	}
	ctx := c.Request.Context()
	archiveUpload(ctx, h.Archive, up)

	items, err := h.Vision.DetectIngredients(ctx, up.data)
	if err != nil {
		logger.FromContext(ctx).Error("failed to detect ingredients", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process image"})
		return
	}
	if items == nil {
		items = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"filename":       up.filename,
		"detected_items": items,
	})
}
