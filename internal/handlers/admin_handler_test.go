package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/dishfinder-api/internal/service"
	"github.com/windoze95/dishfinder-api/internal/testutil"
)

type fakeIngester struct {
	summary *service.IngestSummary
	err     error
}

func (f *fakeIngester) IngestAll(ctx context.Context) (*service.IngestSummary, error) {
	return f.summary, f.err
}

func TestIngest_Success(t *testing.T) {
	h := NewAdminHandler(&fakeIngester{summary: &service.IngestSummary{Fetched: 10, Stored: 8, Skipped: 1, Failed: 1}})

	r := gin.New()
	r.POST("/admin/ingest", h.Ingest)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/admin/ingest", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var body struct {
		Result service.IngestSummary `json:"result"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Result.Stored != 8 || body.Result.Fetched != 10 {
		t.Errorf("result = %+v", body.Result)
	}
}

func TestIngest_FeedFailure(t *testing.T) {
	h := NewAdminHandler(&fakeIngester{err: errors.New("feed down")})

	r := gin.New()
	r.POST("/admin/ingest", h.Ingest)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/admin/ingest", nil))

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}
}

func TestDetectIngredients_Handler(t *testing.T) {
	vision := &testutil.MockVisionProvider{
		DetectIngredientsFunc: func(ctx context.Context, imageData []byte) ([]string, error) {
			if string(imageData) != "png-bytes" {
				t.Errorf("image data = %q", imageData)
			}
			return []string{"onion", "tomato"}, nil
		},
	}
	archive := &fakeArchive{}
	h := NewImageHandler(vision, archive)

	r := gin.New()
	r.POST("/ingredients/detect", h.DetectIngredients)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/ingredients/detect", "Basket.PNG", []byte("png-bytes")))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d. body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	var body struct {
		Filename      string   `json:"filename"`
		DetectedItems []string `json:"detected_items"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Filename != "Basket.PNG" || len(body.DetectedItems) != 2 {
		t.Errorf("body = %+v", body)
	}
	if len(archive.names) != 1 {
		t.Errorf("archived %d uploads, want 1", len(archive.names))
	}
}

func TestDetectIngredients_Handler_EmptyFile(t *testing.T) {
	h := NewImageHandler(&testutil.MockVisionProvider{}, nil)

	r := gin.New()
	r.POST("/ingredients/detect", h.DetectIngredients)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/ingredients/detect", "empty.jpg", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
