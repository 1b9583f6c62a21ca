package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/windoze95/dishfinder-api/internal/metrics"
)

func TestHTTPMetrics(t *testing.T) {
	r := gin.New()
	r.Use(HTTPMetrics())
	r.GET("/items/:id", func(c *gin.Context) {
		c.Status(http.StatusTeapot)
	})

	matched := metrics.HTTPRequestsTotal.WithLabelValues("GET", "/items/:id", "418")
	unmatched := metrics.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")
	beforeMatched := testutil.ToFloat64(matched)
	beforeUnmatched := testutil.ToFloat64(unmatched)

	for _, path := range []string{"/items/1", "/items/2", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}

	if got := testutil.ToFloat64(matched) - beforeMatched; got != 2 {
		t.Errorf("matched route count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(unmatched) - beforeUnmatched; got != 1 {
		t.Errorf("unmatched count = %v, want 1", got)
	}
}
