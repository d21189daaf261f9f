package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/uni-adp-api/internal/service"
)

func TestMetricsSkipsScrapeEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewMetricsService()

	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	router := gin.New()
	router.Use(Metrics(svc))
	router.GET("/metrics", ok)
	router.GET("/health", ok)
	router.GET("/lecturers", ok)

	for _, path := range []string{"/metrics", "/health", "/lecturers"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	// Only the portal route lands in the counters.
	assert.Equal(t, uint64(1), svc.Snapshot().RequestsTotal)
}

func TestMetricsNilService(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(Metrics(nil))
	router.GET("/rooms", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
