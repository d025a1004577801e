package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func fire(engine *gin.Engine) int {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec.Code
}

func TestRateLimitRejectsAboveBurst(t *testing.T) {
	engine := gin.New()
	engine.Use(RateLimit(1, 1))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, fire(engine))
	assert.Equal(t, http.StatusTooManyRequests, fire(engine))
}

func TestRateLimitDisabled(t *testing.T) {
	engine := gin.New()
	engine.Use(RateLimit(0, 0))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusOK, fire(engine))
	}
}
