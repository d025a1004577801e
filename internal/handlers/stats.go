package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openheritage/arscale/internal/cache"
)

type StatsHandler struct {
	cache *cache.ModelCache
}

func NewStatsHandler(modelCache *cache.ModelCache) *StatsHandler {
	return &StatsHandler{cache: modelCache}
}

// Stats exposes cache introspection for operators.
func (h *StatsHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"entries":     h.cache.Size(),
		"ttl_seconds": int(h.cache.TTL().Seconds()),
		"keys":        h.cache.Keys(),
	})
}
