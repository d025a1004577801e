// Package handlers exposes the AR scaling pipeline over HTTP.
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openheritage/arscale/internal/config"
	"github.com/openheritage/arscale/internal/fetch"
	"github.com/openheritage/arscale/internal/glb"
	"github.com/openheritage/arscale/internal/scaling"
	"github.com/openheritage/arscale/internal/service"
)

type ModelHandler struct {
	scaler *service.Scaler
	cfg    *config.Config
	logger *slog.Logger
}

func NewModelHandler(scaler *service.Scaler, cfg *config.Config, logger *slog.Logger) *ModelHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModelHandler{scaler: scaler, cfg: cfg, logger: logger}
}

// GetARModel serves GET /api/ar/model?url=...&maxDimension=...: the GLB
// payload, scaled down when it exceeds the AR envelope, with the scaling
// decision in response headers.
func (h *ModelHandler) GetARModel(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		badRequest(c, "url query parameter is required")
		return
	}
	if err := service.ValidateSourceURL(rawURL); err != nil {
		badRequest(c, err.Error())
		return
	}
	u, err := url.Parse(rawURL)
	if err != nil || !h.cfg.HostAllowed(u.Hostname()) {
		badRequest(c, fmt.Sprintf("source host %q is not allowed", hostOf(u)))
		return
	}

	maxDim, ok := h.parseMaxDimension(c)
	if !ok {
		return
	}

	res, err := h.scaler.ScaleForAR(c.Request.Context(), rawURL, service.Options{MaxDimension: maxDim})
	if err != nil {
		h.writeError(c, rawURL, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=3600")
	c.Header("X-Scale-Factor", strconv.FormatFloat(res.Result.ScaleFactor, 'f', 6, 64))
	c.Header("X-Scale-Applied", strconv.FormatBool(res.Result.IsScaled))
	c.Header("X-Original-Dimensions", res.Result.OriginalDimensions.String())
	c.Header("X-Scaled-Dimensions", res.Result.ScaledDimensions.String())
	if res.FromCache {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	c.Data(http.StatusOK, res.ContentType, res.Payload)
}

// ScalingInfo serves GET /api/ar/scaling-info: the scaling decision for
// explicit dimensions, without touching any asset. The browser preview
// uses it so client and server never disagree on the numbers.
func (h *ModelHandler) ScalingInfo(c *gin.Context) {
	dims := scaling.Dimensions{}
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"width", &dims.Width},
		{"height", &dims.Height},
		{"depth", &dims.Depth},
	} {
		v, err := strconv.ParseFloat(c.Query(p.name), 64)
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			badRequest(c, fmt.Sprintf("%s must be a non-negative number", p.name))
			return
		}
		*p.dst = v
	}

	maxDim, ok := h.parseMaxDimension(c)
	if !ok {
		return
	}
	if maxDim == 0 {
		maxDim = h.cfg.DefaultMaxDimension
	}

	c.JSON(http.StatusOK, scaling.Calculate(dims, maxDim))
}

// parseMaxDimension reads the optional maxDimension query parameter.
// Returns 0 when absent; writes a 400 response and returns ok=false on
// malformed or out-of-range values.
func (h *ModelHandler) parseMaxDimension(c *gin.Context) (float64, bool) {
	raw := c.Query("maxDimension")
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		badRequest(c, "maxDimension must be a number")
		return 0, false
	}
	if !scaling.ValidMaxDimension(v) {
		badRequest(c, fmt.Sprintf("maxDimension must be within (0, %v]", scaling.MaxAllowedDimension))
		return 0, false
	}
	return v, true
}

func (h *ModelHandler) writeError(c *gin.Context, rawURL string, err error) {
	var status int
	var code string
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		status, code = http.StatusBadRequest, "invalid_request"
	case errors.Is(err, fetch.ErrDownload):
		status, code = http.StatusBadGateway, "upstream_error"
	case errors.Is(err, glb.ErrDecode), errors.Is(err, glb.ErrNoScene):
		status, code = http.StatusUnprocessableEntity, "unprocessable_model"
	default:
		status, code = http.StatusInternalServerError, "internal_error"
	}

	h.logger.Error("model scaling failed",
		"url", rawURL,
		"status", status,
		"code", code,
		"error", err,
	)
	c.AbortWithStatusJSON(status, gin.H{"error": code, "message": err.Error()})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": message})
}

func hostOf(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.Hostname()
}
