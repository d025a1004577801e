// Package service orchestrates the AR scaling pipeline: cache check,
// origin fetch, decode, bounds, scale decision, rewrite, cache store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"path"
	"strings"

	"github.com/VictoriaMetrics/metrics"
	"golang.org/x/sync/singleflight"

	"github.com/openheritage/arscale/internal/cache"
	"github.com/openheritage/arscale/internal/fetch"
	"github.com/openheritage/arscale/internal/glb"
	"github.com/openheritage/arscale/internal/scaling"
)

// ErrInvalidRequest marks caller input rejected before any network or
// cache activity.
var ErrInvalidRequest = errors.New("invalid scaling request")

// Options tune one scaling request.
type Options struct {
	// MaxDimension is the AR envelope in meters; zero means the
	// configured default. Values outside (0, 100] are rejected.
	MaxDimension float64

	// ForceScale recomputes the factor from the envelope even when the
	// model already fits.
	ForceScale bool

	// CustomScaleFactor, when positive, bypasses the automatic decision
	// entirely.
	CustomScaleFactor float64
}

// ScaledModel is the outcome of a scaling request: the (possibly
// untouched) payload plus the decision metadata.
type ScaledModel struct {
	Payload     []byte
	ContentType string
	Result      scaling.Result
	FromCache   bool
}

// Scaler is safe for concurrent use. Concurrent misses on one cache key
// collapse into a single pipeline run.
type Scaler struct {
	cache               *cache.ModelCache
	fetcher             fetch.Fetcher
	defaultMaxDimension float64
	logger              *slog.Logger
	group               singleflight.Group

	cacheHits   *metrics.Counter
	cacheMisses *metrics.Counter
}

func New(modelCache *cache.ModelCache, fetcher fetch.Fetcher, defaultMaxDimension float64, logger *slog.Logger) *Scaler {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultMaxDimension <= 0 {
		defaultMaxDimension = scaling.DefaultMaxDimension
	}
	return &Scaler{
		cache:               modelCache,
		fetcher:             fetcher,
		defaultMaxDimension: defaultMaxDimension,
		logger:              logger,
		cacheHits:           metrics.GetOrCreateCounter(`armodel_cache_events_total{result="hit"}`),
		cacheMisses:         metrics.GetOrCreateCounter(`armodel_cache_events_total{result="miss"}`),
	}
}

// ScaleForAR returns an AR-ready payload for the model at sourceURL.
// Unscaled models pass through byte-identical to the origin bytes.
func (s *Scaler) ScaleForAR(ctx context.Context, sourceURL string, opts Options) (*ScaledModel, error) {
	maxDim := opts.MaxDimension
	if maxDim == 0 {
		maxDim = s.defaultMaxDimension
	}
	if math.IsNaN(maxDim) || math.IsInf(maxDim, 0) || !scaling.ValidMaxDimension(maxDim) {
		return nil, fmt.Errorf("%w: maxDimension %v outside (0, %v]", ErrInvalidRequest, maxDim, scaling.MaxAllowedDimension)
	}
	if err := ValidateSourceURL(sourceURL); err != nil {
		return nil, err
	}

	key := cache.Key(sourceURL, maxDim)
	if entry, ok := s.cache.Get(key); ok {
		s.cacheHits.Inc()
		s.logger.Debug("serving scaled model from cache", "url", sourceURL, "max_dimension", maxDim)
		return &ScaledModel{
			Payload:     entry.Payload,
			ContentType: entry.ContentType,
			Result:      entry.Result,
			FromCache:   true,
		}, nil
	}
	s.cacheMisses.Inc()

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.compute(ctx, sourceURL, key, maxDim, opts)
	})
	if err != nil {
		return nil, err
	}
	return v.(*ScaledModel), nil
}

func (s *Scaler) compute(ctx context.Context, sourceURL, key string, maxDim float64, opts Options) (*ScaledModel, error) {
	data, contentType, err := s.fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	doc, err := glb.Decode(data)
	if err != nil {
		return nil, err
	}

	dims, err := glb.ExtractBounds(doc)
	if err != nil {
		return nil, err
	}

	result := decide(dims, maxDim, opts)

	payload := data
	if result.IsScaled {
		if err := glb.ApplyScale(doc, result.ScaleFactor); err != nil {
			return nil, err
		}
		if payload, err = glb.Encode(doc); err != nil {
			return nil, fmt.Errorf("rewrite model: %w", err)
		}
		contentType = glb.ContentType
	}

	// A cancelled request must not leave a partial cache entry behind.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.cache.Put(key, &cache.Entry{
		Payload:     payload,
		ContentType: contentType,
		Result:      result,
	})

	s.logger.Info("model scaling computed",
		"url", sourceURL,
		"max_dimension", maxDim,
		"scale_factor", result.ScaleFactor,
		"is_scaled", result.IsScaled,
		"largest_axis", result.LargestAxis,
		"original_dimensions", result.OriginalDimensions.String(),
		"payload_size", len(payload),
	)

	return &ScaledModel{
		Payload:     payload,
		ContentType: contentType,
		Result:      result,
	}, nil
}

func decide(dims scaling.Dimensions, maxDim float64, opts Options) scaling.Result {
	if opts.CustomScaleFactor > 0 {
		return scaling.WithFactor(dims, opts.CustomScaleFactor)
	}
	result := scaling.Calculate(dims, maxDim)
	if opts.ForceScale && !result.IsScaled && result.LargestDimension > 0 {
		result = scaling.WithFactor(dims, maxDim/result.LargestDimension)
	}
	return result
}

// ValidateSourceURL rejects anything but an absolute http(s) or s3 URL
// referencing a .glb asset. Host allow-listing lives at the HTTP layer.
func ValidateSourceURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: source url must be absolute", ErrInvalidRequest)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "s3":
	default:
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidRequest, u.Scheme)
	}
	if !strings.EqualFold(path.Ext(u.Path), ".glb") {
		return fmt.Errorf("%w: source url must reference a .glb asset", ErrInvalidRequest)
	}
	return nil
}
