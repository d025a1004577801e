// Package scaling computes proportional scale factors so a 3D model fits
// within a practical AR viewing envelope. It is shared by the server-side
// model rewriting pipeline and the JSON preview endpoint consumed by the
// browser UI, so both always agree on the numbers.
package scaling

import "fmt"

const (
	// DefaultMaxDimension is the AR viewing envelope applied when a
	// request does not ask for a specific limit, in meters.
	DefaultMaxDimension = 2.0

	// MaxAllowedDimension bounds per-request limits. Requests outside
	// (0, MaxAllowedDimension] are rejected, not clamped.
	MaxAllowedDimension = 100.0
)

// Axis names one side of a model's bounding box.
type Axis string

const (
	AxisWidth  Axis = "width"
	AxisHeight Axis = "height"
	AxisDepth  Axis = "depth"
)

// Dimensions is the full extent of a model's axis-aligned bounding box,
// in meters. Zero on any axis is valid (flat or point-like geometry).
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

// String renders the dimensions as "WxHxD" with millimeter precision,
// the format used in response headers.
func (d Dimensions) String() string {
	return fmt.Sprintf("%.3fx%.3fx%.3f", d.Width, d.Height, d.Depth)
}

// Scaled returns the dimensions multiplied componentwise by factor.
func (d Dimensions) Scaled(factor float64) Dimensions {
	return Dimensions{
		Width:  d.Width * factor,
		Height: d.Height * factor,
		Depth:  d.Depth * factor,
	}
}

// Largest returns the longest extent and the axis attaining it. Ties
// resolve height first, then depth, then width. The order is part of the
// wire contract; callers rely on it being stable across releases.
func (d Dimensions) Largest() (float64, Axis) {
	if d.Height >= d.Width && d.Height >= d.Depth {
		return d.Height, AxisHeight
	}
	if d.Depth >= d.Width && d.Depth >= d.Height {
		return d.Depth, AxisDepth
	}
	return d.Width, AxisWidth
}

// Result describes a scaling decision for one model.
type Result struct {
	ScaleFactor        float64    `json:"scaleFactor"`
	IsScaled           bool       `json:"isScaled"`
	OriginalDimensions Dimensions `json:"originalDimensions"`
	ScaledDimensions   Dimensions `json:"scaledDimensions"`
	LargestDimension   float64    `json:"largestDimension"`
	LargestAxis        Axis       `json:"largestAxis"`
}

// Calculate decides whether a model of the given extents needs shrinking
// to fit within maxDimension and by how much. Scaling is uniform across
// all axes. A model exactly at the limit is left alone, as is degenerate
// zero-extent geometry (no division by zero).
//
// Pure and safe for concurrent use.
func Calculate(dims Dimensions, maxDimension float64) Result {
	largest, _ := dims.Largest()

	factor := 1.0
	if largest > maxDimension {
		factor = maxDimension / largest
	}

	return WithFactor(dims, factor)
}

// WithFactor builds a Result for an externally chosen scale factor,
// bypassing the automatic decision. Used for forced and custom scaling.
func WithFactor(dims Dimensions, factor float64) Result {
	largest, axis := dims.Largest()
	return Result{
		ScaleFactor:        factor,
		IsScaled:           factor != 1.0,
		OriginalDimensions: dims,
		ScaledDimensions:   dims.Scaled(factor),
		LargestDimension:   largest,
		LargestAxis:        axis,
	}
}

// ValidMaxDimension reports whether v is a usable per-request limit.
func ValidMaxDimension(v float64) bool {
	return v > 0 && v <= MaxAllowedDimension
}
