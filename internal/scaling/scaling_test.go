package scaling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateWithinLimitIsNoOp(t *testing.T) {
	cases := []Dimensions{
		{Width: 1, Height: 1.5, Depth: 1},
		{Width: 2, Height: 2, Depth: 2},
		{Width: 0.001, Height: 0.001, Depth: 0.001},
	}
	for _, dims := range cases {
		res := Calculate(dims, DefaultMaxDimension)
		assert.Equal(t, 1.0, res.ScaleFactor, "dims %v", dims)
		assert.False(t, res.IsScaled, "dims %v", dims)
		assert.Equal(t, dims, res.ScaledDimensions, "dims %v", dims)
	}
}

func TestCalculateShrinksOversizedModel(t *testing.T) {
	res := Calculate(Dimensions{Width: 50, Height: 30, Depth: 20}, 2.0)

	require.True(t, res.IsScaled)
	assert.InDelta(t, 0.04, res.ScaleFactor, 1e-12)
	assert.Equal(t, AxisWidth, res.LargestAxis)
	assert.Equal(t, 50.0, res.LargestDimension)
	assert.InDelta(t, 2.0, res.ScaledDimensions.Width, 1e-12)
	assert.InDelta(t, 1.2, res.ScaledDimensions.Height, 1e-12)
	assert.InDelta(t, 0.8, res.ScaledDimensions.Depth, 1e-12)
}

func TestCalculateProportionality(t *testing.T) {
	cases := []struct {
		dims Dimensions
		max  float64
	}{
		{Dimensions{Width: 10, Height: 3, Depth: 7}, 2},
		{Dimensions{Width: 0.5, Height: 120, Depth: 4}, 1.5},
		{Dimensions{Width: 300, Height: 300, Depth: 300}, 0.25},
	}
	for _, tc := range cases {
		res := Calculate(tc.dims, tc.max)
		require.True(t, res.IsScaled)

		assert.InDelta(t, res.ScaleFactor, res.ScaledDimensions.Width/tc.dims.Width, 1e-12)
		assert.InDelta(t, res.ScaleFactor, res.ScaledDimensions.Height/tc.dims.Height, 1e-12)
		assert.InDelta(t, res.ScaleFactor, res.ScaledDimensions.Depth/tc.dims.Depth, 1e-12)

		largest, _ := res.ScaledDimensions.Largest()
		assert.InDelta(t, tc.max, largest, 1e-9)
	}
}

func TestLargestAxisTieBreak(t *testing.T) {
	cases := []struct {
		dims Dimensions
		want Axis
	}{
		{Dimensions{Width: 5, Height: 5, Depth: 3}, AxisHeight},
		{Dimensions{Width: 5, Height: 3, Depth: 5}, AxisDepth},
		{Dimensions{Width: 5, Height: 3, Depth: 3}, AxisWidth},
		{Dimensions{Width: 5, Height: 5, Depth: 5}, AxisHeight},
		{Dimensions{Width: 3, Height: 5, Depth: 5}, AxisHeight},
	}
	for _, tc := range cases {
		_, axis := tc.dims.Largest()
		assert.Equal(t, tc.want, axis, "dims %v", tc.dims)
	}
}

func TestCalculateZeroExtents(t *testing.T) {
	res := Calculate(Dimensions{}, 2.0)

	assert.Equal(t, 1.0, res.ScaleFactor)
	assert.False(t, res.IsScaled)
	assert.False(t, math.IsNaN(res.ScaleFactor))
	assert.False(t, math.IsNaN(res.ScaledDimensions.Width))
	assert.Equal(t, 0.0, res.LargestDimension)
}

func TestCalculateExactlyAtLimit(t *testing.T) {
	res := Calculate(Dimensions{Width: 2, Height: 1, Depth: 1}, 2.0)
	assert.False(t, res.IsScaled)
	assert.Equal(t, 1.0, res.ScaleFactor)
}

func TestWithFactor(t *testing.T) {
	dims := Dimensions{Width: 1, Height: 2, Depth: 0.5}

	res := WithFactor(dims, 0.5)
	assert.True(t, res.IsScaled)
	assert.Equal(t, Dimensions{Width: 0.5, Height: 1, Depth: 0.25}, res.ScaledDimensions)
	assert.Equal(t, AxisHeight, res.LargestAxis)

	res = WithFactor(dims, 1.0)
	assert.False(t, res.IsScaled)
}

func TestValidMaxDimension(t *testing.T) {
	assert.True(t, ValidMaxDimension(0.001))
	assert.True(t, ValidMaxDimension(2))
	assert.True(t, ValidMaxDimension(100))
	assert.False(t, ValidMaxDimension(0))
	assert.False(t, ValidMaxDimension(-1))
	assert.False(t, ValidMaxDimension(100.001))
	assert.False(t, ValidMaxDimension(150))
}

func TestDimensionsString(t *testing.T) {
	d := Dimensions{Width: 2, Height: 1.2, Depth: 0.8}
	assert.Equal(t, "2.000x1.200x0.800", d.String())
}
