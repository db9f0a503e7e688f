package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanAndStdDev(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	assert.Equal(t, 5.0, Mean(xs))
	assert.InDelta(t, 2.0, StdDev(xs), 1e-12)

	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{3, 3, 3}))
}

func TestStdDevNeverNegative(t *testing.T) {
	series := [][]float64{
		{1},
		{0, 0, 0, 100},
		{-5, 5},
		{1e9, 1e9 + 1, 1e9 + 2},
	}
	for _, xs := range series {
		std := StdDev(xs)
		require.False(t, math.IsNaN(std))
		require.GreaterOrEqual(t, std, 0.0)
	}
}

func TestZScore(t *testing.T) {
	assert.Equal(t, 2.0, ZScore(9, 5, 2))
	assert.Equal(t, -1.5, ZScore(2, 5, 2))

	for _, std := range []float64{0, -1, math.NaN()} {
		z := ZScore(10, 5, std)
		assert.Equal(t, 0.0, z)
		assert.False(t, math.IsNaN(z))
		assert.False(t, math.IsInf(z, 0))
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 2.35, Round(2.345, 2))
	assert.Equal(t, 6.5, Round(6.5, 1))
	assert.Equal(t, -2.0, Round(-1.5, 0))
	assert.Equal(t, 3.0, Round(2.5, 0))
	assert.True(t, math.IsNaN(Round(math.NaN(), 2)))
}
