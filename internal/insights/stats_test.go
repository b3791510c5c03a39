package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Zero(t, mean(nil))
	assert.Zero(t, mean([]float64{}))
	assert.InDelta(t, 2.5, mean([]float64{1, 2, 3, 4}), 1e-9)
	assert.InDelta(t, -3, mean([]float64{-3}), 1e-9)
}

func TestStdDev(t *testing.T) {
	assert.Zero(t, stdDev(nil))
	assert.Zero(t, stdDev([]float64{7, 7, 7}))
	// Population std-dev of [2,4,4,4,5,5,7,9] is exactly 2.
	assert.InDelta(t, 2, stdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
}

func TestLinearRegression(t *testing.T) {
	t.Run("perfect line", func(t *testing.T) {
		slope, intercept, rSquared := linearRegression([]float64{10, 20, 30, 40})
		assert.InDelta(t, 10, slope, 1e-9)
		assert.InDelta(t, 10, intercept, 1e-9)
		assert.InDelta(t, 1, rSquared, 1e-9)
	})

	t.Run("constant series has zero slope and full fit", func(t *testing.T) {
		slope, intercept, rSquared := linearRegression([]float64{5, 5, 5})
		assert.Zero(t, slope)
		assert.InDelta(t, 5, intercept, 1e-9)
		assert.InDelta(t, 1, rSquared, 1e-9)
	})

	t.Run("noisy series fits partially", func(t *testing.T) {
		_, _, rSquared := linearRegression([]float64{1, 5, 2, 6, 3})
		assert.Greater(t, rSquared, 0.0)
		assert.Less(t, rSquared, 1.0)
	})

	t.Run("too few points", func(t *testing.T) {
		slope, intercept, rSquared := linearRegression([]float64{42})
		assert.Zero(t, slope)
		assert.Zero(t, intercept)
		assert.Zero(t, rSquared)
	})
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.3, clamp(0.1, 0.3, 0.95))
	assert.Equal(t, 0.95, clamp(1.2, 0.3, 0.95))
	assert.Equal(t, 0.5, clamp(0.5, 0.3, 0.95))
}
