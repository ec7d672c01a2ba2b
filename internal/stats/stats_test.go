package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	assert.Nil(t, Mean(nil))
	assert.Nil(t, Mean([]float64{}))

	m := Mean([]float64{1, 2, 3})
	require.NotNil(t, m)
	assert.InDelta(t, 2.0, *m, 1e-9)
}

func TestStdDev_SampleVariance(t *testing.T) {
	assert.Nil(t, StdDev(nil), "empty sample has no std")
	assert.Nil(t, StdDev([]float64{4.2}), "single sample has no std")

	sd := StdDev([]float64{1, 2, 3})
	require.NotNil(t, sd)
	assert.InDelta(t, 1.0, *sd, 1e-9, "sample std of [1,2,3] is exactly 1")
}

func TestZScore_GuardsZeroStd(t *testing.T) {
	assert.Nil(t, ZScore(10, Float(5), Float(0)))
	assert.Nil(t, ZScore(10, nil, Float(1)))
	assert.Nil(t, ZScore(10, Float(5), nil))

	z := ZScore(10, Float(5), Float(2.5))
	require.NotNil(t, z)
	assert.InDelta(t, 2.0, *z, 1e-9)
}

func TestEMA(t *testing.T) {
	assert.Nil(t, EMA(nil, 6))
	assert.Nil(t, EMA([]float64{1, 2}, 0))

	// Seeded with the oldest value; constant series stays put.
	ema := EMA([]float64{5, 5, 5, 5}, 6)
	require.NotNil(t, ema)
	assert.InDelta(t, 5.0, *ema, 1e-9)

	// k = 2/(6+1); one step from seed 100 toward 107.
	ema = EMA([]float64{100, 107}, 6)
	require.NotNil(t, ema)
	assert.InDelta(t, 102.0, *ema, 1e-9)
}

func TestPercentChange(t *testing.T) {
	pc := PercentChange(Float(110), Float(100))
	require.NotNil(t, pc)
	assert.InDelta(t, 10.0, *pc, 1e-9)

	assert.Nil(t, PercentChange(Float(42), Float(0)), "zero reference is unknown, not Inf")
	assert.Nil(t, PercentChange(nil, Float(100)))
	assert.Nil(t, PercentChange(Float(42), nil))
}

func TestSafeRatio(t *testing.T) {
	r := SafeRatio(Float(3), Float(4))
	require.NotNil(t, r)
	assert.InDelta(t, 0.75, *r, 1e-9)

	assert.Nil(t, SafeRatio(Float(3), Float(0)))
	assert.Nil(t, SafeRatio(nil, Float(4)))
}

func TestSafeDiv(t *testing.T) {
	assert.Nil(t, SafeDiv(1, 0))

	d := SafeDiv(1, 4)
	require.NotNil(t, d)
	assert.InDelta(t, 0.25, *d, 1e-9)
}

func TestRounding(t *testing.T) {
	assert.Equal(t, -3.5, Round2(-3.5000001))
	assert.Equal(t, 0.667, Round3(2.0/3.0))
	assert.Equal(t, 0.7, Round3(0.7))
}
