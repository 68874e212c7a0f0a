package curve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvekit/config"
	"github.com/meenmo/curvekit/convention"
)

func TestBuildGrid(t *testing.T) {
	t.Parallel()

	nodes := []node{{t: 0.3}, {t: 1.0}, {t: 2.0}}
	g := buildGrid(nodes, 0.25, 600, 1e-6)

	assert.Equal(t, []float64{0, 0.25, 0.3, 0.5, 0.75, 1.0, 1.25, 1.5, 1.75, 2.0}, g.ts)
	assert.Equal(t, []int{2, 5, 9}, g.nodeIdx)
	for k, ni := range g.nodeIdx {
		assert.Equal(t, nodes[k].t, g.ts[ni])
	}
}

func TestBuildGridCapsPoints(t *testing.T) {
	t.Parallel()

	nodes := []node{{t: 1}, {t: 50}}
	g := buildGrid(nodes, 1.0/12.0, 100, 1e-6)
	assert.LessOrEqual(t, len(g.ts), 100)
	assert.Equal(t, 50.0, g.ts[len(g.ts)-1])
	for i := 1; i < len(g.ts); i++ {
		assert.Greater(t, g.ts[i], g.ts[i-1])
	}
}

func TestBuildGridHugeTenor(t *testing.T) {
	t.Parallel()

	nodes := []node{{t: 1}, {t: 1e19}}
	var g grid
	require.NotPanics(t, func() { g = buildGrid(nodes, 0.25, 600, 1e-6) })
	assert.LessOrEqual(t, len(g.ts), 600)
	require.Len(t, g.nodeIdx, 2)
	assert.Equal(t, 1e19, g.ts[g.nodeIdx[1]])
}

func TestNaturalSplineInterpolatesKnots(t *testing.T) {
	t.Parallel()

	xs := []float64{0.5, 1, 2, 5, 10}
	ys := []float64{0.01, 0.015, 0.02, 0.03, 0.032}
	s := naturalSpline(xs, ys)
	for i, x := range xs {
		assert.InDelta(t, ys[i], s.Predict(x), 1e-15)
	}

	// A straight line is reproduced exactly.
	line := naturalSpline([]float64{0, 1, 3}, []float64{1, 2, 4})
	assert.InDelta(t, 2.5, line.Predict(1.5), 1e-12)

	// Knots (0,0), (1,1), (2,0): the middle second derivative is -3, so S(0.5) = 0.5 + 3*0.375/6.
	hat := naturalSpline([]float64{0, 1, 2}, []float64{0, 1, 0})
	assert.InDelta(t, 0.6875, hat.Predict(0.5), 1e-12)
	assert.InDelta(t, 0.6875, hat.Predict(1.5), 1e-12)

	// Two knots fall back to a line.
	pair := naturalSpline([]float64{1, 3}, []float64{0.02, 0.04})
	assert.InDelta(t, 0.03, pair.Predict(2), 1e-15)
}

func TestHWIntegralVanishesAtSegmentEnd(t *testing.T) {
	t.Parallel()

	cases := [][2]float64{
		{0, 0},
		{-1, 1},    // region (i)
		{1, -1},    // region (i)
		{-1, 3},    // region (ii)
		{1, -3},    // region (ii)
		{1, -0.2},  // region (iii)
		{-1, 0.2},  // region (iii)
		{1, 2},     // region (iv)
		{-0.5, -2}, // region (iv)
		{0, 1},     // region (iv), eta = 1
		{0.3, 0},   // region (iv), eta = 0
	}
	for _, c := range cases {
		g0, g1 := c[0], c[1]
		assert.InDelta(t, 0, hwIntegral(g0, g1, 1), 1e-12, "g0=%v g1=%v", g0, g1)
		assert.Equal(t, 0.0, hwIntegral(g0, g1, 0), "g0=%v g1=%v", g0, g1)
	}
}

func TestHWForwardsNonNegative(t *testing.T) {
	t.Parallel()

	conv := convention.Lookup("USD")
	nodes := toNodes([]Point{
		NewSwapPoint(1, 0.001),
		NewSwapPoint(2, 0.05),
		NewSwapPoint(3, 0.0101),
		NewSwapPoint(5, 0.03),
	}, conv)
	xs, ys := logNodes(nodes)
	fd, f := hwForwards(xs, ys)
	n := len(fd) - 1
	require.Less(t, fd[3], 0.0)
	assert.GreaterOrEqual(t, f[0], 0.0)
	assert.LessOrEqual(t, f[0], 2*fd[1])
	assert.GreaterOrEqual(t, f[1], 0.0)
	assert.LessOrEqual(t, f[1], 2*math.Min(fd[1], fd[2]))
	assert.GreaterOrEqual(t, f[n], 0.0)
	assert.LessOrEqual(t, f[n], 2*fd[n])
}

func TestLinearForwardReprices(t *testing.T) {
	t.Parallel()

	xs := []float64{0, 1, 2, 4}
	ys := []float64{0, -0.03, -0.065, -0.14}
	fn := nodeForwards(xs, ys)
	for k := 1; k < len(xs); k++ {
		avg := 0.5 * (fn[k-1] + fn[k])
		assert.InDelta(t, -(ys[k]-ys[k-1])/(xs[k]-xs[k-1]), avg, 1e-15)
	}
}

func TestSmoothForwards(t *testing.T) {
	t.Parallel()

	got := smoothForwards([]float64{0, 0.01, 0.02, 0.04})
	assert.InDelta(t, (3*0.01+0.02)/4, got[1], 1e-15)
	assert.InDelta(t, (0.01+2*0.02+0.04)/4, got[2], 1e-15)
	assert.InDelta(t, (0.02+3*0.04)/4, got[3], 1e-15)

	single := smoothForwards([]float64{0, 0.03})
	assert.Equal(t, 0.03, single[1])
}

func TestClampNegativeForwards(t *testing.T) {
	t.Parallel()

	dfs := []float64{1, 0.99, 1.001, 0.97, 0.95, 0.96}
	clampNegativeForwards(dfs, []int{3, 5})
	assert.Equal(t, []float64{1, 0.99, 0.99, 0.97, 0.96, 0.96}, dfs)
}

func TestFitNelsonSiegelRecoversParameters(t *testing.T) {
	t.Parallel()

	truth := NelsonSiegelParams{Beta0: 0.045, Beta1: -0.02, Beta2: 0.015, Lambda: 0.45}
	ts := []float64{0.25, 0.5, 1, 2, 3, 5, 7, 10, 15, 20, 30}
	rs := make([]float64, len(ts))
	for i, tt := range ts {
		rs[i] = truth.ZeroRate(tt)
	}

	got := fitNelsonSiegel(ts, rs, config.DefaultConfig)
	require.True(t, got.Converged)
	assert.Less(t, got.RMSE, 1e-7)
	for _, tt := range []float64{0.1, 4, 12, 25} {
		assert.InDelta(t, truth.ZeroRate(tt), got.ZeroRate(tt), 1e-6, "t=%v", tt)
	}
	assert.InDelta(t, truth.Lambda, got.Lambda, 1e-3)
	assert.InDelta(t, truth.Beta0, got.Beta0, 1e-4)
}

func TestNSLoadingsLimits(t *testing.T) {
	t.Parallel()

	l1, l2 := nsLoadings(0.5, 0)
	assert.Equal(t, 1.0, l1)
	assert.Equal(t, 0.0, l2)

	// Series branch agrees with the closed form near the switch.
	a1, a2 := nsLoadings(1, 0.9e-6)
	b1, b2 := nsLoadings(1, 1.1e-6)
	assert.InDelta(t, a1, b1, 1e-6)
	assert.InDelta(t, a2, b2, 1e-6)

	l1, l2 = nsLoadings(1, 100)
	assert.InDelta(t, 0.01, l1, 1e-12)
	assert.InDelta(t, 0.01, l2, 1e-12)
	assert.False(t, math.IsNaN(nsLambdaPartial([4]float64{0.04, -0.01, 0.01, 0.5}, 0)))
}
