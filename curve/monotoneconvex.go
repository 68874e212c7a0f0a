package curve

import (
	"math"

	"github.com/meenmo/curvekit/config"
	"github.com/meenmo/curvekit/convention"
)

// monotonicConvexStrategy is the Hagan-West monotone convex construction on the instantaneous
// forward curve, with forwards at the nodes kept non-negative where the discrete forwards are.
type monotonicConvexStrategy struct{}

func (monotonicConvexStrategy) fit(nodes []node, g grid, _ convention.BasisConvention, _ config.Config) fitted {
	xs, ys := logNodes(nodes)
	fd, f := hwForwards(xs, ys)

	dfs := make([]float64, len(g.ts))
	dfs[0] = 1
	for j := 1; j < len(g.ts); j++ {
		t := g.ts[j]
		i := segment(xs, t) + 1
		h := xs[i] - xs[i-1]
		x := (t - xs[i-1]) / h
		g0 := f[i-1] - fd[i]
		g1 := f[i] - fd[i]
		dfs[j] = math.Exp(ys[i-1] - h*(fd[i]*x+hwIntegral(g0, g1, x)))
	}
	for k, ni := range g.nodeIdx {
		dfs[ni] = nodes[k].df
	}
	return fitted{dfs: dfs}
}

// hwForwards returns the discrete forwards fd[1..n] and the instantaneous forwards f[0..n]
// at the knots xs (xs[0] == 0).
func hwForwards(xs, ys []float64) (fd, f []float64) {
	n := len(xs) - 1
	fd = make([]float64, n+1)
	f = make([]float64, n+1)
	for i := 1; i <= n; i++ {
		fd[i] = -(ys[i] - ys[i-1]) / (xs[i] - xs[i-1])
	}
	if n == 1 {
		f[0], f[1] = fd[1], fd[1]
		return fd, f
	}

	for i := 1; i < n; i++ {
		h0 := xs[i] - xs[i-1]
		h1 := xs[i+1] - xs[i]
		f[i] = h0/(h0+h1)*fd[i+1] + h1/(h0+h1)*fd[i]
	}
	f[0] = fd[1] - 0.5*(f[1]-fd[1])
	f[n] = fd[n] - 0.5*(f[n-1]-fd[n])

	f[0] = boundForward(f[0], 2*fd[1])
	for i := 1; i < n; i++ {
		f[i] = boundForward(f[i], 2*math.Min(fd[i], fd[i+1]))
	}
	f[n] = boundForward(f[n], 2*fd[n])
	return fd, f
}

// boundForward holds f in [0, upper]. A negative upper bound means the discrete forwards are
// themselves negative and the positivity constraint is not applied.
func boundForward(f, upper float64) float64 {
	if upper < 0 {
		return f
	}
	return math.Min(math.Max(f, 0), upper)
}

// hwIntegral is the integral over [0, x] of the forward deviation g on a unit segment with
// g(0) = g0 and g(1) = g1. It is zero at x = 1, so node discount factors are reproduced.
func hwIntegral(g0, g1, x float64) float64 {
	switch {
	case g0 == 0 && g1 == 0:
		return 0

	case (g0 < 0 && -0.5*g0 <= g1 && g1 <= -2*g0) || (g0 > 0 && -0.5*g0 >= g1 && g1 >= -2*g0):
		x2 := x * x
		x3 := x2 * x
		return g0*(x-2*x2+x3) + g1*(x3-x2)

	case (g0 < 0 && g1 > -2*g0) || (g0 > 0 && g1 < -2*g0):
		eta := (g1 + 2*g0) / (g1 - g0)
		if x <= eta {
			return g0 * x
		}
		d := x - eta
		return g0*x + (g1-g0)*d*d*d/(3*(1-eta)*(1-eta))

	case (g0 > 0 && 0 > g1 && g1 > -0.5*g0) || (g0 < 0 && 0 < g1 && g1 < -0.5*g0):
		eta := 3 * g1 / (g1 - g0)
		if x < eta {
			r := (eta - x) / eta
			return g1*x + (g0-g1)*eta/3*(1-r*r*r)
		}
		return g1*x + (g0-g1)*eta/3

	default:
		if g0+g1 == 0 {
			return 0
		}
		eta := g1 / (g1 + g0)
		a := -g0 * g1 / (g0 + g1)
		if eta <= 0 {
			eta = 0
		}
		if eta >= 1 {
			eta = 1
		}
		if x <= eta && eta > 0 {
			r := (eta - x) / eta
			return a*x + (g0-a)*eta/3*(1-r*r*r)
		}
		out := a*x + (g0-a)*eta/3
		if eta < 1 {
			d := x - eta
			out += (g1 - a) * d * d * d / (3 * (1 - eta) * (1 - eta))
		}
		return out
	}
}
