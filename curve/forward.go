package curve

import (
	"math"

	"github.com/meenmo/curvekit/config"
	"github.com/meenmo/curvekit/convention"
)

// linearForwardStrategy bootstraps instantaneous forwards at the nodes so that each node
// interval reprices exactly under a forward that is linear in time, then integrates that
// forward over the grid. Grid intervals never straddle a node, so the trapezoid rule on each
// interval is exact.
type linearForwardStrategy struct{}

func (linearForwardStrategy) fit(nodes []node, g grid, _ convention.BasisConvention, _ config.Config) fitted {
	xs, ys := logNodes(nodes)
	fn := nodeForwards(xs, ys)

	dfs := make([]float64, len(g.ts))
	dfs[0] = 1
	acc := 0.0
	prevF := fn[0]
	for j := 1; j < len(g.ts); j++ {
		f := interpLinear(xs, fn, g.ts[j])
		acc -= 0.5 * (prevF + f) * (g.ts[j] - g.ts[j-1])
		dfs[j] = math.Exp(acc)
		prevF = f
	}
	for k, ni := range g.nodeIdx {
		dfs[ni] = nodes[k].df
	}
	return fitted{dfs: dfs}
}

// nodeForwards returns f(t_k) for the knots xs (xs[0] == 0). The average of a linear forward
// over [t_{k-1}, t_k] is (f_{k-1}+f_k)/2, which must equal the discrete forward F_k.
func nodeForwards(xs, ys []float64) []float64 {
	fn := make([]float64, len(xs))
	first := -(ys[1] - ys[0]) / (xs[1] - xs[0])
	fn[0], fn[1] = first, first
	for k := 2; k < len(xs); k++ {
		fk := -(ys[k] - ys[k-1]) / (xs[k] - xs[k-1])
		fn[k] = 2*fk - fn[k-1]
	}
	return fn
}
