package curve

import (
	"math"

	"github.com/meenmo/curvekit/config"
	"github.com/meenmo/curvekit/convention"
)

// linearStrategy interpolates zero rates linearly in tenor, flat outside the node range.
type linearStrategy struct{}

func (linearStrategy) fit(nodes []node, g grid, conv convention.BasisConvention, _ config.Config) fitted {
	xs, ys := rateNodes(nodes)
	dfs := make([]float64, len(g.ts))
	for i, t := range g.ts {
		dfs[i] = conv.DiscountFactor(interpLinear(xs, ys, t), t)
	}
	return fitted{dfs: dfs}
}

// cubicSplineStrategy runs a natural cubic spline through the zero rates, flat outside the
// node range.
type cubicSplineStrategy struct{}

func (cubicSplineStrategy) fit(nodes []node, g grid, conv convention.BasisConvention, _ config.Config) fitted {
	xs, ys := rateNodes(nodes)
	spline := naturalSpline(xs, ys)
	first, last := xs[0], xs[len(xs)-1]

	dfs := make([]float64, len(g.ts))
	for i, t := range g.ts {
		var r float64
		switch {
		case t <= first:
			r = ys[0]
		case t >= last:
			r = ys[len(ys)-1]
		default:
			r = spline.Predict(t)
		}
		dfs[i] = conv.DiscountFactor(r, t)
	}
	return fitted{dfs: dfs}
}

// logLinearStrategy is piecewise linear in ln(DF), i.e. exponential interpolation of
// discount factors with a constant forward on each node interval.
type logLinearStrategy struct{}

func (logLinearStrategy) fit(nodes []node, g grid, _ convention.BasisConvention, _ config.Config) fitted {
	xs, ys := logNodes(nodes)
	dfs := make([]float64, len(g.ts))
	for i, t := range g.ts {
		dfs[i] = math.Exp(interpLinearExtrap(xs, ys, t))
	}
	return fitted{dfs: dfs}
}

// logCubicStrategy runs a natural cubic spline through ln(DF), knots starting at (0, 0).
// Overshoot between nodes is left as is.
type logCubicStrategy struct{}

func (logCubicStrategy) fit(nodes []node, g grid, _ convention.BasisConvention, _ config.Config) fitted {
	xs, ys := logNodes(nodes)
	spline := naturalSpline(xs, ys)
	dfs := make([]float64, len(g.ts))
	for i, t := range g.ts {
		dfs[i] = math.Exp(spline.Predict(t))
	}
	return fitted{dfs: dfs}
}
