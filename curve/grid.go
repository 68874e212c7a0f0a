package curve

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"

	"github.com/meenmo/curvekit/convention"
)

// node is a calibration point in the units the strategies work in.
type node struct {
	t     float64
	rate  float64
	df    float64
	logDF float64
}

func toNodes(points []Point, conv convention.BasisConvention) []node {
	nodes := make([]node, len(points))
	for i, p := range points {
		df := conv.DiscountFactor(p.Rate, p.Tenor)
		nodes[i] = node{t: p.Tenor, rate: p.Rate, df: df, logDF: math.Log(df)}
	}
	return nodes
}

// grid is the sampling grid. ts[0] is 0 and nodeIdx[k] is the position of nodes[k] in ts.
type grid struct {
	ts      []float64
	nodeIdx []int
}

// buildGrid merges a regular step with the node tenors. Regular points closer than eps to a
// node are dropped in favour of the node. The step widens if the grid would exceed maxPoints.
func buildGrid(nodes []node, step float64, maxPoints int, eps float64) grid {
	last := nodes[len(nodes)-1].t
	if room := maxPoints - len(nodes) - 1; math.Ceil(last/step) > float64(room) {
		if room < 1 {
			step = last
		} else {
			step = last / float64(room)
		}
	}

	g := grid{
		ts:      make([]float64, 0, int(math.Min(last/step, float64(maxPoints)))+len(nodes)+2),
		nodeIdx: make([]int, 0, len(nodes)),
	}
	g.ts = append(g.ts, 0)

	i, k := 0, 1
	for i < len(nodes) {
		regular := float64(k) * step
		nt := nodes[i].t
		switch {
		case regular < nt-eps:
			g.ts = append(g.ts, regular)
			k++
		case regular <= nt+eps:
			g.nodeIdx = append(g.nodeIdx, len(g.ts))
			g.ts = append(g.ts, nt)
			i++
			k++
		default:
			g.nodeIdx = append(g.nodeIdx, len(g.ts))
			g.ts = append(g.ts, nt)
			i++
		}
	}
	return g
}

// segment returns i such that xs[i] <= x <= xs[i+1], clamped to the boundary pair when x is
// outside the range. xs must be ascending with at least two elements.
func segment(xs []float64, x float64) int {
	i := sort.SearchFloat64s(xs, x)
	if i <= 0 {
		return 0
	}
	if i >= len(xs) {
		return len(xs) - 2
	}
	return i - 1
}

// interpLinear interpolates linearly, extrapolating flat on both sides.
func interpLinear(xs, ys []float64, x float64) float64 {
	if x <= xs[0] {
		return ys[0]
	}
	n := len(xs)
	if x >= xs[n-1] {
		return ys[n-1]
	}
	i := segment(xs, x)
	if x == xs[i+1] {
		return ys[i+1]
	}
	w := (x - xs[i]) / (xs[i+1] - xs[i])
	return ys[i] + (ys[i+1]-ys[i])*w
}

// interpLinearExtrap interpolates linearly and extends the boundary segments past the range.
func interpLinearExtrap(xs, ys []float64, x float64) float64 {
	i := segment(xs, x)
	if x == xs[i+1] {
		return ys[i+1]
	}
	w := (x - xs[i]) / (xs[i+1] - xs[i])
	return ys[i] + (ys[i+1]-ys[i])*w
}

// naturalSpline fits a natural cubic spline (zero second derivative at both ends) through the
// knots. Two knots, or a fit gonum rejects, fall back to linear interpolation. Outside the
// knot range the spline is flat.
func naturalSpline(xs, ys []float64) interp.Predictor {
	if len(xs) >= 3 {
		var nc interp.NaturalCubic
		if err := nc.Fit(xs, ys); err == nil {
			return &nc
		}
	}
	return linearPredictor{xs: xs, ys: ys}
}

type linearPredictor struct {
	xs, ys []float64
}

func (p linearPredictor) Predict(x float64) float64 {
	return interpLinear(p.xs, p.ys, x)
}

// logNodes returns the knots (0, 0), (t_k, ln DF_k).
func logNodes(nodes []node) (xs, ys []float64) {
	xs = make([]float64, len(nodes)+1)
	ys = make([]float64, len(nodes)+1)
	for i, n := range nodes {
		xs[i+1] = n.t
		ys[i+1] = n.logDF
	}
	return xs, ys
}

func rateNodes(nodes []node) (xs, ys []float64) {
	xs = make([]float64, len(nodes))
	ys = make([]float64, len(nodes))
	for i, n := range nodes {
		xs[i] = n.t
		ys[i] = n.rate
	}
	return xs, ys
}

// clampNegativeForwards makes dfs non-increasing. Points between two nodes are first held
// inside the band spanned by the node discount factors so that monotone nodes survive
// unchanged; any remaining negative forward is then clamped to zero by lowering the later
// discount factor to the earlier one.
func clampNegativeForwards(dfs []float64, nodeIdx []int) {
	prev := 0
	for _, ni := range nodeIdx {
		hi, lo := dfs[prev], dfs[ni]
		if hi >= lo {
			for j := prev + 1; j < ni; j++ {
				dfs[j] = math.Min(math.Max(dfs[j], lo), hi)
			}
		}
		prev = ni
	}
	for i := 1; i < len(dfs); i++ {
		if dfs[i] > dfs[i-1] {
			dfs[i] = dfs[i-1]
		}
	}
}
