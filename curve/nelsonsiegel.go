package curve

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/curvekit/config"
	"github.com/meenmo/curvekit/convention"
)

const (
	nsMinLambda = 1e-3
	nsMaxLambda = 50.0
	// nsExactSSE is the squared residual sum treated as an exact fit.
	nsExactSSE = 1e-20
	// nsSeedLambdas is the size of the geometric lambda grid used to seed the fit.
	nsSeedLambdas = 40
)

// nelsonSiegelStrategy fits beta0..beta2 and lambda to all node rates by nonlinear least
// squares, then evaluates the closed form continuously.
type nelsonSiegelStrategy struct{}

func (nelsonSiegelStrategy) fit(nodes []node, g grid, conv convention.BasisConvention, cfg config.Config) fitted {
	ts, rs := rateNodes(nodes)
	params := fitNelsonSiegel(ts, rs, cfg)

	dfs := make([]float64, len(g.ts))
	for i, t := range g.ts {
		dfs[i] = conv.DiscountFactor(params.ZeroRate(t), t)
	}
	return fitted{dfs: dfs, params: &params}
}

// nsLoadings returns the slope and curvature loadings at t.
func nsLoadings(lambda, t float64) (l1, l2 float64) {
	x := lambda * t
	if x < 1e-6 {
		// Series expansion around 0 avoids cancellation in (1-e^-x)/x.
		l1 = 1 - x/2 + x*x/6
		return l1, l1 - (1 - x + x*x/2)
	}
	e := math.Exp(-x)
	l1 = (1 - e) / x
	return l1, l1 - e
}

// nsLambdaPartial returns d r / d lambda at t.
func nsLambdaPartial(p [4]float64, t float64) float64 {
	x := p[3] * t
	var dl1, e float64
	if x < 1e-6 {
		dl1 = -0.5 + x/3
		e = 1 - x + x*x/2
	} else {
		e = math.Exp(-x)
		dl1 = (e*(x+1) - 1) / (x * x)
	}
	// dL2/dx = dL1/dx + e^-x
	return t * ((p[1]+p[2])*dl1 + p[2]*e)
}

func nsRate(p [4]float64, t float64) float64 {
	l1, l2 := nsLoadings(p[3], t)
	return p[0] + p[1]*l1 + p[2]*l2
}

func nsSSE(p [4]float64, ts, rs []float64) float64 {
	sse := 0.0
	for i, t := range ts {
		r := nsRate(p, t) - rs[i]
		sse += r * r
	}
	return sse
}

// fitNelsonSiegel seeds lambda on a grid with OLS betas, refines all four parameters with
// Levenberg-Marquardt, and falls back to a flat curve at the mean rate when the loop does not
// converge within cfg.MaxFitIterations.
func fitNelsonSiegel(ts, rs []float64, cfg config.Config) NelsonSiegelParams {
	p := nsSeed(ts, rs)
	sse := nsSSE(p, ts, rs)

	mu := 1e-3
	converged := sse <= nsExactSSE
	iter := 0
	for !converged && iter < cfg.MaxFitIterations {
		iter++

		var jtj [4][4]float64
		var grad [4]float64
		for i, t := range ts {
			l1, l2 := nsLoadings(p[3], t)
			row := [4]float64{1, l1, l2, nsLambdaPartial(p, t)}
			res := p[0] + p[1]*l1 + p[2]*l2 - rs[i]
			for a := 0; a < 4; a++ {
				grad[a] += row[a] * res
				for b := 0; b < 4; b++ {
					jtj[a][b] += row[a] * row[b]
				}
			}
		}

		improved := false
		for mu <= 1e12 {
			lhs := mat.NewDense(4, 4, nil)
			rhs := mat.NewVecDense(4, nil)
			for a := 0; a < 4; a++ {
				lhs.SetRow(a, jtj[a][:])
				lhs.Set(a, a, jtj[a][a]+mu*math.Max(jtj[a][a], 1e-12))
				rhs.SetVec(a, -grad[a])
			}
			var step [4]float64
			ok := solveInto(step[:], lhs, rhs)
			if ok {
				cand := [4]float64{p[0] + step[0], p[1] + step[1], p[2] + step[2], p[3] + step[3]}
				if cand[3] >= nsMinLambda && cand[3] <= nsMaxLambda {
					candSSE := nsSSE(cand, ts, rs)
					if candSSE < sse {
						stepNorm, pNorm := norm4(step), norm4(p)
						converged = candSSE <= nsExactSSE ||
							sse-candSSE <= cfg.FitTolerance*sse ||
							stepNorm <= cfg.FitTolerance*(pNorm+cfg.FitTolerance)
						p, sse = cand, candSSE
						mu = math.Max(mu/10, 1e-12)
						improved = true
						break
					}
				}
			}
			mu *= 10
		}
		if !improved {
			// No damped step reduces the residual: p is a stationary point.
			converged = true
		}
	}

	out := NelsonSiegelParams{
		Beta0:      p[0],
		Beta1:      p[1],
		Beta2:      p[2],
		Lambda:     p[3],
		Converged:  converged,
		Iterations: iter,
	}
	if !converged || !finite4(p) {
		out = NelsonSiegelParams{
			Beta0:      mean(rs),
			Lambda:     cfg.DefaultLambda,
			Iterations: iter,
		}
	}
	pOut := [4]float64{out.Beta0, out.Beta1, out.Beta2, out.Lambda}
	out.RMSE = math.Sqrt(nsSSE(pOut, ts, rs) / float64(len(ts)))
	return out
}

// nsSeed scans a geometric lambda grid and solves the betas by least squares for each.
func nsSeed(ts, rs []float64) [4]float64 {
	best := [4]float64{mean(rs), 0, 0, 0.6}
	bestSSE := nsSSE(best, ts, rs)
	ratio := math.Pow(5.0/0.02, 1.0/float64(nsSeedLambdas-1))

	x := mat.NewDense(len(ts), 3, nil)
	y := mat.NewVecDense(len(rs), rs)
	var xtx mat.SymDense
	var xty mat.VecDense
	lambda := 0.02
	for k := 0; k < nsSeedLambdas; k++ {
		for i, t := range ts {
			l1, l2 := nsLoadings(lambda, t)
			x.SetRow(i, []float64{1, l1, l2})
		}
		xtx.SymOuterK(1, x.T())
		// A small ridge keeps the system solvable with fewer than three points.
		for a := 0; a < 3; a++ {
			xtx.SetSym(a, a, xtx.At(a, a)+1e-10)
		}
		xty.MulVec(x.T(), y)

		var beta [3]float64
		if solveInto(beta[:], &xtx, &xty) {
			cand := [4]float64{beta[0], beta[1], beta[2], lambda}
			if s := nsSSE(cand, ts, rs); s < bestSSE && finite4(cand) {
				best, bestSSE = cand, s
			}
		}
		lambda *= ratio
	}
	return best
}

// solveInto solves a x = b with gonum and copies x into dst. Singular or badly conditioned
// systems report false.
func solveInto(dst []float64, a mat.Matrix, b mat.Vector) bool {
	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return false
	}
	for i := range dst {
		v := x.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
		dst[i] = v
	}
	return true
}

func norm4(v [4]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2] + v[3]*v[3])
}

func finite4(v [4]float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}
