package curve

import (
	"math"
	"sort"

	"github.com/meenmo/curvekit/convention"
)

// GridPoint is one sampled point of a bootstrapped curve.
type GridPoint struct {
	Tenor          float64 `json:"tenor"`
	DiscountFactor float64 `json:"discountFactor"`
	ZeroRate       float64 `json:"zeroRate"`
	ForwardRate    float64 `json:"forwardRate"`
}

// NelsonSiegelParams are the fitted parameters of the parametric method.
// Lambda is the decay rate in 1/years: loadings use exp(-Lambda*t).
type NelsonSiegelParams struct {
	Beta0      float64 `json:"beta0"`
	Beta1      float64 `json:"beta1"`
	Beta2      float64 `json:"beta2"`
	Lambda     float64 `json:"lambda"`
	Converged  bool    `json:"converged"`
	Iterations int     `json:"iterations"`
	RMSE       float64 `json:"rmse"`
}

// ZeroRate evaluates the Nelson-Siegel zero rate at t.
func (p NelsonSiegelParams) ZeroRate(t float64) float64 {
	l1, l2 := nsLoadings(p.Lambda, t)
	return p.Beta0 + p.Beta1*l1 + p.Beta2*l2
}

// Result is the output of one (curve, method) bootstrap.
type Result struct {
	Method          Method                     `json:"method"`
	Currency        string                     `json:"currency"`
	DiscountFactors []GridPoint                `json:"discountFactors"`
	Parameters      *NelsonSiegelParams        `json:"parameters,omitempty"`
	BasisConvention convention.BasisConvention `json:"basisConvention"`
	Points          []Point                    `json:"points"`
}

// Empty reports the insufficient-data outcome (fewer than two usable points).
func (r *Result) Empty() bool {
	return r == nil || len(r.DiscountFactors) == 0
}

// AdjustedPoints returns the futures points whose rate was moved.
func (r *Result) AdjustedPoints() []Point {
	var out []Point
	for _, p := range r.Points {
		if p.Adjusted {
			out = append(out, p)
		}
	}
	return out
}

// DiscountFactorAt interpolates the sampled curve log-linearly, with flat forward
// extrapolation past the last grid point. It returns 1 for t <= 0 or an empty result.
func (r *Result) DiscountFactorAt(t float64) float64 {
	if r.Empty() || t <= 0 {
		return 1.0
	}
	pts := r.DiscountFactors
	if len(pts) == 1 {
		return pts[0].DiscountFactor
	}
	i := sort.Search(len(pts), func(i int) bool { return pts[i].Tenor >= t })
	if i < len(pts) && pts[i].Tenor == t {
		return pts[i].DiscountFactor
	}
	// Bracket, or boundary pair when extrapolating.
	switch {
	case i <= 0:
		i = 1
	case i >= len(pts):
		i = len(pts) - 1
	}
	p1, p2 := pts[i-1], pts[i]
	if p2.Tenor == p1.Tenor {
		return p1.DiscountFactor
	}
	forwardRate := math.Log(p1.DiscountFactor/p2.DiscountFactor) / (p2.Tenor - p1.Tenor)
	return p1.DiscountFactor * math.Exp(-forwardRate*(t-p1.Tenor))
}

// ZeroRateAt returns the zero rate at t under the result's basis convention.
func (r *Result) ZeroRateAt(t float64) float64 {
	return r.BasisConvention.ZeroRate(r.DiscountFactorAt(t), t)
}
