package curve

import (
	"math"

	"github.com/meenmo/curvekit/config"
	"github.com/meenmo/curvekit/convention"
)

// bloombergStrategy interpolates ln(DF) linearly, smooths the resulting segment forwards by
// averaging with their neighbours, re-anchors the smoothed forwards so every node discount
// factor is reproduced, and finally clamps negative forwards.
type bloombergStrategy struct{}

func (bloombergStrategy) fit(nodes []node, g grid, _ convention.BasisConvention, _ config.Config) fitted {
	xs, ys := logNodes(nodes)
	n := len(g.ts)

	lnD := make([]float64, n)
	for i, t := range g.ts {
		lnD[i] = interpLinearExtrap(xs, ys, t)
	}
	for k, ni := range g.nodeIdx {
		lnD[ni] = nodes[k].logDF
	}

	// fwd[j] is the forward over (ts[j-1], ts[j]]; fwd[0] is unused.
	fwd := make([]float64, n)
	for j := 1; j < n; j++ {
		fwd[j] = -(lnD[j] - lnD[j-1]) / (g.ts[j] - g.ts[j-1])
	}
	smooth := smoothForwards(fwd)

	prev := 0
	for k, ni := range g.nodeIdx {
		target := lnD[prev] - nodes[k].logDF
		var got, span float64
		for j := prev + 1; j <= ni; j++ {
			dt := g.ts[j] - g.ts[j-1]
			got += smooth[j] * dt
			span += dt
		}
		if span > 0 {
			shift := (target - got) / span
			for j := prev + 1; j <= ni; j++ {
				smooth[j] += shift
			}
		}
		prev = ni
	}

	dfs := make([]float64, n)
	dfs[0] = 1
	acc := 0.0
	prev = 0
	for k, ni := range g.nodeIdx {
		for j := prev + 1; j <= ni; j++ {
			acc -= smooth[j] * (g.ts[j] - g.ts[j-1])
			dfs[j] = math.Exp(acc)
		}
		// Pin to the node to stop rounding drift from accumulating across intervals.
		acc = nodes[k].logDF
		dfs[ni] = nodes[k].df
		prev = ni
	}

	clampNegativeForwards(dfs, g.nodeIdx)
	return fitted{dfs: dfs}
}

// smoothForwards applies a 1-2-1 weighted average to fwd[1:], with 3-1 weights at the ends.
func smoothForwards(fwd []float64) []float64 {
	out := make([]float64, len(fwd))
	copy(out, fwd)
	m := len(fwd) - 1
	if m < 2 {
		return out
	}
	out[1] = (3*fwd[1] + fwd[2]) / 4
	out[m] = (fwd[m-1] + 3*fwd[m]) / 4
	for j := 2; j < m; j++ {
		out[j] = (fwd[j-1] + 2*fwd[j] + fwd[j+1]) / 4
	}
	return out
}
