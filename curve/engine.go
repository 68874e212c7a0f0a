package curve

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/meenmo/curvekit/config"
	"github.com/meenmo/curvekit/convention"
)

// Engine bootstraps curves. It holds only immutable configuration and a logger, so one Engine
// may be shared by concurrent callers.
type Engine struct {
	cfg config.Config
	log zerolog.Logger
}

// NewEngine returns an Engine using cfg, with zero fields taken from config.DefaultConfig.
func NewEngine(cfg config.Config, logger zerolog.Logger) *Engine {
	return &Engine{cfg: cfg.WithDefaults(), log: logger}
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() config.Config { return e.cfg }

var defaultEngine = NewEngine(config.DefaultConfig, zerolog.Nop())

// Bootstrap runs the default engine.
func Bootstrap(swaps, futures []Point, method Method, currency string) (*Result, error) {
	return defaultEngine.Bootstrap(swaps, futures, method, currency)
}

// Bootstrap merges the two point sets, keeps futures consistent with a decreasing discount
// curve, and builds the curve with method. Fewer than two usable points yields an empty
// result; the only error is an unknown method.
func (e *Engine) Bootstrap(swaps, futures []Point, method Method, currency string) (*Result, error) {
	strat, err := method.strategy()
	if err != nil {
		return nil, fmt.Errorf("bootstrap %q: %w", method, err)
	}

	entry := convention.LookupEntry(currency)
	conv := entry.Basis
	log := e.log.With().Str("method", string(method)).Str("currency", entry.Currency).Logger()

	points := e.mergePoints(swaps, futures, conv, log)
	result := &Result{
		Method:          method,
		Currency:        entry.Currency,
		DiscountFactors: []GridPoint{},
		BasisConvention: conv,
		Points:          points,
	}
	if len(points) < 2 {
		log.Debug().Int("points", len(points)).Msg("insufficient points, returning empty curve")
		return result, nil
	}

	nodes := toNodes(points, conv)
	g := buildGrid(nodes, method.gridStep(e.cfg), e.cfg.MaxGridPoints, e.cfg.TenorEpsilon)
	out := strat.fit(nodes, g, conv, e.cfg)

	if out.params != nil {
		result.Parameters = out.params
		if !out.params.Converged {
			log.Warn().
				Int("iterations", out.params.Iterations).
				Float64("beta0", out.params.Beta0).
				Msg("nelson-siegel fit did not converge, using flat curve at mean rate")
		}
	}

	result.DiscountFactors = e.assemble(g, out.dfs, method, conv)
	return result, nil
}

// mergePoints sanitises and deduplicates each source, drops futures that coincide with a swap
// tenor, merges by tenor, and adjusts futures that would invert the curve.
func (e *Engine) mergePoints(swaps, futures []Point, conv convention.BasisConvention, log zerolog.Logger) []Point {
	eps := e.cfg.TenorEpsilon
	sw := e.sanitise(swaps, SourceSwap, log)
	fu := e.sanitise(futures, SourceFutures, log)

	kept := fu[:0]
	for _, f := range fu {
		if nearTenor(sw, f.Tenor, eps) {
			log.Debug().Float64("tenor", f.Tenor).Msg("dropping futures point at swap tenor")
			continue
		}
		kept = append(kept, f)
	}
	fu = kept

	merged := make([]Point, 0, len(sw)+len(fu))
	merged = append(merged, sw...)
	merged = append(merged, fu...)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Tenor < merged[j].Tenor })

	prevDF := 1.0
	for i := range merged {
		p := &merged[i]
		df := conv.DiscountFactor(p.Rate, p.Tenor)
		if p.Source == SourceSwap {
			prevDF = df
			continue
		}

		upper := prevDF
		lower := 0.0
		for j := i + 1; j < len(merged); j++ {
			if merged[j].Source == SourceSwap {
				lower = conv.DiscountFactor(merged[j].Rate, merged[j].Tenor)
				break
			}
		}
		if lower > upper {
			// The swaps themselves invert; hold the futures at the previous level.
			lower = upper
		}

		target := math.Min(math.Max(df, lower), upper)
		if math.Abs(target-df) > e.cfg.AdjustTolerance {
			p.Rate = conv.ZeroRate(target, p.Tenor)
			p.Adjusted = true
			df = target
			log.Debug().
				Float64("tenor", p.Tenor).
				Float64("quoted", p.QuotedRate).
				Float64("adjusted", p.Rate).
				Msg("adjusted futures point to keep discount factors decreasing")
		}
		prevDF = df
	}
	return merged
}

// sanitise copies the usable points of one source, tagged with that source, sorted by tenor,
// first occurrence winning on duplicate tenors.
func (e *Engine) sanitise(in []Point, src Source, log zerolog.Logger) []Point {
	out := make([]Point, 0, len(in))
	for _, p := range in {
		if !finite(p.Tenor) || !finite(p.Rate) || p.Tenor < e.cfg.TenorEpsilon || p.Tenor > e.cfg.MaxTenor {
			log.Debug().Str("source", string(src)).Float64("tenor", p.Tenor).Float64("rate", p.Rate).
				Msg("dropping unusable point")
			continue
		}
		p.Source = src
		p.Priority = src.Priority()
		p.Adjusted = false
		p.QuotedRate = p.Rate
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tenor < out[j].Tenor })

	dedup := out[:0]
	for _, p := range out {
		if nearTenor(dedup, p.Tenor, e.cfg.TenorEpsilon) {
			log.Debug().Str("source", string(src)).Float64("tenor", p.Tenor).Msg("dropping duplicate point")
			continue
		}
		dedup = append(dedup, p)
	}
	return dedup
}

// assemble turns sampled discount factors into grid points with zero and forward columns.
func (e *Engine) assemble(g grid, dfs []float64, method Method, conv convention.BasisConvention) []GridPoint {
	prev := 1.0
	for i, df := range dfs {
		if !finite(df) {
			df = prev
		}
		dfs[i] = math.Max(df, e.cfg.MinDiscountFactor)
		prev = dfs[i]
	}
	if method.Monotone() {
		clampNegativeForwards(dfs, g.nodeIdx)
	}
	dfs[0] = 1

	out := make([]GridPoint, len(g.ts))
	for i, t := range g.ts {
		out[i] = GridPoint{Tenor: t, DiscountFactor: dfs[i]}
		if i == 0 {
			continue
		}
		out[i].ZeroRate = conv.ZeroRate(dfs[i], t)
		out[i].ForwardRate = conv.ForwardRate(dfs[i-1], dfs[i], t-g.ts[i-1])
	}
	if len(out) > 1 {
		out[0].ZeroRate = out[1].ZeroRate
		out[0].ForwardRate = out[1].ForwardRate
	}
	return out
}

// nearTenor reports whether any point in ps (ascending) lies within eps of t.
func nearTenor(ps []Point, t, eps float64) bool {
	i := sort.Search(len(ps), func(i int) bool { return ps[i].Tenor >= t-eps })
	return i < len(ps) && ps[i].Tenor <= t+eps
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
