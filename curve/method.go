package curve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/meenmo/curvekit/config"
	"github.com/meenmo/curvekit/convention"
)

// Method selects one of the curve construction strategies.
type Method string

const (
	MethodLinear                  Method = "linear"
	MethodCubicSpline             Method = "cubic_spline"
	MethodNelsonSiegel            Method = "nelson_siegel"
	MethodBloomberg               Method = "bloomberg"
	MethodQuantLibLogLinear       Method = "quantlib_log_linear"
	MethodQuantLibLogCubic        Method = "quantlib_log_cubic"
	MethodQuantLibLinearForward   Method = "quantlib_linear_forward"
	MethodQuantLibMonotonicConvex Method = "quantlib_monotonic_convex"
)

var (
	// ErrUnknownMethod is returned for a method identifier outside the supported set.
	ErrUnknownMethod = errors.New("unknown bootstrap method")
)

// Methods lists every supported method in a stable order.
func Methods() []Method {
	return []Method{
		MethodLinear,
		MethodCubicSpline,
		MethodNelsonSiegel,
		MethodBloomberg,
		MethodQuantLibLogLinear,
		MethodQuantLibLogCubic,
		MethodQuantLibLinearForward,
		MethodQuantLibMonotonicConvex,
	}
}

// ParseMethod accepts the identifiers case-insensitively, with '-' or ' ' for '_'.
func ParseMethod(s string) (Method, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	m := Method(norm)
	if _, err := m.strategy(); err != nil {
		return "", fmt.Errorf("%w: %q", err, s)
	}
	return m, nil
}

// Monotone reports whether the method guarantees a non-increasing discount curve.
// Log-cubic is documented as uncorrected.
func (m Method) Monotone() bool {
	return m != MethodQuantLibLogCubic
}

// Parametric reports whether the method fits parameters instead of interpolating nodes.
func (m Method) Parametric() bool {
	return m == MethodNelsonSiegel
}

func (m Method) gridStep(cfg config.Config) float64 {
	switch m {
	case MethodLinear, MethodQuantLibLogLinear:
		return cfg.GridStep
	default:
		return cfg.FineGridStep
	}
}

// strategy is the sealed set of curve constructions. Each returns discount factors on the
// supplied grid with dfs[0] == 1.
type strategy interface {
	fit(nodes []node, g grid, conv convention.BasisConvention, cfg config.Config) fitted
}

type fitted struct {
	dfs    []float64
	params *NelsonSiegelParams
}

func (m Method) strategy() (strategy, error) {
	switch m {
	case MethodLinear:
		return linearStrategy{}, nil
	case MethodCubicSpline:
		return cubicSplineStrategy{}, nil
	case MethodNelsonSiegel:
		return nelsonSiegelStrategy{}, nil
	case MethodBloomberg:
		return bloombergStrategy{}, nil
	case MethodQuantLibLogLinear:
		return logLinearStrategy{}, nil
	case MethodQuantLibLogCubic:
		return logCubicStrategy{}, nil
	case MethodQuantLibLinearForward:
		return linearForwardStrategy{}, nil
	case MethodQuantLibMonotonicConvex:
		return monotonicConvexStrategy{}, nil
	default:
		return nil, ErrUnknownMethod
	}
}
