package config

// Config holds solver and curve construction parameters.
// It is passed by value to the engine; there is no package-level mutable copy.
type Config struct {
	// FitTolerance is the relative SSE / step tolerance for Nelson-Siegel convergence.
	FitTolerance float64 `yaml:"fit_tolerance"`

	// MaxFitIterations bounds the Levenberg-Marquardt loop of the Nelson-Siegel fit.
	// When it is exhausted the fit falls back to a flat curve at the mean observed rate.
	MaxFitIterations int `yaml:"max_fit_iterations"`

	// DefaultLambda is the decay used by the flat fallback seed.
	DefaultLambda float64 `yaml:"default_lambda"`

	// MinDiscountFactor is the floor for discount factors to prevent
	// numerical instability (division by near-zero).
	MinDiscountFactor float64 `yaml:"min_discount_factor"`

	// MaxTenor is the longest tenor (years) the engine accepts; longer points are dropped.
	MaxTenor float64 `yaml:"max_tenor"`

	// TenorEpsilon is the distance in years under which two tenors are the same node.
	TenorEpsilon float64 `yaml:"tenor_epsilon"`

	// AdjustTolerance is the discount factor slack tolerated before a futures point is
	// re-rated and flagged as adjusted.
	AdjustTolerance float64 `yaml:"adjust_tolerance"`

	// GridStep is the sampling step (years) for the piecewise methods.
	GridStep float64 `yaml:"grid_step"`

	// FineGridStep is the sampling step (years) for methods with curved segments.
	FineGridStep float64 `yaml:"fine_grid_step"`

	// MaxGridPoints caps the output size. 600 supports 50Y at monthly spacing;
	// longer curves get a proportionally coarser step.
	MaxGridPoints int `yaml:"max_grid_points"`
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	FitTolerance:      1e-12,
	MaxFitIterations:  200,
	DefaultLambda:     0.6,
	MinDiscountFactor: 1e-9,
	MaxTenor:          200,
	TenorEpsilon:      1e-6,
	AdjustTolerance:   1e-14,
	GridStep:          0.25,
	FineGridStep:      1.0 / 12.0,
	MaxGridPoints:     600,
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig
	if c.FitTolerance <= 0 {
		c.FitTolerance = d.FitTolerance
	}
	if c.MaxFitIterations <= 0 {
		c.MaxFitIterations = d.MaxFitIterations
	}
	if c.DefaultLambda <= 0 {
		c.DefaultLambda = d.DefaultLambda
	}
	if c.MinDiscountFactor <= 0 {
		c.MinDiscountFactor = d.MinDiscountFactor
	}
	if c.MaxTenor <= 0 {
		c.MaxTenor = d.MaxTenor
	}
	if c.TenorEpsilon <= 0 {
		c.TenorEpsilon = d.TenorEpsilon
	}
	if c.AdjustTolerance <= 0 {
		c.AdjustTolerance = d.AdjustTolerance
	}
	if c.GridStep <= 0 {
		c.GridStep = d.GridStep
	}
	if c.FineGridStep <= 0 {
		c.FineGridStep = d.FineGridStep
	}
	if c.MaxGridPoints <= 1 {
		c.MaxGridPoints = d.MaxGridPoints
	}
	return c
}
