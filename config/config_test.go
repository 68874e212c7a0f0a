package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "curvekit-test", cfg.App.Name)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"https://dash.example.com"}, cfg.Server.AllowedOrigins)

	// Overridden solver fields keep their file values, the rest fall back to defaults.
	assert.Equal(t, 50, cfg.Solver.MaxFitIterations)
	assert.Equal(t, 0.5, cfg.Solver.GridStep)
	assert.Equal(t, DefaultConfig.FineGridStep, cfg.Solver.FineGridStep)
	assert.Equal(t, DefaultConfig.MinDiscountFactor, cfg.Solver.MinDiscountFactor)

	require.Len(t, cfg.Curves, 2)
	usd, ok := cfg.Curve("USD-SOFR")
	require.True(t, ok)
	assert.Equal(t, "USD", usd.Currency)
	assert.Equal(t, "quantlib_monotonic_convex", usd.Method)
	assert.True(t, usd.Futures.Enabled)
	assert.Equal(t, "SOFR3M", usd.Futures.Index)

	eur, ok := cfg.Curve("eur-estr")
	require.True(t, ok)
	assert.False(t, eur.Futures.Enabled)
	assert.True(t, eur.Swaps.Enabled)

	_, ok = cfg.Curve("missing")
	assert.False(t, ok)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvAddr, "127.0.0.1:7000")
	t.Setenv(EnvAllowedOrigins, "https://a.example, https://b.example")

	cfg, err := Load(filepath.Join("testdata", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.App.LogLevel)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoad_NoPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, DefaultConfig, cfg.Solver)
	assert.Empty(t, cfg.Curves)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "missing.yaml"))
	require.Error(t, err)

	_, err = Load(filepath.Join("testdata", "bad_curve.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoFamilyEnabled))
}

func TestCurveConfig_Replacement(t *testing.T) {
	base := DefaultCurveConfig("jpy")
	assert.Equal(t, "JPY", base.Currency)
	assert.Equal(t, "TONAR", base.Swaps.Index)
	assert.Equal(t, "TONA3M", base.Futures.Index)
	require.NoError(t, base.Validate())

	swapsOnly := base.WithFutures(InstrumentFamily{})
	assert.False(t, swapsOnly.Futures.Enabled)
	assert.True(t, base.Futures.Enabled, "original must be untouched")

	moved := base.WithCurrency(" eur ").WithMethod("linear")
	assert.Equal(t, "EUR", moved.Currency)
	assert.Equal(t, "linear", moved.Method)
	assert.Equal(t, "JPY", base.Currency)

	none := base.WithFutures(InstrumentFamily{}).WithSwaps(InstrumentFamily{})
	assert.ErrorIs(t, none.Validate(), ErrNoFamilyEnabled)

	assert.Error(t, base.WithCurrency("US").Validate())
	assert.Error(t, base.WithCurrency("U1D").Validate())
}

func TestWithDefaults(t *testing.T) {
	assert.Equal(t, DefaultConfig, Config{}.WithDefaults())

	c := Config{MaxFitIterations: 7}.WithDefaults()
	assert.Equal(t, 7, c.MaxFitIterations)
	assert.Equal(t, 200.0, c.MaxTenor)
	assert.Equal(t, DefaultConfig.GridStep, c.GridStep)
}
