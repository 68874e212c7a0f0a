package config

import (
	"errors"
	"fmt"

	"github.com/meenmo/curvekit/convention"
)

// InstrumentFamily toggles one instrument family of a curve and names the index feeding it.
type InstrumentFamily struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Index   string `json:"index" yaml:"index"`
}

// CurveConfig is one named curve construction request. It is a value type: use the With*
// helpers to derive a modified copy instead of mutating a shared instance.
type CurveConfig struct {
	Name     string           `json:"name" yaml:"name"`
	Currency string           `json:"currency" yaml:"currency"`
	Method   string           `json:"method,omitempty" yaml:"method"`
	Futures  InstrumentFamily `json:"futures" yaml:"futures"`
	Swaps    InstrumentFamily `json:"swaps" yaml:"swaps"`
}

var (
	// ErrNoFamilyEnabled is returned when neither futures nor swaps are enabled.
	ErrNoFamilyEnabled = errors.New("no instrument family enabled")
)

// DefaultCurveConfig enables both families with the registry's default index feeds.
func DefaultCurveConfig(currency string) CurveConfig {
	e := convention.LookupEntry(currency)
	return CurveConfig{
		Name:     e.Currency,
		Currency: e.Currency,
		Futures:  InstrumentFamily{Enabled: true, Index: e.FuturesIndex},
		Swaps:    InstrumentFamily{Enabled: true, Index: e.SwapIndex},
	}
}

func (c CurveConfig) WithCurrency(currency string) CurveConfig {
	c.Currency = convention.Normalize(currency)
	return c
}

func (c CurveConfig) WithMethod(method string) CurveConfig {
	c.Method = method
	return c
}

func (c CurveConfig) WithFutures(f InstrumentFamily) CurveConfig {
	c.Futures = f
	return c
}

func (c CurveConfig) WithSwaps(f InstrumentFamily) CurveConfig {
	c.Swaps = f
	return c
}

// Validate checks the currency code shape and that at least one family is enabled.
func (c CurveConfig) Validate() error {
	ccy := convention.Normalize(c.Currency)
	if len(ccy) != 3 {
		return fmt.Errorf("curve %q: currency must be a 3-letter code, got %q", c.Name, c.Currency)
	}
	for _, r := range ccy {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("curve %q: currency must be a 3-letter code, got %q", c.Name, c.Currency)
		}
	}
	if !c.Futures.Enabled && !c.Swaps.Enabled {
		return fmt.Errorf("curve %q: %w", c.Name, ErrNoFamilyEnabled)
	}
	return nil
}
