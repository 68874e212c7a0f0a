package quotes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/meenmo/curvekit/config"
	"github.com/meenmo/curvekit/convention"
	"github.com/meenmo/curvekit/curve"
)

// Value is a raw quote value. It decodes from a JSON string or number.
type Value string

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("quote value must be a string or number: %w", err)
	}
	*v = Value(n.String())
	return nil
}

// Quote is one raw observation: a maturity code and either a swap rate in percent or a futures
// price.
type Quote struct {
	Maturity string `json:"maturity"`
	Value    Value  `json:"value"`
}

// Request is a batch of raw quotes for one curve.
type Request struct {
	AsOf    string             `json:"asOf,omitempty"` // YYYY-MM-DD, defaults to today
	Curve   config.CurveConfig `json:"curve"`
	Method  string             `json:"method,omitempty"`
	Swaps   []Quote            `json:"swaps"`
	Futures []Quote            `json:"futures"`
}

// AsOfDate parses AsOf, falling back to now.
func (r Request) AsOfDate(now time.Time) (time.Time, error) {
	if strings.TrimSpace(r.AsOf) == "" {
		return now, nil
	}
	d, err := time.Parse("2006-01-02", strings.TrimSpace(r.AsOf))
	if err != nil {
		return time.Time{}, &ParseError{Input: r.AsOf, Reason: "as-of date must be YYYY-MM-DD"}
	}
	return d, nil
}

// ResolveMethod picks the request method, then the curve's default, then linear.
func (r Request) ResolveMethod() (curve.Method, error) {
	name := r.Method
	if strings.TrimSpace(name) == "" {
		name = r.Curve.Method
	}
	if strings.TrimSpace(name) == "" {
		return curve.MethodLinear, nil
	}
	return curve.ParseMethod(name)
}

// Points converts the enabled families into curve points as of asOf. Quotes that cannot be
// parsed or fail the futures noise filter are skipped and returned as errors; the batch is
// never aborted.
func (r Request) Points(asOf time.Time, logger zerolog.Logger) (swaps, futures []curve.Point, skipped []error) {
	cal := convention.LookupEntry(r.Curve.Currency).Calendar

	skip := func(family string, q Quote, err error) {
		logger.Debug().
			Str("family", family).
			Str("maturity", q.Maturity).
			Str("value", string(q.Value)).
			Err(err).
			Msg("skipping quote")
		skipped = append(skipped, fmt.Errorf("%s %s: %w", family, q.Maturity, err))
	}

	if r.Curve.Swaps.Enabled {
		for _, q := range r.Swaps {
			tenor, err := MaturityToYearsOn(cal, q.Maturity, asOf)
			if err != nil {
				skip("swap", q, err)
				continue
			}
			rate, err := ParseRate(string(q.Value))
			if err != nil {
				skip("swap", q, err)
				continue
			}
			swaps = append(swaps, curve.NewSwapPoint(tenor, rate))
		}
	}

	if r.Curve.Futures.Enabled {
		for _, q := range r.Futures {
			tenor, err := MaturityToYearsOn(cal, q.Maturity, asOf)
			if err != nil {
				skip("futures", q, err)
				continue
			}
			price, err := ParsePrice(string(q.Value))
			if err != nil {
				skip("futures", q, err)
				continue
			}
			rate := PriceToRate(price)
			if !ValidFuturesRate(rate) {
				skip("futures", q, &ParseError{Input: string(q.Value), Reason: "implied rate outside (0, 0.5)"})
				continue
			}
			futures = append(futures, curve.NewFuturesPoint(tenor, rate))
		}
	}
	return swaps, futures, skipped
}
