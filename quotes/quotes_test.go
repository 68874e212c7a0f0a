package quotes

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvekit/calendar"
	"github.com/meenmo/curvekit/config"
	"github.com/meenmo/curvekit/curve"
)

var asOf = time.Date(2025, 11, 21, 0, 0, 0, 0, time.UTC)

func TestPriceToRate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, PriceToRate(100))
	assert.Equal(t, 0.05, PriceToRate(95))
	assert.InDelta(t, 0.04315, PriceToRate(95.685), 1e-12)

	assert.False(t, ValidFuturesRate(PriceToRate(100)))
	assert.False(t, ValidFuturesRate(PriceToRate(101)))
	assert.False(t, ValidFuturesRate(PriceToRate(40)))
	assert.True(t, ValidFuturesRate(PriceToRate(96.1)))
}

func TestParsePriceAndRate(t *testing.T) {
	t.Parallel()

	p, err := ParsePrice(" 95.685 ")
	require.NoError(t, err)
	assert.Equal(t, 95.685, p)

	_, err = ParsePrice("n/a")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "n/a", pe.Input)

	r, err := ParseRate("4.25%")
	require.NoError(t, err)
	assert.Equal(t, 0.0425, r)

	r, err = ParseRate("3.5")
	require.NoError(t, err)
	assert.Equal(t, 0.035, r)

	_, err = ParseRate("")
	assert.Error(t, err)
}

func TestMaturityToYearsOneYear(t *testing.T) {
	t.Parallel()

	today := time.Now().UTC()
	code := today.AddDate(1, 0, 0).Format("2006-01-02")
	years, err := MaturityToYears(code, today)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, years, 0.01)

	years, err = MaturityToYears("1Y", today)
	require.NoError(t, err)
	assert.Equal(t, 1.0, years)
}

func TestMaturityToYearsFormats(t *testing.T) {
	t.Parallel()

	dec25 := calendar.IMMDate(calendar.WeekendsOnly, 2025, time.December) // 2025-12-17
	mar26 := calendar.IMMDate(calendar.WeekendsOnly, 2026, time.March)    // 2026-03-18
	yf := func(d time.Time) float64 { return d.Sub(asOf).Hours() / 24 / 365 }

	tests := []struct {
		code string
		want float64
	}{
		{"Z5", yf(dec25)},
		{"z25", yf(dec25)},
		{"SR3Z5", yf(dec25)},
		{"EDH26", yf(mar26)},
		{"H6", yf(mar26)},
		{"DEC25", yf(dec25)},
		{"Mar 2026", yf(mar26)},
		{"mar-26", yf(mar26)},
		{"2026-11-20", 364.0 / 365.0},
		{"20261120", 364.0 / 365.0},
		{"2026/11/20", 364.0 / 365.0},
		{"11/20/2026", 364.0 / 365.0},
		{"2026-11-20T00:00:00Z", 364.0 / 365.0},
		{"3M", 0.25},
		{"1W", 7.0 / 365.0},
		{"30D", 30.0 / 365.0},
		{"10Y", 10},
		{"2.5", 2.5},
	}
	for _, tt := range tests {
		got, err := MaturityToYears(tt.code, asOf)
		require.NoError(t, err, tt.code)
		assert.InDelta(t, tt.want, got, 1e-12, tt.code)
	}
}

func TestMaturityToYearsRollsExpiredDecade(t *testing.T) {
	t.Parallel()

	// March 2025 has expired by November 2025, so H5 is March 2035.
	got, err := MaturityToYears("H5", asOf)
	require.NoError(t, err)
	assert.Greater(t, got, 9.0)
	assert.Less(t, got, 10.0)
}

func TestMaturityToYearsErrors(t *testing.T) {
	t.Parallel()

	for _, code := range []string{"", "garbage", "Q2Q", "2024-01-01", "ABC25", "-1Y", "Z24", "NaN", "Inf", "-inf", "1e400Y"} {
		_, err := MaturityToYears(code, asOf)
		var pe *ParseError
		assert.True(t, errors.As(err, &pe), "code %q: %v", code, err)
	}
}

func TestMaturityToYearsRollsDatesModifiedFollowing(t *testing.T) {
	t.Parallel()

	// 2026-11-21 is a Saturday: rolls forward to Monday the 23rd.
	got, err := MaturityToYears("2026-11-21", asOf)
	require.NoError(t, err)
	assert.InDelta(t, 367.0/365.0, got, 1e-12)

	// 2026-01-31 is a Saturday at month end: rolls back to Friday the 30th.
	got, err = MaturityToYears("2026-01-31", asOf)
	require.NoError(t, err)
	assert.InDelta(t, 70.0/365.0, got, 1e-12)

	// 2026-12-25 is a holiday on TARGET only.
	target, err := MaturityToYearsOn(calendar.TARGET, "2026-12-25", asOf)
	require.NoError(t, err)
	plain, err := MaturityToYearsOn(calendar.WeekendsOnly, "2026-12-25", asOf)
	require.NoError(t, err)
	assert.InDelta(t, 3.0/365.0, target-plain, 1e-12)

	// Tenors are year fractions already and stay exact.
	got, err = MaturityToYearsOn(calendar.TARGET, "10Y", asOf)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got)
}

func TestMaturityToYearsUsesCalendar(t *testing.T) {
	t.Parallel()

	// 2026-12-16 is a Wednesday and not a holiday anywhere; both calendars agree.
	a, err := MaturityToYearsOn(calendar.TARGET, "Z6", asOf)
	require.NoError(t, err)
	b, err := MaturityToYearsOn(calendar.WeekendsOnly, "Z6", asOf)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestQuoteValueDecodes(t *testing.T) {
	t.Parallel()

	var qs []Quote
	err := json.Unmarshal([]byte(`[{"maturity":"2Y","value":"4.10"},{"maturity":"Z5","value":96.05}]`), &qs)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, Value("4.10"), qs[0].Value)
	assert.Equal(t, Value("96.05"), qs[1].Value)

	err = json.Unmarshal([]byte(`[{"maturity":"2Y","value":{"x":1}}]`), &qs)
	assert.Error(t, err)
}

func TestRequestPoints(t *testing.T) {
	t.Parallel()

	req := Request{
		Curve: config.DefaultCurveConfig("USD"),
		Swaps: []Quote{
			{Maturity: "1Y", Value: "4.30"},
			{Maturity: "2Y", Value: "bad"},
			{Maturity: "5Y", Value: "3.70%"},
		},
		Futures: []Quote{
			{Maturity: "Z5", Value: "96.10"},
			{Maturity: "H6", Value: "100.5"},
			{Maturity: "??", Value: "96.00"},
		},
	}

	swaps, futures, skipped := req.Points(asOf, zerolog.Nop())
	require.Len(t, swaps, 2)
	require.Len(t, futures, 1)
	assert.Len(t, skipped, 3)

	assert.Equal(t, curve.SourceSwap, swaps[0].Source)
	assert.Equal(t, 1.0, swaps[0].Tenor)
	assert.Equal(t, 0.043, swaps[0].Rate)
	assert.Equal(t, 0.037, swaps[1].Rate)

	assert.Equal(t, curve.SourceFutures, futures[0].Source)
	assert.InDelta(t, 0.039, futures[0].Rate, 1e-12)

	for _, err := range skipped {
		var pe *ParseError
		assert.True(t, errors.As(err, &pe), err.Error())
	}
}

func TestRequestPointsHonoursFamilies(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultCurveConfig("EUR").WithFutures(config.InstrumentFamily{Enabled: false})
	req := Request{
		Curve:   cfg,
		Swaps:   []Quote{{Maturity: "1Y", Value: "2.1"}},
		Futures: []Quote{{Maturity: "Z5", Value: "97.9"}},
	}
	swaps, futures, skipped := req.Points(asOf, zerolog.Nop())
	assert.Len(t, swaps, 1)
	assert.Empty(t, futures)
	assert.Empty(t, skipped)
}

func TestRequestResolveMethodAndAsOf(t *testing.T) {
	t.Parallel()

	m, err := Request{}.ResolveMethod()
	require.NoError(t, err)
	assert.Equal(t, curve.MethodLinear, m)

	m, err = Request{Curve: config.CurveConfig{Method: "bloomberg"}}.ResolveMethod()
	require.NoError(t, err)
	assert.Equal(t, curve.MethodBloomberg, m)

	m, err = Request{Method: "nelson-siegel", Curve: config.CurveConfig{Method: "bloomberg"}}.ResolveMethod()
	require.NoError(t, err)
	assert.Equal(t, curve.MethodNelsonSiegel, m)

	_, err = Request{Method: "nope"}.ResolveMethod()
	assert.ErrorIs(t, err, curve.ErrUnknownMethod)

	d, err := Request{AsOf: "2025-11-21"}.AsOfDate(time.Now())
	require.NoError(t, err)
	assert.Equal(t, asOf, d)

	_, err = Request{AsOf: "21/11/2025"}.AsOfDate(time.Now())
	assert.Error(t, err)
}
