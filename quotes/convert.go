// Package quotes turns raw market quotes into curve points.
package quotes

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/curvekit/calendar"
	"github.com/meenmo/curvekit/utils"
)

// ParseError reports a quote field that could not be interpreted. Callers skip the quote.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Input, e.Reason)
}

var (
	futuresCodeRe = regexp.MustCompile(`^([A-Z0-9]*?)([FGHJKMNQUVXZ])(\d{1,2})$`)
	monthNameRe   = regexp.MustCompile(`^([A-Z]{3})[\s\-]?(\d{2}|\d{4})$`)
)

var monthCodes = map[byte]time.Month{
	'F': time.January,
	'G': time.February,
	'H': time.March,
	'J': time.April,
	'K': time.May,
	'M': time.June,
	'N': time.July,
	'Q': time.August,
	'U': time.September,
	'V': time.October,
	'X': time.November,
	'Z': time.December,
}

var monthNames = map[string]time.Month{
	"JAN": time.January,
	"FEB": time.February,
	"MAR": time.March,
	"APR": time.April,
	"MAY": time.May,
	"JUN": time.June,
	"JUL": time.July,
	"AUG": time.August,
	"SEP": time.September,
	"OCT": time.October,
	"NOV": time.November,
	"DEC": time.December,
}

var dateLayouts = []string{
	"2006-01-02",
	"20060102",
	"2006/01/02",
	"01/02/2006",
	time.RFC3339,
}

// MaturityToYears converts a maturity code into years from asOf on a weekends-only calendar.
// See MaturityToYearsOn.
func MaturityToYears(code string, asOf time.Time) (float64, error) {
	return MaturityToYearsOn(calendar.WeekendsOnly, code, asOf)
}

// MaturityToYearsOn converts a maturity code into an ACT/365F year fraction from asOf.
//
// Accepted forms:
//   - futures month codes with optional root: Z5, Z25, SR3Z5, EDH26 (IMM date, third Wednesday)
//   - month names: DEC25, MAR 2026, Jun-26 (IMM date)
//   - dates: 2026-01-02, 20260102, 2026/01/02, 01/02/2026, RFC3339
//   - tenors: 1W, 3M, 10Y, 30D, or bare years such as 2.5
//
// IMM dates roll Following on cal. A maturity on or before asOf is an error.
func MaturityToYearsOn(cal calendar.CalendarID, code string, asOf time.Time) (float64, error) {
	norm := strings.ToUpper(strings.TrimSpace(code))
	if norm == "" {
		return 0, &ParseError{Input: code, Reason: "empty maturity"}
	}
	asOf = utils.Truncate(asOf)

	// Month names first: JUN26 would otherwise read as root JU + N26.
	if expiry, ok := parseMonthName(cal, norm); ok {
		return yearsUntil(code, asOf, expiry)
	}
	if expiry, ok := parseFuturesCode(cal, norm, asOf); ok {
		return yearsUntil(code, asOf, expiry)
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, strings.TrimSpace(code)); err == nil {
			return yearsUntil(code, asOf, calendar.Adjust(cal, utils.Truncate(d)))
		}
	}

	years, err := TenorToYears(norm)
	if err != nil {
		return 0, &ParseError{Input: code, Reason: "unrecognised maturity format"}
	}
	if years <= 0 {
		return 0, &ParseError{Input: code, Reason: "maturity must be after the as-of date"}
	}
	return years, nil
}

func yearsUntil(code string, asOf, maturity time.Time) (float64, error) {
	years := utils.YearFraction(asOf, maturity, "ACT/365F")
	if years <= 0 {
		return 0, &ParseError{Input: code, Reason: "maturity must be after the as-of date"}
	}
	return years, nil
}

// parseFuturesCode resolves month-code contracts. A single-digit year is the first matching
// year not yet expired relative to asOf.
func parseFuturesCode(cal calendar.CalendarID, code string, asOf time.Time) (time.Time, bool) {
	m := futuresCodeRe.FindStringSubmatch(code)
	if m == nil {
		return time.Time{}, false
	}
	month := monthCodes[m[2][0]]
	digits, _ := strconv.Atoi(m[3])

	if len(m[3]) == 2 {
		return calendar.IMMDate(cal, 2000+digits, month), true
	}
	year := asOf.Year()
	for year%10 != digits {
		year++
	}
	expiry := calendar.IMMDate(cal, year, month)
	if expiry.Before(asOf) {
		expiry = calendar.IMMDate(cal, year+10, month)
	}
	return expiry, true
}

func parseMonthName(cal calendar.CalendarID, code string) (time.Time, bool) {
	m := monthNameRe.FindStringSubmatch(code)
	if m == nil {
		return time.Time{}, false
	}
	month, ok := monthNames[m[1]]
	if !ok {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(m[2])
	if len(m[2]) == 2 {
		year += 2000
	}
	return calendar.IMMDate(cal, year, month), true
}

// TenorToYears converts tenor strings like "1W", "3M", "10Y", "30D" to year fractions.
// A bare number is taken as years.
func TenorToYears(tenor string) (float64, error) {
	tenor = strings.TrimSpace(strings.ToUpper(tenor))
	if tenor == "" {
		return 0, &ParseError{Input: tenor, Reason: "empty tenor"}
	}

	scale := 1.0
	switch tenor[len(tenor)-1] {
	case 'W':
		scale = 7.0 / 365.0
	case 'M':
		scale = 1.0 / 12.0
	case 'Y':
		scale = 1.0
	case 'D':
		scale = 1.0 / 365.0
	default:
		return parseTenorNumber(tenor, tenor, 1)
	}
	return parseTenorNumber(tenor, tenor[:len(tenor)-1], scale)
}

func parseTenorNumber(tenor, num string, scale float64) (float64, error) {
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ParseError{Input: tenor, Reason: "not a tenor"}
	}
	return v * scale, nil
}

// PriceToRate converts a futures price quoted as 100 minus the rate in percent into a decimal
// rate. Prices outside (0, 100) yield rates that ValidFuturesRate rejects.
func PriceToRate(price float64) float64 {
	return (100 - price) / 100
}

// ParsePrice parses a futures price string.
func ParsePrice(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, &ParseError{Input: s, Reason: "price is not numeric"}
	}
	return d.InexactFloat64(), nil
}

// ValidFuturesRate is the noise filter for futures-implied rates: only (0, 0.5) is kept.
func ValidFuturesRate(rate float64) bool {
	return rate > 0 && rate < 0.5
}

// ParseRate parses a swap quote in percent ("4.25" or "4.25%") into a decimal rate.
func ParseRate(s string) (float64, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(s), "%")
	d, err := decimal.NewFromString(strings.TrimSpace(trimmed))
	if err != nil {
		return 0, &ParseError{Input: s, Reason: "rate is not numeric"}
	}
	return d.Shift(-2).InexactFloat64(), nil
}
