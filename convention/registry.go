package convention

import (
	"sort"
	"strings"

	"github.com/meenmo/curvekit/calendar"
)

// Entry is a registry row: the basis convention plus the calendar and default index feeds
// for a currency.
type Entry struct {
	Currency     string              `json:"currency"`
	Basis        BasisConvention     `json:"basisConvention"`
	Calendar     calendar.CalendarID `json:"calendar"`
	SwapIndex    string              `json:"swapIndex"`
	FuturesIndex string              `json:"futuresIndex"`
}

// Default is returned for currencies without an explicit entry.
var Default = BasisConvention{
	DayCount:         Act360,
	Compounding:      Annual,
	PaymentFrequency: 1,
}

// registry is read-only after package initialisation.
var registry = map[string]Entry{
	"USD": {
		Basis:        BasisConvention{DayCount: Act360, Compounding: Annual, PaymentFrequency: 1},
		Calendar:     calendar.USD,
		SwapIndex:    "SOFR",
		FuturesIndex: "SOFR3M",
	},
	"EUR": {
		Basis:        BasisConvention{DayCount: Act360, Compounding: Annual, PaymentFrequency: 1},
		Calendar:     calendar.TARGET,
		SwapIndex:    "ESTR",
		FuturesIndex: "EURIBOR3M",
	},
	"GBP": {
		Basis:        BasisConvention{DayCount: Act365F, Compounding: Annual, PaymentFrequency: 1},
		Calendar:     calendar.LON,
		SwapIndex:    "SONIA",
		FuturesIndex: "SONIA3M",
	},
	"JPY": {
		Basis:        BasisConvention{DayCount: Act365F, Compounding: Annual, PaymentFrequency: 1},
		Calendar:     calendar.JPN,
		SwapIndex:    "TONAR",
		FuturesIndex: "TONA3M",
	},
	"CHF": {
		Basis:        BasisConvention{DayCount: Act360, Compounding: Annual, PaymentFrequency: 1},
		Calendar:     calendar.ZRH,
		SwapIndex:    "SARON",
		FuturesIndex: "SARON3M",
	},
	"KRW": {
		Basis:        BasisConvention{DayCount: Act365F, Compounding: Quarterly, PaymentFrequency: 4},
		Calendar:     calendar.KRW,
		SwapIndex:    "CD91D",
		FuturesIndex: "KTB3Y",
	},
	"AUD": {
		Basis:        BasisConvention{DayCount: Act365F, Compounding: SemiAnnual, PaymentFrequency: 2},
		Calendar:     calendar.SYD,
		SwapIndex:    "AONIA",
		FuturesIndex: "BBSW3M",
	},
	"CAD": {
		Basis:        BasisConvention{DayCount: Act365F, Compounding: SemiAnnual, PaymentFrequency: 2},
		Calendar:     calendar.TOR,
		SwapIndex:    "CORRA",
		FuturesIndex: "CORRA3M",
	},
}

// Normalize upper-cases and trims a currency code.
func Normalize(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// Lookup returns the basis convention for currency, or Default when it is not mapped.
func Lookup(currency string) BasisConvention {
	return LookupEntry(currency).Basis
}

// LookupEntry returns the full registry row for currency. Unmapped currencies get the
// Default basis on a weekends-only calendar with no index feeds.
func LookupEntry(currency string) Entry {
	ccy := Normalize(currency)
	if e, ok := registry[ccy]; ok {
		e.Currency = ccy
		return e
	}
	return Entry{Currency: ccy, Basis: Default, Calendar: calendar.WeekendsOnly}
}

// IsMapped reports whether currency has an explicit registry entry.
func IsMapped(currency string) bool {
	_, ok := registry[Normalize(currency)]
	return ok
}

// Currencies lists the explicitly mapped currency codes in sorted order.
func Currencies() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
