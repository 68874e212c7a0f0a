// Package convention holds the per-currency basis conventions used to convert between rates
// and discount factors.
package convention

import (
	"math"
	"time"

	"github.com/meenmo/curvekit/utils"
)

// DayCount enum.
type DayCount string

const (
	Act360  DayCount = "ACT/360"
	Act365F DayCount = "ACT/365F"
	ActAct  DayCount = "ACT/ACT"
	Dc30360 DayCount = "30/360"
)

// Compounding enumerates how a quoted rate accrues.
type Compounding string

const (
	Simple     Compounding = "simple"
	Annual     Compounding = "annual"
	SemiAnnual Compounding = "semiannual"
	Quarterly  Compounding = "quarterly"
	Continuous Compounding = "continuous"
)

// periodsPerYear returns the compounding frequency, 0 for simple and continuous.
func (c Compounding) periodsPerYear() float64 {
	switch c {
	case Annual:
		return 1
	case SemiAnnual:
		return 2
	case Quarterly:
		return 4
	default:
		return 0
	}
}

// BasisConvention is the immutable rate basis of one currency.
type BasisConvention struct {
	DayCount         DayCount    `json:"dayCount" yaml:"day_count"`
	Compounding      Compounding `json:"compounding" yaml:"compounding"`
	PaymentFrequency int         `json:"paymentFrequency" yaml:"payment_frequency"`
}

// DiscountFactor converts a zero rate at tenor t (years) into a discount factor.
func (b BasisConvention) DiscountFactor(rate, t float64) float64 {
	if t <= 0 {
		return 1.0
	}
	switch b.Compounding {
	case Simple:
		return 1.0 / (1.0 + rate*t)
	case Continuous:
		return math.Exp(-rate * t)
	default:
		n := b.Compounding.periodsPerYear()
		if n == 0 {
			n = 1
		}
		return math.Pow(1.0+rate/n, -n*t)
	}
}

// ZeroRate is the inverse of DiscountFactor. It returns 0 for t <= 0.
func (b BasisConvention) ZeroRate(df, t float64) float64 {
	if t <= 0 {
		return 0
	}
	return b.rateFromGrowth(1.0/df, t)
}

// ForwardRate returns the rate implied between two tenors dt apart with discount factors df1
// (earlier) and df2 (later).
func (b BasisConvention) ForwardRate(df1, df2, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	return b.rateFromGrowth(df1/df2, dt)
}

func (b BasisConvention) rateFromGrowth(growth, t float64) float64 {
	switch b.Compounding {
	case Simple:
		return (growth - 1.0) / t
	case Continuous:
		return math.Log(growth) / t
	default:
		n := b.Compounding.periodsPerYear()
		if n == 0 {
			n = 1
		}
		return n * (math.Pow(growth, 1.0/(n*t)) - 1.0)
	}
}

// YearFraction measures an accrual period under the convention's day count. Curve tenors
// stay ACT/365F; this is for pricing cash flows off the curve.
func (b BasisConvention) YearFraction(start, end time.Time) float64 {
	return utils.YearFraction(start, end, string(b.DayCount))
}
