package utils

import (
	"time"
)

// YearFraction computes year fraction between two dates using the specified day count convention.
// Supported conventions: ACT/360, ACT/365F, ACT/ACT, 30E/360, 30/360. Unknown conventions use ACT/365F.
func YearFraction(start, end time.Time, convention string) float64 {
	switch convention {
	case "ACT/360":
		return Days(start, end) / 360.0
	case "ACT/365F":
		return Days(start, end) / 365.0
	case "ACT/ACT":
		return actAct(start, end)
	case "30E/360", "30/360":
		// 30E/360 ISDA (Eurobond basis)
		// D1 and D2 are capped at 30
		d1 := start.Day()
		if d1 > 30 {
			d1 = 30
		}
		d2 := end.Day()
		if d2 > 30 {
			d2 = 30
		}
		y1, m1 := start.Year(), int(start.Month())
		y2, m2 := end.Year(), int(end.Month())
		return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360.0
	default:
		return Days(start, end) / 365.0
	}
}

// actAct splits the period at year boundaries (ACT/ACT ISDA).
func actAct(start, end time.Time) float64 {
	if end.Before(start) {
		return -actAct(end, start)
	}
	total := 0.0
	for cur := start; cur.Before(end); {
		next := time.Date(cur.Year()+1, time.January, 1, 0, 0, 0, 0, cur.Location())
		if next.After(end) {
			next = end
		}
		total += Days(cur, next) / daysInYear(cur.Year())
		cur = next
	}
	return total
}

func daysInYear(year int) float64 {
	if time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay() == 366 {
		return 366
	}
	return 365
}

// Days returns the number of calendar days between two dates.
func Days(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24
}
