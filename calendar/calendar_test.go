package calendar

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAdjust_ModifiedFollowing(t *testing.T) {
	t.Parallel()

	// 2025-05-31 is a Saturday; following would roll into June, so step back to Friday.
	got := Adjust(USD, date(2025, 5, 31))
	if !got.Equal(date(2025, 5, 30)) {
		t.Fatalf("Adjust month-end mismatch: got %s", got.Format("2006-01-02"))
	}

	// Christmas 2025 is a Thursday holiday on TARGET, Boxing Day too.
	got = Adjust(TARGET, date(2025, 12, 25))
	if !got.Equal(date(2025, 12, 29)) {
		t.Fatalf("Adjust TARGET Christmas mismatch: got %s", got.Format("2006-01-02"))
	}
}

func TestIMMDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		year  int
		month time.Month
		want  time.Time
	}{
		{2025, time.December, date(2025, 12, 17)},
		{2026, time.March, date(2026, 3, 18)},
		{2026, time.July, date(2026, 7, 15)},
		{2027, time.September, date(2027, 9, 15)},
	}
	for _, tc := range cases {
		got := IMMDate(USD, tc.year, tc.month)
		if !got.Equal(tc.want) {
			t.Fatalf("IMMDate(%d, %s) = %s, want %s", tc.year, tc.month, got.Format("2006-01-02"), tc.want.Format("2006-01-02"))
		}
		if got.Weekday() != time.Wednesday {
			t.Fatalf("IMMDate(%d, %s) is a %s", tc.year, tc.month, got.Weekday())
		}
	}
}
