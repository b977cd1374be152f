package application

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWholeYears(t *testing.T) {
	cases := []struct {
		name  string
		birth time.Time
		now   time.Time
		want  int
	}{
		{"birthday today", date(2000, 6, 15), date(2018, 6, 15), 18},
		{"day before birthday", date(2000, 6, 15), date(2018, 6, 14), 17},
		{"day after birthday", date(2000, 6, 15), date(2018, 6, 16), 18},
		{"earlier month", date(2000, 6, 15), date(2018, 5, 20), 17},
		{"later month", date(2000, 6, 15), date(2018, 7, 1), 18},
		{"leap birthday, feb 28 non-leap year", date(2004, 2, 29), date(2023, 2, 28), 18},
		{"leap birthday, mar 1 non-leap year", date(2004, 2, 29), date(2023, 3, 1), 19},
		{"leap birthday, feb 29 leap year", date(2004, 2, 29), date(2024, 2, 29), 20},
		{"same day", date(2000, 1, 1), date(2000, 1, 1), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := wholeYears(tc.birth, tc.now); got != tc.want {
				t.Fatalf("wholeYears(%s, %s) = %d, want %d",
					tc.birth.Format("2006-01-02"), tc.now.Format("2006-01-02"), got, tc.want)
			}
		})
	}
}
