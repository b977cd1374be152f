package application

import "time"

// wholeYears returns the calendar-aware whole-year difference between
// birth and now. The year only counts once the birthday has passed; a
// Feb 29 birthday completes its year on Mar 1 in non-leap years.
func wholeYears(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}
