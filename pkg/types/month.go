package types

import (
	"fmt"
	"regexp"
	"time"
)

// Month is a calendar month key in YYYY-MM form. Engines receive it as an
// explicit parameter; only entry points derive it from the wall clock.
type Month string

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// MonthOf returns the Month containing the given instant.
func MonthOf(t time.Time) Month {
	return Month(t.Format("2006-01"))
}

// ParseMonth validates a YYYY-MM key.
func ParseMonth(value string) (Month, error) {
	if !monthPattern.MatchString(value) {
		return "", fmt.Errorf("invalid month %q, expected YYYY-MM", value)
	}
	return Month(value), nil
}

// String implements fmt.Stringer.
func (m Month) String() string {
	return string(m)
}

// Bounds returns the half-open UTC interval [start, end) covering the month.
func (m Month) Bounds() (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", string(m))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q: %w", m, err)
	}
	return start, start.AddDate(0, 1, 0), nil
}
