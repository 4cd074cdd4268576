package aging

import (
	"fmt"
	"time"
)

// PeriodKey identifies one calendar month. Keys are totally ordered by
// calendar order and equal iff year and month match.
type PeriodKey struct {
	Year  int
	Month time.Month
}

// PeriodOf maps a date to its calendar-month bucket.
func PeriodOf(t time.Time) PeriodKey {
	return PeriodKey{Year: t.Year(), Month: t.Month()}
}

// Compare orders two period keys: -1 when p precedes o, 0 when equal,
// 1 when p follows o.
func (p PeriodKey) Compare(o PeriodKey) int {
	switch {
	case p.Year != o.Year:
		if p.Year < o.Year {
			return -1
		}
		return 1
	case p.Month != o.Month:
		if p.Month < o.Month {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// Before reports whether p precedes o in calendar order.
func (p PeriodKey) Before(o PeriodKey) bool {
	return p.Compare(o) < 0
}

// Next returns the following calendar month.
func (p PeriodKey) Next() PeriodKey {
	if p.Month == time.December {
		return PeriodKey{Year: p.Year + 1, Month: time.January}
	}
	return PeriodKey{Year: p.Year, Month: p.Month + 1}
}

// Start returns the first instant of the period in UTC.
func (p PeriodKey) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// String renders the period as YYYY-MM.
func (p PeriodKey) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// PeriodsBetween lists every month from from to to inclusive, in
// chronological order. An empty slice is returned when to precedes from.
func PeriodsBetween(from, to PeriodKey) []PeriodKey {
	if to.Before(from) {
		return nil
	}
	var periods []PeriodKey
	for p := from; !to.Before(p); p = p.Next() {
		periods = append(periods, p)
	}
	return periods
}
