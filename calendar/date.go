// Package calendar provides fixed-timezone calendar-date arithmetic and
// the week/holiday metadata the login-bonus engine is built on.
package calendar

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Day-granular calendar date in a fixed timezone
// =============================================================================

// Zone is the single interpretation timezone for every date in the system.
// JST has no daylight saving, so a fixed offset is exact.
var Zone = time.FixedZone("Asia/Tokyo", 9*60*60)

// Date is a calendar date (no time-of-day semantics). Internally the value
// is anchored to noon in Zone so day arithmetic can never drift across a
// day boundary. All constructors normalize, so == is a valid equality check.
type Date struct {
	t time.Time
}

// NewDate builds a Date from calendar components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 12, 0, 0, 0, Zone)}
}

// Parse parses an ISO "YYYY-MM-DD" string.
func Parse(iso string) (Date, error) {
	t, err := time.ParseInLocation("2006-01-02", iso, Zone)
	if err != nil {
		return Date{}, fmt.Errorf("invalid calendar date %q: %w", iso, err)
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

// MustParse is Parse for compile-time-known inputs; panics on bad input.
func MustParse(iso string) Date {
	d, err := Parse(iso)
	if err != nil {
		panic(err)
	}
	return d
}

// Today returns the current date in Zone.
func Today() Date {
	now := time.Now().In(Zone)
	return NewDate(now.Year(), now.Month(), now.Day())
}

// Comparison
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }
func (d Date) IsZero() bool           { return d.t.IsZero() }

// Compare returns -1, 0 or 1; the order is chronological.
func (d Date) Compare(other Date) int {
	switch {
	case d.Before(other):
		return -1
	case d.After(other):
		return 1
	default:
		return 0
	}
}

// Arithmetic
func (d Date) AddDays(n int) Date { return reanchor(d.t.AddDate(0, 0, n)) }

// AddMonths advances by whole months, normalizing overflow the way
// time.AddDate does (Jan 31 + 1 month lands in early March).
func (d Date) AddMonths(n int) Date { return reanchor(d.t.AddDate(0, n, 0)) }

func reanchor(t time.Time) Date { return NewDate(t.Year(), t.Month(), t.Day()) }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WeekdayIndex returns the day-of-week with Sunday=0, matching the column
// index of the month grid.
func (d Date) WeekdayIndex() int { return int(d.Weekday()) }

// SameMonth reports whether d falls in the same calendar month as other.
func (d Date) SameMonth(other Date) bool {
	return d.Year() == other.Year() && d.Month() == other.Month()
}

// =============================================================================
// WEEK / MONTH ANCHORS
// =============================================================================

// WeekStart returns the Monday of the week containing d. A Sunday belongs
// to the week that started six days earlier, not the upcoming one.
func (d Date) WeekStart() Date {
	switch wd := d.Weekday(); wd {
	case time.Monday:
		return d
	case time.Sunday:
		return d.AddDays(-6)
	default:
		return d.AddDays(int(time.Monday - wd))
	}
}

// MonthStart returns the first day of d's month.
func (d Date) MonthStart() Date { return NewDate(d.Year(), d.Month(), 1) }

// MonthGridStart returns the Sunday on or before MonthStart: the first cell
// of the 6x7 month grid.
func (d Date) MonthGridStart() Date {
	start := d.MonthStart()
	return start.AddDays(-start.WeekdayIndex())
}

// MonthGridSize is the fixed cell count of a rendered month, independent of
// month length.
const MonthGridSize = 42

// MonthGrid returns the 42 consecutive dates starting at MonthGridStart.
func (d Date) MonthGrid() []Date {
	grid := make([]Date, MonthGridSize)
	cursor := d.MonthGridStart()
	for i := range grid {
		grid[i] = cursor
		cursor = cursor.AddDays(1)
	}
	return grid
}

// =============================================================================
// FORMATTING
// =============================================================================

var weekdayLabels = [7]string{"日", "月", "火", "水", "木", "金", "土"}

// ISO formats the date as "YYYY-MM-DD". This is the canonical string form
// used for persistence keys and wire payloads.
func (d Date) ISO() string { return d.t.Format("2006-01-02") }

func (d Date) String() string { return d.ISO() }

// MonthDayLabel formats the date as "M/D" for compact day cells.
func (d Date) MonthDayLabel() string { return fmt.Sprintf("%d/%d", int(d.Month()), d.Day()) }

// WeekdayLabel returns the one-character Japanese weekday.
func (d Date) WeekdayLabel() string { return weekdayLabels[d.WeekdayIndex()] }

// MonthTitle formats the month heading, e.g. "2025年9月".
func (d Date) MonthTitle() string { return fmt.Sprintf("%d年%d月", d.Year(), int(d.Month())) }

// RangeLabel formats a "M/D - M/D" span for week pickers.
func RangeLabel(start, end Date) string {
	return start.MonthDayLabel() + " - " + end.MonthDayLabel()
}
