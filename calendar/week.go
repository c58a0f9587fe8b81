package calendar

// =============================================================================
// WEEK METADATA - Derived description of one Monday-anchored week
// =============================================================================

// DayMeta describes a single calendar day within a week.
type DayMeta struct {
	Date         Date
	Label        string // "M/D"
	WeekdayLabel string // 月..日
	IsWeekend    bool
	IsHoliday    bool
	HolidayLabel string
	IsWorkingDay bool // !IsWeekend && !IsHoliday
}

// Week is the derived metadata of one calendar week. It is never persisted;
// BuildWeek recomputes it from the date and the holiday oracle on demand.
//
// The ID (Monday's ISO date) is the canonical persistence key for the week.
type Week struct {
	ID            string
	CalendarStart Date // Monday
	CalendarEnd   Date // Sunday
	Days          [7]DayMeta
	WorkingDays   []Date // ascending, subset of Days
	WorkingStart  Date
	WorkingEnd    Date
}

// BuildWeek derives the full week containing date. Working days are the
// weekdays that are not holidays; when a week has none, the display range
// falls back to the calendar Monday-Friday span.
func BuildWeek(date Date, holidays HolidayCalendar) Week {
	start := date.WeekStart()
	week := Week{
		ID:            start.ISO(),
		CalendarStart: start,
		CalendarEnd:   start.AddDays(6),
	}

	for i := 0; i < 7; i++ {
		day := start.AddDays(i)
		holidayLabel := holidays.HolidayLabel(day)
		meta := DayMeta{
			Date:         day,
			Label:        day.MonthDayLabel(),
			WeekdayLabel: day.WeekdayLabel(),
			IsWeekend:    day.IsWeekend(),
			IsHoliday:    holidayLabel != "",
			HolidayLabel: holidayLabel,
		}
		meta.IsWorkingDay = !meta.IsWeekend && !meta.IsHoliday
		week.Days[i] = meta
		if meta.IsWorkingDay {
			week.WorkingDays = append(week.WorkingDays, day)
		}
	}

	if len(week.WorkingDays) > 0 {
		week.WorkingStart = week.WorkingDays[0]
		week.WorkingEnd = week.WorkingDays[len(week.WorkingDays)-1]
	} else {
		week.WorkingStart = start
		week.WorkingEnd = start.AddDays(4)
	}
	return week
}

// WorkingDayISO returns the working days as ISO strings, ascending.
func (w Week) WorkingDayISO() []string {
	out := make([]string, len(w.WorkingDays))
	for i, d := range w.WorkingDays {
		out[i] = d.ISO()
	}
	return out
}

// ContainsWorkingDay reports whether date is one of the week's working days.
func (w Week) ContainsWorkingDay(date Date) bool {
	for _, d := range w.WorkingDays {
		if d.Equal(date) {
			return true
		}
	}
	return false
}

// FinalWorkingDay is the last working day, or the fallback working end for
// a week with no working days. The reward locks on this day.
func (w Week) FinalWorkingDay() Date {
	if len(w.WorkingDays) == 0 {
		return w.WorkingEnd
	}
	return w.WorkingDays[len(w.WorkingDays)-1]
}

// RangeLabel formats the week's working range for pickers, e.g. "9/1 - 9/5".
func (w Week) RangeLabel() string { return RangeLabel(w.WorkingStart, w.WorkingEnd) }
