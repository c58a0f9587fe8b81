/*
projection.go - Read-side views over the login-bonus state

PURPOSE:
  Pure projections recomputed on every read: the current and selected
  week views, the 42-cell month grid, the week picker options, and the
  manual-claim / editability flags the presentation layer needs. Nothing
  here mutates state; caching is deliberately absent.

KEY RULES:
  Manual-claim prompt: selected week == current week, claim pending,
  today is the week's final working day, and at least one working day is
  still unlogged.

  Bonus editability: the week's working range must not be entirely in
  the past; for the current week the claim must still be pending and
  today must not be the final working day (the reward is being delivered
  that day, not configured).

SEE ALSO:
  - engine.go: Holds the state these views project
*/
package bonus

import "github.com/warp/bonus-engine/calendar"

// =============================================================================
// VIEW TYPES
// =============================================================================

// DayView is one calendar day as the presentation layer sees it.
type DayView struct {
	Date            string     `json:"date"`
	Label           string     `json:"label"`
	WeekdayLabel    string     `json:"weekdayLabel"`
	WeekdayIndex    int        `json:"weekdayIndex"`
	IsHoliday       bool       `json:"isHoliday"`
	HolidayLabel    string     `json:"holidayLabel"`
	IsWeekend       bool       `json:"isWeekend"`
	IsWorkingDay    bool       `json:"isWorkingDay"`
	IsToday         bool       `json:"isToday"`
	IsLogged        bool       `json:"isLogged"`
	IsCurrentMonth  bool       `json:"isCurrentMonth"`
	IsActiveWeekDay bool       `json:"isActiveWeekDay"`
}

// WeekView combines a week's metadata with its stored record.
type WeekView struct {
	ID              string     `json:"id"`
	RangeLabel      string     `json:"rangeLabel"`
	DisplayStart    string     `json:"displayStartDate"`
	DisplayEnd      string     `json:"displayEndDate"`
	WorkingDayCount int        `json:"workingDayCount"`
	LoggedDayCount  int        `json:"loggedDayCount"`
	Days            []DayView  `json:"days"`
	BonusText       string     `json:"bonusText"`
	ClaimState      ClaimState `json:"claimState"`
}

// WeekOption is one entry of the week picker.
type WeekOption struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	BonusText  string `json:"bonusText"`
	IsSelected bool   `json:"isSelected"`
	IsCurrent  bool   `json:"isCurrent"`
	IsPast     bool   `json:"isPast"`
	IsEditable bool   `json:"isEditable"`
}

// Snapshot is the full read surface, assembled per read.
type Snapshot struct {
	CurrentDate                 string       `json:"currentDate"`
	MonthLabel                  string       `json:"monthLabel"`
	MonthGrid                   []DayView    `json:"monthGrid"`
	CurrentWeek                 WeekView     `json:"currentWeek"`
	CurrentWorkingDayCount      int          `json:"currentWorkingDayCount"`
	CurrentLoggedDayCount       int          `json:"currentLoggedDayCount"`
	MissingWorkingDays          []string     `json:"missingWorkingDays"`
	ShouldShowManualClaimPrompt bool         `json:"shouldShowManualClaimPrompt"`
	SelectedWeekID              string       `json:"selectedWeekId"`
	SelectedWeek                WeekView     `json:"selectedWeek"`
	SelectedWorkingDayCount     int          `json:"selectedWorkingDayCount"`
	SelectedLoggedDayCount      int          `json:"selectedLoggedDayCount"`
	CanEditSelectedWeekBonus    bool         `json:"canEditSelectedWeekBonus"`
	WeekOptions                 []WeekOption `json:"weekOptions"`
}

// =============================================================================
// PROJECTION
// =============================================================================

// Snapshot assembles every projection from current state. Each call
// recomputes from scratch; the state is small enough that memoization
// would only add staleness risk.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	current := e.current
	currentRec := e.recordFor(current)

	selected, ok := e.byID[e.selectedID]
	if !ok {
		selected = current
	}
	selectedRec := e.recordFor(selected)

	snap := Snapshot{
		CurrentDate:             e.today.ISO(),
		MonthLabel:              e.today.MonthStart().MonthTitle(),
		CurrentWeek:             e.weekViewLocked(current, currentRec),
		CurrentWorkingDayCount:  len(current.WorkingDays),
		CurrentLoggedDayCount:   currentRec.LoggedCount(current),
		MissingWorkingDays:      currentRec.MissingWorkingDays(current),
		SelectedWeekID:          selected.ID,
		SelectedWeek:            e.weekViewLocked(selected, selectedRec),
		SelectedWorkingDayCount: len(selected.WorkingDays),
		SelectedLoggedDayCount:  selectedRec.LoggedCount(selected),
	}

	selectedIsCurrent := selected.ID == current.ID
	snap.CanEditSelectedWeekBonus = canEditBonus(selected, selectedRec, e.today, selectedIsCurrent)
	snap.ShouldShowManualClaimPrompt = selectedIsCurrent &&
		currentRec.ClaimState == ClaimPending &&
		e.today.Equal(current.FinalWorkingDay()) &&
		len(snap.MissingWorkingDays) > 0

	snap.MonthGrid = e.monthGridLocked(selected)
	snap.WeekOptions = e.weekOptionsLocked()
	return snap
}

// WeekViewByID returns the view of one window week. False for ids outside
// the lookahead window.
func (e *Engine) WeekViewByID(weekID string) (WeekView, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	week, ok := e.byID[weekID]
	if !ok {
		return WeekView{}, false
	}
	return e.weekViewLocked(week, e.recordFor(week)), true
}

// CurrentWeekView returns the view of today's week.
func (e *Engine) CurrentWeekView() WeekView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.weekViewLocked(e.current, e.recordFor(e.current))
}

// WeekOptions returns the week picker entries.
func (e *Engine) WeekOptions() []WeekOption {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.weekOptionsLocked()
}

// MonthGrid returns the month title and the 42 annotated grid cells.
func (e *Engine) MonthGrid() (string, []DayView) {
	e.mu.Lock()
	defer e.mu.Unlock()

	selected, ok := e.byID[e.selectedID]
	if !ok {
		selected = e.current
	}
	return e.today.MonthStart().MonthTitle(), e.monthGridLocked(selected)
}

func (e *Engine) weekViewLocked(week calendar.Week, rec WeekRecord) WeekView {
	view := WeekView{
		ID:              week.ID,
		RangeLabel:      week.RangeLabel(),
		DisplayStart:    week.WorkingStart.ISO(),
		DisplayEnd:      week.WorkingEnd.ISO(),
		WorkingDayCount: len(week.WorkingDays),
		LoggedDayCount:  rec.LoggedCount(week),
		Days:            make([]DayView, len(week.Days)),
		BonusText:       rec.BonusText,
		ClaimState:      rec.ClaimState,
	}
	for i, day := range week.Days {
		view.Days[i] = DayView{
			Date:            day.Date.ISO(),
			Label:           day.Label,
			WeekdayLabel:    day.WeekdayLabel,
			WeekdayIndex:    day.Date.WeekdayIndex(),
			IsHoliday:       day.IsHoliday,
			HolidayLabel:    day.HolidayLabel,
			IsWeekend:       day.IsWeekend,
			IsWorkingDay:    day.IsWorkingDay,
			IsToday:         day.Date.Equal(e.today),
			IsLogged:        rec.DayLogins[day.Date.ISO()],
			IsCurrentMonth:  true,
			IsActiveWeekDay: true,
		}
	}
	return view
}

func (e *Engine) monthGridLocked(active calendar.Week) []DayView {
	monthStart := e.today.MonthStart()

	activeDates := make(map[string]bool, len(active.Days))
	for _, day := range active.Days {
		activeDates[day.Date.ISO()] = true
	}

	grid := make([]DayView, 0, calendar.MonthGridSize)
	for _, date := range e.today.MonthGrid() {
		iso := date.ISO()
		holidayLabel := e.holidays.HolidayLabel(date)
		isWeekend := date.IsWeekend()
		isHoliday := holidayLabel != ""

		logged := false
		if rec, ok := e.state.Weeks[date.WeekStart().ISO()]; ok {
			logged = rec.DayLogins[iso]
		}

		grid = append(grid, DayView{
			Date:            iso,
			Label:           date.MonthDayLabel(),
			WeekdayLabel:    date.WeekdayLabel(),
			WeekdayIndex:    date.WeekdayIndex(),
			IsHoliday:       isHoliday,
			HolidayLabel:    holidayLabel,
			IsWeekend:       isWeekend,
			IsWorkingDay:    !isWeekend && !isHoliday,
			IsToday:         date.Equal(e.today),
			IsLogged:        logged,
			IsCurrentMonth:  date.SameMonth(monthStart),
			IsActiveWeekDay: activeDates[iso],
		})
	}
	return grid
}

func (e *Engine) weekOptionsLocked() []WeekOption {
	options := make([]WeekOption, 0, len(e.window))
	for _, week := range e.window {
		rec := e.recordFor(week)
		isCurrent := week.ID == e.current.ID
		options = append(options, WeekOption{
			ID:         week.ID,
			Label:      week.RangeLabel(),
			BonusText:  rec.BonusText,
			IsSelected: week.ID == e.selectedID,
			IsCurrent:  isCurrent,
			IsPast:     week.WorkingEnd.Before(e.today),
			IsEditable: canEditBonus(week, rec, e.today, isCurrent),
		})
	}
	return options
}

// canEditBonus implements the reward-text lock rules.
func canEditBonus(week calendar.Week, rec WeekRecord, today calendar.Date, isCurrent bool) bool {
	if week.WorkingEnd.Before(today) {
		return false
	}
	if !isCurrent {
		return true
	}
	return rec.ClaimState == ClaimPending && !today.Equal(week.FinalWorkingDay())
}
