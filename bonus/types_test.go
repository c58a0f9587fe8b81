package bonus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/bonus-engine/calendar"
)

func TestClaimState(t *testing.T) {
	assert.True(t, ClaimPending.Valid())
	assert.True(t, ClaimCompleted.Valid())
	assert.True(t, ClaimManual.Valid())
	assert.False(t, ClaimState("bogus").Valid())

	assert.False(t, ClaimPending.Terminal())
	assert.True(t, ClaimCompleted.Terminal())
	assert.True(t, ClaimManual.Terminal())
}

func TestNewWeekRecord(t *testing.T) {
	week := calendar.BuildWeek(calendar.MustParse("2025-09-01"), calendar.NoHolidays{})
	rec := newWeekRecord(week)

	assert.Equal(t, "2025-09-01", rec.ID)
	assert.Empty(t, rec.BonusText)
	assert.Equal(t, ClaimPending, rec.ClaimState)
	require.Len(t, rec.DayLogins, 5)
	for _, iso := range week.WorkingDayISO() {
		logged, ok := rec.DayLogins[iso]
		assert.True(t, ok)
		assert.False(t, logged)
	}
}

func TestReconcile_NoChange(t *testing.T) {
	week := calendar.BuildWeek(calendar.MustParse("2025-09-01"), calendar.NoHolidays{})
	rec := newWeekRecord(week)
	rec.DayLogins["2025-09-02"] = true

	next, changed := reconcile(rec, week)
	assert.False(t, changed)
	assert.Equal(t, rec, next)
}

func TestReconcile_DropsStaleKey(t *testing.T) {
	// GIVEN: A record logged on a day that has since become a holiday
	holidays := calendar.NewTable(map[string]string{"2024-05-06": "振替休日"})
	week := calendar.BuildWeek(calendar.MustParse("2024-05-06"), holidays)

	rec := WeekRecord{
		ID:         week.ID,
		ClaimState: ClaimPending,
		DayLogins: map[string]bool{
			"2024-05-06": true, // no longer a working day
			"2024-05-07": true,
			"2024-05-08": false,
			"2024-05-09": false,
			"2024-05-10": false,
		},
	}

	// WHEN: Reconciled against the new metadata
	next, changed := reconcile(rec, week)

	// THEN: The stale key (and its mark) is gone; keys match the
	// working-day list exactly
	assert.True(t, changed)
	require.Len(t, next.DayLogins, 4)
	_, exists := next.DayLogins["2024-05-06"]
	assert.False(t, exists)
	assert.True(t, next.DayLogins["2024-05-07"])
	assert.False(t, next.DayLogins["2024-05-08"])
}

func TestReconcile_AddsMissingKeys(t *testing.T) {
	week := calendar.BuildWeek(calendar.MustParse("2025-09-01"), calendar.NoHolidays{})
	rec := WeekRecord{
		ID:         week.ID,
		ClaimState: ClaimCompleted,
		DayLogins:  map[string]bool{"2025-09-01": true},
	}

	next, changed := reconcile(rec, week)
	assert.True(t, changed)
	require.Len(t, next.DayLogins, 5)
	assert.True(t, next.DayLogins["2025-09-01"])
	assert.False(t, next.DayLogins["2025-09-05"])
	// Claim state is untouched by key resync
	assert.Equal(t, ClaimCompleted, next.ClaimState)
}

func TestReconcile_RepairsInvalidClaimState(t *testing.T) {
	week := calendar.BuildWeek(calendar.MustParse("2025-09-01"), calendar.NoHolidays{})
	rec := newWeekRecord(week)
	rec.ClaimState = ClaimState("garbage")

	next, changed := reconcile(rec, week)
	assert.True(t, changed)
	assert.Equal(t, ClaimPending, next.ClaimState)
}

func TestState_Clone(t *testing.T) {
	week := calendar.BuildWeek(calendar.MustParse("2025-09-01"), calendar.NoHolidays{})
	state := NewState()
	state.Weeks[week.ID] = newWeekRecord(week)

	clone := state.Clone()
	clone.Weeks[week.ID].DayLogins["2025-09-01"] = true

	assert.False(t, state.Weeks[week.ID].DayLogins["2025-09-01"])
}

func TestWeekRecord_Aggregates(t *testing.T) {
	week := calendar.BuildWeek(calendar.MustParse("2025-09-01"), calendar.NoHolidays{})
	rec := newWeekRecord(week)
	rec.DayLogins["2025-09-01"] = true
	rec.DayLogins["2025-09-03"] = true

	assert.Equal(t, 2, rec.LoggedCount(week))
	assert.Equal(t,
		[]string{"2025-09-02", "2025-09-04", "2025-09-05"},
		rec.MissingWorkingDays(week))
}

func TestWeekRecord_MissingWorkingDays_AllLogged(t *testing.T) {
	week := calendar.BuildWeek(calendar.MustParse("2025-09-01"), calendar.NoHolidays{})
	rec := newWeekRecord(week)
	for _, iso := range week.WorkingDayISO() {
		rec.DayLogins[iso] = true
	}

	missing := rec.MissingWorkingDays(week)
	assert.NotNil(t, missing)
	assert.Empty(t, missing)
}
