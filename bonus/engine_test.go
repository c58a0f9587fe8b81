package bonus_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/bonus-engine/bonus"
	"github.com/warp/bonus-engine/bonus/store"
	"github.com/warp/bonus-engine/calendar"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func fixedClock(iso string) func() calendar.Date {
	d := calendar.MustParse(iso)
	return func() calendar.Date { return d }
}

func newTestEngine(t *testing.T, todayISO string, holidays calendar.HolidayCalendar) (*bonus.Engine, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	engine, err := bonus.New(context.Background(), bonus.Options{
		Persistence: mem,
		Events:      mem,
		Holidays:    holidays,
		Clock:       fixedClock(todayISO),
	})
	require.NoError(t, err)
	return engine, mem
}

// =============================================================================
// INITIALIZATION & WINDOW
// =============================================================================

func TestNew_CreatesWindowRecords(t *testing.T) {
	// GIVEN: Empty persistence, today = Monday 2025-09-01
	engine, _ := newTestEngine(t, "2025-09-01", calendar.NoHolidays{})

	// THEN: Every week from today through +3 months has an empty record
	state := engine.State()
	assert.Contains(t, state.Weeks, "2025-09-01")
	assert.Contains(t, state.Weeks, "2025-12-01") // last Monday inside the window

	for id, rec := range state.Weeks {
		assert.Equal(t, id, rec.ID)
		assert.Equal(t, bonus.ClaimPending, rec.ClaimState)
		assert.Empty(t, rec.BonusText)
		for iso, logged := range rec.DayLogins {
			assert.False(t, logged, "week %s day %s", id, iso)
		}
	}

	// 3 months of Mondays, inclusive bounds
	assert.Equal(t, 14, len(state.Weeks))
}

func TestNew_LoadErrorStartsFresh(t *testing.T) {
	mem := store.NewMemory()
	mem.LoadErr = errors.New("disk on fire")

	engine, err := bonus.New(context.Background(), bonus.Options{
		Persistence: mem,
		Clock:       fixedClock("2025-09-01"),
	})
	require.NoError(t, err)

	// The window was still built over an empty state
	assert.Contains(t, engine.State().Weeks, "2025-09-01")
}

func TestNew_PastWeeksUntouched(t *testing.T) {
	// GIVEN: A stored record for a long-gone week with stale keys
	mem := store.NewMemory()
	seeded := bonus.NewState()
	seeded.Weeks["2024-01-01"] = bonus.WeekRecord{
		ID:         "2024-01-01",
		BonusText:  "old reward",
		ClaimState: bonus.ClaimCompleted,
		DayLogins:  map[string]bool{"2024-01-01": true, "2024-01-08": true},
	}
	mem.Seed(seeded)

	engine, err := bonus.New(context.Background(), bonus.Options{
		Persistence: mem,
		Clock:       fixedClock("2025-09-01"),
	})
	require.NoError(t, err)

	// THEN: The past record survives byte-for-byte; history is retained
	got := engine.State().Weeks["2024-01-01"]
	assert.Equal(t, "old reward", got.BonusText)
	assert.Equal(t, bonus.ClaimCompleted, got.ClaimState)
	assert.Len(t, got.DayLogins, 2)
}

func TestRefresh_ReconcilesAgainstNewHolidays(t *testing.T) {
	// GIVEN: A stored current week logged on a day that is now a holiday
	mem := store.NewMemory()
	seeded := bonus.NewState()
	seeded.Weeks["2024-05-06"] = bonus.WeekRecord{
		ID:         "2024-05-06",
		ClaimState: bonus.ClaimPending,
		DayLogins: map[string]bool{
			"2024-05-06": true,
			"2024-05-07": false,
			"2024-05-08": false,
			"2024-05-09": false,
			"2024-05-10": false,
		},
	}
	mem.Seed(seeded)

	holidays := calendar.NewTable(map[string]string{"2024-05-06": "振替休日"})
	engine, err := bonus.New(context.Background(), bonus.Options{
		Persistence: mem,
		Holidays:    holidays,
		Clock:       fixedClock("2024-05-07"),
	})
	require.NoError(t, err)

	// THEN: The stale Monday key is dropped, keys match Tue-Fri exactly
	rec := engine.State().Weeks["2024-05-06"]
	require.Len(t, rec.DayLogins, 4)
	_, exists := rec.DayLogins["2024-05-06"]
	assert.False(t, exists)
	for _, iso := range []string{"2024-05-07", "2024-05-08", "2024-05-09", "2024-05-10"} {
		assert.Contains(t, rec.DayLogins, iso)
	}
}

// =============================================================================
// MARK LOGIN
// =============================================================================

func TestMarkLogin_SetsDayAndIsIdempotent(t *testing.T) {
	engine, _ := newTestEngine(t, "2025-09-01", calendar.NoHolidays{})
	ctx := context.Background()

	require.NoError(t, engine.MarkLogin(ctx, "2025-09-01", calendar.MustParse("2025-09-01")))
	after := engine.State()
	assert.True(t, after.Weeks["2025-09-01"].DayLogins["2025-09-01"])

	// Second call yields the same state as calling it once
	require.NoError(t, engine.MarkLogin(ctx, "2025-09-01", calendar.MustParse("2025-09-01")))
	assert.Equal(t, after, engine.State())
}

func TestMarkLogin_NonWorkingDayIsNoOp(t *testing.T) {
	engine, _ := newTestEngine(t, "2025-09-01", calendar.NoHolidays{})
	ctx := context.Background()
	before := engine.State()

	// Saturday
	require.NoError(t, engine.MarkLogin(ctx, "2025-09-01", calendar.MustParse("2025-09-06")))
	// A working day of a different week
	require.NoError(t, engine.MarkLogin(ctx, "2025-09-01", calendar.MustParse("2025-09-08")))

	assert.Equal(t, before, engine.State())
}

func TestMarkLogin_UnknownWeekIsNoOp(t *testing.T) {
	engine, _ := newTestEngine(t, "2025-09-01", calendar.NoHolidays{})
	before := engine.State()

	require.NoError(t, engine.MarkLogin(context.Background(), "1999-01-04", calendar.MustParse("1999-01-04")))
	assert.Equal(t, before, engine.State())
}

func TestMarkLogin_CompletesWhenAllDaysLogged(t *testing.T) {
	// GIVEN: Today = Friday, Mon-Thu already logged
	engine, _ := newTestEngine(t, "2025-09-05", calendar.NoHolidays{})
	ctx := context.Background()
	for _, iso := range []string{"2025-09-01", "2025-09-02", "2025-09-03", "2025-09-04"} {
		require.NoError(t, engine.MarkLogin(ctx, "2025-09-01", calendar.MustParse(iso)))
	}
	assert.Equal(t, bonus.ClaimPending, engine.State().Weeks["2025-09-01"].ClaimState)

	// WHEN: Friday is logged
	require.NoError(t, engine.MarkTodayLogin(ctx))

	// THEN: All 5 logged, claim completes automatically
	rec := engine.State().Weeks["2025-09-01"]
	assert.Equal(t, bonus.ClaimCompleted, rec.ClaimState)
	for _, logged := range rec.DayLogins {
		assert.True(t, logged)
	}
}

func TestMarkTodayLogin_WeekendIsNoOp(t *testing.T) {
	engine, _ := newTestEngine(t, "2025-09-06", calendar.NoHolidays{})
	before := engine.State()

	require.NoError(t, engine.MarkTodayLogin(context.Background()))
	assert.Equal(t, before, engine.State())
}

// =============================================================================
// CLAIM STATE MACHINE
// =============================================================================

func TestRequestManualClaim_CurrentWeekPending(t *testing.T) {
	engine, _ := newTestEngine(t, "2025-09-03", calendar.NoHolidays{})

	require.NoError(t, engine.RequestManualClaim(context.Background(), "2025-09-01"))
	assert.Equal(t, bonus.ClaimManual, engine.State().Weeks["2025-09-01"].ClaimState)
}

func TestRequestManualClaim_NonCurrentWeekIsNoOp(t *testing.T) {
	engine, _ := newTestEngine(t, "2025-09-03", calendar.NoHolidays{})

	require.NoError(t, engine.RequestManualClaim(context.Background(), "2025-09-08"))
	assert.Equal(t, bonus.ClaimPending, engine.State().Weeks["2025-09-08"].ClaimState)
}

func TestClaimState_TerminalStatesNeverRevert(t *testing.T) {
	// GIVEN: A manually claimed current week
	engine, _ := newTestEngine(t, "2025-09-01", calendar.NoHolidays{})
	ctx := context.Background()
	require.NoError(t, engine.RequestManualClaim(ctx, "2025-09-01"))
	require.Equal(t, bonus.ClaimManual, engine.State().Weeks["2025-09-01"].ClaimState)

	// WHEN: Every working day gets logged and another claim is requested
	for _, iso := range []string{"2025-09-01", "2025-09-02", "2025-09-03", "2025-09-04", "2025-09-05"} {
		require.NoError(t, engine.MarkLogin(ctx, "2025-09-01", calendar.MustParse(iso)))
	}
	require.NoError(t, engine.RequestManualClaim(ctx, "2025-09-01"))

	// THEN: The state stays manual; no sequence of commands moves it
	assert.Equal(t, bonus.ClaimManual, engine.State().Weeks["2025-09-01"].ClaimState)
}

// =============================================================================
// BONUS TEXT & SELECTION
// =============================================================================

func TestSetBonusText_OverwritesAtDataLayer(t *testing.T) {
	engine, _ := newTestEngine(t, "2025-09-01", calendar.NoHolidays{})
	ctx := context.Background()

	require.NoError(t, engine.SetBonusText(ctx, "2025-09-08", "ご褒美パフェ"))
	assert.Equal(t, "ご褒美パフェ", engine.State().Weeks["2025-09-08"].BonusText)

	require.NoError(t, engine.SetBonusText(ctx, "2025-09-08", ""))
	assert.Empty(t, engine.State().Weeks["2025-09-08"].BonusText)
}

func TestSetBonusText_UnknownWeekIsNoOp(t *testing.T) {
	engine, _ := newTestEngine(t, "2025-09-01", calendar.NoHolidays{})
	before := engine.State()

	require.NoError(t, engine.SetBonusText(context.Background(), "2020-03-02", "stale"))
	assert.Equal(t, before, engine.State())
}

func TestSelectWeek(t *testing.T) {
	engine, _ := newTestEngine(t, "2025-09-01", calendar.NoHolidays{})
	assert.Equal(t, "2025-09-01", engine.SelectedWeekID())

	engine.SelectWeek("2025-09-15")
	assert.Equal(t, "2025-09-15", engine.SelectedWeekID())

	// Unknown ids are ignored
	engine.SelectWeek("2031-01-06")
	assert.Equal(t, "2025-09-15", engine.SelectedWeekID())
}

// =============================================================================
// PERSISTENCE & EVENTS
// =============================================================================

func TestMutations_ArePersisted(t *testing.T) {
	engine, mem := newTestEngine(t, "2025-09-01", calendar.NoHolidays{})
	ctx := context.Background()
	require.NoError(t, engine.MarkTodayLogin(ctx))
	require.NoError(t, engine.SetBonusText(ctx, "2025-09-01", "coffee"))

	// A second engine over the same persistence sees the mutations
	reloaded, err := bonus.New(ctx, bonus.Options{
		Persistence: mem,
		Clock:       fixedClock("2025-09-01"),
	})
	require.NoError(t, err)

	rec := reloaded.State().Weeks["2025-09-01"]
	assert.True(t, rec.DayLogins["2025-09-01"])
	assert.Equal(t, "coffee", rec.BonusText)
}

func TestEvents_RecordedPerMutation(t *testing.T) {
	engine, mem := newTestEngine(t, "2025-09-05", calendar.NoHolidays{})
	ctx := context.Background()

	for _, iso := range []string{"2025-09-01", "2025-09-02", "2025-09-03", "2025-09-04", "2025-09-05"} {
		require.NoError(t, engine.MarkLogin(ctx, "2025-09-01", calendar.MustParse(iso)))
	}

	var actions []bonus.EventAction
	for _, ev := range mem.Events() {
		actions = append(actions, ev.Action)
	}
	// 1 reconcile (initial window creation), 5 logins, 1 auto-complete
	assert.Contains(t, actions, bonus.EventReconciled)
	assert.Contains(t, actions, bonus.EventClaimComplete)
	count := 0
	for _, a := range actions {
		if a == bonus.EventLoginMarked {
			count++
		}
	}
	assert.Equal(t, 5, count)
}
