/*
types.go - Persisted state model for the weekly login bonus

PURPOSE:
  Defines the durable shape of the login-bonus data: one record per
  Monday-keyed week holding the reward text, the claim lifecycle state,
  and the per-working-day login marks.

KEY CONCEPTS:
  - ClaimState: forward-only lifecycle (pending -> completed | manual)
  - WeekRecord: JSON-serializable record, DayLogins keyed by ISO date
  - State: the whole persisted map; loaded once, saved after mutations

RECONCILIATION:
  The holiday table can change between sessions, so a stored record's
  DayLogins keys may no longer match the week's working days. reconcile()
  resyncs them: missing working days are added as false, stale keys are
  dropped. Dropping a stale key discards any login mark it held; this
  mirrors the long-standing behavior and keeps records exactly aligned
  with current metadata.

SEE ALSO:
  - engine.go: Commands mutating these records
  - calendar/week.go: The metadata records reconcile against
*/
package bonus

import "github.com/warp/bonus-engine/calendar"

// =============================================================================
// CLAIM STATE - Forward-only reward lifecycle
// =============================================================================

type ClaimState string

const (
	// ClaimPending means the reward is still being earned.
	ClaimPending ClaimState = "pending"
	// ClaimCompleted means every working day was logged; automatic.
	ClaimCompleted ClaimState = "completed"
	// ClaimManual means the user claimed early by explicit action.
	ClaimManual ClaimState = "manual"
)

// Valid reports whether s is one of the known states.
func (s ClaimState) Valid() bool {
	return s == ClaimPending || s == ClaimCompleted || s == ClaimManual
}

// Terminal reports whether no further transition is possible.
func (s ClaimState) Terminal() bool { return s == ClaimCompleted || s == ClaimManual }

// =============================================================================
// WEEK RECORD / STATE
// =============================================================================

// WeekRecord is the persisted record of one week, keyed by the week's
// Monday ISO date. DayLogins keys are exactly the week's working days.
type WeekRecord struct {
	ID         string          `json:"id"`
	BonusText  string          `json:"bonusText"`
	ClaimState ClaimState      `json:"claimState"`
	DayLogins  map[string]bool `json:"dayLogins"`
}

func (r WeekRecord) clone() WeekRecord {
	logins := make(map[string]bool, len(r.DayLogins))
	for iso, logged := range r.DayLogins {
		logins[iso] = logged
	}
	r.DayLogins = logins
	return r
}

// LoggedCount returns how many of the week's working days are logged.
func (r WeekRecord) LoggedCount(week calendar.Week) int {
	count := 0
	for _, iso := range week.WorkingDayISO() {
		if r.DayLogins[iso] {
			count++
		}
	}
	return count
}

// MissingWorkingDays returns the working days not yet logged, ascending.
// Always non-nil so the projection serializes an array, never null.
func (r WeekRecord) MissingWorkingDays(week calendar.Week) []string {
	missing := []string{}
	for _, iso := range week.WorkingDayISO() {
		if !r.DayLogins[iso] {
			missing = append(missing, iso)
		}
	}
	return missing
}

// State is the whole persisted login-bonus state. Records are created
// lazily and never deleted; past weeks are history.
type State struct {
	Weeks map[string]WeekRecord `json:"weeks"`
}

// NewState returns an empty state.
func NewState() State {
	return State{Weeks: make(map[string]WeekRecord)}
}

// Clone deep-copies the state.
func (s State) Clone() State {
	out := State{Weeks: make(map[string]WeekRecord, len(s.Weeks))}
	for id, rec := range s.Weeks {
		out.Weeks[id] = rec.clone()
	}
	return out
}

// newWeekRecord creates the empty record for a freshly referenced week:
// every working day unlogged, no reward text, claim pending.
func newWeekRecord(week calendar.Week) WeekRecord {
	logins := make(map[string]bool, len(week.WorkingDays))
	for _, iso := range week.WorkingDayISO() {
		logins[iso] = false
	}
	return WeekRecord{
		ID:         week.ID,
		BonusText:  "",
		ClaimState: ClaimPending,
		DayLogins:  logins,
	}
}

// reconcile resyncs a record's DayLogins keys against the week's current
// working-day list. Returns the (possibly rewritten) record and whether
// anything changed. A stale key's mark is dropped with it.
func reconcile(rec WeekRecord, week calendar.Week) (WeekRecord, bool) {
	working := week.WorkingDayISO()
	logins := make(map[string]bool, len(working))
	changed := len(rec.DayLogins) != len(working)
	for _, iso := range working {
		logged, ok := rec.DayLogins[iso]
		if !ok {
			changed = true
		}
		logins[iso] = logged && ok
	}
	if !rec.ClaimState.Valid() {
		rec.ClaimState = ClaimPending
		changed = true
	}
	if !changed {
		return rec, false
	}
	rec.DayLogins = logins
	return rec, true
}
