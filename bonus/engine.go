/*
engine.go - The login-bonus state store

PURPOSE:
  Owns the authoritative persisted map of week records and exposes the
  full mutation surface: mark a login, claim manually, edit the reward
  text, select a week. Every command is a single read-modify-write under
  one mutex, followed by a whole-state save.

LIFECYCLE:
  engine, err := bonus.New(ctx, bonus.Options{Persistence: store, ...})
  engine.Refresh(ctx)        // re-derive "today" (scheduler calls this)
  engine.MarkTodayLogin(ctx) // commands
  snap := engine.Snapshot()  // read-side projections

WINDOW & RECONCILIATION:
  On construction and on every Refresh the engine derives the lookahead
  window: the current week through three months ahead, stepped a week at
  a time. Records are created lazily for window weeks and reconciled
  against fresh metadata (holiday determinations can change between
  sessions). Records outside the window are left untouched; history is
  never pruned.

ERROR POLICY:
  Invalid command targets (non-working day, unknown week, non-current
  manual claim) are silent no-ops - they are only reachable through
  caller misuse. Persistence load failures degrade to an empty state.
  Save failures are returned to the caller; the in-memory mutation is
  kept so the next successful save converges.

SEE ALSO:
  - types.go: Record shapes and reconciliation
  - projection.go: Read-side views
*/
package bonus

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/warp/bonus-engine/calendar"
)

// LookaheadMonths is how far past "today" the week window extends.
const LookaheadMonths = 3

// Options configures an Engine. Persistence is required; everything else
// has a sensible default.
type Options struct {
	Persistence Persistence
	Events      EventSink                // optional audit trail
	Holidays    calendar.HolidayCalendar // default: NoHolidays
	Clock       func() calendar.Date     // default: calendar.Today
	Logger      *zap.Logger              // default: zap.NewNop()
}

// Engine is the login-bonus state store. Construct with New; the zero
// value is not usable.
type Engine struct {
	mu       sync.Mutex
	persist  Persistence
	events   EventSink
	holidays calendar.HolidayCalendar
	clock    func() calendar.Date
	logger   *zap.Logger

	state      State
	selectedID string

	// Derived per Refresh
	today   calendar.Date
	current calendar.Week
	window  []calendar.Week
	byID    map[string]calendar.Week
}

// New loads persisted state and builds the initial week window. A corrupt
// or missing stored state starts fresh; only I/O-level load errors beyond
// that are logged, never fatal.
func New(ctx context.Context, opts Options) (*Engine, error) {
	if opts.Holidays == nil {
		opts.Holidays = calendar.NoHolidays{}
	}
	if opts.Clock == nil {
		opts.Clock = calendar.Today
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	e := &Engine{
		persist:  opts.Persistence,
		events:   opts.Events,
		holidays: opts.Holidays,
		clock:    opts.Clock,
		logger:   opts.Logger,
	}

	state, err := e.persist.Load(ctx)
	if err != nil {
		e.logger.Warn("Failed to load login-bonus state, starting empty", zap.Error(err))
		state = NewState()
	}
	if state.Weeks == nil {
		state = NewState()
	}
	e.state = state

	if err := e.Refresh(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// Refresh re-derives today, the current week and the lookahead window,
// then reconciles window records. Call it at least daily on a long-lived
// process so the window rolls forward.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.refreshLocked(ctx)
}

func (e *Engine) refreshLocked(ctx context.Context) error {
	e.today = e.clock()
	e.current = calendar.BuildWeek(e.today, e.holidays)

	limit := e.today.AddMonths(LookaheadMonths)
	e.window = e.window[:0]
	e.byID = make(map[string]calendar.Week)
	for cursor := e.current.CalendarStart; cursor.Compare(limit) <= 0; cursor = cursor.AddDays(7) {
		week := calendar.BuildWeek(cursor, e.holidays)
		e.window = append(e.window, week)
		e.byID[week.ID] = week
	}

	if _, ok := e.byID[e.selectedID]; !ok {
		e.selectedID = e.current.ID
	}

	changed := false
	for _, week := range e.window {
		rec, ok := e.state.Weeks[week.ID]
		if !ok {
			e.state.Weeks[week.ID] = newWeekRecord(week)
			changed = true
			continue
		}
		if next, dirty := reconcile(rec, week); dirty {
			e.state.Weeks[week.ID] = next
			changed = true
		}
	}
	if !changed {
		return nil
	}

	e.recordEvent(ctx, NewEvent(EventReconciled, e.current.ID, ""))
	return e.saveLocked(ctx)
}

// =============================================================================
// COMMANDS
// =============================================================================

// MarkLogin marks date as logged in for the given week. The date must be
// one of the week's working days; anything else is a no-op, as is marking
// an already-logged day. Filling the last open working day while the claim
// is still pending completes the claim - the only automatic claim path.
func (e *Engine) MarkLogin(ctx context.Context, weekID string, date calendar.Date) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.markLoginLocked(ctx, weekID, date)
}

// MarkTodayLogin marks today's login in the current week.
func (e *Engine) MarkTodayLogin(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.markLoginLocked(ctx, e.current.ID, e.today)
}

func (e *Engine) markLoginLocked(ctx context.Context, weekID string, date calendar.Date) error {
	week, ok := e.byID[weekID]
	if !ok {
		return nil
	}
	if !week.ContainsWorkingDay(date) {
		return nil
	}

	rec, ok := e.state.Weeks[weekID]
	if !ok {
		rec = newWeekRecord(week)
	}
	iso := date.ISO()
	if rec.DayLogins[iso] {
		return nil
	}

	rec = rec.clone()
	rec.DayLogins[iso] = true

	completed := false
	if rec.ClaimState == ClaimPending && len(rec.MissingWorkingDays(week)) == 0 {
		rec.ClaimState = ClaimCompleted
		completed = true
	}
	e.state.Weeks[weekID] = rec

	e.recordEvent(ctx, NewEvent(EventLoginMarked, weekID, iso))
	if completed {
		e.recordEvent(ctx, NewEvent(EventClaimComplete, weekID, ""))
	}
	return e.saveLocked(ctx)
}

// RequestManualClaim transitions the current week's claim from pending to
// manual. Valid only for today's week while still pending; terminal states
// and other weeks are no-ops.
func (e *Engine) RequestManualClaim(ctx context.Context, weekID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if weekID != e.current.ID {
		return nil
	}
	rec, ok := e.state.Weeks[weekID]
	if !ok {
		rec = newWeekRecord(e.current)
	}
	if rec.ClaimState != ClaimPending {
		return nil
	}

	rec = rec.clone()
	rec.ClaimState = ClaimManual
	e.state.Weeks[weekID] = rec

	e.recordEvent(ctx, NewEvent(EventManualClaim, weekID, ""))
	return e.saveLocked(ctx)
}

// SetBonusText overwrites the week's reward text. The data layer accepts
// the write for any known week; editability gating is the projection's
// concern and must be enforced by the caller.
func (e *Engine) SetBonusText(ctx context.Context, weekID, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	week, ok := e.byID[weekID]
	if !ok {
		return nil
	}
	rec, ok := e.state.Weeks[weekID]
	if !ok {
		rec = newWeekRecord(week)
	}
	if rec.BonusText == text {
		return nil
	}

	rec = rec.clone()
	rec.BonusText = text
	e.state.Weeks[weekID] = rec

	e.recordEvent(ctx, NewEvent(EventBonusEdited, weekID, ""))
	return e.saveLocked(ctx)
}

// SelectWeek makes weekID the active week for the reward-text editor.
// Unknown ids are ignored. Pure selection; nothing is persisted.
func (e *Engine) SelectWeek(weekID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.byID[weekID]; ok {
		e.selectedID = weekID
	}
}

// =============================================================================
// READS
// =============================================================================

// Today returns the engine's current date (as of the last Refresh).
func (e *Engine) Today() calendar.Date {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.today
}

// SelectedWeekID returns the active week id.
func (e *Engine) SelectedWeekID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedID
}

// State returns a deep copy of the persisted state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

func (e *Engine) saveLocked(ctx context.Context) error {
	return e.persist.Save(ctx, e.state.Clone())
}

func (e *Engine) recordEvent(ctx context.Context, event Event) {
	if e.events == nil {
		return
	}
	if err := e.events.Record(ctx, event); err != nil {
		e.logger.Warn("Failed to record event",
			zap.String("action", string(event.Action)),
			zap.String("week", event.WeekID),
			zap.Error(err))
	}
}

// recordFor returns the stored record for a window week, materializing the
// lazy empty record and reconciling without mutating state. Read paths use
// this so a view never observes stale keys.
func (e *Engine) recordFor(week calendar.Week) WeekRecord {
	rec, ok := e.state.Weeks[week.ID]
	if !ok {
		return newWeekRecord(week)
	}
	rec, _ = reconcile(rec, week)
	return rec
}
