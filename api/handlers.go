/*
handlers.go - HTTP handlers for the login-bonus engine

PURPOSE:
  Exposes the engine's read projections and its four commands over REST.
  This is the only mutation path other layers get.

ENDPOINTS:
  Reads:
    GET  /api/overview           Full projection snapshot
    GET  /api/calendar           Month label + 42-cell grid
    GET  /api/weeks              Week picker options
    GET  /api/weeks/current      Today's week view
    GET  /api/weeks/{id}         One window week view
    GET  /api/events             Audit trail

  Commands:
    POST /api/login              Mark today's login
    POST /api/weeks/{id}/logins  Mark a specific working day
    POST /api/weeks/{id}/claim   Manual claim (today's week only)
    PUT  /api/weeks/{id}/bonus   Set reward text
    POST /api/weeks/{id}/select  Select the active week

ERROR HANDLING:
  Invalid command targets are no-ops inside the engine, so commands
  answer 200 with the refreshed snapshot; clients re-render whatever
  state actually resulted. 400 is reserved for unparseable input, 404
  for unknown week ids on reads, 500 for persistence failures.

SEE ALSO:
  - dto.go: Request types and JSON helpers
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/bonus-engine/bonus"
	"github.com/warp/bonus-engine/calendar"
)

// EventLister reads back the audit trail. Optional; the endpoint answers
// an empty list when no lister is wired.
type EventLister interface {
	ListEvents(ctx context.Context, limit int) ([]bonus.Event, error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine *bonus.Engine
	Events EventLister
	Logger *zap.Logger
}

// NewHandler creates a handler around the engine.
func NewHandler(engine *bonus.Engine, events EventLister, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Engine: engine, Events: events, Logger: logger}
}

// =============================================================================
// READS
// =============================================================================

// GetOverview returns the full projection snapshot.
func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Engine.Snapshot())
}

// GetCalendar returns the month grid.
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	label, days := h.Engine.MonthGrid()
	writeJSON(w, http.StatusOK, CalendarDTO{MonthLabel: label, Days: days})
}

// ListWeeks returns the week picker options.
func (h *Handler) ListWeeks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Engine.WeekOptions())
}

// GetCurrentWeek returns today's week view.
func (h *Handler) GetCurrentWeek(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Engine.CurrentWeekView())
}

// GetWeek returns one window week view.
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	weekID := chi.URLParam(r, "id")
	view, ok := h.Engine.WeekViewByID(weekID)
	if !ok {
		writeError(w, http.StatusNotFound, "Week not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ListEvents returns the most recent audit events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	if h.Events == nil {
		writeJSON(w, http.StatusOK, EventsDTO{Events: []bonus.Event{}})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := h.Events.ListEvents(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events", err)
		return
	}
	if events == nil {
		events = []bonus.Event{}
	}
	writeJSON(w, http.StatusOK, EventsDTO{Events: events})
}

// =============================================================================
// COMMANDS
// =============================================================================

// MarkTodayLogin marks today as logged in the current week.
func (h *Handler) MarkTodayLogin(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.MarkTodayLogin(r.Context()); err != nil {
		h.Logger.Error("Failed to mark today's login", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save login", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Engine.Snapshot())
}

// MarkLogin marks a specific working day as logged.
func (h *Handler) MarkLogin(w http.ResponseWriter, r *http.Request) {
	weekID := chi.URLParam(r, "id")

	var req MarkLoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := calendar.Parse(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	if err := h.Engine.MarkLogin(r.Context(), weekID, date); err != nil {
		h.Logger.Error("Failed to mark login",
			zap.String("week", weekID), zap.String("date", req.Date), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save login", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Engine.Snapshot())
}

// RequestManualClaim claims the week's reward early.
func (h *Handler) RequestManualClaim(w http.ResponseWriter, r *http.Request) {
	weekID := chi.URLParam(r, "id")
	if err := h.Engine.RequestManualClaim(r.Context(), weekID); err != nil {
		h.Logger.Error("Failed to claim", zap.String("week", weekID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save claim", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Engine.Snapshot())
}

// SetBonusText overwrites the week's reward text.
func (h *Handler) SetBonusText(w http.ResponseWriter, r *http.Request) {
	weekID := chi.URLParam(r, "id")

	var req BonusTextRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Engine.SetBonusText(r.Context(), weekID, req.Text); err != nil {
		h.Logger.Error("Failed to set bonus text", zap.String("week", weekID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save bonus text", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Engine.Snapshot())
}

// SelectWeek makes a week the active one for the reward editor.
func (h *Handler) SelectWeek(w http.ResponseWriter, r *http.Request) {
	h.Engine.SelectWeek(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, h.Engine.Snapshot())
}
