/*
dto.go - Request/response types for the login-bonus API

PURPOSE:
  JSON structures for API communication. The read-side views in
  bonus/projection.go already carry JSON tags and are served as-is; this
  file holds the request bodies, small response wrappers, and the shared
  JSON helpers.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *DTO: Response wrappers

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data
  carriers.
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/warp/bonus-engine/bonus"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// MarkLoginRequest marks one working day as logged in.
type MarkLoginRequest struct {
	Date string `json:"date"` // "YYYY-MM-DD"
}

// BonusTextRequest sets a week's reward text.
type BonusTextRequest struct {
	Text string `json:"text"`
}

// CalendarDTO is the month-grid response.
type CalendarDTO struct {
	MonthLabel string          `json:"monthLabel"`
	Days       []bonus.DayView `json:"days"`
}

// EventsDTO wraps the audit trail response.
type EventsDTO struct {
	Events []bonus.Event `json:"events"`
}

// ErrorResponse is the error envelope for all non-2xx responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// JSON HELPERS
// =============================================================================

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
