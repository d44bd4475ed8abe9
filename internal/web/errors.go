package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. statusFor picks the HTTP status from the error's type
//  4. core.MapError supplies the user-facing message, action and code
//  5. Technical error + context is logged with request ID for correlation
//  6. User message is rendered as JSON for API clients, HTML otherwise

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/statentry/internal/core"
	"github.com/JonMunkholm/statentry/internal/logging"
	"github.com/JonMunkholm/statentry/internal/publish"
	"github.com/JonMunkholm/statentry/internal/session"
	"github.com/JonMunkholm/statentry/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string             `json:"error"`
	Message string             `json:"message"`
	Action  string             `json:"action,omitempty"`
	Code    string             `json:"code"`
	Report  *core.ImportReport `json:"report,omitempty"`
}

// errNoFile is returned when an import request has no "file" part.
var errNoFile = errors.New("no file provided")

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var (
		se       *core.SchemaError
		ce       *core.CastError
		fe       *core.CSVFormatError
		maxBytes *http.MaxBytesError
	)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, session.ErrLimit),
		errors.Is(err, core.ErrTooManyImports),
		errors.Is(err, publish.ErrDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrNoSchema):
		return http.StatusConflict
	case errors.As(err, &se), errors.As(err, &ce), errors.As(err, &fe),
		errors.Is(err, core.ErrNoDraft),
		errors.Is(err, core.ErrFieldCount),
		errors.Is(err, core.ErrDraftIndex),
		errors.Is(err, core.ErrFieldType),
		errors.Is(err, publish.ErrTableName):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errNoFile), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	// multipart parsing does not always wrap the MaxBytesError
	if core.MapError(err).Code == "FILE001" {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

// respondError logs the technical error and writes a user-friendly one.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	s.respondErrorReport(w, r, err, nil)
}

// respondErrorReport is respondError with a partial import report attached
// to JSON responses.
func (s *Server) respondErrorReport(w http.ResponseWriter, r *http.Request, err error, report *core.ImportReport) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request rejected", attrs...)
	}

	if wantsJSON(r) {
		respondErrorJSON(w, userMsg, status, report)
	} else {
		respondErrorHTML(w, r, userMsg, status)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, status int, report *core.ImportReport) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
		Report:  report,
	})
}

// respondErrorHTML renders the error alert as a full page.
func respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	page := templates.Layout("Error", templates.ErrorAlert(msg.Message, msg.Action, msg.Code))
	_ = page.Render(r.Context(), w)
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
