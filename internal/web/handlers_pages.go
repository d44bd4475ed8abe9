package web

import (
	"net/http"

	"github.com/JonMunkholm/statentry/internal/core"
	"github.com/JonMunkholm/statentry/internal/logging"
	"github.com/JonMunkholm/statentry/internal/web/templates"
)

// handleSessionPage renders the HTML view of a session.
func (s *Server) handleSessionPage(w http.ResponseWriter, r *http.Request) {
	var snap core.Snapshot
	err := s.withSession(r, func(sess *core.Session) error {
		snap = sess.Snapshot()
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.SessionPage(sessionID(r), snap).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render session page", "error", err)
	}
}

// handleHealth reports liveness plus session and import load.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"sessions":   s.sessions.Len(),
		"imports":    s.imports.Status(),
		"publishing": s.publisher.Enabled(),
	})
}
