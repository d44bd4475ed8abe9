package web

import (
	"net/http"

	"github.com/JonMunkholm/statentry/internal/core"
	"github.com/JonMunkholm/statentry/internal/logging"
)

// rowsResponse lists rows with the schema's column order.
type rowsResponse struct {
	Columns []string   `json:"columns"`
	Rows    []core.Row `json:"rows"`
	Count   int        `json:"count"`
}

func (s *Server) handleListRows(w http.ResponseWriter, r *http.Request) {
	var resp rowsResponse
	err := s.withSession(r, func(sess *core.Session) error {
		resp.Columns = sess.CurrentSchema().Names()
		resp.Rows = sess.CurrentRows()
		resp.Count = len(resp.Rows)
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if resp.Rows == nil {
		resp.Rows = []core.Row{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitRow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Values map[string]any `json:"values"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	var (
		row   core.Row
		count int
	)
	err := s.withSession(r, func(sess *core.Session) error {
		var err error
		if row, err = sess.SubmitRow(req.Values); err != nil {
			return err
		}
		count = sess.RowCount()
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"row":   row,
		"count": count,
	})
}

func (s *Server) handleClearRows(w http.ResponseWriter, r *http.Request) {
	var cleared int
	err := s.withSession(r, func(sess *core.Session) error {
		cleared = sess.RowCount()
		sess.ClearRows()
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("rows cleared",
		"session_id", sessionID(r),
		"rows", cleared,
	)
	writeJSON(w, http.StatusOK, map[string]any{"cleared": cleared})
}
