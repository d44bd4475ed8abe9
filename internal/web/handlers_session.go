package web

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/statentry/internal/core"
	"github.com/JonMunkholm/statentry/internal/logging"
)

// sessionResponse is the JSON view of a session.
type sessionResponse struct {
	ID       string           `json:"id"`
	State    core.SchemaState `json:"state"`
	Schema   core.Schema      `json:"schema"`
	Draft    []core.Field     `json:"draft"`
	RowCount int              `json:"row_count"`
	Expires  time.Time        `json:"expires"`
}

func (s *Server) sessionView(id string, sess *core.Session) sessionResponse {
	snap := sess.Snapshot()
	resp := sessionResponse{
		ID:       id,
		State:    snap.State,
		Schema:   snap.Schema,
		Draft:    snap.Draft,
		RowCount: snap.Count,
	}
	if info, err := s.sessions.Info(id); err == nil {
		resp.Expires = info.Expires
	}
	return resp
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessions.Create()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var resp sessionResponse
	err = s.sessions.Do(id, func(sess *core.Session) error {
		resp = s.sessionView(id, sess)
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("session created", "session_id", id)
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	var resp sessionResponse
	err := s.withSession(r, func(sess *core.Session) error {
		resp = s.sessionView(sessionID(r), sess)
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(sessionID(r)); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDefineFieldCount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int `json:"count"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	var draft []core.Field
	err := s.withSession(r, func(sess *core.Session) error {
		if err := sess.DefineFieldCount(req.Count); err != nil {
			return err
		}
		draft = sess.Draft()
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"draft": draft})
}

func (s *Server) handleUpdateDraftField(w http.ResponseWriter, r *http.Request) {
	index, err := intParam(r, "index")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req struct {
		Name string         `json:"name"`
		Type core.FieldType `json:"type"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	var draft []core.Field
	err = s.withSession(r, func(sess *core.Session) error {
		if err := sess.UpdateDraftField(index, req.Name, req.Type); err != nil {
			return err
		}
		draft = sess.Draft()
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"draft": draft})
}

func (s *Server) handleCommitSchema(w http.ResponseWriter, r *http.Request) {
	var schema core.Schema
	err := s.withSession(r, func(sess *core.Session) error {
		var err error
		schema, err = sess.CommitSchema()
		return err
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("schema committed",
		"session_id", sessionID(r),
		"fields", schema.Len(),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"state":  core.StateCommitted,
		"schema": schema,
	})
}

func (s *Server) handleResetSchema(w http.ResponseWriter, r *http.Request) {
	err := s.withSession(r, func(sess *core.Session) error {
		sess.ResetSchema()
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": core.StateUndefined})
}

func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	var (
		state  core.SchemaState
		schema core.Schema
	)
	err := s.withSession(r, func(sess *core.Session) error {
		state = sess.State()
		schema = sess.CurrentSchema()
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"state":  state,
		"schema": schema,
	})
}

// handleRowSchema serves a JSON Schema describing one row object.
func (s *Server) handleRowSchema(w http.ResponseWriter, r *http.Request) {
	var schema core.Schema
	err := s.withSession(r, func(sess *core.Session) error {
		schema = sess.CurrentSchema()
		if schema.IsZero() {
			return core.ErrNoSchema
		}
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schema.JSONSchema())
}
