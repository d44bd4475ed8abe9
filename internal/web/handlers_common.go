package web

// This file contains shared utilities used across handlers.

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/statentry/internal/core"
)

// maxJSONBody caps JSON request bodies. CSV uploads use Upload.MaxFileSize.
const maxJSONBody = 1 << 20

// errBadRequest marks malformed request bodies and parameters.
var errBadRequest = errors.New("invalid request")

// decodeJSON reads a JSON body into v. Numbers decode as json.Number so
// core.Cast sees the client's literal text.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// sessionID returns the {id} URL parameter.
func sessionID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// intParam parses an integer URL parameter.
func intParam(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, name)
	}
	return n, nil
}

// withSession runs fn against the session named in the URL.
func (s *Server) withSession(r *http.Request, fn func(*core.Session) error) error {
	return s.sessions.Do(sessionID(r), fn)
}

// csvHeaders prepares w for a CSV download.
func csvHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
