package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/JonMunkholm/statentry/internal/core"
	"github.com/JonMunkholm/statentry/internal/logging"
)

// handleImport appends rows from an uploaded CSV file.
//
// The file arrives as multipart field "file". The body is capped at
// Upload.MaxFileSize and at most Upload.MaxConcurrent imports run at once;
// later requests wait up to Upload.MaxWaitTime for a slot.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)
	if err := r.ParseMultipartForm(s.cfg.Upload.MaxFileSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			err = errNoFile
		}
		s.respondError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errNoFile)
		return
	}
	defer file.Close()

	if err := s.imports.Acquire(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	defer s.imports.Release()

	start := time.Now()
	var (
		report core.ImportReport
		total  int
	)
	err = s.withSession(r, func(sess *core.Session) error {
		var err error
		report, err = sess.ImportCSV(file)
		total = sess.RowCount()
		return err
	})
	if err != nil {
		var fe *core.CSVFormatError
		if errors.As(err, &fe) {
			s.respondErrorReport(w, r, err, &report)
		} else {
			s.respondError(w, r, err)
		}
		return
	}

	logger.Info("csv imported",
		"session_id", sessionID(r),
		"file", header.Filename,
		"added", report.Added,
		"skipped", report.Skipped,
		"bytes", report.BytesRead,
		"duration", time.Since(start),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"report": report,
		"count":  total,
	})
}

// handleExport streams the session's rows as a CSV attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	err := s.withSession(r, func(sess *core.Session) error {
		if sess.CurrentSchema().IsZero() {
			return core.ErrNoSchema
		}
		csvHeaders(w, "data.csv")
		return sess.ExportCSV(w)
	})
	if err != nil {
		if errors.Is(err, core.ErrNoSchema) {
			s.respondError(w, r, err)
			return
		}
		// Headers are gone once streaming starts.
		logging.FromContext(r.Context()).Error("csv export failed", "session_id", sessionID(r), "error", err)
	}
}

// handleTemplate serves a header-only CSV for the current schema.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	err := s.withSession(r, func(sess *core.Session) error {
		if sess.CurrentSchema().IsZero() {
			return core.ErrNoSchema
		}
		csvHeaders(w, "template.csv")
		return sess.WriteTemplate(w)
	})
	if err != nil {
		if errors.Is(err, core.ErrNoSchema) {
			s.respondError(w, r, err)
			return
		}
		logging.FromContext(r.Context()).Error("csv template failed", "session_id", sessionID(r), "error", err)
	}
}

// handlePublish copies the session's table into the configured database.
// The session lock is held only while its rows are copied out.
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Table string `json:"table"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	var (
		schema core.Schema
		rows   []core.Row
	)
	err := s.withSession(r, func(sess *core.Session) error {
		schema = sess.CurrentSchema()
		if schema.IsZero() {
			return core.ErrNoSchema
		}
		rows = sess.CurrentRows()
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.publisher.Publish(r.Context(), req.Table, schema, rows)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
