package core

import (
	"fmt"
	"io"
)

// Session is the single unit of mutable state behind one user's table: the
// schema model, its draft and the data store. All collaborator operations
// go through it.
//
// A Session is not safe for concurrent use. Hosts that serve concurrent
// requests must run one command at a time per session (see session.Manager).
type Session struct {
	model *SchemaModel
	store *DataStore
}

// NewSession returns an empty session in the Undefined state.
func NewSession() *Session {
	return &Session{
		model: NewSchemaModel(),
		store: NewDataStore(),
	}
}

// DefineFieldCount starts a new draft with n blank fields.
func (s *Session) DefineFieldCount(n int) error {
	return s.model.SetFieldCount(n)
}

// UpdateDraftField edits draft slot i.
func (s *Session) UpdateDraftField(i int, name string, t FieldType) error {
	return s.model.UpdateDraftField(i, name, t)
}

// CommitSchema validates the draft and replaces the schema. Existing rows
// are discarded on success since column identity may have changed; on
// failure neither schema nor rows change.
func (s *Session) CommitSchema() (Schema, error) {
	schema, err := s.model.Commit()
	if err != nil {
		return Schema{}, err
	}
	s.store.Clear()
	return schema, nil
}

// ResetSchema returns the session to Undefined, dropping schema, draft and rows.
func (s *Session) ResetSchema() {
	s.model.Reset()
	s.store.Clear()
}

// SubmitRow validates one entered row and appends it.
func (s *Session) SubmitRow(raw map[string]any) (Row, error) {
	row, err := ValidateRow(s.model.Schema(), raw)
	if err != nil {
		return nil, err
	}
	s.store.Append(row)
	return row.Clone(), nil
}

// ClearRows drops all rows and keeps the schema.
func (s *Session) ClearRows() {
	s.store.Clear()
}

// ImportCSV bulk-appends rows from CSV.
func (s *Session) ImportCSV(r io.Reader) (ImportReport, error) {
	return ImportCSV(s.model.Schema(), r, s.store)
}

// ExportCSV writes the table as CSV.
func (s *Session) ExportCSV(w io.Writer) error {
	return ExportCSV(w, s.model.Schema(), s.store)
}

// WriteTemplate writes a header-only CSV for the current schema.
func (s *Session) WriteTemplate(w io.Writer) error {
	return WriteTemplate(w, s.model.Schema())
}

// CurrentSchema returns the committed schema (zero if none).
func (s *Session) CurrentSchema() Schema { return s.model.Schema() }

// CurrentRows returns a copy of all rows.
func (s *Session) CurrentRows() []Row { return s.store.Rows() }

// RowCount returns the number of stored rows.
func (s *Session) RowCount() int { return s.store.Len() }

// Draft returns a copy of the draft fields.
func (s *Session) Draft() []Field { return s.model.Draft() }

// State returns the schema lifecycle state.
func (s *Session) State() SchemaState { return s.model.State() }

// Table returns the rows pivoted into schema-ordered columns.
func (s *Session) Table() []Column { return s.store.ToTable(s.model.Schema()) }

// Snapshot is a read-only view of a session for rendering.
type Snapshot struct {
	State  SchemaState `json:"state"`
	Schema Schema      `json:"schema"`
	Draft  []Field     `json:"draft"`
	Rows   []Row       `json:"-"`
	Count  int         `json:"row_count"`
}

// Snapshot captures the current state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		State:  s.State(),
		Schema: s.CurrentSchema(),
		Draft:  s.Draft(),
		Rows:   s.CurrentRows(),
		Count:  s.RowCount(),
	}
}

// String summarizes the session for logs.
func (s *Session) String() string {
	return fmt.Sprintf("Session{state: %s, fields: %d, rows: %d}", s.State(), s.model.Schema().Len(), s.store.Len())
}
