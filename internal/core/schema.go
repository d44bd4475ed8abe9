package core

import (
	"fmt"
	"strings"
)

// SchemaModel holds the committed schema and the draft being edited.
// It is not safe for concurrent use; the owning Session serializes access.
type SchemaModel struct {
	schema Schema
	draft  []Field
}

// NewSchemaModel returns a model in the Undefined state.
func NewSchemaModel() *SchemaModel {
	return &SchemaModel{}
}

// SetFieldCount replaces the draft with n blank short-text slots.
func (m *SchemaModel) SetFieldCount(n int) error {
	if n < 1 || n > MaxFields {
		return fmt.Errorf("%w: got %d", ErrFieldCount, n)
	}
	m.draft = make([]Field, n)
	for i := range m.draft {
		m.draft[i] = Field{Type: ShortText}
	}
	return nil
}

// UpdateDraftField overwrites slot i. Names are not validated until Commit,
// so blanks and duplicates are allowed here.
func (m *SchemaModel) UpdateDraftField(i int, name string, t FieldType) error {
	if i < 0 || i >= len(m.draft) {
		return fmt.Errorf("%w: %d (draft has %d fields)", ErrDraftIndex, i, len(m.draft))
	}
	if !t.Valid() {
		return fmt.Errorf("%w: %d", ErrFieldType, int(t))
	}
	m.draft[i] = Field{Name: name, Type: t}
	return nil
}

// Commit validates the draft and, on success, makes it the current schema
// and clears the draft. The first blank or duplicate name wins; on failure
// the model is left untouched.
func (m *SchemaModel) Commit() (Schema, error) {
	if len(m.draft) == 0 {
		return Schema{}, ErrNoDraft
	}

	fields := make([]Field, 0, len(m.draft))
	seen := make(map[string]bool, len(m.draft))
	for i, f := range m.draft {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return Schema{}, emptyNameError(i + 1)
		}
		if seen[name] {
			return Schema{}, duplicateNameError(i+1, name)
		}
		seen[name] = true
		fields = append(fields, Field{Name: name, Type: f.Type})
	}

	m.schema = Schema{fields: fields}
	m.draft = nil
	return m.schema, nil
}

// Reset discards the schema and draft.
func (m *SchemaModel) Reset() {
	m.schema = Schema{}
	m.draft = nil
}

// Schema returns the committed schema (zero if undefined).
func (m *SchemaModel) Schema() Schema { return m.schema }

// Draft returns a copy of the draft slots.
func (m *SchemaModel) Draft() []Field {
	out := make([]Field, len(m.draft))
	copy(out, m.draft)
	return out
}

// State reports the lifecycle state. A committed schema takes precedence
// over an open draft.
func (m *SchemaModel) State() SchemaState {
	switch {
	case !m.schema.IsZero():
		return StateCommitted
	case len(m.draft) > 0:
		return StateDraft
	default:
		return StateUndefined
	}
}

// NewSchema builds a schema directly from fields, applying the same rules
// as Commit. Used by tests and schema files.
func NewSchema(fields ...Field) (Schema, error) {
	m := NewSchemaModel()
	if err := m.SetFieldCount(len(fields)); err != nil {
		return Schema{}, err
	}
	for i, f := range fields {
		if err := m.UpdateDraftField(i, f.Name, f.Type); err != nil {
			return Schema{}, err
		}
	}
	return m.Commit()
}
