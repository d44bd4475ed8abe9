// Package core provides the schema, validation and tabular storage logic for
// data entry sessions. This package has no UI dependencies and can be used by
// any frontend.
package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FieldType represents the declared data type of a schema field.
type FieldType int

const (
	ShortText FieldType = iota
	LongText
	Number
	Date
)

// fieldTypeNames holds the canonical text form of each field type.
// Order must match the FieldType constants.
var fieldTypeNames = [...]string{"short text", "long text", "number", "date"}

// FieldTypes lists all supported field types in display order.
var FieldTypes = []FieldType{ShortText, LongText, Number, Date}

// String returns the canonical name used in forms, JSON and schema files.
func (t FieldType) String() string {
	if t.Valid() {
		return fieldTypeNames[t]
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	return t >= ShortText && t <= Date
}

// ParseFieldType converts a type name to a FieldType.
// Accepts "short text", "short_text", "shorttext" and the other types
// case-insensitively.
func ParseFieldType(s string) (FieldType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	switch key {
	case "short text", "shorttext", "text":
		return ShortText, nil
	case "long text", "longtext":
		return LongText, nil
	case "number", "numeric":
		return Number, nil
	case "date":
		return Date, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrFieldType, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t FieldType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrFieldType, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *FieldType) UnmarshalText(b []byte) error {
	ft, err := ParseFieldType(string(b))
	if err != nil {
		return err
	}
	*t = ft
	return nil
}

// Field is a named, typed column definition. Identity is the name.
type Field struct {
	Name string    `json:"name" yaml:"name"`
	Type FieldType `json:"type" yaml:"type"`
}

// MaxFields is the upper bound on the number of fields in a schema.
const MaxFields = 50

// DefaultFieldCount is the number of variables offered before the user
// picks a count.
const DefaultFieldCount = 3

// Schema is an immutable ordered set of uniquely named fields.
// The zero value is the undefined (empty) schema.
type Schema struct {
	fields []Field
}

// Fields returns a copy of the schema fields in column order.
func (s Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Names returns the field names in column order.
func (s Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Len returns the number of fields.
func (s Schema) Len() int { return len(s.fields) }

// IsZero reports whether the schema is undefined.
func (s Schema) IsZero() bool { return len(s.fields) == 0 }

// Field looks up a field by exact name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// MarshalJSON encodes the schema as its ordered field list.
func (s Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Fields())
}

// UnmarshalJSON decodes an ordered field list under the same rules as a
// commit. An empty list decodes to the zero Schema.
func (s *Schema) UnmarshalJSON(b []byte) error {
	var fields []Field
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if len(fields) == 0 {
		*s = Schema{}
		return nil
	}
	schema, err := NewSchema(fields...)
	if err != nil {
		return err
	}
	*s = schema
	return nil
}

// SchemaState describes where a session is in the schema lifecycle.
type SchemaState string

const (
	StateUndefined SchemaState = "undefined"
	StateDraft     SchemaState = "draft"
	StateCommitted SchemaState = "committed"
)

// ValueKind tags which member of a Value is meaningful.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindText
	KindNumber
	KindDate
)

// Value is a single typed cell. Only the member matching Kind is set; the
// others stay at their zero values.
type Value struct {
	Kind ValueKind
	Text string
	Num  float64
	Date time.Time // civil date at UTC midnight
}

// Null is the absent value.
var Null = Value{}

// TextValue returns a text cell.
func TextValue(s string) Value { return Value{Kind: KindText, Text: s} }

// NumberValue returns a numeric cell.
func NumberValue(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// DateValue returns a date cell, truncating t to its calendar date.
func DateValue(t time.Time) Value {
	return Value{Kind: KindDate, Date: civilDate(t)}
}

// IsNull reports whether the value is absent.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// String renders the value the way the CSV exporter writes it.
func (v Value) String() string {
	return formatValue(v)
}

// MarshalJSON encodes null, strings, numbers, and dates as "YYYY-MM-DD".
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindText:
		return json.Marshal(v.Text)
	case KindNumber:
		return json.Marshal(v.Num)
	case KindDate:
		return json.Marshal(v.Date.Format(DateLayout))
	default:
		return []byte("null"), nil
	}
}

// Row is one record keyed by field name. A Row built by ValidateRow has
// exactly one entry per schema field.
type Row map[string]Value

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Column is one schema column with its values in row order.
type Column struct {
	Name   string    `json:"name"`
	Type   FieldType `json:"type"`
	Values []Value   `json:"values"`
}

// ImportReport summarizes a CSV import.
type ImportReport struct {
	Added        int      `json:"added"`
	Skipped      int      `json:"skipped"`
	FirstErrors  []string `json:"first_errors,omitempty"`
	ExtraColumns []string `json:"extra_columns,omitempty"`
	BytesRead    int64    `json:"bytes_read"`
}
