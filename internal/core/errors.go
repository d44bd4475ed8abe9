package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoSchema is returned by row operations before a schema is committed.
	ErrNoSchema = errors.New("no schema committed")

	// ErrNoDraft is returned by Commit when no draft fields exist.
	ErrNoDraft = errors.New("no draft fields to commit")

	// ErrFieldCount is returned when a field count is outside 1..MaxFields.
	ErrFieldCount = fmt.Errorf("field count must be between 1 and %d", MaxFields)

	// ErrDraftIndex is returned for a draft slot index that does not exist.
	ErrDraftIndex = errors.New("draft field index out of range")

	// ErrFieldType is returned for an unknown field type.
	ErrFieldType = errors.New("unknown field type")
)

// SchemaError reports why a draft could not be committed.
type SchemaError struct {
	Index   int    // 1-based draft position
	Name    string // offending name, empty for blank names
	Message string
}

func (e *SchemaError) Error() string {
	return e.Message
}

func emptyNameError(pos int) *SchemaError {
	return &SchemaError{
		Index:   pos,
		Message: fmt.Sprintf("Variable name #%d is empty", pos),
	}
}

func duplicateNameError(pos int, name string) *SchemaError {
	return &SchemaError{
		Index:   pos,
		Name:    name,
		Message: fmt.Sprintf("Duplicate variable name: '%s'", name),
	}
}

// CastError reports a raw value that could not be converted to its field type.
type CastError struct {
	Field string
	Type  FieldType
	Raw   string
	Err   error
}

func (e *CastError) Error() string {
	return fmt.Sprintf("Error casting field '%s' to %s: %v", e.Field, e.Type, e.Err)
}

func (e *CastError) Unwrap() error {
	return e.Err
}

var (
	errInvalidNumber = errors.New("invalid number")
	errInvalidDate   = errors.New("invalid date")
)

// CSVFormatError aborts an entire import. Either Missing lists the schema
// columns absent from the header, or Err holds the read/parse failure.
type CSVFormatError struct {
	Missing []string
	Err     error
}

func (e *CSVFormatError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("missing columns in uploaded CSV: %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("invalid csv: %v", e.Err)
}

func (e *CSVFormatError) Unwrap() error {
	return e.Err
}

// ErrEmptyCSV is wrapped in a CSVFormatError when the input has no header.
var ErrEmptyCSV = errors.New("empty file")
