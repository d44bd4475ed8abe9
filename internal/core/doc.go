// Package core provides the schema, validation and tabular storage logic for
// data entry sessions.
//
// This package is the heart of the application, containing all domain logic
// independent of any UI or transport layer. The HTTP server, the csvcheck
// tool and the interactive shell all drive it through [Session].
//
// # Schema Lifecycle
//
// A session starts Undefined. [Session.DefineFieldCount] opens a draft of
// blank short-text fields which [Session.UpdateDraftField] edits freely.
// [Session.CommitSchema] validates names (non-blank, unique) and replaces
// the schema, discarding existing rows:
//
//	s := core.NewSession()
//	_ = s.DefineFieldCount(2)
//	_ = s.UpdateDraftField(0, "age", core.Number)
//	_ = s.UpdateDraftField(1, "joined", core.Date)
//	schema, err := s.CommitSchema()
//
// # Rows
//
// [Session.SubmitRow] casts each field with [Cast] in schema order and
// rejects the whole row on the first failure. Blank input is null for every
// type.
//
// # CSV
//
// [Session.ImportCSV] requires every schema column in the header, ignores
// extra columns, and imports all valid rows while reporting up to
// [MaxReportedErrors] failures. [Session.ExportCSV] writes a file that
// re-imports to the same rows.
//
// # Error Handling
//
// Errors are values: [*SchemaError], [*CastError], [*CSVFormatError] and
// a few sentinels. [MapError] turns any of them into a [UserMessage] with a
// support code.
package core
