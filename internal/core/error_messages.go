// Package core provides the schema, validation and tabular storage logic for
// data entry sessions.
//
// # Error Codes Reference
//
// This file maps errors to user-friendly messages with codes for support
// reference. Typed errors from this package are matched first with
// errors.As; everything else falls back to case-insensitive substring
// patterns.
//
// # Schema Errors (SCH001-SCH099)
//
//	SCH001 - Empty variable name: a draft name is blank
//	         Action: Give every variable a name
//	         Source: *SchemaError with empty Name
//
//	SCH002 - Duplicate variable name: two draft names are equal
//	         Action: Variable names must be unique (case-sensitive)
//	         Source: *SchemaError with Name set
//
//	SCH003 - Field count: count outside 1..50, or editing a missing slot
//	         Action: Choose between 1 and 50 variables
//	         Source: ErrFieldCount, ErrDraftIndex, ErrNoDraft, ErrFieldType
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid date
//	         Action: Use YYYY-MM-DD, MM/DD/YYYY, or Jan 15, 2024
//	         Source: *CastError on a date field
//
//	VAL002 - Invalid number
//	         Action: Use a plain decimal number such as 12.5
//	         Source: *CastError on a number field
//
//	VAL004 - Missing columns: schema columns absent from the CSV header
//	         Action: Check that every variable has a column in your file
//	         Source: *CSVFormatError with Missing set
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	          Patterns: "file too large", "request body too large"
//	FILE002 - Invalid CSV: unparseable CSV
//	          Source: *CSVFormatError with Err set
//	FILE004 - No file
//	          Patterns: "no file provided"
//	FILE005 - Empty file
//	          Source: ErrEmptyCSV
//
// # Session Errors (SES001-SES099)
//
//	SES001 - No schema: row, import or export before a commit
//	SES002 - Session not found or expired
//	         Patterns: "session not found"
//	SES003 - Session limit reached
//	         Patterns: "too many sessions"
//
// # Upload, Publish and Rate Errors
//
//	UPL002  - Too many concurrent imports (ErrTooManyImports)
//	UPL005  - Request timed out ("context deadline exceeded")
//	PUB001  - Publishing disabled ("publishing disabled")
//	PUB002  - Database failure during publish ("publish failed")
//	PUB003  - Table name is not a plain identifier ("invalid table name")
//	REQ001  - Malformed request body ("invalid request")
//	RATE001 - Too many requests ("rate limit")
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check application logs for the original
// technical error.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns are matched with strings.Contains on the lowercased error.
// The first match wins, so specific patterns come first.
var errorPatterns = []errorPattern{
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Session not found",
			Action:  "The session may have expired. Please start a new one",
			Code:    "SES002",
		},
	},
	{
		pattern: "too many sessions",
		msg: UserMessage{
			Message: "The server has reached its session limit",
			Action:  "Please try again later",
			Code:    "SES003",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "publishing disabled",
		msg: UserMessage{
			Message: "Publishing to a database is not configured",
			Action:  "Set DATABASE_URL to enable publishing, or download the CSV instead",
			Code:    "PUB001",
		},
	},
	{
		pattern: "publish failed",
		msg: UserMessage{
			Message: "The table could not be written to the database",
			Action:  "Please try again in a few moments",
			Code:    "PUB002",
		},
	},
	{
		pattern: "invalid table name",
		msg: UserMessage{
			Message: "The table name is not valid",
			Action:  "Use letters, digits and underscores, starting with a letter",
			Code:    "PUB003",
		},
	},
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Check the request body and try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-friendly message. Typed errors keep
// their own text as the message since it names the offending field or
// position; other errors get the pattern's canned message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	if msg, ok := mapTypedError(err); ok {
		return msg
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

func mapTypedError(err error) (UserMessage, bool) {
	var (
		se *SchemaError
		ce *CastError
		fe *CSVFormatError
	)
	switch {
	case errors.As(err, &se):
		if se.Name == "" {
			return UserMessage{Message: se.Message, Action: "Give every variable a name", Code: "SCH001"}, true
		}
		return UserMessage{Message: se.Message, Action: "Variable names must be unique (case-sensitive)", Code: "SCH002"}, true

	case errors.As(err, &ce):
		if ce.Type == Date {
			return UserMessage{Message: ce.Error(), Action: "Use YYYY-MM-DD, MM/DD/YYYY, or Jan 15, 2024", Code: "VAL001"}, true
		}
		return UserMessage{Message: ce.Error(), Action: "Use a plain decimal number such as 12.5", Code: "VAL002"}, true

	case errors.As(err, &fe):
		if len(fe.Missing) > 0 {
			return UserMessage{Message: fe.Error(), Action: "Check that every variable has a column in your file", Code: "VAL004"}, true
		}
		if errors.Is(fe.Err, ErrEmptyCSV) {
			return UserMessage{Message: "The uploaded file is empty", Action: "Please upload a CSV file with a header row", Code: "FILE005"}, true
		}
		return UserMessage{Message: "File is not a valid CSV", Action: "Ensure the file is comma-separated with quoted fields where needed", Code: "FILE002"}, true

	case errors.Is(err, ErrNoSchema):
		return UserMessage{Message: "No schema has been saved yet", Action: "Define and save your variables first", Code: "SES001"}, true

	case errors.Is(err, ErrFieldCount), errors.Is(err, ErrDraftIndex), errors.Is(err, ErrNoDraft), errors.Is(err, ErrFieldType):
		return UserMessage{Message: err.Error(), Action: fmt.Sprintf("Choose between 1 and %d variables, then name each one", MaxFields), Code: "SCH003"}, true

	case errors.Is(err, ErrTooManyImports):
		return UserMessage{Message: "System is busy processing other imports", Action: "Please wait a moment and try again", Code: "UPL002"}, true
	}
	return UserMessage{}, false
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
