package core

// convert.go casts raw user input into typed cell values.
//
// Raw values come from form fields (strings), JSON bodies (strings, numbers,
// null) or CSV cells (strings). The rules:
//   - nil and blank strings are Null for every type, never an error
//   - text types accept any scalar in its string form, with CRLF folded to LF
//   - numbers parse as plain decimal float64; NaN, Inf, hex and digit
//     separators are rejected
//   - dates accept ISO-8601 plus common US and month-name layouts

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical date format used for export and JSON.
const DateLayout = "2006-01-02"

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would land more than this many years in the future are
// assumed to be in the previous century.
var TwoDigitYearPivot = 20

// Date layouts, tried in order. Month-first for numeric layouts.
var (
	isoLayouts = []string{
		DateLayout,
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
	fourDigitYearLayouts = []string{
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"2006/01/02", "2006.01.02",
		"20060102",
	}
	monthNameLayouts = []string{
		"Jan 2, 2006", "Jan 2 2006", "January 2, 2006", "January 2 2006",
		"2 Jan 2006", "2 January 2006", "02-Jan-2006",
		"Mon, 02 Jan 2006", "Monday, January 2, 2006",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
)

// Cast validates raw and converts it to a value of type t. Missing and
// blank values become Null. The returned error, if any, is a *CastError
// without Field set; ValidateRow fills it in.
func Cast(raw any, t FieldType) (Value, error) {
	if raw == nil {
		return Null, nil
	}
	if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
		return Null, nil
	}

	var (
		v   Value
		err error
	)
	switch t {
	case ShortText, LongText:
		// CSV readers fold a quoted CRLF to LF, so text is stored that way.
		v = TextValue(strings.ReplaceAll(textOf(raw), "\r\n", "\n"))
	case Number:
		v, err = castNumber(raw)
	case Date:
		v, err = castDate(raw)
	default:
		err = fmt.Errorf("%w: %d", ErrFieldType, int(t))
	}
	if err != nil {
		return Null, &CastError{Type: t, Raw: textOf(raw), Err: err}
	}
	return v, nil
}

// textOf renders any scalar as text.
func textOf(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case time.Time:
		return v.Format(DateLayout)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func castNumber(raw any) (Value, error) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return Null, errInvalidNumber
		}
		f = parsed
	case string:
		// ParseFloat also takes Go literal forms such as 0x1p-2 and 1_000.
		if strings.ContainsAny(v, "xX_") {
			return Null, fmt.Errorf("%w %q", errInvalidNumber, v)
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return Null, fmt.Errorf("%w %q", errInvalidNumber, v)
		}
		f = parsed
	default:
		return Null, fmt.Errorf("%w: unsupported %T", errInvalidNumber, raw)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null, fmt.Errorf("%w: %v is not finite", errInvalidNumber, f)
	}
	return NumberValue(f), nil
}

func castDate(raw any) (Value, error) {
	switch v := raw.(type) {
	case time.Time:
		return DateValue(v), nil
	case string:
		t, ok := ParseDate(v)
		if !ok {
			return Null, fmt.Errorf("%w %q (use YYYY-MM-DD or similar)", errInvalidDate, v)
		}
		return DateValue(t), nil
	default:
		return Null, fmt.Errorf("%w: unsupported %T", errInvalidDate, raw)
	}
}

// ParseDate parses s with the permissive date grammar.
// The result is a calendar date at UTC midnight.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, group := range [][]string{isoLayouts, fourDigitYearLayouts, monthNameLayouts} {
		for _, layout := range group {
			if t, err := time.Parse(layout, s); err == nil {
				return civilDate(t), true
			}
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Year() > pivotYear {
			t = t.AddDate(-100, 0, 0)
		}
		return civilDate(t), true
	}

	return time.Time{}, false
}

// civilDate drops the clock and zone, keeping the calendar date as written.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// formatValue renders a value as it appears in exported CSV.
func formatValue(v Value) string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindDate:
		return v.Date.Format(DateLayout)
	default:
		return ""
	}
}
