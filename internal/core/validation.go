package core

// validation.go turns a raw row into a typed Row for the current schema.
//
// Validation is fail-fast: fields are checked in schema order and the first
// cast failure rejects the whole row. This matches the all-or-nothing
// acceptance of a single entered row, and a CSV import reports exactly one
// reason per skipped line.

import "errors"

// ValidateRow casts every schema field from raw. Keys not in the schema are
// ignored; schema fields missing from raw become Null.
func ValidateRow(schema Schema, raw map[string]any) (Row, error) {
	if schema.IsZero() {
		return nil, ErrNoSchema
	}

	row := make(Row, schema.Len())
	for _, f := range schema.fields {
		v, err := Cast(raw[f.Name], f.Type)
		if err != nil {
			var ce *CastError
			if errors.As(err, &ce) {
				ce.Field = f.Name
			}
			return nil, err
		}
		row[f.Name] = v
	}
	return row, nil
}

// ValidateRecord validates a CSV record using header positions. pos maps a
// schema name to its column in record; cells past the end are Null.
func ValidateRecord(schema Schema, pos map[string]int, record []string) (Row, error) {
	raw := make(map[string]any, schema.Len())
	for _, f := range schema.fields {
		i, ok := pos[f.Name]
		if !ok || i >= len(record) {
			continue
		}
		raw[f.Name] = record[i]
	}
	return ValidateRow(schema, raw)
}
