package core

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ExportCSV writes the store as CSV: header row of schema names, then one
// record per row in arrival order. Null is an empty cell, numbers are plain
// decimal and dates are YYYY-MM-DD. The output re-imports to the same rows.
func ExportCSV(w io.Writer, schema Schema, store *DataStore) error {
	if schema.IsZero() {
		return ErrNoSchema
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(schema.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, schema.Len())
	for i, row := range store.rows {
		for j, f := range schema.fields {
			record[j] = formatValue(row[f.Name])
		}
		// A lone empty field would be written as a blank line, which
		// readers skip. Quote it so the null row survives a re-import.
		if len(record) == 1 && record[0] == "" {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return fmt.Errorf("write row %d: %w", i+1, err)
			}
			if _, err := io.WriteString(w, "\"\"\n"); err != nil {
				return fmt.Errorf("write row %d: %w", i+1, err)
			}
			continue
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTemplate writes a header-only CSV for the schema, ready to be filled
// in and imported.
func WriteTemplate(w io.Writer, schema Schema) error {
	if schema.IsZero() {
		return ErrNoSchema
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(schema.Names()); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
