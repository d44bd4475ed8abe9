package core

// import.go implements bulk CSV import against a committed schema.
//
// The flow:
//  1. Decode input (BOM strip, UTF-8 repair) and read the header record
//  2. Abort with CSVFormatError if any schema column is missing
//  3. Validate each data record independently; failures are counted and the
//     first MaxReportedErrors messages kept
//  4. Append every valid row in file order once the whole file has parsed
//
// A CSV syntax error anywhere aborts the import with nothing added. Per-row
// cast failures never abort.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// MaxReportedErrors caps the number of row errors kept in an ImportReport.
const MaxReportedErrors = 5

// ImportCSV reads CSV from r, validates it against schema and appends the
// valid rows to store.
func ImportCSV(schema Schema, r io.Reader, store *DataStore) (ImportReport, error) {
	var report ImportReport
	if schema.IsZero() {
		return report, ErrNoSchema
	}

	decoded, counter := WrapForImport(r)
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = ErrEmptyCSV
		}
		return report, &CSVFormatError{Err: err}
	}

	pos, missing, extra := matchHeader(schema, header)
	report.ExtraColumns = extra
	if len(missing) > 0 {
		report.BytesRead = counter.BytesRead
		return report, &CSVFormatError{Missing: missing}
	}

	var accepted []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ImportReport{ExtraColumns: extra, BytesRead: counter.BytesRead}, &CSVFormatError{Err: err}
		}
		line, _ := reader.FieldPos(0)

		row, err := validateImportRecord(schema, pos, header, record)
		if err != nil {
			report.Skipped++
			if len(report.FirstErrors) < MaxReportedErrors {
				report.FirstErrors = append(report.FirstErrors, fmt.Sprintf("row %d: %v", line, err))
			}
			continue
		}
		accepted = append(accepted, row)
	}

	store.AppendMany(accepted)
	report.Added = len(accepted)
	report.BytesRead = counter.BytesRead
	return report, nil
}

func validateImportRecord(schema Schema, pos map[string]int, header, record []string) (Row, error) {
	if len(record) > len(header) {
		return nil, fmt.Errorf("record has %d fields, header has %d", len(record), len(header))
	}
	return ValidateRecord(schema, pos, record)
}

// matchHeader maps schema names to header positions. Matching is exact and
// case-sensitive; the first occurrence of a repeated header wins.
func matchHeader(schema Schema, header []string) (pos map[string]int, missing, extra []string) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	pos = make(map[string]int, schema.Len())
	for _, f := range schema.fields {
		i, ok := index[f.Name]
		if !ok {
			missing = append(missing, f.Name)
			continue
		}
		pos[f.Name] = i
	}

	for _, h := range header {
		if _, ok := schema.Field(h); !ok {
			extra = append(extra, h)
		}
	}
	return pos, missing, extra
}
