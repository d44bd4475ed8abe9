package core

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestExportCSV(t *testing.T) {
	schema := mustSchema(t,
		Field{Name: "name", Type: ShortText},
		Field{Name: "age", Type: Number},
		Field{Name: "joined", Type: Date},
	)
	store := NewDataStore()
	store.Append(Row{"name": TextValue("Smith, J"), "age": NumberValue(30), "joined": DateValue(time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC))})
	store.Append(Row{"name": TextValue("Lee"), "age": NumberValue(0.5), "joined": Null})

	var buf bytes.Buffer
	if err := ExportCSV(&buf, schema, store); err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}

	want := "name,age,joined\n\"Smith, J\",30,2023-01-05\nLee,0.5,\n"
	if buf.String() != want {
		t.Errorf("ExportCSV() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestExportCSV_EmptyStore(t *testing.T) {
	schema := mustSchema(t, Field{Name: "a", Type: ShortText}, Field{Name: "b", Type: Number})

	var buf bytes.Buffer
	if err := ExportCSV(&buf, schema, NewDataStore()); err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}
	if buf.String() != "a,b\n" {
		t.Errorf("ExportCSV() = %q, want header only", buf.String())
	}
}

func TestExportCSV_NoSchema(t *testing.T) {
	if err := ExportCSV(&bytes.Buffer{}, Schema{}, NewDataStore()); !errors.Is(err, ErrNoSchema) {
		t.Errorf("ExportCSV() error = %v, want ErrNoSchema", err)
	}
}

func TestExportCSV_SingleColumnNull(t *testing.T) {
	schema := mustSchema(t, Field{Name: "x", Type: Number})
	store := NewDataStore()
	store.Append(Row{"x": NumberValue(1)})
	store.Append(Row{"x": Null})
	store.Append(Row{"x": NumberValue(2)})

	var buf bytes.Buffer
	if err := ExportCSV(&buf, schema, store); err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}
	if want := "x\n1\n\"\"\n2\n"; buf.String() != want {
		t.Errorf("ExportCSV() = %q, want %q", buf.String(), want)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
		rows   []map[string]any
	}{
		{
			name:   "single number column with null",
			fields: []Field{{Name: "x", Type: Number}},
			rows:   []map[string]any{{"x": "1"}, {}, {"x": "2"}},
		},
		{
			name:   "single text column all null",
			fields: []Field{{Name: "note", Type: LongText}},
			rows:   []map[string]any{{}, {"note": ""}},
		},
		{
			name:   "CRLF in long text",
			fields: []Field{{Name: "body", Type: LongText}},
			rows:   []map[string]any{{"body": "line1\r\nline2"}},
		},
		{
			name:   "lone CR",
			fields: []Field{{Name: "a", Type: ShortText}, {Name: "b", Type: Number}},
			rows:   []map[string]any{{"a": "a\rb", "b": "1"}},
		},
		{
			name:   "leading and trailing spaces",
			fields: []Field{{Name: "a", Type: ShortText}},
			rows:   []map[string]any{{"a": "  lead"}, {"a": "trail  "}},
		},
		{
			name:   "quotes commas and newlines",
			fields: []Field{{Name: "title", Type: ShortText}, {Name: "body", Type: LongText}},
			rows:   []map[string]any{{"title": "quote \"this\"", "body": "multi\nline, text"}},
		},
		{
			name:   "numbers",
			fields: []Field{{Name: "n", Type: Number}, {Name: "tag", Type: ShortText}},
			rows: []map[string]any{
				{"n": "-0", "tag": "negative zero"},
				{"n": "1e21", "tag": "big"},
				{"n": "-12.125", "tag": "fraction"},
				{"n": "5e-324", "tag": "tiny"},
			},
		},
		{
			name:   "dates",
			fields: []Field{{Name: "due", Type: Date}, {Name: "tag", Type: ShortText}},
			rows: []map[string]any{
				{"due": "12/31/1999", "tag": "us"},
				{"due": "2024-02-29T23:30:00-08:00", "tag": "offset"},
				{"tag": "none"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := committedSession(t, tt.fields...)
			for _, raw := range tt.rows {
				if _, err := src.SubmitRow(raw); err != nil {
					t.Fatalf("SubmitRow(%v) error = %v", raw, err)
				}
			}

			var buf bytes.Buffer
			if err := src.ExportCSV(&buf); err != nil {
				t.Fatalf("ExportCSV() error = %v", err)
			}

			dst := committedSession(t, tt.fields...)
			report, err := dst.ImportCSV(strings.NewReader(buf.String()))
			if err != nil {
				t.Fatalf("ImportCSV(%q) error = %v", buf.String(), err)
			}
			if report.Skipped != 0 {
				t.Fatalf("Skipped = %d, errors: %v", report.Skipped, report.FirstErrors)
			}

			want, got := src.CurrentRows(), dst.CurrentRows()
			if len(got) != len(want) {
				t.Fatalf("row count = %d, want %d\nexported: %q", len(got), len(want), buf.String())
			}
			for i := range want {
				for _, f := range tt.fields {
					if got[i][f.Name] != want[i][f.Name] {
						t.Errorf("row %d field %q = %+v, want %+v", i, f.Name, got[i][f.Name], want[i][f.Name])
					}
				}
			}
		})
	}
}

func TestWriteTemplate(t *testing.T) {
	schema := mustSchema(t, Field{Name: "first name", Type: ShortText}, Field{Name: "age", Type: Number})

	var buf bytes.Buffer
	if err := WriteTemplate(&buf, schema); err != nil {
		t.Fatalf("WriteTemplate() error = %v", err)
	}
	if buf.String() != "first name,age\n" {
		t.Errorf("WriteTemplate() = %q", buf.String())
	}
}
