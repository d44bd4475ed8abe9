package schemafile

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/statentry/internal/core"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNames []string
		wantTypes []core.FieldType
		wantErr   string
	}{
		{
			name: "valid",
			input: `version: 1
fields:
  - name: name
    type: short text
  - name: notes
    type: long_text
  - name: age
    type: number
  - name: joined
    type: date
`,
			wantNames: []string{"name", "notes", "age", "joined"},
			wantTypes: []core.FieldType{core.ShortText, core.LongText, core.Number, core.Date},
		},
		{
			name:      "version omitted",
			input:     "fields:\n  - {name: a, type: number}\n",
			wantNames: []string{"a"},
			wantTypes: []core.FieldType{core.Number},
		},
		{
			name:    "unknown type",
			input:   "fields:\n  - {name: a, type: boolean}\n",
			wantErr: "unknown field type",
		},
		{
			name:    "duplicate names",
			input:   "fields:\n  - {name: a, type: number}\n  - {name: a, type: date}\n",
			wantErr: "Duplicate variable name: 'a'",
		},
		{
			name:    "no fields",
			input:   "version: 1\nfields: []\n",
			wantErr: "field count",
		},
		{
			name:    "bad version",
			input:   "version: 7\nfields:\n  - {name: a, type: number}\n",
			wantErr: "unsupported schema file version",
		},
		{
			name:    "not yaml",
			input:   "fields: [",
			wantErr: "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema, err := Parse([]byte(tt.input))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Parse() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			fields := schema.Fields()
			if len(fields) != len(tt.wantNames) {
				t.Fatalf("len(fields) = %d, want %d", len(fields), len(tt.wantNames))
			}
			for i, f := range fields {
				if f.Name != tt.wantNames[i] || f.Type != tt.wantTypes[i] {
					t.Errorf("fields[%d] = %+v, want %s %s", i, f, tt.wantNames[i], tt.wantTypes[i])
				}
			}
		})
	}
}

func TestParse_DuplicateIsSchemaError(t *testing.T) {
	_, err := Parse([]byte("fields:\n  - {name: a, type: number}\n  - {name: a, type: number}\n"))
	var se *core.SchemaError
	if !errors.As(err, &se) {
		t.Errorf("Parse() error = %v, want *core.SchemaError", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	schema, err := core.NewSchema(
		core.Field{Name: "first name", Type: core.ShortText},
		core.Field{Name: "due", Type: core.Date},
	)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "schema.yaml")
	if err := Save(path, schema); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got, want := loaded.Fields(), schema.Fields()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestMarshal_UsesTypeNames(t *testing.T) {
	schema, _ := core.NewSchema(core.Field{Name: "n", Type: core.Number})
	data, err := Marshal(schema)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "type: number") {
		t.Errorf("Marshal() = %s", data)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestApply(t *testing.T) {
	sess := core.NewSession()
	_ = sess.DefineFieldCount(1)
	_ = sess.UpdateDraftField(0, "old", core.ShortText)
	_, _ = sess.CommitSchema()
	_, _ = sess.SubmitRow(map[string]any{"old": "x"})

	schema, _ := core.NewSchema(core.Field{Name: "a", Type: core.Number}, core.Field{Name: "b", Type: core.Date})
	if err := Apply(sess, schema); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := sess.CurrentSchema().Names(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("CurrentSchema() = %v", got)
	}
	if sess.RowCount() != 0 {
		t.Errorf("RowCount() = %d, want 0 after Apply", sess.RowCount())
	}
}
