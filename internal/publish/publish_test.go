package publish

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/statentry/internal/config"
	"github.com/JonMunkholm/statentry/internal/core"
)

func testSchema(t *testing.T) core.Schema {
	t.Helper()
	s, err := core.NewSchema(
		core.Field{Name: "name", Type: core.ShortText},
		core.Field{Name: "Age \"years\"", Type: core.Number},
		core.Field{Name: "joined", Type: core.Date},
	)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"survey", true},
		{"_tmp_2024", true},
		{"Survey_Results", true},
		{"", false},
		{"1table", false},
		{"drop table x;", false},
		{"schema.table", false},
		{"a-b", false},
	}
	for _, tt := range tests {
		err := ValidateTableName(tt.name)
		if tt.valid && err != nil {
			t.Errorf("ValidateTableName(%q) error = %v", tt.name, err)
		}
		if !tt.valid && !errors.Is(err, ErrTableName) {
			t.Errorf("ValidateTableName(%q) error = %v, want ErrTableName", tt.name, err)
		}
	}
}

func TestCreateTableSQL(t *testing.T) {
	got := CreateTableSQL("survey", testSchema(t))
	want := `CREATE TABLE "survey" ("name" text, "Age ""years""" double precision, "joined" date)`
	if got != want {
		t.Errorf("CreateTableSQL() =\n%s\nwant\n%s", got, want)
	}
}

func TestCopyRows(t *testing.T) {
	joined := time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)
	rows := []core.Row{
		{"name": core.TextValue("Ada"), "Age \"years\"": core.NumberValue(36), "joined": core.DateValue(joined)},
		{"name": core.Null, "Age \"years\"": core.Null, "joined": core.Null},
	}

	out := CopyRows(testSchema(t), rows)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}

	if v := out[0][0].(pgtype.Text); !v.Valid || v.String != "Ada" {
		t.Errorf("out[0][0] = %+v", v)
	}
	if v := out[0][1].(pgtype.Float8); !v.Valid || v.Float64 != 36 {
		t.Errorf("out[0][1] = %+v", v)
	}
	if v := out[0][2].(pgtype.Date); !v.Valid || !v.Time.Equal(joined) {
		t.Errorf("out[0][2] = %+v", v)
	}

	for i, v := range out[1] {
		switch x := v.(type) {
		case pgtype.Text:
			if x.Valid {
				t.Errorf("out[1][%d] should be NULL", i)
			}
		case pgtype.Float8:
			if x.Valid {
				t.Errorf("out[1][%d] should be NULL", i)
			}
		case pgtype.Date:
			if x.Valid {
				t.Errorf("out[1][%d] should be NULL", i)
			}
		default:
			t.Errorf("out[1][%d] unexpected type %T", i, v)
		}
	}
}

func TestPublish_Disabled(t *testing.T) {
	p, err := Connect(context.Background(), config.DatabaseConfig{})
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if p.Enabled() {
		t.Fatal("Enabled() = true without URL")
	}
	p.Close()

	_, err = p.Publish(context.Background(), "survey", testSchema(t), nil)
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Publish() error = %v, want ErrDisabled", err)
	}

	var nilPublisher *Publisher
	if nilPublisher.Enabled() {
		t.Error("nil publisher reports enabled")
	}
}
