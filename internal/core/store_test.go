package core

import "testing"

func TestDataStore_AppendAndRows(t *testing.T) {
	d := NewDataStore()
	if d.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", d.Len())
	}

	d.Append(Row{"n": NumberValue(1)})
	d.AppendMany([]Row{{"n": NumberValue(2)}, {"n": NumberValue(3)}})

	rows := d.Rows()
	if len(rows) != 3 {
		t.Fatalf("len(Rows()) = %d, want 3", len(rows))
	}
	for i, r := range rows {
		if r["n"].Num != float64(i+1) {
			t.Errorf("rows[%d] = %v, want arrival order", i, r)
		}
	}
}

func TestDataStore_NoAliasing(t *testing.T) {
	d := NewDataStore()
	in := Row{"n": NumberValue(1)}
	d.Append(in)

	in["n"] = NumberValue(99)
	if d.Rows()[0]["n"].Num != 1 {
		t.Error("Append kept a reference to the caller's row")
	}

	out := d.Rows()
	out[0]["n"] = NumberValue(42)
	if d.Rows()[0]["n"].Num != 1 {
		t.Error("Rows() returned a reference to stored rows")
	}
}

func TestDataStore_Clear(t *testing.T) {
	d := NewDataStore()
	d.Append(Row{"n": NumberValue(1)})
	d.Clear()
	if d.Len() != 0 || len(d.Rows()) != 0 {
		t.Errorf("store not empty after Clear")
	}
}

func TestDataStore_ToTable(t *testing.T) {
	schema := mustSchema(t, Field{Name: "b", Type: ShortText}, Field{Name: "a", Type: Number})
	d := NewDataStore()
	d.Append(Row{"a": NumberValue(1), "b": TextValue("x")})
	d.Append(Row{"a": Null, "b": TextValue("y")})

	cols := d.ToTable(schema)
	if len(cols) != 2 {
		t.Fatalf("len(cols) = %d, want 2", len(cols))
	}
	if cols[0].Name != "b" || cols[1].Name != "a" {
		t.Errorf("columns not in schema order: %s, %s", cols[0].Name, cols[1].Name)
	}
	if cols[1].Type != Number {
		t.Errorf("cols[1].Type = %s, want number", cols[1].Type)
	}
	if len(cols[0].Values) != 2 || cols[0].Values[1] != TextValue("y") {
		t.Errorf("cols[0].Values = %v", cols[0].Values)
	}
	if !cols[1].Values[1].IsNull() {
		t.Errorf("cols[1].Values[1] = %v, want Null", cols[1].Values[1])
	}
}
