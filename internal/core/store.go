package core

// DataStore is the ordered collection of rows for one session. Rows are
// stored and returned as copies so callers never alias the store.
type DataStore struct {
	rows []Row
}

// NewDataStore returns an empty store.
func NewDataStore() *DataStore {
	return &DataStore{}
}

// Append adds a row that was produced by ValidateRow for the current schema.
func (d *DataStore) Append(row Row) {
	d.rows = append(d.rows, row.Clone())
}

// AppendMany adds rows in order.
func (d *DataStore) AppendMany(rows []Row) {
	for _, r := range rows {
		d.Append(r)
	}
}

// Clear removes all rows.
func (d *DataStore) Clear() {
	d.rows = nil
}

// Len returns the number of rows.
func (d *DataStore) Len() int { return len(d.rows) }

// Rows returns a copy of all rows in arrival order.
func (d *DataStore) Rows() []Row {
	out := make([]Row, len(d.rows))
	for i, r := range d.rows {
		out[i] = r.Clone()
	}
	return out
}

// ToTable pivots the rows into columns in schema order.
func (d *DataStore) ToTable(schema Schema) []Column {
	cols := make([]Column, schema.Len())
	for i, f := range schema.fields {
		values := make([]Value, len(d.rows))
		for j, r := range d.rows {
			values[j] = r[f.Name]
		}
		cols[i] = Column{Name: f.Name, Type: f.Type, Values: values}
	}
	return cols
}
