package storage

// Table is a tabular query result. Each row holds one value per column, in
// column order.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

type Row []any

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Value returns the value of column in row i.
func (t *Table) Value(i int, column string) (any, bool) {
	if t == nil || i < 0 || i >= len(t.Rows) {
		return nil, false
	}
	for idx, name := range t.Columns {
		if name == column {
			if idx >= len(t.Rows[i]) {
				return nil, false
			}
			return t.Rows[i][idx], true
		}
	}
	return nil, false
}

// Records returns each row as a column name to value map.
func (t *Table) Records() []map[string]any {
	if t == nil {
		return nil
	}
	out := make([]map[string]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		record := make(map[string]any, len(t.Columns))
		for idx, name := range t.Columns {
			if idx < len(row) {
				record[name] = row[idx]
			}
		}
		out = append(out, record)
	}
	return out
}
