package web

import (
	"encoding/json"
	"fmt"
	"strconv"

	"trafficledger/internal/storage"
)

func tableView(table *storage.Table) *TableView {
	view := &TableView{Columns: table.Columns}
	for _, row := range table.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = FormatValue(v)
		}
		view.Rows = append(view.Rows, cells)
	}
	return view
}

// FormatValue renders one result cell. SQL NULL shows as None.
func FormatValue(v any) string {
	switch value := v.(type) {
	case nil:
		return "None"
	case string:
		return value
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	case []byte:
		return string(value)
	case json.Number:
		return value.String()
	default:
		return fmt.Sprint(value)
	}
}
