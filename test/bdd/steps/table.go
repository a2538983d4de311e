package steps

import (
	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"
)

// column returns every value of the named column, skipping the header row
func column(table *godog.Table, name string) []string {
	if table == nil || len(table.Rows) == 0 {
		return nil
	}

	idx := -1
	for i, cell := range table.Rows[0].Cells {
		if cell.Value == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	values := make([]string, 0, len(table.Rows)-1)
	for _, row := range table.Rows[1:] {
		values = append(values, cellValue(row, idx))
	}
	return values
}

func cellValue(row *messages.PickleTableRow, idx int) string {
	if idx >= len(row.Cells) {
		return ""
	}
	return row.Cells[idx].Value
}
