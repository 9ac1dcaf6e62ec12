package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column describes one table column. Text columns wrap at wrapWidth.
type column struct {
	title   string
	numeric bool
}

const wrapWidth = 60

// renderTable draws rows under cols. Short rows are padded with blanks.
func renderTable(cols []column, rows [][]string) string {
	if len(cols) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, 0, len(cols))
	configs := make([]table.ColumnConfig, 0, len(cols))
	for i, c := range cols {
		header = append(header, c.title)
		cfg := table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
		if c.numeric {
			cfg.Align = text.AlignRight
		} else {
			cfg.WidthMax = wrapWidth
		}
		configs = append(configs, cfg)
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(cols))
		for i := range r {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}
