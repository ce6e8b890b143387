package report

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	cellStyle       = lipgloss.NewStyle().PaddingRight(2)
	headerCellStyle = HeaderStyle.PaddingRight(2)
)

// grid collects cells for a borderless table. Columns are sized on the
// rendered width of each cell, so styled values line up.
type grid struct {
	headers []string
	rows    [][]string
}

func newGrid(headers ...string) *grid {
	return &grid{headers: headers}
}

func (g *grid) add(cells ...string) {
	g.rows = append(g.rows, cells)
}

func (p *Printer) flush(g *grid) {
	if len(g.rows) == 0 {
		return
	}
	t := table.New().
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			return cellStyle
		}).
		Rows(g.rows...)
	if len(g.headers) > 0 {
		t.Headers(g.headers...)
	}
	fmt.Fprintln(p.w, t.Render())
}
