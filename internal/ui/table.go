package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders static rows with aligned columns.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func NewTable(title string, headers ...string) *Table {
	return &Table{Title: title, Headers: headers}
}

func (t *Table) AddRow(row ...string) {
	t.Rows = append(t.Rows, row)
}

func (t *Table) View(styles Styles) string {
	if len(t.Rows) == 0 {
		return ""
	}

	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(styles.Title.Render(t.Title))
		sb.WriteString("\n")
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	// Width includes the horizontal padding.
	for i := range widths {
		widths[i] += 2
	}

	header := styles.Bold.Padding(0, 1)
	cellStyle := styles.Body.Padding(0, 1)
	sep := styles.Muted.Render("│")

	cells := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		cells[i] = header.Width(widths[i]).Render(h)
	}
	sb.WriteString(strings.Join(cells, sep) + "\n")

	total := len(widths) - 1
	for _, w := range widths {
		total += w
	}
	sb.WriteString(styles.Muted.Render(strings.Repeat("─", total)) + "\n")

	for _, row := range t.Rows {
		cells = cells[:0]
		for i := range t.Headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cells = append(cells, cellStyle.Width(widths[i]).Render(cell))
		}
		sb.WriteString(strings.Join(cells, sep) + "\n")
	}
	return sb.String()
}
