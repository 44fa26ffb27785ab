package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column describes one table column
type Column struct {
	Header   string
	MinWidth int
	Align    lipgloss.Position // lipgloss.Left, lipgloss.Center or lipgloss.Right
}

// Cell is one table cell. Cells without a style use StyleTableRow.
type Cell struct {
	Text  string
	style *lipgloss.Style
}

// Text returns an unstyled cell
func Text(s string) Cell {
	return Cell{Text: s}
}

// Styled returns a cell rendered with its own style
func Styled(s string, style lipgloss.Style) Cell {
	return Cell{Text: s, style: &style}
}

func (c Cell) render(s string) string {
	if c.style == nil {
		return StyleTableRow.Render(s)
	}
	return c.style.Render(s)
}

// Table lays out rows of cells under a header line
type Table struct {
	columns []Column
	rows    [][]Cell
}

// NewTable creates an empty table with the given columns
func NewTable(columns ...Column) *Table {
	return &Table{columns: columns}
}

// AddRow appends a row. Missing cells render blank, extra cells are dropped.
func (t *Table) AddRow(cells ...Cell) {
	row := make([]Cell, len(t.columns))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Render renders the table as a string
func (t *Table) Render() string {
	if len(t.columns) == 0 {
		return ""
	}

	// Widths are measured on the raw text so styling never shifts a column
	widths := make([]int, len(t.columns))
	for i, col := range t.columns {
		widths[i] = max(lipgloss.Width(col.Header), col.MinWidth)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell.Text))
		}
	}

	var b strings.Builder

	header := make([]string, len(t.columns))
	rule := make([]string, len(t.columns))
	for i, col := range t.columns {
		header[i] = StyleTableHeader.Render(pad(col.Header, widths[i], col.Align))
		rule[i] = strings.Repeat("─", widths[i])
	}
	b.WriteString(strings.TrimRight(strings.Join(header, "  "), " "))
	b.WriteString("\n")
	b.WriteString(StyleTableBorder.Render(strings.Join(rule, "  ")))
	b.WriteString("\n")

	for _, row := range t.rows {
		parts := make([]string, len(row))
		for i, cell := range row {
			text := pad(cell.Text, widths[i], t.columns[i].Align)
			// Keep padding outside the style so underlines and backgrounds stop at the text
			trimmed := strings.TrimRight(text, " ")
			lead := len(trimmed) - len(strings.TrimLeft(trimmed, " "))
			parts[i] = trimmed[:lead] + cell.render(trimmed[lead:]) + text[len(trimmed):]
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
		b.WriteString("\n")
	}

	return b.String()
}

// pad pads s to width display cells
func pad(s string, width int, align lipgloss.Position) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}

	switch align {
	case lipgloss.Right:
		return strings.Repeat(" ", gap) + s
	case lipgloss.Center:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}

// RenderKeyValue renders a key-value pair
func RenderKeyValue(key, value string) string {
	return fmt.Sprintf("%s: %s",
		StyleAccent.Render(key),
		value,
	)
}
