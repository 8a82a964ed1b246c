package formatter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/mcncl/jsontab/internal/models"
)

// Style names a table drawing style
type Style string

const (
	StyleGrid      Style = "grid"
	StylePlain     Style = "plain"
	StyleSimple    Style = "simple"
	StyleGitHub    Style = "github"
	StyleFancyGrid Style = "fancy_grid"
)

// Alignment of a column's cells
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// rule is one horizontal line of a table.
type rule struct {
	left, fill, mid, right string
}

// tableStyle describes where lines are drawn. An empty vertical means the
// style has no cell borders: columns are separated by two spaces instead.
type tableStyle struct {
	top, header, row, bottom *rule
	vertical                 string
}

var tableStyles = map[Style]tableStyle{
	StyleGrid: {
		top:      &rule{"+", "-", "+", "+"},
		header:   &rule{"+", "=", "+", "+"},
		row:      &rule{"+", "-", "+", "+"},
		bottom:   &rule{"+", "-", "+", "+"},
		vertical: "|",
	},
	StyleFancyGrid: {
		top:      &rule{"╒", "═", "╤", "╕"},
		header:   &rule{"╞", "═", "╪", "╡"},
		row:      &rule{"├", "─", "┼", "┤"},
		bottom:   &rule{"╘", "═", "╧", "╛"},
		vertical: "│",
	},
	StyleGitHub: {
		header:   &rule{"|", "-", "|", "|"},
		vertical: "|",
	},
	StyleSimple: {
		header: &rule{"", "-", "  ", ""},
	},
	StylePlain: {},
}

// ParseStyle validates a style name
func ParseStyle(s string) (Style, error) {
	if _, ok := tableStyles[Style(s)]; ok {
		return Style(s), nil
	}
	return "", fmt.Errorf("unknown table format %q", s)
}

// grid is a table already converted to display strings.
type grid struct {
	header []string
	rows   [][]string
	aligns []Alignment
}

// newGrid converts t into display cells. indexHeader, when not nil, adds a
// leading row-number column with that heading.
func newGrid(t *models.Table, indexHeader *string) grid {
	g := grid{
		header: make([]string, 0, t.NumColumns()+1),
		rows:   make([][]string, t.NumRows()),
		aligns: make([]Alignment, 0, t.NumColumns()+1),
	}
	if indexHeader != nil {
		g.header = append(g.header, *indexHeader)
		g.aligns = append(g.aligns, AlignRight)
	}
	for j, col := range t.Columns {
		g.header = append(g.header, col)
		g.aligns = append(g.aligns, columnAlignment(t, j))
	}
	for i, row := range t.Rows {
		cells := make([]string, 0, len(g.header))
		if indexHeader != nil {
			cells = append(cells, strconv.Itoa(i))
		}
		for _, v := range row {
			cells = append(cells, cellText(v))
		}
		g.rows[i] = cells
	}
	return g
}

// columnAlignment right-aligns columns holding only numbers.
func columnAlignment(t *models.Table, j int) Alignment {
	numbers := 0
	for _, row := range t.Rows {
		switch row[j].Kind {
		case models.Null:
		case models.Integer, models.Decimal:
			numbers++
		default:
			return AlignLeft
		}
	}
	if numbers == 0 {
		return AlignLeft
	}
	return AlignRight
}

// cellText is the single-line display form of a table cell. Null cells are blank.
func cellText(v models.Value) string {
	return escapeLine(v.Text())
}

func escapeLine(s string) string {
	if !strings.ContainsAny(s, "\r\n\t") {
		return s
	}
	return strings.NewReplacer("\r", `\r`, "\n", `\n`, "\t", `\t`).Replace(s)
}

// truncate shortens s to at most width display columns, marking the cut
// with "...".
func truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}

func pad(s string, width int, align Alignment) string {
	n := width - runewidth.StringWidth(s)
	if n <= 0 {
		return s
	}
	if align == AlignRight {
		return strings.Repeat(" ", n) + s
	}
	return s + strings.Repeat(" ", n)
}

// render writes g in the given style, truncating cells to maxWidth and
// prefixing every line with indent.
func (g grid) render(w io.Writer, style Style, maxWidth int, indent string) error {
	ts, ok := tableStyles[style]
	if !ok {
		ts = tableStyles[StyleGrid]
	}

	header := make([]string, len(g.header))
	for i, h := range g.header {
		header[i] = truncate(escapeLine(h), maxWidth)
	}
	rows := make([][]string, len(g.rows))
	for i, row := range g.rows {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = truncate(cell, maxWidth)
		}
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	var lines []string
	if ts.top != nil {
		lines = append(lines, ts.line(ts.top, widths))
	}
	lines = append(lines, ts.cells(header, widths, g.aligns))
	if ts.header != nil {
		lines = append(lines, ts.line(ts.header, widths))
	}
	for i, row := range rows {
		if i > 0 && ts.row != nil {
			lines = append(lines, ts.line(ts.row, widths))
		}
		lines = append(lines, ts.cells(row, widths, g.aligns))
	}
	if ts.bottom != nil {
		lines = append(lines, ts.line(ts.bottom, widths))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, indent+line); err != nil {
			return err
		}
	}
	return nil
}

func (ts tableStyle) line(r *rule, widths []int) string {
	padding := 0
	if ts.vertical != "" {
		padding = 2
	}
	var sb strings.Builder
	sb.WriteString(r.left)
	for i, width := range widths {
		sb.WriteString(strings.Repeat(r.fill, width+padding))
		if i < len(widths)-1 {
			sb.WriteString(r.mid)
		}
	}
	sb.WriteString(r.right)
	return sb.String()
}

func (ts tableStyle) cells(cells []string, widths []int, aligns []Alignment) string {
	parts := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = pad(cell, width, aligns[i])
	}
	if ts.vertical == "" {
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}
	sep := " " + ts.vertical + " "
	return ts.vertical + " " + strings.Join(parts, sep) + " " + ts.vertical
}
