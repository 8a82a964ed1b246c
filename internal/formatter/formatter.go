// Package formatter renders flattened tables, hierarchical trees and
// structure summaries for the terminal, and writes tables as CSV.
package formatter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mcncl/jsontab/internal/analyzer"
	"github.com/mcncl/jsontab/internal/config"
	apperrors "github.com/mcncl/jsontab/internal/errors"
	"github.com/mcncl/jsontab/internal/models"
)

// NoData is printed in place of an empty table.
const NoData = "No data to display."

// DefaultMaxWidth is the widest a cell may be before it is truncated.
const DefaultMaxWidth = 50

var printer = message.NewPrinter(language.English)

// Formatter renders tables and trees in one table style
type Formatter struct {
	style     Style
	maxWidth  int
	showIndex bool
}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return &Formatter{style: StyleGrid, maxWidth: DefaultMaxWidth, showIndex: true}
}

// NewFormatterWithConfig creates a Formatter from the table settings
func NewFormatterWithConfig(cfg *config.Config) *Formatter {
	f := NewFormatter()
	if style, err := ParseStyle(cfg.Table.Format); err == nil {
		f.style = style
	}
	if cfg.Table.MaxWidth > 0 {
		f.maxWidth = cfg.Table.MaxWidth
	}
	f.showIndex = cfg.Table.ShowIndex
	return f
}

// WithStyle sets the table style and returns the Formatter
func (f *Formatter) WithStyle(style Style) *Formatter {
	f.style = style
	return f
}

// WithMaxWidth sets the cell width limit and returns the Formatter
func (f *Formatter) WithMaxWidth(width int) *Formatter {
	if width > 0 {
		f.maxWidth = width
	}
	return f
}

// Style returns the table style in use
func (f *Formatter) Style() Style { return f.style }

// Table writes t between banner lines, or NoData when it has no cells.
func (f *Formatter) Table(w io.Writer, t *models.Table) error {
	if t.NumRows() == 0 || t.NumColumns() == 0 {
		_, err := fmt.Fprintln(w, NoData)
		return wrapRender(err)
	}
	slog.Debug("rendering table", "rows", t.NumRows(), "columns", t.NumColumns(), "style", f.style)

	var index *string
	if f.showIndex {
		index = new(string)
	}

	banner := strings.Repeat("=", 50)
	if _, err := printer.Fprintf(w, "\nTable (%d rows, %d columns):\n%s\n", t.NumRows(), t.NumColumns(), banner); err != nil {
		return wrapRender(err)
	}
	if err := newGrid(t, index).render(w, f.style, f.maxWidth, ""); err != nil {
		return wrapRender(err)
	}
	_, err := fmt.Fprintln(w, banner)
	return wrapRender(err)
}

// ColumnType is the merged type of a column's non-null cells, or "null"
// when every cell is null.
func ColumnType(t *models.Table, col string) string {
	j, ok := t.Column(col)
	if !ok {
		return models.TypeNull
	}
	var types []string
	seen := make(map[string]bool)
	for _, row := range t.Rows {
		v := row[j]
		if v.IsNull() {
			continue
		}
		typ := analyzer.TypeOf(v)
		if !seen[typ] {
			seen[typ] = true
			types = append(types, typ)
		}
	}
	return analyzer.MergeTypes(types)
}

// Info writes the table shape, its columns and each column's type and
// non-null count.
func (f *Formatter) Info(w io.Writer, t *models.Table) error {
	var sb strings.Builder
	sb.WriteString("\nTable Info:\n")
	printer.Fprintf(&sb, "  Shape: (%d, %d)\n", t.NumRows(), t.NumColumns())
	fmt.Fprintf(&sb, "  Columns: [%s]\n", strings.Join(t.Columns, ", "))
	sb.WriteString("  Data types:\n")
	for _, col := range t.Columns {
		printer.Fprintf(&sb, "    %s: %s (%d non-null)\n", col, ColumnType(t, col), t.NonNullCount(col))
	}
	_, err := io.WriteString(w, sb.String())
	return wrapRender(err)
}

// CSV writes t with a header row. Null cells are written as empty fields.
func (f *Formatter) CSV(w io.Writer, t *models.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return apperrors.NewOutputError("failed to write CSV header", err)
	}
	for _, record := range t.Strings() {
		if err := cw.Write(record); err != nil {
			return apperrors.NewOutputError("failed to write CSV row", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperrors.NewOutputError("failed to write CSV", err)
	}
	return nil
}

func wrapRender(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.NewRenderError("failed to write output", err)
}
