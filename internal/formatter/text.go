package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/schemadrift/internal/reconcile"
	"github.com/tordrt/schemadrift/internal/schema"
)

// TextFormatter formats table specs and drift reports as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the expected tables in compact text format
func (f *TextFormatter) Format(tables []schema.TableSpec) error {
	for i, table := range tables {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}
		f.formatTable(table)
	}
	return nil
}

func (f *TextFormatter) formatTable(table schema.TableSpec) {
	pkStr := ""
	if pk, ok := table.PrimaryKey(); ok {
		pkStr = fmt.Sprintf(" (PK: %s)", pk.Name)
	}
	_, _ = fmt.Fprintf(f.writer, "TABLE %s%s\n", table.Name, pkStr)

	for _, col := range table.Columns {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", formatColumn(col))
	}

	if len(table.Indexes) > 0 || len(table.SpatialIndexes) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  INDEXES:")
		for _, idx := range table.Indexes {
			unique := ""
			if idx.Unique {
				unique = " UNIQUE"
			}
			_, _ = fmt.Fprintf(f.writer, "    %s (%s)%s\n", idx.Name, idx.Columns, unique)
		}
		for _, idx := range table.SpatialIndexes {
			_, _ = fmt.Fprintf(f.writer, "    %s (%s) SPATIAL\n", idx.Name, idx.Columns)
		}
	}
}

func formatColumn(col schema.ColumnSpec) string {
	parts := []string{col.Name + ":", col.ColumnType()}

	if col.AutoIncrement {
		parts = append(parts, "AUTO_INCREMENT")
	}

	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}

	if col.DefaultValue != nil {
		parts = append(parts, fmt.Sprintf("DEFAULT %s", *col.DefaultValue))
	}

	return strings.Join(parts, " ")
}

// FormatReport writes one line per finding followed by its statement.
func (f *TextFormatter) FormatReport(r *reconcile.Report) error {
	findings := r.Findings()
	_, _ = fmt.Fprintf(f.writer, "SCHEMA %s: %d tables checked, %d findings\n", r.Schema, len(r.Tables), len(findings))

	for _, finding := range findings {
		target := finding.Table
		if finding.Column != "" {
			target += "." + finding.Column
		}
		_, _ = fmt.Fprintf(f.writer, "\n%s %s [%s]\n", strings.ToUpper(string(finding.Kind)), target, findingStatus(finding))
		for _, w := range finding.Warnings {
			_, _ = fmt.Fprintf(f.writer, "  %s\n", w)
		}
		for _, line := range strings.Split(strings.TrimRight(finding.Statement, "\n"), "\n") {
			_, _ = fmt.Fprintf(f.writer, "  %s\n", line)
		}
	}

	for _, t := range r.Tables {
		if t.Err != nil {
			_, _ = fmt.Fprintf(f.writer, "\nERROR %s: %v\n", t.Table, t.Err)
		}
	}
	return nil
}
