package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/schemadrift/internal/reconcile"
	"github.com/tordrt/schemadrift/internal/schema"
)

// MarkdownFormatter formats table specs and drift reports as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the expected tables in markdown format
func (f *MarkdownFormatter) Format(tables []schema.TableSpec) error {
	_, _ = fmt.Fprintln(f.writer, "# Expected Schema")
	_, _ = fmt.Fprintln(f.writer)

	for _, table := range tables {
		f.FormatTable(table)
	}
	return nil
}

// FormatTable formats a single table (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatTable(table schema.TableSpec) {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", table.Name)
	if table.Entity != "" {
		_, _ = fmt.Fprintf(f.writer, "Entity: `%s`\n\n", table.Entity)
	}

	_, _ = fmt.Fprintln(f.writer, "### Columns")
	_, _ = fmt.Fprintln(f.writer)
	for _, col := range table.Columns {
		constraintStr := formatConstraints(col)
		if constraintStr != "" {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s, %s\n", col.Name, col.ColumnType(), constraintStr)
		} else {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", col.Name, col.ColumnType())
		}
	}
	_, _ = fmt.Fprintln(f.writer)

	if len(table.Indexes) > 0 || len(table.SpatialIndexes) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Idx")
		_, _ = fmt.Fprintln(f.writer)
		for _, idx := range table.Indexes {
			if idx.Unique {
				_, _ = fmt.Fprintf(f.writer, "- %s on (%s), unique\n", idx.Name, idx.Columns)
			} else {
				_, _ = fmt.Fprintf(f.writer, "- %s on (%s)\n", idx.Name, idx.Columns)
			}
		}
		for _, idx := range table.SpatialIndexes {
			_, _ = fmt.Fprintf(f.writer, "- %s on (%s), spatial\n", idx.Name, idx.Columns)
		}
		_, _ = fmt.Fprintln(f.writer)
	}
}

// FormatReport writes the findings of a drift check. Clean tables are
// listed without detail.
func (f *MarkdownFormatter) FormatReport(r *reconcile.Report) error {
	_, _ = fmt.Fprintf(f.writer, "# Drift Report: %s\n\n", r.Schema)

	if !r.DriftDetected() {
		_, _ = fmt.Fprintf(f.writer, "No drift detected in %d tables.\n", len(r.Tables))
		return nil
	}

	for _, t := range r.Tables {
		_, _ = fmt.Fprintf(f.writer, "## %s (%s)\n\n", t.Table, t.State)
		for _, finding := range t.Findings {
			title := finding.Table
			if finding.Column != "" {
				title = finding.Table + "." + finding.Column
			}
			_, _ = fmt.Fprintf(f.writer, "### %s: %s\n\n", title, findingStatus(finding))
			_, _ = fmt.Fprintf(f.writer, "%s\n\n", finding.Message)
			if len(finding.Warnings) > 0 {
				_, _ = fmt.Fprintln(f.writer, "Warnings:")
				_, _ = fmt.Fprintln(f.writer)
				for _, w := range finding.Warnings {
					_, _ = fmt.Fprintf(f.writer, "- %s\n", strings.TrimPrefix(w, "* "))
				}
				_, _ = fmt.Fprintln(f.writer)
			}
			_, _ = fmt.Fprintf(f.writer, "```sql\n%s```\n\n", finding.Statement)
		}
		if t.Err != nil {
			_, _ = fmt.Fprintf(f.writer, "**Error:** %v\n\n", t.Err)
		}
	}
	return nil
}

func findingStatus(f reconcile.Finding) string {
	switch {
	case f.Applied:
		return "applied"
	case !f.AutoFixable:
		return "needs review"
	default:
		return "recommended"
	}
}

func formatConstraints(col schema.ColumnSpec) string {
	var constraints []string

	if col.PrimaryKey {
		constraints = append(constraints, "PK")
	}

	if col.AutoIncrement {
		constraints = append(constraints, "AUTO_INCREMENT")
	}

	if !col.Nullable {
		constraints = append(constraints, "NOT NULL")
	}

	if col.DefaultValue != nil {
		constraints = append(constraints, fmt.Sprintf("DEFAULT %s", *col.DefaultValue))
	}

	if col.SRID != 0 {
		constraints = append(constraints, fmt.Sprintf("SRID %d", col.SRID))
	}

	return strings.Join(constraints, ", ")
}
