package formatter

import (
	"fmt"
	"io"

	"github.com/tordrt/schemadrift/internal/schema"
)

// TableRenderer renders the DDL that creates one table
type TableRenderer interface {
	CreateTable(t schema.TableSpec) (string, error)
}

// SQLFormatter writes the DDL of all tables into one script
type SQLFormatter struct {
	writer   io.Writer
	renderer TableRenderer
}

// NewSQLFormatter creates a new SQL formatter
func NewSQLFormatter(w io.Writer, renderer TableRenderer) *SQLFormatter {
	return &SQLFormatter{writer: w, renderer: renderer}
}

// Format writes one create script per table, separated by blank lines
func (f *SQLFormatter) Format(tables []schema.TableSpec) error {
	for i, table := range tables {
		ddl, err := f.renderer.CreateTable(table)
		if err != nil {
			return fmt.Errorf("failed to render table %s: %w", table.Name, err)
		}
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer)
		}
		if _, err := io.WriteString(f.writer, ddl); err != nil {
			return err
		}
	}
	return nil
}
