package formatter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tordrt/schemadrift/internal/schema"
)

const overviewFile = "_overview.md"

// MultiFileFormatter writes one <table>.sql file per table plus an
// overview into a directory
type MultiFileFormatter struct {
	OutputDir string
	renderer  TableRenderer
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir string, renderer TableRenderer) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir: outputDir,
		renderer:  renderer,
	}
}

// Format writes the tables to multiple files
func (f *MultiFileFormatter) Format(tables []schema.TableSpec) error {
	// Create output directory if it doesn't exist
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(tables); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, table := range tables {
		if err := f.writeTableFile(table); err != nil {
			return fmt.Errorf("failed to write table file for %s: %w", table.Name, err)
		}
	}

	return nil
}

func (f *MultiFileFormatter) writeOverview(tables []schema.TableSpec) error {
	file, err := os.Create(filepath.Join(f.OutputDir, overviewFile))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	_, _ = fmt.Fprintf(file, "# Schema Overview\n\n")
	_, _ = fmt.Fprintf(file, "Each table has a corresponding file: `<table_name>.sql`\n\n")
	_, _ = fmt.Fprintf(file, "## Tables\n\n")

	// Sort tables alphabetically
	sorted := make([]schema.TableSpec, len(tables))
	copy(sorted, tables)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	for _, table := range sorted {
		_, _ = fmt.Fprintf(file, "- **%s**", table.Name)
		if table.Entity != "" {
			_, _ = fmt.Fprintf(file, " (entity: %s)", table.Entity)
		}
		_, _ = fmt.Fprintf(file, "\n")
	}
	_, _ = fmt.Fprintln(file)

	md := NewMarkdownFormatter(file)
	for _, table := range sorted {
		md.FormatTable(table)
	}

	return file.Close()
}

func (f *MultiFileFormatter) writeTableFile(table schema.TableSpec) error {
	ddl, err := f.renderer.CreateTable(table)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(f.OutputDir, table.Name+".sql"), []byte(ddl), 0644)
}
