package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// CatalogRow is one column of a table as read from information_schema,
// keyed by the upper-case column names of information_schema.columns.
type CatalogRow = map[string]any

// MySQLCatalog reads column metadata from information_schema
type MySQLCatalog struct {
	client *MySQLClient
	logger *slog.Logger
}

// NewMySQLCatalog creates a new catalog reader. A nil logger means slog.Default().
func NewMySQLCatalog(client *MySQLClient, logger *slog.Logger) *MySQLCatalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &MySQLCatalog{client: client, logger: logger}
}

// ListTables returns the base tables of a schema in name order
func (c *MySQLCatalog) ListTables(ctx context.Context, schemaName string) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := c.client.GetDB().QueryContext(ctx, query, schemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}

	return tables, rows.Err()
}

// FetchColumns returns the catalog rows of one table in ordinal order.
// A missing table yields no rows and no error.
func (c *MySQLCatalog) FetchColumns(ctx context.Context, schemaName, tableName string) ([]CatalogRow, error) {
	query := `
		SELECT
			c.column_name,
			c.data_type,
			c.column_type,
			c.is_nullable,
			c.character_maximum_length,
			c.column_default
		FROM information_schema.columns c
		WHERE c.table_schema = ? AND c.table_name = ?
		ORDER BY c.ordinal_position
	`

	rows, err := c.client.GetDB().QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns of %s: %w", tableName, err)
	}
	defer rows.Close()

	result, err := scanCatalogRows(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", tableName, err)
	}

	c.logger.Debug("fetched catalog columns", "schema", schemaName, "table", tableName, "columns", len(result))
	return result, nil
}

// scanCatalogRows reads rows selected as name, data type, column type,
// nullable, character length, default.
func scanCatalogRows(rows *sql.Rows) ([]CatalogRow, error) {
	var result []CatalogRow
	for rows.Next() {
		var (
			name, dataType, columnType, nullable string
			length                               sql.NullInt64
			defaultVal                           sql.NullString
		)
		if err := rows.Scan(&name, &dataType, &columnType, &nullable, &length, &defaultVal); err != nil {
			return nil, err
		}

		row := CatalogRow{
			"COLUMN_NAME":              name,
			"DATA_TYPE":                dataType,
			"COLUMN_TYPE":              columnType,
			"IS_NULLABLE":              nullable,
			"CHARACTER_MAXIMUM_LENGTH": nil,
			"COLUMN_DEFAULT":           nil,
		}
		if length.Valid {
			row["CHARACTER_MAXIMUM_LENGTH"] = length.Int64
		}
		if defaultVal.Valid {
			row["COLUMN_DEFAULT"] = defaultVal.String
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
