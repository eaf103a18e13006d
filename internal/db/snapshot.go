package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const snapshotDDL = `
	CREATE TABLE IF NOT EXISTS catalog_columns (
		schema_name              TEXT    NOT NULL,
		table_name               TEXT    NOT NULL,
		ordinal_position         INTEGER NOT NULL,
		column_name              TEXT    NOT NULL,
		data_type                TEXT    NOT NULL,
		column_type              TEXT    NOT NULL,
		is_nullable              TEXT    NOT NULL,
		character_maximum_length INTEGER,
		column_default           TEXT,
		PRIMARY KEY (schema_name, table_name, ordinal_position)
	);
	CREATE TABLE IF NOT EXISTS snapshots (
		schema_name TEXT PRIMARY KEY,
		captured_at TEXT NOT NULL
	);
`

// SnapshotStore keeps a copy of catalog rows in a SQLite file so drift
// can be checked without access to the live database.
type SnapshotStore struct {
	client *SQLiteClient
}

// NewSnapshotStore opens the store and creates its tables if needed
func NewSnapshotStore(ctx context.Context, client *SQLiteClient) (*SnapshotStore, error) {
	if _, err := client.GetDB().ExecContext(ctx, snapshotDDL); err != nil {
		return nil, fmt.Errorf("failed to initialize snapshot store: %w", err)
	}
	return &SnapshotStore{client: client}, nil
}

// OpenSnapshotStore wraps an existing snapshot file without creating
// anything, for use on read-only connections
func OpenSnapshotStore(client *SQLiteClient) *SnapshotStore {
	return &SnapshotStore{client: client}
}

// Save replaces the stored rows of schemaName with tables.
func (s *SnapshotStore) Save(ctx context.Context, schemaName string, tables map[string][]CatalogRow, capturedAt time.Time) error {
	tx, err := s.client.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_columns WHERE schema_name = ?`, schemaName); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO catalog_columns (
			schema_name, table_name, ordinal_position, column_name, data_type,
			column_type, is_nullable, character_maximum_length, column_default
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for table, rows := range tables {
		for i, row := range rows {
			_, err := stmt.ExecContext(ctx, schemaName, table, i+1,
				row["COLUMN_NAME"], row["DATA_TYPE"], row["COLUMN_TYPE"], row["IS_NULLABLE"],
				row["CHARACTER_MAXIMUM_LENGTH"], row["COLUMN_DEFAULT"])
			if err != nil {
				return fmt.Errorf("failed to store column %v of %s: %w", row["COLUMN_NAME"], table, err)
			}
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (schema_name, captured_at) VALUES (?, ?)
		ON CONFLICT(schema_name) DO UPDATE SET captured_at = excluded.captured_at
	`, schemaName, capturedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record snapshot time: %w", err)
	}

	return tx.Commit()
}

// CapturedAt returns when schemaName was last saved
func (s *SnapshotStore) CapturedAt(ctx context.Context, schemaName string) (time.Time, error) {
	var raw string
	err := s.client.GetDB().QueryRowContext(ctx,
		`SELECT captured_at FROM snapshots WHERE schema_name = ?`, schemaName).Scan(&raw)
	if err == sql.ErrNoRows {
		return time.Time{}, fmt.Errorf("no snapshot for schema %s", schemaName)
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, raw)
}

// ListTables returns the stored tables of a schema in name order
func (s *SnapshotStore) ListTables(ctx context.Context, schemaName string) ([]string, error) {
	rows, err := s.client.GetDB().QueryContext(ctx, `
		SELECT DISTINCT table_name
		FROM catalog_columns
		WHERE schema_name = ?
		ORDER BY table_name
	`, schemaName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// FetchColumns returns the stored rows of one table in the same shape as
// MySQLCatalog.FetchColumns.
func (s *SnapshotStore) FetchColumns(ctx context.Context, schemaName, tableName string) ([]CatalogRow, error) {
	rows, err := s.client.GetDB().QueryContext(ctx, `
		SELECT column_name, data_type, column_type, is_nullable, character_maximum_length, column_default
		FROM catalog_columns
		WHERE schema_name = ? AND table_name = ?
		ORDER BY ordinal_position
	`, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot of %s: %w", tableName, err)
	}
	defer rows.Close()

	return scanCatalogRows(rows)
}

// Schemas returns the names of all stored schemas
func (s *SnapshotStore) Schemas(ctx context.Context) ([]string, error) {
	rows, err := s.client.GetDB().QueryContext(ctx, `SELECT schema_name FROM snapshots ORDER BY schema_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
