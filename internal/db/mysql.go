package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// MySQLClient manages the connection to MySQL
type MySQLClient struct {
	db     *sql.DB
	schema string
}

// NewMySQLClient creates a new MySQL client. The DSN is rewritten to allow
// multi-statement scripts so a table's repair script can run in one call.
func NewMySQLClient(ctx context.Context, connString string) (*MySQLClient, error) {
	cfg, err := mysql.ParseDSN(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	cfg.MultiStatements = true

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &MySQLClient{db: db, schema: cfg.DBName}, nil
}

// Close closes the database connection
func (c *MySQLClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *MySQLClient) GetDB() *sql.DB {
	return c.db
}

// Schema returns the database named in the connection string
func (c *MySQLClient) Schema() string {
	return c.schema
}

// Execute runs a script of one or more ;-separated statements.
// Statements are not wrapped in a transaction; MySQL commits DDL implicitly.
func (c *MySQLClient) Execute(ctx context.Context, script string) error {
	if _, err := c.db.ExecContext(ctx, script); err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) {
			return fmt.Errorf("mysql error %d: %w", myErr.Number, err)
		}
		return fmt.Errorf("failed to execute script: %w", err)
	}
	return nil
}
