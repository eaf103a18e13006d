//go:build integration
// +build integration

package db

import (
	"context"
	"os"
	"testing"
)

func mysqlTestURL() string {
	// Use environment variable if set, otherwise use default test connection string
	if connString := os.Getenv("MYSQL_TEST_URL"); connString != "" {
		return connString
	}
	return "root:testpassword@tcp(localhost:3306)/testdb"
}

func TestMySQLCatalog(t *testing.T) {
	ctx := context.Background()

	client, err := NewMySQLClient(ctx, mysqlTestURL())
	if err != nil {
		t.Fatalf("Failed to connect to MySQL: %v", err)
	}
	defer client.Close()

	script := "drop table if exists `drift_probe`;\n" +
		"create table `drift_probe` (`id` bigint(20) not null auto_increment, `code` char(2) null default 'xx', primary key (`id`));\n"
	if err := client.Execute(ctx, script); err != nil {
		t.Fatalf("Failed to execute multi-statement script: %v", err)
	}
	t.Cleanup(func() { _ = client.Execute(context.Background(), "drop table if exists `drift_probe`;") })

	catalog := NewMySQLCatalog(client, nil)

	tables, err := catalog.ListTables(ctx, client.Schema())
	if err != nil {
		t.Fatalf("ListTables() error = %v", err)
	}
	found := false
	for _, name := range tables {
		if name == "drift_probe" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Expected drift_probe among %v", tables)
	}

	rows, err := catalog.FetchColumns(ctx, client.Schema(), "drift_probe")
	if err != nil {
		t.Fatalf("FetchColumns() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 columns, got %d", len(rows))
	}

	code := rows[1]
	if code["COLUMN_NAME"] != "code" || code["DATA_TYPE"] != "char" || code["IS_NULLABLE"] != "YES" {
		t.Errorf("Unexpected code column %+v", code)
	}
	if code["CHARACTER_MAXIMUM_LENGTH"] != int64(2) || code["COLUMN_DEFAULT"] != "xx" {
		t.Errorf("Unexpected code length/default %+v", code)
	}

	missing, err := catalog.FetchColumns(ctx, client.Schema(), "drift_probe_missing")
	if err != nil || len(missing) != 0 {
		t.Errorf("Expected no rows for a missing table, got %v (err=%v)", missing, err)
	}
}

func TestMySQLExecuteError(t *testing.T) {
	ctx := context.Background()

	client, err := NewMySQLClient(ctx, mysqlTestURL())
	if err != nil {
		t.Fatalf("Failed to connect to MySQL: %v", err)
	}
	defer client.Close()

	if err := client.Execute(ctx, "alter table `drift_no_such_table` add column `x` int;"); err == nil {
		t.Error("Expected error altering a missing table")
	}
}
