package db

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func openTestDB(t *testing.T) *Queries {
	t.Helper()
	ctx := context.Background()

	database, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "test.db"), time.Second)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if _, err := MigrateUp(ctx, database); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	q, err := LoadQueries(database)
	if err != nil {
		t.Fatalf("LoadQueries() error = %v", err)
	}
	return q
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		url        string
		wantDriver string
		wantSource string
		wantErr    bool
	}{
		{"sqlite://data.db", DriverSQLite, "data.db?_foreign_keys=on", false},
		{"sqlite:///var/lib/ha/data.db", DriverSQLite, "/var/lib/ha/data.db?_foreign_keys=on", false},
		{"postgres://u@localhost:5432/ha?sslmode=disable", DriverPostgres, "postgres://u@localhost:5432/ha?sslmode=disable", false},
		{"postgresql://u@localhost/ha", DriverPostgres, "postgresql://u@localhost/ha", false},
		{"mysql://localhost/ha", "", "", true},
		{"sqlite://", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			driver, source, err := ParseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if driver != tt.wantDriver || source != tt.wantSource {
				t.Errorf("ParseURL() = (%q, %q), want (%q, %q)", driver, source, tt.wantDriver, tt.wantSource)
			}
		})
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	ctx := context.Background()
	database, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "test.db"), time.Second)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer database.Close()

	applied, err := MigrateUp(ctx, database)
	if err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	if diff := cmp.Diff([]string{"001_initial_schema.sql"}, applied); diff != "" {
		t.Errorf("MigrateUp() applied mismatch (-want +got):\n%s", diff)
	}

	applied, err = MigrateUp(ctx, database)
	if err != nil {
		t.Fatalf("second MigrateUp() error = %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("second MigrateUp() applied = %v, want none", applied)
	}

	statuses, err := MigrateStatus(ctx, database)
	if err != nil {
		t.Fatalf("MigrateStatus() error = %v", err)
	}
	if len(statuses) != 1 {
		t.Fatalf("len(statuses) = %v, want 1", len(statuses))
	}
	if !statuses[0].Applied || statuses[0].AppliedAt == nil {
		t.Errorf("status = %+v, want applied with timestamp", statuses[0])
	}
}

func TestMigrateUp_ChecksumMismatch(t *testing.T) {
	ctx := context.Background()
	database, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "test.db"), time.Second)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer database.Close()

	if _, err := MigrateUp(ctx, database); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	if _, err := database.ExecContext(ctx, "UPDATE migrations SET checksum = 'tampered'"); err != nil {
		t.Fatal(err)
	}

	_, err = MigrateUp(ctx, database)
	if err == nil || !strings.Contains(err.Error(), "checksum mismatch") {
		t.Errorf("MigrateUp() error = %v, want checksum mismatch", err)
	}
}

func TestSplitStatements(t *testing.T) {
	sqlText := `-- header comment
CREATE TABLE a (x TEXT);
  -- indented comment
CREATE TABLE b (y TEXT);

`
	got := splitStatements(sqlText)
	want := []string{"CREATE TABLE a (x TEXT)", "CREATE TABLE b (y TEXT)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("splitStatements() mismatch (-want +got):\n%s", diff)
	}
}

func TestQueries_InTxRollback(t *testing.T) {
	ctx := context.Background()
	q := openTestDB(t)

	err := q.InTx(ctx, func(tx *Queries) error {
		if _, err := tx.Exec(ctx, "insert-run", "run-1", "rolled back", tx.Timestamp(time.Now())); err != nil {
			return err
		}
		return context.Canceled
	})
	if err != context.Canceled {
		t.Fatalf("InTx() error = %v, want context.Canceled", err)
	}

	var run struct {
		ID   string `db:"run_id"`
		Name string `db:"run_name"`
	}
	if err := q.Get(ctx, "get-run", &run, "run-1"); err == nil {
		t.Error("run inserted inside rolled back transaction is visible")
	}
}

func TestQueries_UnknownName(t *testing.T) {
	q := openTestDB(t)

	if _, err := q.Exec(context.Background(), "no-such-query"); err == nil {
		t.Error("Exec() with unknown query name succeeded")
	}
}

func TestQueries_Timestamp(t *testing.T) {
	q := openTestDB(t)
	ts := time.Date(2026, 2, 14, 9, 30, 0, 0, time.FixedZone("X", 3600))

	if got := q.Timestamp(ts); got != "2026-02-14T08:30:00Z" {
		t.Errorf("Timestamp() = %v, want 2026-02-14T08:30:00Z", got)
	}
}
