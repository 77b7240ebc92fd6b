package database

import (
	"aerograph/config"
	"strings"
	"testing"
)

func TestBuildSQLiteDSN_PragmaParams(t *testing.T) {
	cfg := &config.Config{
		SQLitePragmasEnabled: true,
		SQLiteBusyTimeoutMS:  5000,
		SQLiteJournalMode:    "wal",
		SQLiteSynchronous:    "NORMAL",
		SQLiteForeignKeys:    true,
	}

	dsn := buildSQLiteDSN("aerograph.db", cfg)
	for _, want := range []string{
		"_pragma=busy_timeout%285000%29",
		"_pragma=journal_mode%28WAL%29",
		"_pragma=synchronous%28NORMAL%29",
		"_pragma=foreign_keys%281%29",
	} {
		if !strings.Contains(dsn, want) {
			t.Fatalf("expected DSN to contain %q, got %q", want, dsn)
		}
	}
}

func TestBuildSQLiteDSN_PreservesExistingQuery(t *testing.T) {
	cfg := &config.Config{SQLitePragmasEnabled: true}
	dsn := buildSQLiteDSN("aerograph.db?cache=shared", cfg)
	if !strings.Contains(dsn, "cache=shared") {
		t.Fatalf("expected existing query to be preserved, got %q", dsn)
	}
	if !strings.Contains(dsn, "_pragma=foreign_keys%280%29") {
		t.Fatalf("expected foreign_keys off pragma, got %q", dsn)
	}
}

func TestBuildSQLiteDSN_PragmasDisabled(t *testing.T) {
	dsn := buildSQLiteDSN("aerograph.db", &config.Config{SQLiteJournalMode: "WAL"})
	if dsn != "aerograph.db" {
		t.Fatalf("expected bare path, got %q", dsn)
	}
}

func TestPragmaStatements_SkipInvalidValues(t *testing.T) {
	cfg := &config.Config{
		SQLitePragmasEnabled: true,
		SQLiteJournalMode:    "sideways",
		SQLiteSynchronous:    "2",
	}
	got := strings.Join(pragmaStatements(cfg), ";")
	if strings.Contains(got, "journal_mode") {
		t.Fatalf("invalid journal mode should be skipped, got %q", got)
	}
	if !strings.Contains(got, "PRAGMA synchronous = 2") {
		t.Fatalf("expected synchronous pragma, got %q", got)
	}
}

func TestPoolConfigFrom_Clamps(t *testing.T) {
	pool := poolConfigFrom(&config.Config{
		SQLiteMaxOpenConns:   0,
		SQLiteMaxIdleConns:   5,
		SQLiteConnMaxIdleSec: -1,
		SQLiteConnMaxLifeSec: -30,
	})
	if pool.maxOpenConns != 1 || pool.maxIdleConns != 1 || pool.maxIdleSec != 0 || pool.maxLifeSec != 0 {
		t.Fatalf("unexpected pool config: %+v", pool)
	}
}
