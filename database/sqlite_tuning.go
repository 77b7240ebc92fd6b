package database

import (
	"aerograph/config"
	"fmt"
	"net/url"
	"strings"
)

type sqlitePoolConfig struct {
	maxOpenConns int
	maxIdleConns int
	maxIdleSec   int
	maxLifeSec   int
}

// poolConfigFrom reads pool limits from cfg and clamps them:
// at least one open connection, idle connections within [0, open], no negative durations.
func poolConfigFrom(cfg *config.Config) sqlitePoolConfig {
	pool := sqlitePoolConfig{
		maxOpenConns: max(cfg.SQLiteMaxOpenConns, 1),
		maxIdleConns: max(cfg.SQLiteMaxIdleConns, 0),
		maxIdleSec:   max(cfg.SQLiteConnMaxIdleSec, 0),
		maxLifeSec:   max(cfg.SQLiteConnMaxLifeSec, 0),
	}
	pool.maxIdleConns = min(pool.maxIdleConns, pool.maxOpenConns)
	return pool
}

type sqlitePragma struct {
	name  string
	value string
}

// pragmasFor lists the pragmas enabled by cfg, skipping invalid values
func pragmasFor(cfg *config.Config) []sqlitePragma {
	if !cfg.SQLitePragmasEnabled {
		return nil
	}

	var pragmas []sqlitePragma
	if cfg.SQLiteBusyTimeoutMS > 0 {
		pragmas = append(pragmas, sqlitePragma{"busy_timeout", fmt.Sprint(cfg.SQLiteBusyTimeoutMS)})
	}
	if mode := normalizeSQLiteJournalMode(cfg.SQLiteJournalMode); mode != "" {
		pragmas = append(pragmas, sqlitePragma{"journal_mode", mode})
	}
	if sync := normalizeSQLiteSynchronous(cfg.SQLiteSynchronous); sync != "" {
		pragmas = append(pragmas, sqlitePragma{"synchronous", sync})
	}
	if cfg.SQLiteForeignKeys {
		pragmas = append(pragmas, sqlitePragma{"foreign_keys", "1"})
	} else {
		pragmas = append(pragmas, sqlitePragma{"foreign_keys", "0"})
	}
	return pragmas
}

// buildSQLiteDSN appends enabled pragmas as _pragma query params, keeping any existing query
func buildSQLiteDSN(dbPath string, cfg *config.Config) string {
	base, rawQuery, _ := strings.Cut(dbPath, "?")
	query, _ := url.ParseQuery(rawQuery)

	for _, p := range pragmasFor(cfg) {
		query.Add("_pragma", fmt.Sprintf("%s(%s)", p.name, p.value))
	}

	if len(query) == 0 {
		return base
	}
	return base + "?" + query.Encode()
}

// pragmaStatements renders enabled pragmas as PRAGMA statements
func pragmaStatements(cfg *config.Config) []string {
	pragmas := pragmasFor(cfg)
	stmts := make([]string, 0, len(pragmas))
	for _, p := range pragmas {
		stmts = append(stmts, fmt.Sprintf("PRAGMA %s = %s", p.name, p.value))
	}
	return stmts
}

// normalizeSQLiteJournalMode returns the uppercase journal mode, or "" if it is not one SQLite accepts
func normalizeSQLiteJournalMode(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	switch value {
	case "WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY", "OFF":
		return value
	default:
		return ""
	}
}

// normalizeSQLiteSynchronous returns the uppercase synchronous level, or "" if invalid
func normalizeSQLiteSynchronous(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	switch value {
	case "OFF", "NORMAL", "FULL", "EXTRA", "0", "1", "2", "3":
		return value
	default:
		return ""
	}
}
