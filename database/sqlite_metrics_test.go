package database

import (
	"context"
	"errors"
	"testing"
)

func TestClassifySQLiteError_Busy(t *testing.T) {
	busy, locked := classifySQLiteError(errors.New("SQLITE_BUSY: database is locked"))
	if !busy || locked {
		t.Fatalf("expected busy=true locked=false, got busy=%v locked=%v", busy, locked)
	}
}

func TestClassifySQLiteError_Locked(t *testing.T) {
	busy, locked := classifySQLiteError(errors.New("SQLITE_LOCKED: database table is locked"))
	if busy || !locked {
		t.Fatalf("expected busy=false locked=true, got busy=%v locked=%v", busy, locked)
	}
}

func TestClassifySQLiteError_IgnoresCancellation(t *testing.T) {
	busy, locked := classifySQLiteError(context.Canceled)
	if busy || locked {
		t.Fatalf("cancellation should not count as busy or locked")
	}
}

func TestRecordSQLiteError_Counts(t *testing.T) {
	before := SQLiteBusyErrorsTotal()
	recordSQLiteError(errors.New("database is locked"))
	if got := SQLiteBusyErrorsTotal(); got != before+1 {
		t.Fatalf("expected busy total %d, got %d", before+1, got)
	}
}

func TestPing_NilDB(t *testing.T) {
	if err := Ping(context.Background(), nil); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}
