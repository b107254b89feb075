package database_test

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"wsbu-go/internal/config"
	"wsbu-go/internal/database"
	"wsbu-go/internal/wsbu"
)

func newHistory(t *testing.T) *database.SQLiteHistory {
	t.Helper()
	h, err := database.NewSQLiteHistory(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteHistory() error = %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestSQLiteHistory_CreateAndFinish(t *testing.T) {
	h := newHistory(t)

	started := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	id, err := h.CreateOperation("20240115T103000Z-backup", wsbu.OpBackup, "windhawk root: C:\\ProgramData\\Windhawk", started)
	if err != nil {
		t.Fatalf("CreateOperation() error = %v", err)
	}

	finished := started.Add(3 * time.Second)
	if err := h.FinishOperation(id, wsbu.StatusSuccess, "windhawk-backup_20240115_103000.zip", finished); err != nil {
		t.Fatalf("FinishOperation() error = %v", err)
	}

	ops, err := h.ListOperations(10)
	if err != nil {
		t.Fatalf("ListOperations() error = %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("operations = %d, want 1", len(ops))
	}

	op := ops[0]
	if op.OpID != "20240115T103000Z-backup" {
		t.Errorf("OpID = %q", op.OpID)
	}
	if op.Kind != wsbu.OpBackup {
		t.Errorf("Kind = %q, want %q", op.Kind, wsbu.OpBackup)
	}
	if op.Status != wsbu.StatusSuccess {
		t.Errorf("Status = %q, want %q", op.Status, wsbu.StatusSuccess)
	}
	if op.Archive != "windhawk-backup_20240115_103000.zip" {
		t.Errorf("Archive = %q", op.Archive)
	}
	if !op.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", op.StartedAt, started)
	}
	if !op.FinishedAt.Equal(finished) {
		t.Errorf("FinishedAt = %v, want %v", op.FinishedAt, finished)
	}
}

func TestSQLiteHistory_UnfinishedOperation(t *testing.T) {
	h := newHistory(t)

	_, err := h.CreateOperation("op-1", wsbu.OpRestore, "", time.Now())
	if err != nil {
		t.Fatalf("CreateOperation() error = %v", err)
	}

	ops, err := h.ListOperations(10)
	if err != nil {
		t.Fatalf("ListOperations() error = %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("operations = %d, want 1", len(ops))
	}
	if !ops[0].FinishedAt.IsZero() {
		t.Errorf("FinishedAt = %v, want zero for an unfinished operation", ops[0].FinishedAt)
	}
	if ops[0].Status != "" {
		t.Errorf("Status = %q, want empty", ops[0].Status)
	}
}

func TestSQLiteHistory_FinishUnknownOperation(t *testing.T) {
	h := newHistory(t)

	if err := h.FinishOperation(999, wsbu.StatusError, "", time.Now()); err == nil {
		t.Error("FinishOperation() expected error for unknown id")
	}
}

func TestSQLiteHistory_ListOrderAndLimit(t *testing.T) {
	h := newHistory(t)

	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		opID := fmt.Sprintf("op-%d", i)
		if _, err := h.CreateOperation(opID, wsbu.OpBackup, "", base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("CreateOperation() error = %v", err)
		}
	}

	ops, err := h.ListOperations(3)
	if err != nil {
		t.Fatalf("ListOperations() error = %v", err)
	}
	if len(ops) != 3 {
		t.Fatalf("operations = %d, want 3", len(ops))
	}
	for i := 1; i < len(ops); i++ {
		if ops[i-1].ID <= ops[i].ID {
			t.Errorf("operations not newest first: %d then %d", ops[i-1].ID, ops[i].ID)
		}
	}
}

func TestSQLiteHistory_DuplicateOpID(t *testing.T) {
	h := newHistory(t)

	if _, err := h.CreateOperation("dup", wsbu.OpBackup, "", time.Now()); err != nil {
		t.Fatalf("CreateOperation() error = %v", err)
	}
	if _, err := h.CreateOperation("dup", wsbu.OpBackup, "", time.Now()); err == nil {
		t.Error("CreateOperation() expected error for duplicate op_id")
	}
}

func TestSQLiteHistory_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	h, err := database.NewSQLiteHistory(path)
	if err != nil {
		t.Fatalf("NewSQLiteHistory() error = %v", err)
	}
	if _, err := h.CreateOperation("op-1", wsbu.OpBackup, "", time.Now()); err != nil {
		t.Fatalf("CreateOperation() error = %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := database.NewSQLiteHistory(path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer reopened.Close()

	ops, err := reopened.ListOperations(10)
	if err != nil {
		t.Fatalf("ListOperations() error = %v", err)
	}
	if len(ops) != 1 || ops[0].OpID != "op-1" {
		t.Errorf("operations after reopen = %v", ops)
	}
}

func TestNewHistoryFromConfig(t *testing.T) {
	t.Run("sqlite creates the data directory", func(t *testing.T) {
		dataDir := filepath.Join(t.TempDir(), "data")
		h, err := database.NewHistoryFromConfig(config.DatabaseConfig{Type: "sqlite", DataDir: dataDir})
		if err != nil {
			t.Fatalf("NewHistoryFromConfig() error = %v", err)
		}
		defer h.Close()

		if _, err := h.CreateOperation("op-1", wsbu.OpBackup, "", time.Now()); err != nil {
			t.Errorf("CreateOperation() error = %v", err)
		}
	})

	t.Run("sqlite without data_dir fails", func(t *testing.T) {
		_, err := database.NewHistoryFromConfig(config.DatabaseConfig{Type: "sqlite"})
		if err == nil {
			t.Error("expected error for missing data_dir")
		}
	})

	t.Run("memory", func(t *testing.T) {
		h, err := database.NewHistoryFromConfig(config.DatabaseConfig{Type: "memory"})
		if err != nil {
			t.Fatalf("NewHistoryFromConfig() error = %v", err)
		}
		defer h.Close()
	})

	t.Run("unknown type fails", func(t *testing.T) {
		_, err := database.NewHistoryFromConfig(config.DatabaseConfig{Type: "postgres"})
		if err == nil {
			t.Error("expected error for unknown type")
		}
	})
}
