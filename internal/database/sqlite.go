// Package database persists the operation history in SQLite.
package database

import (
	"database/sql"
	"fmt"
	"time"

	"wsbu-go/internal/database/migrations"
	"wsbu-go/internal/wsbu"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteHistory implements wsbu.History on a local SQLite file.
type SQLiteHistory struct {
	db *sql.DB
}

var _ wsbu.History = (*SQLiteHistory)(nil)

// NewSQLiteHistory opens (or creates) the history database at path and
// migrates it to the latest schema. path may be ":memory:".
func NewSQLiteHistory(path string) (*SQLiteHistory, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps :memory: databases coherent across the
	// pool and avoids writer contention on file databases.
	db.SetMaxOpenConns(1)

	// Wait for locks instead of failing when another wsbu process is
	// finishing an operation record.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history database: %w", err)
	}

	return &SQLiteHistory{db: db}, nil
}

// CreateOperation inserts a new operation record and returns its row ID.
func (h *SQLiteHistory) CreateOperation(opID, kind, detail string, startedAt time.Time) (int64, error) {
	res, err := h.db.Exec(
		`INSERT INTO operations (op_id, kind, detail, started_at) VALUES (?, ?, ?, ?)`,
		opID, kind, detail, startedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting operation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading operation id: %w", err)
	}
	return id, nil
}

// FinishOperation marks an operation finished.
func (h *SQLiteHistory) FinishOperation(id int64, status, archive string, finishedAt time.Time) error {
	res, err := h.db.Exec(
		`UPDATE operations SET status = ?, archive = ?, finished_at = ? WHERE id = ?`,
		status, archive, finishedAt.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating operation: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("operation not found: %d", id)
	}
	return nil
}

// ListOperations returns up to limit operations, newest first.
func (h *SQLiteHistory) ListOperations(limit int) ([]*wsbu.OperationRecord, error) {
	rows, err := h.db.Query(
		`SELECT id, op_id, kind, archive, status, detail, started_at, finished_at
		 FROM operations ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying operations: %w", err)
	}
	defer rows.Close()

	var ops []*wsbu.OperationRecord
	for rows.Next() {
		var op wsbu.OperationRecord
		var finishedAt sql.NullTime
		if err := rows.Scan(&op.ID, &op.OpID, &op.Kind, &op.Archive, &op.Status, &op.Detail, &op.StartedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		if finishedAt.Valid {
			op.FinishedAt = finishedAt.Time
		}
		ops = append(ops, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading operations: %w", err)
	}
	return ops, nil
}

func (h *SQLiteHistory) Close() error {
	return h.db.Close()
}
