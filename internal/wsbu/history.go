package wsbu

import "time"

// Operation kinds recorded in the history database.
const (
	OpBackup  = "backup"
	OpRestore = "restore"
)

// Operation statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// OperationRecord is one row of the operation history.
// A zero FinishedAt means the operation never finished cleanly
// (e.g. the process was killed mid-run).
type OperationRecord struct {
	ID         int64
	OpID       string
	Kind       string
	Archive    string
	Status     string
	Detail     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// History persists operation records across runs.
type History interface {
	// CreateOperation inserts a new record and returns its row ID.
	CreateOperation(opID, kind, detail string, startedAt time.Time) (int64, error)

	// FinishOperation marks a record finished with the given status and,
	// for backups, the stored archive name.
	FinishOperation(id int64, status, archive string, finishedAt time.Time) error

	// ListOperations returns up to limit records, newest first.
	ListOperations(limit int) ([]*OperationRecord, error)

	Close() error
}
