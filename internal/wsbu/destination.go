package wsbu

import (
	"io"
	"time"
)

// ArchiveInfo describes one stored backup archive.
type ArchiveInfo struct {
	Name       string
	Size       int64
	ModifiedAt time.Time
}

// Destination is a storage backend for finished backup archives.
// Archives are immutable once stored; a name is never written twice
// because it embeds the creation timestamp.
type Destination interface {
	// ValidateSetup verifies the destination is usable, creating it
	// where that makes sense (e.g. the folder of a filesystem destination).
	ValidateSetup() error

	// Store saves an archive under name, reading exactly size bytes from r.
	// It returns a human-readable location for the operation report.
	Store(name string, r io.Reader, size int64) (string, error)

	// Open returns a reader for a stored archive.
	Open(name string) (io.ReadCloser, error)

	// List returns the stored archives sorted by name. Archive names
	// embed their creation timestamp, so this order is chronological.
	List() ([]ArchiveInfo, error)
}
