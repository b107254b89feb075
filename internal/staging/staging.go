// Package staging manages the ephemeral directories operations assemble
// or unpack backups in.
package staging

import (
	"fmt"
	"os"

	"wsbu-go/internal/wsbu"
)

// Manager creates staging directories under a base directory using
// unique temp-dir names, so two operations can never collide and a
// released directory is gone for good.
type Manager struct {
	baseDir string
}

var _ wsbu.Staging = (*Manager)(nil)

// NewManager creates a staging manager. baseDir may be empty, in which
// case the system temp directory is used.
func NewManager(baseDir string) *Manager {
	return &Manager{baseDir: baseDir}
}

// Acquire creates a fresh, empty staging directory.
func (m *Manager) Acquire() (*wsbu.StagingDir, error) {
	if m.baseDir != "" {
		if err := os.MkdirAll(m.baseDir, 0755); err != nil {
			return nil, fmt.Errorf("creating staging base directory: %w", err)
		}
	}

	dir, err := os.MkdirTemp(m.baseDir, "wsbu-staging-*")
	if err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}

	return wsbu.NewStagingDir(dir, func() error {
		return os.RemoveAll(dir)
	}), nil
}
