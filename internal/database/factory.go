package database

import (
	"fmt"
	"os"
	"path/filepath"

	"wsbu-go/internal/config"
	"wsbu-go/internal/wsbu"
)

// NewHistoryFromConfig creates a History implementation based on the
// database config type.
func NewHistoryFromConfig(cfg config.DatabaseConfig) (wsbu.History, error) {
	switch cfg.Type {
	case "sqlite", "":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return NewSQLiteHistory(filepath.Join(cfg.DataDir, "history.db"))
	case "memory":
		return NewSQLiteHistory(":memory:")
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
