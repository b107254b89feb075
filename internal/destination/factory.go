// Package destination provides storage backends for backup archives.
package destination

import (
	"fmt"

	"wsbu-go/internal/config"
	"wsbu-go/internal/wsbu"
)

// NewDestinationFromConfig creates a Destination based on the config type.
func NewDestinationFromConfig(cfg config.DestinationConfig) (wsbu.Destination, error) {
	switch cfg.Type {
	case "filesystem", "":
		if cfg.Folder == "" {
			return nil, fmt.Errorf("filesystem destination requires folder to be set")
		}
		return NewFileSystemDestination(cfg.Folder), nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 destination requires s3_bucket to be set")
		}
		return NewS3Destination(cfg)
	case "memory":
		return NewMemoryDestination(), nil
	default:
		return nil, fmt.Errorf("unknown destination type: %s", cfg.Type)
	}
}
