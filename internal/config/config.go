// Package config reads and writes the TOML configuration file.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultRegistryKey is the fully qualified registry key holding the
// Windhawk service settings.
const DefaultRegistryKey = `HKLM\SOFTWARE\Windhawk`

// Config is the main configuration for wsbu.
type Config struct {
	// WindhawkRoot is the installation root containing ModsSource and
	// Engine/Mods. It is externally owned; wsbu only reads and merges
	// into it.
	WindhawkRoot string `toml:"windhawk_root"`

	// RegistryKey is the fully qualified key exported into backups.
	RegistryKey string `toml:"registry_key"`

	LogDir string `toml:"log_dir"`

	// StagingDir is the base for per-operation staging directories.
	// Empty means the system temp directory.
	StagingDir string `toml:"staging_dir,omitempty"`

	Destination DestinationConfig `toml:"destination"`
	Database    DatabaseConfig    `toml:"database"`
	Encryption  EncryptionConfig  `toml:"encryption"`
}

// DestinationConfig selects and configures the archive storage backend.
// This uses a tagged union pattern - the Type field determines which
// other fields are relevant.
type DestinationConfig struct {
	Type string `toml:"type"` // "filesystem", "s3", or "memory"

	// Filesystem-specific fields (only used when Type == "filesystem")
	Folder string `toml:"folder,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket    string `toml:"s3_bucket,omitempty"`
	S3Prefix    string `toml:"s3_prefix,omitempty"`
	S3Region    string `toml:"s3_region,omitempty"`
	S3AccessKey string `toml:"s3_access_key,omitempty"`
	S3SecretKey string `toml:"s3_secret_key,omitempty"`
}

// DatabaseConfig configures the operation-history database.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// EncryptionConfig configures optional archive encryption.
type EncryptionConfig struct {
	Type          string `toml:"type"` // "none" (default), "age", or "test"
	RecipientPath string `toml:"recipient_path,omitempty"`
	IdentityPath  string `toml:"identity_path,omitempty"`
}

// NewConfig creates a Config with the provided paths and default values
// for everything else.
func NewConfig(windhawkRoot, backupFolder, baseDir string) *Config {
	return &Config{
		WindhawkRoot: windhawkRoot,
		RegistryKey:  DefaultRegistryKey,
		LogDir:       filepath.Join(baseDir, "log"),
		Destination: DestinationConfig{
			Type:   "filesystem",
			Folder: backupFolder,
		},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "data"),
		},
		Encryption: EncryptionConfig{
			Type:          "none",
			RecipientPath: filepath.Join(baseDir, "keys", "wsbu.pub"),
			IdentityPath:  filepath.Join(baseDir, "keys", "wsbu.key"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path, creating the
// parent directory if needed.
func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path.
// It refuses to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
