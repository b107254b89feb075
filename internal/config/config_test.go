package config_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"wsbu-go/internal/config"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := config.NewConfig(`C:\ProgramData\Windhawk`, `C:\Users\me\Documents\Windhawk_Backup`, "/home/me/.local/share/wsbu")

	if cfg.RegistryKey != `HKLM\SOFTWARE\Windhawk` {
		t.Errorf("RegistryKey = %q", cfg.RegistryKey)
	}
	if cfg.Destination.Type != "filesystem" {
		t.Errorf("Destination.Type = %q, want filesystem", cfg.Destination.Type)
	}
	if cfg.Destination.Folder != `C:\Users\me\Documents\Windhawk_Backup` {
		t.Errorf("Destination.Folder = %q", cfg.Destination.Folder)
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want sqlite", cfg.Database.Type)
	}
	if cfg.Encryption.Type != "none" {
		t.Errorf("Encryption.Type = %q, want none", cfg.Encryption.Type)
	}
}

func TestManager_RoundTrip(t *testing.T) {
	m := &config.Manager{}
	cfg := config.NewConfig(`C:\ProgramData\Windhawk`, `D:\Backups`, "/tmp/wsbu")
	cfg.Destination = config.DestinationConfig{
		Type:     "s3",
		S3Bucket: "my-backups",
		S3Prefix: "windhawk/",
		S3Region: "eu-central-1",
	}

	var buf bytes.Buffer
	if err := m.Write(&buf, cfg); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	decoded, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if decoded.WindhawkRoot != cfg.WindhawkRoot {
		t.Errorf("WindhawkRoot = %q, want %q", decoded.WindhawkRoot, cfg.WindhawkRoot)
	}
	if decoded.RegistryKey != cfg.RegistryKey {
		t.Errorf("RegistryKey = %q, want %q", decoded.RegistryKey, cfg.RegistryKey)
	}
	if decoded.Destination != cfg.Destination {
		t.Errorf("Destination = %+v, want %+v", decoded.Destination, cfg.Destination)
	}
	if decoded.Database != cfg.Database {
		t.Errorf("Database = %+v, want %+v", decoded.Database, cfg.Database)
	}
}

func TestManager_ReadPartialConfig(t *testing.T) {
	m := &config.Manager{}
	cfg, err := m.Read(strings.NewReader(`
windhawk_root = 'C:\ProgramData\Windhawk'

[destination]
folder = 'D:\Backups'
`))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if cfg.WindhawkRoot != `C:\ProgramData\Windhawk` {
		t.Errorf("WindhawkRoot = %q", cfg.WindhawkRoot)
	}
	if cfg.Destination.Folder != `D:\Backups` {
		t.Errorf("Destination.Folder = %q", cfg.Destination.Folder)
	}
	// Unset sections stay zero; the factories apply their defaults.
	if cfg.Destination.Type != "" || cfg.Database.Type != "" {
		t.Errorf("unexpected defaults: destination=%q database=%q", cfg.Destination.Type, cfg.Database.Type)
	}
}

func TestManager_ReadInvalidTOML(t *testing.T) {
	m := &config.Manager{}
	if _, err := m.Read(strings.NewReader("not [valid toml")); err == nil {
		t.Error("Read() expected error for invalid TOML")
	}
}

func TestInit(t *testing.T) {
	t.Run("creates file and parent directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "conf", "wsbu.toml")
		cfg := config.NewConfig(`C:\ProgramData\Windhawk`, `D:\Backups`, "/tmp/wsbu")

		if err := config.Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		read, err := config.ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if read.WindhawkRoot != cfg.WindhawkRoot {
			t.Errorf("WindhawkRoot = %q, want %q", read.WindhawkRoot, cfg.WindhawkRoot)
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wsbu.toml")
		cfg := config.NewConfig(`C:\ProgramData\Windhawk`, `D:\Backups`, "/tmp/wsbu")

		if err := config.Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if err := config.Init(path, cfg); err == nil {
			t.Error("Init() expected error for existing file")
		}
	})
}

func TestReadFromFileMissing(t *testing.T) {
	if _, err := config.ReadFromFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("ReadFromFile() expected error for missing file")
	}
}
