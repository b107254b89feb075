package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment
// variables first. Environment variables:
//   - WSBU_CONFIG_PATH: config file location (default: ~/.config/wsbu.toml)
//   - WSBU_HOME: base directory for wsbu data (default: ~/.local/share/wsbu)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	backupFolder, err := defaultBackupFolder()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path":   configPath,
		"base_dir":      baseDir,
		"log_dir":       filepath.Join(baseDir, "log"),
		"windhawk_root": defaultWindhawkRoot(),
		"backup_folder": backupFolder,
	}, nil
}

// getConfigPath returns the config file path, checking WSBU_CONFIG_PATH
// first, then falling back to ~/.config/wsbu.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("WSBU_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "wsbu.toml"), nil
}

// getBaseDir returns the base directory for wsbu data, checking WSBU_HOME
// first, then falling back to ~/.local/share/wsbu.
func getBaseDir() (string, error) {
	if path := os.Getenv("WSBU_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "wsbu"), nil
}

// defaultWindhawkRoot resolves %ProgramData%\Windhawk, the standard
// Windhawk installation root.
func defaultWindhawkRoot() string {
	programData := os.Getenv("ProgramData")
	if programData == "" {
		programData = `C:\ProgramData`
	}
	return filepath.Join(programData, "Windhawk")
}

// defaultBackupFolder resolves %USERPROFILE%\Documents\Windhawk_Backup.
func defaultBackupFolder() (string, error) {
	profile := os.Getenv("USERPROFILE")
	if profile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		profile = home
	}
	return filepath.Join(profile, "Documents", "Windhawk_Backup"), nil
}
