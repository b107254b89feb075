package wsbu

import (
	"fmt"
	"os"
	"path/filepath"
)

// Backup snapshots one Windhawk installation into a timestamped archive
// at the configured destination.
//
// The pipeline is fixed: validate the destination, acquire a fresh
// staging area, mirror ModsSource and Engine/Mods into it (each missing
// directory is a warning, not a failure), export the registry key, pack
// the staging area into a zip and store it. A failed registry export or
// any uncaught filesystem error aborts the operation before an archive
// is stored. The staging area is removed on every exit path.
//
// The returned Report is always non-nil; a non-nil error means the
// operation failed and the report's last entry describes why.
func (e *Engine) Backup(installRoot string) (*Report, error) {
	report := NewReport()
	e.logger.Info("backup started", "root", installRoot)

	if err := e.dest.ValidateSetup(); err != nil {
		report.Errorf("Backup destination is not usable: %v", err)
		return report, fmt.Errorf("validating destination: %w", err)
	}

	stage, err := e.staging.Acquire()
	if err != nil {
		report.Errorf("Could not create staging area: %v", err)
		return report, fmt.Errorf("acquiring staging area: %w", err)
	}
	defer e.releaseStaging(stage)

	if err := e.stageTree(report, installRoot, stage.Path(), ModsSourceDir); err != nil {
		return report, err
	}
	if err := e.stageTree(report, installRoot, stage.Path(), EngineModsDir()); err != nil {
		return report, err
	}

	regFile := filepath.Join(stage.Path(), RegistryFile)
	if err := e.registry.ExportKey(e.registryKey, regFile); err != nil {
		report.Errorf("Registry export failed: %v", err)
		return report, fmt.Errorf("exporting registry key: %w", err)
	}
	report.Infof("Registry key %s exported.", e.registryKey)

	name, location, err := e.packAndStore(stage.Path())
	if err != nil {
		report.Errorf("Could not store backup archive: %v", err)
		return report, err
	}
	report.Archive = name

	report.Infof("Operation complete: backup archive created at: %s", location)
	e.logger.Info("backup finished", "archive", location)
	return report, nil
}

// stageTree copies <installRoot>/<rel> into <stagePath>/<rel>.
// A missing source directory is tolerated with a warning.
func (e *Engine) stageTree(report *Report, installRoot, stagePath, rel string) error {
	src := filepath.Join(installRoot, rel)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			report.Warnf("%s directory not found at: %s", rel, src)
			e.logger.Warn("source directory missing", "path", src)
			return nil
		}
		report.Errorf("Could not read %s: %v", src, err)
		return fmt.Errorf("stat %s: %w", src, err)
	}

	if err := CopyTree(src, filepath.Join(stagePath, rel)); err != nil {
		report.Errorf("Could not stage %s: %v", rel, err)
		return fmt.Errorf("staging %s: %w", rel, err)
	}
	report.Infof("%s directory staged for backup.", rel)
	return nil
}

// packAndStore zips the staging area into a scratch file, optionally
// encrypts it, and uploads the result to the destination. The scratch
// file lives outside the staging area so the archive never contains
// itself.
func (e *Engine) packAndStore(stagePath string) (name string, location string, err error) {
	tmp, err := os.CreateTemp("", "wsbu-archive-*.zip")
	if err != nil {
		return "", "", fmt.Errorf("creating archive scratch file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := e.archiver.Pack(stagePath, tmpPath); err != nil {
		return "", "", fmt.Errorf("packing staging area: %w", err)
	}

	name = e.archiveName()
	uploadPath := tmpPath
	if e.encryptor != nil && e.encryptor.IsConfigured() {
		encPath := tmpPath + ".age"
		if err := e.encryptFile(tmpPath, encPath); err != nil {
			return "", "", fmt.Errorf("encrypting archive: %w", err)
		}
		defer os.Remove(encPath)
		uploadPath = encPath
		name += ".age"
	}

	f, err := os.Open(uploadPath)
	if err != nil {
		return "", "", fmt.Errorf("opening archive for upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", "", fmt.Errorf("stat archive: %w", err)
	}

	location, err = e.dest.Store(name, f, info.Size())
	if err != nil {
		return "", "", fmt.Errorf("storing archive: %w", err)
	}
	return name, location, nil
}

// encryptFile pipes src through the encryptor into dst.
func (e *Engine) encryptFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening plaintext archive: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating encrypted archive: %w", err)
	}

	if err := e.encryptor.Encrypt(in, out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
