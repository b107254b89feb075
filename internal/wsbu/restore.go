package wsbu

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Restore unpacks a backup archive and copies its contents back into an
// installation root.
//
// The pipeline mirrors Backup in reverse: acquire a fresh staging area,
// decrypt the archive if needed, extract it into staging, copy ModsSource
// and Engine/Mods back with overwrite-merge semantics, and import the
// registry file. Extraction happens before anything touches the
// installation root, so a corrupt archive leaves it unmodified. Missing
// directories or a missing registry file inside the archive are warnings;
// a failing extraction or registry import is fatal.
//
// decryptCtx is required when archivePath names an encrypted (.age)
// archive; pass nil otherwise.
func (e *Engine) Restore(installRoot string, archivePath string, decryptCtx DecryptionContext) (*Report, error) {
	report := NewReport()
	e.logger.Info("restore started", "root", installRoot, "archive", archivePath)

	stage, err := e.staging.Acquire()
	if err != nil {
		report.Errorf("Could not create staging area: %v", err)
		return report, fmt.Errorf("acquiring staging area: %w", err)
	}
	defer e.releaseStaging(stage)

	src := archivePath
	if strings.HasSuffix(archivePath, ".age") {
		plain, err := e.decryptArchive(archivePath, decryptCtx)
		if err != nil {
			report.Errorf("Could not decrypt archive: %v", err)
			return report, err
		}
		defer os.Remove(plain)
		src = plain
	}

	if err := e.archiver.Unpack(src, stage.Path()); err != nil {
		report.Errorf("Failed to extract archive: %v", err)
		return report, fmt.Errorf("extracting archive: %w", err)
	}
	report.Infof("Archive %s extracted.", filepath.Base(archivePath))

	if err := e.restoreTree(report, stage.Path(), installRoot, ModsSourceDir); err != nil {
		return report, err
	}
	if err := e.restoreTree(report, stage.Path(), installRoot, EngineModsDir()); err != nil {
		return report, err
	}

	regFile := filepath.Join(stage.Path(), RegistryFile)
	if _, err := os.Stat(regFile); err != nil {
		if !os.IsNotExist(err) {
			report.Errorf("Could not read %s: %v", RegistryFile, err)
			return report, fmt.Errorf("stat registry file: %w", err)
		}
		report.Warnf("Registry file (%s) not found in backup archive.", RegistryFile)
		e.logger.Warn("registry file missing from archive", "archive", archivePath)
	} else {
		if err := e.registry.ImportKey(regFile); err != nil {
			report.Errorf("Registry import failed: %v", err)
			return report, fmt.Errorf("importing registry key: %w", err)
		}
		report.Infof("Registry settings imported.")
	}

	report.Infof("Operation complete: restore finished.")
	e.logger.Info("restore finished", "archive", archivePath)
	return report, nil
}

// restoreTree copies <stagePath>/<rel> into <installRoot>/<rel> with
// overwrite-merge semantics. A directory absent from the archive is
// tolerated with a warning.
func (e *Engine) restoreTree(report *Report, stagePath, installRoot, rel string) error {
	src := filepath.Join(stagePath, rel)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			report.Warnf("%s directory not found in backup archive.", rel)
			e.logger.Warn("directory missing from archive", "dir", rel)
			return nil
		}
		report.Errorf("Could not read staged %s: %v", rel, err)
		return fmt.Errorf("stat staged %s: %w", rel, err)
	}

	if err := CopyTree(src, filepath.Join(installRoot, rel)); err != nil {
		report.Errorf("Could not restore %s: %v", rel, err)
		return fmt.Errorf("restoring %s: %w", rel, err)
	}
	report.Infof("%s directory restored.", rel)
	return nil
}

// decryptArchive writes the decrypted form of an encrypted archive to a
// scratch file and returns its path. The caller removes the file.
func (e *Engine) decryptArchive(archivePath string, decryptCtx DecryptionContext) (string, error) {
	if decryptCtx == nil {
		return "", fmt.Errorf("archive is encrypted but no passphrase was provided")
	}

	in, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("opening archive: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp("", "wsbu-restore-*.zip")
	if err != nil {
		return "", fmt.Errorf("creating scratch file: %w", err)
	}

	if err := decryptCtx.Decrypt(in, tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("decrypting archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("closing scratch file: %w", err)
	}
	return tmp.Name(), nil
}
