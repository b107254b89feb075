// Package app wires the engine and its collaborators together from
// configuration and manages the per-run resources (history database,
// log file, operation records).
package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"wsbu-go/internal/archive"
	"wsbu-go/internal/config"
	"wsbu-go/internal/database"
	"wsbu-go/internal/destination"
	"wsbu-go/internal/encryption"
	"wsbu-go/internal/registry"
	"wsbu-go/internal/staging"
	"wsbu-go/internal/wsbu"
)

// PassphraseFunc supplies a passphrase on demand, typically by prompting
// the terminal. It is only called when a restore actually needs one.
type PassphraseFunc func() (string, error)

// App is the application layer between the CLI and the engine.
// The caller must call Close when done.
type App struct {
	cfg       *config.Config
	engine    *wsbu.Engine
	dest      wsbu.Destination
	encryptor wsbu.Encryptor
	history   wsbu.History
	logger    wsbu.Logger
	logFile   *os.File
	clock     wsbu.Clock
	idgen     wsbu.IDGenerator
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Backup", "Restore").
func NewApp(cfg *config.Config, operation string) (*App, error) {
	dest, err := destination.NewDestinationFromConfig(cfg.Destination)
	if err != nil {
		return nil, fmt.Errorf("creating destination: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	hist, err := database.NewHistoryFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	clock := wsbu.RealClock{}
	logger, logFile, err := newLogger(cfg.LogDir, operationID(clock, operation))
	if err != nil {
		hist.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	registryKey := cfg.RegistryKey
	if registryKey == "" {
		registryKey = config.DefaultRegistryKey
	}

	adapter := &slogAdapter{l: logger}
	engine := wsbu.NewEngine(
		registryKey,
		registry.NewRegTool(),
		archive.NewZipArchiver(),
		staging.NewManager(cfg.StagingDir),
		dest,
		enc,
		adapter,
		clock,
	)

	return &App{
		cfg:       cfg,
		engine:    engine,
		dest:      dest,
		encryptor: enc,
		history:   hist,
		logger:    adapter,
		logFile:   logFile,
		clock:     clock,
		idgen:     wsbu.UUIDGenerator{},
	}, nil
}

// operationID names the log file for a run. Deriving the timestamp from
// the clock keeps log files correlatable with history timestamps.
func operationID(clock wsbu.Clock, operation string) string {
	return clock.Now().UTC().Format("20060102T150405Z") + "-" + operation
}

// Backup runs the backup pipeline against the configured installation
// root and records the operation in the history database.
func (a *App) Backup() (*wsbu.Report, error) {
	rowID, err := a.beginOperation(wsbu.OpBackup, a.cfg.WindhawkRoot)
	if err != nil {
		return nil, err
	}

	report, runErr := a.engine.Backup(a.cfg.WindhawkRoot)
	a.finishOperation(rowID, runErr, report.Archive)
	return report, runErr
}

// Restore runs the restore pipeline for the named archive. The archive
// may be a local file path or the name of an archive in the configured
// destination. passphrase is consulted only for encrypted archives.
func (a *App) Restore(archiveArg string, passphrase PassphraseFunc) (*wsbu.Report, error) {
	path, cleanup, err := a.materializeArchive(archiveArg)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var decryptCtx wsbu.DecryptionContext
	if strings.HasSuffix(path, ".age") {
		decryptCtx, err = a.unlock(passphrase)
		if err != nil {
			return nil, err
		}
	}

	rowID, err := a.beginOperation(wsbu.OpRestore, archiveArg)
	if err != nil {
		return nil, err
	}

	report, runErr := a.engine.Restore(a.cfg.WindhawkRoot, path, decryptCtx)
	a.finishOperation(rowID, runErr, filepath.Base(archiveArg))
	return report, runErr
}

// ListArchives returns the archives stored at the configured destination.
func (a *App) ListArchives() ([]wsbu.ArchiveInfo, error) {
	if err := a.dest.ValidateSetup(); err != nil {
		return nil, fmt.Errorf("validating destination: %w", err)
	}
	return a.dest.List()
}

// History returns the most recent operations, newest first.
func (a *App) History(limit int) ([]*wsbu.OperationRecord, error) {
	return a.history.ListOperations(limit)
}

// SetupEncryption generates the archive encryption key pair.
func (a *App) SetupEncryption(passphrase string) error {
	if a.encryptor == nil {
		return fmt.Errorf("encryption is disabled in the configuration")
	}
	return a.encryptor.Setup(passphrase)
}

// Close releases the history database and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.history.Close(); err != nil {
		firstErr = fmt.Errorf("closing history database: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

// beginOperation inserts a history record for a starting operation.
func (a *App) beginOperation(kind, detail string) (int64, error) {
	rowID, err := a.history.CreateOperation(a.idgen.New(), kind, detail, a.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("recording operation: %w", err)
	}
	return rowID, nil
}

// finishOperation finalizes a history record. Errors here are logged,
// not returned: the operation itself already succeeded or failed.
func (a *App) finishOperation(rowID int64, runErr error, archiveName string) {
	status := wsbu.StatusSuccess
	if runErr != nil {
		status = wsbu.StatusError
	}
	if err := a.history.FinishOperation(rowID, status, archiveName, a.clock.Now()); err != nil {
		a.logger.Warn("finishing operation record failed", "id", rowID, "error", err)
	}
}

// unlock obtains a decryption context for an encrypted archive.
func (a *App) unlock(passphrase PassphraseFunc) (wsbu.DecryptionContext, error) {
	if a.encryptor == nil {
		return nil, fmt.Errorf("archive is encrypted but encryption is disabled in the configuration")
	}
	if passphrase == nil {
		return nil, fmt.Errorf("archive is encrypted but no passphrase source was provided")
	}
	pw, err := passphrase()
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}
	decryptCtx, err := a.encryptor.Unlock(pw)
	if err != nil {
		return nil, fmt.Errorf("unlocking key: %w", err)
	}
	return decryptCtx, nil
}

// materializeArchive resolves an archive argument to a local file path.
// An existing local file is used in place; otherwise the name is fetched
// from the destination into a scratch file which cleanup removes.
func (a *App) materializeArchive(archiveArg string) (string, func(), error) {
	if _, err := os.Stat(archiveArg); err == nil {
		return archiveArg, func() {}, nil
	}

	r, err := a.dest.Open(filepath.Base(archiveArg))
	if err != nil {
		return "", nil, fmt.Errorf("archive is neither a local file nor stored at the destination: %w", err)
	}
	defer r.Close()

	// Preserve the extension: the engine keys decryption off the .age
	// suffix.
	tmp, err := os.CreateTemp("", "wsbu-fetch-*"+filepath.Ext(archiveArg))
	if err != nil {
		return "", nil, fmt.Errorf("creating scratch file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", nil, fmt.Errorf("fetching archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", nil, fmt.Errorf("closing scratch file: %w", err)
	}

	return tmpPath, func() { os.Remove(tmpPath) }, nil
}
