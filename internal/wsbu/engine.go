package wsbu

import "path/filepath"

// Names fixed by the backup archive layout. The archive root mirrors the
// staging root, with these entries at top level.
const (
	// ModsSourceDir is the mod source directory under the installation root.
	ModsSourceDir = "ModsSource"

	// RegistryFile is the name of the registry export inside an archive.
	RegistryFile = "Windhawk.reg"

	// ArchivePrefix starts every backup archive name.
	ArchivePrefix = "windhawk-backup_"

	// archiveTimestampFormat renders the creation time in archive names.
	archiveTimestampFormat = "20060102_150405"
)

// EngineModsDir returns the compiled-mods directory relative path
// ("Engine/Mods") using the platform separator.
func EngineModsDir() string {
	return filepath.Join("Engine", "Mods")
}

// Engine orchestrates backup and restore of a Windhawk installation:
// two content directories under the installation root plus one exported
// registry key, packaged as a single timestamped zip archive.
//
// The engine runs strictly sequentially and holds no state across calls
// beyond its collaborators. It assumes the process already has the OS
// privilege needed for the registry and the installation root; elevation
// is the caller's bootstrap concern. Serializing concurrent invocations
// against the same installation root is also the caller's job.
type Engine struct {
	registryKey string
	registry    Registry
	archiver    Archiver
	staging     Staging
	dest        Destination
	encryptor   Encryptor
	logger      Logger
	clock       Clock
}

// NewEngine creates an Engine with the provided collaborators.
// registryKey is the fully qualified key holding the service settings,
// e.g. `HKLM\SOFTWARE\Windhawk`. encryptor may be nil to disable
// archive encryption entirely.
func NewEngine(registryKey string, registry Registry, archiver Archiver, staging Staging, dest Destination, encryptor Encryptor, logger Logger, clock Clock) *Engine {
	return &Engine{
		registryKey: registryKey,
		registry:    registry,
		archiver:    archiver,
		staging:     staging,
		dest:        dest,
		encryptor:   encryptor,
		logger:      logger,
		clock:       clock,
	}
}

// archiveName builds the timestamped name for a new backup archive.
func (e *Engine) archiveName() string {
	return ArchivePrefix + e.clock.Now().Format(archiveTimestampFormat) + ".zip"
}

// releaseStaging releases a staging directory, logging (not failing on)
// cleanup errors. Used via defer so the directory is removed on every
// exit path.
func (e *Engine) releaseStaging(stage *StagingDir) {
	if err := stage.Release(); err != nil {
		e.logger.Warn("staging cleanup failed", "path", stage.Path(), "error", err)
	}
}
