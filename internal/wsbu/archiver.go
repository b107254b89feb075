package wsbu

// Archiver packs a staging directory into a single zip archive and back.
// The archive root corresponds directly to the staging root; this layout
// must stay stable for cross-version compatibility of backups.
type Archiver interface {
	// Pack writes the entire tree rooted at srcDir to a zip file at outFile.
	// Entry names are slash-separated paths relative to srcDir.
	Pack(srcDir string, outFile string) error

	// Unpack extracts archiveFile into destDir. A corrupt or non-zip
	// input fails before anything is written outside destDir.
	Unpack(archiveFile string, destDir string) error
}
