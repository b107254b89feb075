package wsbu

// Registry abstracts the OS registry export/import tool behind a narrow
// capability interface so the pipelines can run against a fake in tests.
// The real implementation shells out to reg.exe; the .reg file format is
// opaque to this program.
type Registry interface {
	// ExportKey writes the named key and everything under it to outFile.
	// A failing tool invocation returns an error carrying the tool's
	// captured stderr text.
	ExportKey(key string, outFile string) error

	// ImportKey loads a previously exported .reg file back into the registry.
	ImportKey(file string) error
}
