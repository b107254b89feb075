package wsbu

// Staging hands out fresh staging directories, one per operation.
// A staging directory is never reused and never outlives the operation
// that acquired it.
type Staging interface {
	// Acquire creates a new empty staging directory.
	Acquire() (*StagingDir, error)
}

// StagingDir is one ephemeral staging directory. The owner must call
// Release exactly once, on every exit path.
type StagingDir struct {
	path    string
	release func() error
}

// NewStagingDir creates a StagingDir from its components.
// This is for use by Staging implementations.
func NewStagingDir(path string, release func() error) *StagingDir {
	return &StagingDir{path: path, release: release}
}

// Path returns the absolute path of the staging directory.
func (d *StagingDir) Path() string {
	return d.path
}

// Release removes the staging directory and all its contents.
// Calling Release more than once is safe.
func (d *StagingDir) Release() error {
	if d.release == nil {
		return nil
	}
	fn := d.release
	d.release = nil
	return fn()
}
