package destination

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"wsbu-go/internal/wsbu"
)

// FileSystemDestination stores backup archives as plain files in a
// single folder, the classic "backup destination folder" of the
// original utility.
type FileSystemDestination struct {
	folder string
}

var _ wsbu.Destination = (*FileSystemDestination)(nil)

// NewFileSystemDestination creates a destination rooted at folder.
// The folder is created lazily by ValidateSetup.
func NewFileSystemDestination(folder string) *FileSystemDestination {
	return &FileSystemDestination{folder: folder}
}

// ValidateSetup creates the destination folder if absent and verifies
// it is a directory.
func (d *FileSystemDestination) ValidateSetup() error {
	if err := os.MkdirAll(d.folder, 0755); err != nil {
		return fmt.Errorf("creating destination folder: %w", err)
	}
	info, err := os.Stat(d.folder)
	if err != nil {
		return fmt.Errorf("destination folder not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("destination is not a directory: %s", d.folder)
	}
	return nil
}

// Store writes the archive atomically: a temp file in the destination
// folder is renamed into place only after the full content arrived.
func (d *FileSystemDestination) Store(name string, r io.Reader, size int64) (string, error) {
	destPath := filepath.Join(d.folder, name)

	tmp, err := os.CreateTemp(d.folder, ".wsbu-upload-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	if written != size {
		return "", fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return "", fmt.Errorf("renaming archive into place: %w", err)
	}

	success = true
	return destPath, nil
}

// Open opens a stored archive by name.
func (d *FileSystemDestination) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(d.folder, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("archive not found: %s", name)
		}
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	return f, nil
}

// List returns the backup archives in the folder sorted by name.
// Files not matching the archive naming scheme are ignored.
func (d *FileSystemDestination) List() ([]wsbu.ArchiveInfo, error) {
	entries, err := os.ReadDir(d.folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading destination folder: %w", err)
	}

	var archives []wsbu.ArchiveInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), wsbu.ArchivePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		archives = append(archives, wsbu.ArchiveInfo{
			Name:       entry.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}

	sort.Slice(archives, func(i, j int) bool { return archives[i].Name < archives[j].Name })
	return archives, nil
}
