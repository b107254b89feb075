package destination

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"wsbu-go/internal/wsbu"
)

// MemoryDestination keeps archives in memory. Useful for tests.
// Safe for concurrent use.
type MemoryDestination struct {
	archives map[string][]byte
	stored   map[string]time.Time
	mu       sync.RWMutex
}

var _ wsbu.Destination = (*MemoryDestination)(nil)

func NewMemoryDestination() *MemoryDestination {
	return &MemoryDestination{
		archives: make(map[string][]byte),
		stored:   make(map[string]time.Time),
	}
}

// ValidateSetup always succeeds for the in-memory destination.
func (d *MemoryDestination) ValidateSetup() error {
	return nil
}

func (d *MemoryDestination) Store(name string, r io.Reader, size int64) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading archive: %w", err)
	}
	if int64(len(data)) != size {
		return "", fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.archives[name] = data
	d.stored[name] = time.Now()
	return "memory://" + name, nil
}

func (d *MemoryDestination) Open(name string) (io.ReadCloser, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	data, ok := d.archives[name]
	if !ok {
		return nil, fmt.Errorf("archive not found: %s", name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (d *MemoryDestination) List() ([]wsbu.ArchiveInfo, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	archives := make([]wsbu.ArchiveInfo, 0, len(d.archives))
	for name, data := range d.archives {
		archives = append(archives, wsbu.ArchiveInfo{
			Name:       name,
			Size:       int64(len(data)),
			ModifiedAt: d.stored[name],
		})
	}

	sort.Slice(archives, func(i, j int) bool { return archives[i].Name < archives[j].Name })
	return archives, nil
}
