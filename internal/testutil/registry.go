// Package testutil provides fakes for engine tests.
package testutil

import (
	"fmt"
	"os"

	"wsbu-go/internal/wsbu"
)

// FakeRegistry implements wsbu.Registry without touching the OS.
// ExportKey writes a deterministic .reg stub to the requested file;
// ImportKey records the content of the imported file. Set ExportErr or
// ImportErr to make the corresponding call fail.
type FakeRegistry struct {
	ExportErr error
	ImportErr error

	Exported []string // keys passed to ExportKey, in order
	Imported []string // file contents passed to ImportKey, in order
}

var _ wsbu.Registry = (*FakeRegistry)(nil)

func NewFakeRegistry() *FakeRegistry { return &FakeRegistry{} }

// ExportContent returns the stub .reg content written for a key.
func ExportContent(key string) string {
	return fmt.Sprintf("Windows Registry Editor Version 5.00\r\n\r\n[%s]\r\n\"Fake\"=\"1\"\r\n", key)
}

func (r *FakeRegistry) ExportKey(key string, outFile string) error {
	if r.ExportErr != nil {
		return r.ExportErr
	}
	if err := os.WriteFile(outFile, []byte(ExportContent(key)), 0644); err != nil {
		return err
	}
	r.Exported = append(r.Exported, key)
	return nil
}

func (r *FakeRegistry) ImportKey(file string) error {
	if r.ImportErr != nil {
		return r.ImportErr
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	r.Imported = append(r.Imported, string(data))
	return nil
}
