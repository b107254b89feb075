// Package registry provides access to the OS registry via the external
// reg.exe command-line tool. The exported .reg file format is treated as
// opaque text.
package registry

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"wsbu-go/internal/wsbu"
)

// regCommand is the registry tool invoked for export/import. It is only
// present on Windows; on other platforms every invocation fails, which
// surfaces as a fatal pipeline error.
const regCommand = "reg"

// RegTool implements wsbu.Registry by shelling out to reg.exe.
type RegTool struct{}

var _ wsbu.Registry = (*RegTool)(nil)

func NewRegTool() *RegTool { return &RegTool{} }

// ExportKey runs `reg export <key> <outFile> /y`. The /y flag suppresses
// the overwrite prompt; without it the tool would block on stdin.
func (t *RegTool) ExportKey(key string, outFile string) error {
	return run(regCommand, "export", key, outFile, "/y")
}

// ImportKey runs `reg import <file>`.
func (t *RegTool) ImportKey(file string) error {
	return run(regCommand, "import", file)
}

// run executes the tool and converts a non-zero exit into an error
// carrying the captured stderr text, which the engine surfaces in the
// operation report. The exec error stays in the chain so callers can
// still inspect the exit status.
func run(name string, args ...string) error {
	cmd := exec.Command(name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			return fmt.Errorf("%s %s: %w", name, args[0], err)
		}
		return fmt.Errorf("%s %s: %s: %w", name, args[0], detail, err)
	}
	return nil
}
