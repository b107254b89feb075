package wsbu_test

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"

	"wsbu-go/internal/destination"
	"wsbu-go/internal/encryption"
	"wsbu-go/internal/testutil"
	"wsbu-go/internal/wsbu"
)

// fetchArchive copies a stored archive to a local file, preserving the
// extension so the engine's .age detection works.
func fetchArchive(t *testing.T, dest *destination.MemoryDestination, name string) string {
	t.Helper()
	r, err := dest.Open(name)
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}
	defer r.Close()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating local archive: %v", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		t.Fatalf("copying archive: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing local archive: %v", err)
	}
	return path
}

// readTree returns all regular files under dir keyed by slash-separated
// relative path.
func readTree(t *testing.T, dir string) map[string]string {
	t.Helper()
	tree := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		tree[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("walking %s: %v", dir, err)
	}
	return tree
}

func TestEngine_Restore(t *testing.T) {
	t.Run("backup then restore round-trips both trees and the registry", func(t *testing.T) {
		f := newFixture(t, nil)
		root := newInstallRoot(t)

		report, err := f.engine.Backup(root)
		if err != nil {
			t.Fatalf("Backup() error = %v", err)
		}

		local := fetchArchive(t, f.dest, report.Archive)
		newRoot := t.TempDir()

		restoreReport, err := f.engine.Restore(newRoot, local, nil)
		if err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		if restoreReport.Warnings() != 0 {
			t.Errorf("warnings = %d, want 0", restoreReport.Warnings())
		}

		want := readTree(t, root)
		got := readTree(t, newRoot)
		for rel, content := range want {
			if got[rel] != content {
				t.Errorf("restored %s = %q, want %q", rel, got[rel], content)
			}
		}

		if len(f.registry.Imported) != 1 {
			t.Fatalf("imports = %d, want 1", len(f.registry.Imported))
		}
		if f.registry.Imported[0] != testutil.ExportContent(testKey) {
			t.Errorf("imported registry content = %q", f.registry.Imported[0])
		}
		assertNoStagingLeft(t, f.stagingBase)
	})

	t.Run("corrupt archive fails and leaves the root unmodified", func(t *testing.T) {
		f := newFixture(t, nil)

		bad := filepath.Join(t.TempDir(), "windhawk-backup_20240101_000000.zip")
		writeFile(t, bad, "this is not a zip archive")
		root := t.TempDir()

		report, err := f.engine.Restore(root, bad, nil)
		if err == nil {
			t.Fatal("Restore() expected error for corrupt archive")
		}

		entries := report.Entries()
		last := entries[len(entries)-1]
		if last.Severity != wsbu.SeverityError || !strings.Contains(last.Message, "extract") {
			t.Errorf("last entry = %+v, want extraction error", last)
		}

		if got := readTree(t, root); len(got) != 0 {
			t.Errorf("installation root modified by failed restore: %v", got)
		}
		if len(f.registry.Imported) != 0 {
			t.Errorf("registry imported despite failed extraction")
		}
		assertNoStagingLeft(t, f.stagingBase)
	})

	t.Run("restore merges over existing content", func(t *testing.T) {
		f := newFixture(t, nil)
		root := newInstallRoot(t)

		report, err := f.engine.Backup(root)
		if err != nil {
			t.Fatalf("Backup() error = %v", err)
		}
		local := fetchArchive(t, f.dest, report.Archive)

		target := t.TempDir()
		// A file the archive also contains, with stale content.
		writeFile(t, filepath.Join(target, "ModsSource", "taskbar-clock.cpp"), "// stale\n")
		// A file the archive knows nothing about.
		writeFile(t, filepath.Join(target, "ModsSource", "local-only.cpp"), "// keep me\n")

		if _, err := f.engine.Restore(target, local, nil); err != nil {
			t.Fatalf("Restore() error = %v", err)
		}

		got := readTree(t, target)
		if got["ModsSource/taskbar-clock.cpp"] != "// mod source\n" {
			t.Errorf("conflicting file not overwritten: %q", got["ModsSource/taskbar-clock.cpp"])
		}
		if got["ModsSource/local-only.cpp"] != "// keep me\n" {
			t.Errorf("unrelated file not preserved: %q", got["ModsSource/local-only.cpp"])
		}
	})

	t.Run("archive without ModsSource warns and continues", func(t *testing.T) {
		f := newFixture(t, nil)
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "Engine", "Mods", "a.dll"), "x")

		report, err := f.engine.Backup(root)
		if err != nil {
			t.Fatalf("Backup() error = %v", err)
		}
		local := fetchArchive(t, f.dest, report.Archive)

		target := t.TempDir()
		restoreReport, err := f.engine.Restore(target, local, nil)
		if err != nil {
			t.Fatalf("Restore() error = %v", err)
		}

		if restoreReport.Warnings() != 1 {
			t.Fatalf("warnings = %d, want 1", restoreReport.Warnings())
		}
		for _, e := range restoreReport.Entries() {
			if e.Severity == wsbu.SeverityWarn && !strings.Contains(e.Message, "ModsSource") {
				t.Errorf("warning %q does not reference ModsSource", e.Message)
			}
		}
	})

	t.Run("archive without registry file warns and skips the import", func(t *testing.T) {
		f := newFixture(t, nil)

		// Build an archive by hand that only carries mod sources.
		path := filepath.Join(t.TempDir(), "windhawk-backup_20240101_000000.zip")
		out, err := os.Create(path)
		if err != nil {
			t.Fatalf("creating archive: %v", err)
		}
		zw := zip.NewWriter(out)
		w, err := zw.Create("ModsSource/only.cpp")
		if err != nil {
			t.Fatalf("adding entry: %v", err)
		}
		if _, err := w.Write([]byte("// only\n")); err != nil {
			t.Fatalf("writing entry: %v", err)
		}
		if err := zw.Close(); err != nil {
			t.Fatalf("closing archive: %v", err)
		}
		out.Close()

		target := t.TempDir()
		report, err := f.engine.Restore(target, path, nil)
		if err != nil {
			t.Fatalf("Restore() error = %v", err)
		}

		found := false
		for _, e := range report.Entries() {
			if e.Severity == wsbu.SeverityWarn && strings.Contains(e.Message, wsbu.RegistryFile) {
				found = true
			}
		}
		if !found {
			t.Error("no warning about the missing registry file")
		}
		if len(f.registry.Imported) != 0 {
			t.Errorf("registry import ran without a registry file")
		}
	})

	t.Run("registry import failure is fatal", func(t *testing.T) {
		f := newFixture(t, nil)
		root := newInstallRoot(t)

		report, err := f.engine.Backup(root)
		if err != nil {
			t.Fatalf("Backup() error = %v", err)
		}
		local := fetchArchive(t, f.dest, report.Archive)

		f.registry.ImportErr = errors.New("reg import: The parameter is incorrect.")
		restoreReport, err := f.engine.Restore(t.TempDir(), local, nil)
		if err == nil {
			t.Fatal("Restore() expected error")
		}

		entries := restoreReport.Entries()
		last := entries[len(entries)-1]
		if last.Severity != wsbu.SeverityError || !strings.Contains(last.Message, "parameter is incorrect") {
			t.Errorf("last entry = %+v, want import error with tool output", last)
		}
		assertNoStagingLeft(t, f.stagingBase)
	})

	t.Run("encrypted archive requires a decryption context", func(t *testing.T) {
		enc := encryption.NewTestEncryptor()
		f := newFixture(t, enc)
		root := newInstallRoot(t)

		report, err := f.engine.Backup(root)
		if err != nil {
			t.Fatalf("Backup() error = %v", err)
		}
		local := fetchArchive(t, f.dest, report.Archive)

		if _, err := f.engine.Restore(t.TempDir(), local, nil); err == nil {
			t.Fatal("Restore() expected error without decryption context")
		}
	})

	t.Run("encrypted archive round-trips with the unlocked key", func(t *testing.T) {
		enc := encryption.NewTestEncryptor()
		f := newFixture(t, enc)
		root := newInstallRoot(t)

		report, err := f.engine.Backup(root)
		if err != nil {
			t.Fatalf("Backup() error = %v", err)
		}
		local := fetchArchive(t, f.dest, report.Archive)

		decryptCtx, err := enc.Unlock("test")
		if err != nil {
			t.Fatalf("Unlock() error = %v", err)
		}

		target := t.TempDir()
		if _, err := f.engine.Restore(target, local, decryptCtx); err != nil {
			t.Fatalf("Restore() error = %v", err)
		}

		want := readTree(t, root)
		got := readTree(t, target)
		for rel, content := range want {
			if got[rel] != content {
				t.Errorf("restored %s = %q, want %q", rel, got[rel], content)
			}
		}
		assertNoStagingLeft(t, f.stagingBase)
	})
}
