package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Touch creates each relative path under root and returns their absolute
// paths in argument order.
func Touch(t testing.TB, root string, rels ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(rels))
	for _, rel := range rels {
		path := filepath.Join(root, filepath.FromSlash(rel))
		WriteFile(t, path, 1)
		paths = append(paths, path)
	}
	return paths
}

// WriteScript writes an executable /bin/sh script named name into dir and
// returns its path. Callers on Windows should skip tests that rely on it.
func WriteScript(t testing.TB, dir, name, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write script %s: %v", name, err)
	}
	return path
}
