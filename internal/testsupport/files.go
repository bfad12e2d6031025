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
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteGameDir creates an install directory containing a game executable and
// returns the install and executable paths.
func WriteGameDir(t testing.TB, root, dirName, exeName string) (string, string) {
	t.Helper()

	installDir := filepath.Join(root, dirName)
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", installDir, err)
	}
	exePath := filepath.Join(installDir, exeName)
	if err := os.WriteFile(exePath, []byte("MZ"), 0o755); err != nil {
		t.Fatalf("write exe %s: %v", exePath, err)
	}
	return installDir, exePath
}
