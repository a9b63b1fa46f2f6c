package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

// WriteTempFile writes content to a file named name in a temporary directory removed at the
// end of the test, and returns its path.
func WriteTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	test.That(t, os.WriteFile(path, []byte(content), 0o600), test.ShouldBeNil)
	return path
}
