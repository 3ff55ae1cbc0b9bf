package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// Fixture reads a file under the calling package's testdata directory.
func Fixture(t testing.TB, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("fixture %s: %v", name, err)
	}
	return data
}

// Golden decodes a JSON golden file from testdata into v.
func Golden(t testing.TB, name string, v any) {
	t.Helper()
	if err := json.Unmarshal(Fixture(t, name), v); err != nil {
		t.Fatalf("golden %s: %v", name, err)
	}
}
