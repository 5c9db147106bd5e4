package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/davidahmann/ctxmap/core/contextmap"
	schemacontextmap "github.com/davidahmann/ctxmap/core/schema/v1/contextmap"
)

func WriteFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("create parent directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func MustReadFile(t *testing.T, path string) []byte {
	t.Helper()
	content, err := os.ReadFile(path) // #nosec G304 -- test helper for controlled paths.
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return content
}

// SampleMapWithID returns the canonical example context map with a distinct
// generation id, for tests that persist several maps side by side.
func SampleMapWithID(index int) schemacontextmap.ContextMap {
	m := contextmap.GenerateSample()
	m.GenerationID = fmt.Sprintf("00000000-0000-4000-8000-%012d", index)
	return m
}
