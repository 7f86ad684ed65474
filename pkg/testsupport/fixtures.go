// Package testsupport holds helpers shared by the package tests: document
// fixtures, golden files, a recording notifier and an envelope server.
package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsync/pkg/memform"
)

// MustDocument builds a memform document from an inline YAML or JSON
// definition.
func MustDocument(t *testing.T, definition string) *memform.Document {
	t.Helper()

	def, err := memform.Parse([]byte(definition))
	if err != nil {
		t.Fatalf("parse definition: %v", err)
	}
	doc, err := def.Build()
	if err != nil {
		t.Fatalf("build document: %v", err)
	}
	return doc
}

// LoadDocument reads a definition file, for setup outside of *testing.T.
func LoadDocument(path string) (*memform.Document, error) {
	if path == "" {
		return nil, errors.New("testsupport: definition path is required")
	}
	doc, err := memform.Load(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: load document: %w", err)
	}
	return doc, nil
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
