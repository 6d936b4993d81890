package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/snonux/paperpush/internal/paper"
)

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// WriteCacheFile writes papers as a cache document
func WriteCacheFile(t *testing.T, path string, papers []paper.Paper) {
	t.Helper()

	data, err := json.MarshalIndent(papers, "", "    ")
	if err != nil {
		t.Fatalf("Failed to encode cache: %v", err)
	}
	CreateTestFile(t, path, data)
}

// ReadCacheFile reads a cache document
func ReadCacheFile(t *testing.T, path string) []paper.Paper {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read cache file %s: %v", path, err)
	}

	var papers []paper.Paper
	if err := json.Unmarshal(data, &papers); err != nil {
		t.Fatalf("Failed to decode cache file %s: %v", path, err)
	}
	return papers
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}

// Titles returns the titles of papers in order
func Titles(papers []paper.Paper) []string {
	out := make([]string, 0, len(papers))
	for _, p := range papers {
		out = append(out, p.Title)
	}
	return out
}
