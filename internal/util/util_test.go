package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestContentHash(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "Empty content",
			content:  "",
			expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:     "Hello",
			content:  "hello",
			expected: "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ContentHash([]byte(tc.content)); got != tc.expected {
				t.Errorf("Expected hash %s, got %s", tc.expected, got)
			}
			if got := ContentHashString(tc.content); got != tc.expected {
				t.Errorf("Expected string hash %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()

	t.Run("Creates missing directories", func(t *testing.T) {
		path := filepath.Join(dir, "nested", "out.pdf")
		if err := WriteFileAtomic(path, []byte("%PDF-1.5"), 0o644); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Failed to read written file: %v", err)
		}
		if string(got) != "%PDF-1.5" {
			t.Errorf("Expected file content %q, got %q", "%PDF-1.5", got)
		}
	})

	t.Run("Overwrites and leaves no temp files", func(t *testing.T) {
		path := filepath.Join(dir, "output.docx")
		if err := WriteFileAtomic(path, []byte("first"), 0o644); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if err := WriteFileAtomic(path, []byte("second"), 0o644); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		got, _ := os.ReadFile(path)
		if string(got) != "second" {
			t.Errorf("Expected overwritten content, got %q", got)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("Failed to list dir: %v", err)
		}
		for _, e := range entries {
			if e.Name()[0] == '.' {
				t.Errorf("Unexpected leftover temp file %s", e.Name())
			}
		}
	})
}
