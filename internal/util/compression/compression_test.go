package compression

import (
	"bytes"
	"strings"
	"testing"
)

func TestForName(t *testing.T) {
	source := []byte(strings.Repeat("\\section{Intro}\nSome text. ", 64))

	for _, name := range []string{"zstd", "gzip", "none", ""} {
		t.Run("codec "+name, func(t *testing.T) {
			c, err := ForName(name)
			if err != nil {
				t.Fatalf("Expected codec for %q, got %v", name, err)
			}

			compressed, err := c.Compress(source)
			if err != nil {
				t.Fatalf("Compress failed: %v", err)
			}
			if name == "zstd" || name == "gzip" {
				if len(compressed) >= len(source) {
					t.Errorf("Expected repetitive input to shrink, %d >= %d", len(compressed), len(source))
				}
			}

			restored, err := c.Decompress(compressed)
			if err != nil {
				t.Fatalf("Decompress failed: %v", err)
			}
			if !bytes.Equal(restored, source) {
				t.Error("Expected decompressed content to equal the source")
			}
		})
	}

	t.Run("unknown codec", func(t *testing.T) {
		if _, err := ForName("brotli"); err == nil {
			t.Error("Expected an error for an unknown codec")
		}
	})
}

func TestZstdRejectsGarbage(t *testing.T) {
	c, err := NewZstdCompressor()
	if err != nil {
		t.Fatalf("Failed to build compressor: %v", err)
	}

	if _, err := c.Decompress([]byte("definitely not zstd")); err == nil {
		t.Error("Expected an error decoding garbage")
	}
}
