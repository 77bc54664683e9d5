// Package compression provides the codecs used to store draft content.
package compression

import "fmt"

type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// ForName maps a storage.compression config value to a Compressor.
func ForName(name string) (Compressor, error) {
	switch name {
	case "zstd":
		z, err := NewZstdCompressor()
		if err != nil {
			return nil, fmt.Errorf("error creating zstd codec: %w", err)
		}
		return z, nil
	case "gzip":
		return GzipCompressor{}, nil
	case "", "none":
		return NoopCompressor{}, nil
	default:
		return nil, fmt.Errorf("unknown compression %q", name)
	}
}

type NoopCompressor struct{}

func (NoopCompressor) Compress(data []byte) ([]byte, error)   { return data, nil }
func (NoopCompressor) Decompress(data []byte) ([]byte, error) { return data, nil }
