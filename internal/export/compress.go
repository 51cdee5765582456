package export

import (
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// stripCompression removes a trailing ".zst" or ".gz" from path.
func stripCompression(path string) string {
	for _, ext := range []string{".zst", ".gz"} {
		if strings.HasSuffix(path, ext) {
			return strings.TrimSuffix(path, ext)
		}
	}
	return path
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// CompressWriter wraps w with a zstd or gzip encoder when path ends in ".zst"
// or ".gz". Close flushes the encoder but does not close w.
func CompressWriter(w io.Writer, path string) (io.WriteCloser, error) {
	switch {
	case strings.HasSuffix(path, ".zst"):
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return enc, nil
	case strings.HasSuffix(path, ".gz"):
		return gzip.NewWriter(w), nil
	}
	return nopCloser{w}, nil
}
