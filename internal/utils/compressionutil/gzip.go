package compression

import (
	"compress/gzip"
	"io"
)

// NewGZIPReader returns a reader decompressing GZIP data from r
func NewGZIPReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}
