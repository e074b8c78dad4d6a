package compression

import (
	"io"

	"github.com/dsnet/compress/bzip2"
)

// NewBZIP2Reader returns a reader decompressing BZIP2 data from r
func NewBZIP2Reader(r io.Reader) (io.ReadCloser, error) {
	return bzip2.NewReader(r, nil)
}
