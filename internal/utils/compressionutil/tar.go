package compression

import (
	"archive/tar"
	"fmt"
	"io"

	"github.com/deploymenttheory/go-workflow-importer/internal/utils/errors"
	"github.com/spf13/afero"
)

func extractTarStream(fs afero.Fs, r io.Reader, dst string) error {
	tr := tar.NewReader(r)

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %s", errors.ErrInvalidArchive, err.Error())
		}

		fpath, err := safeJoin(dst, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := fs.MkdirAll(fpath, 0755); err != nil {
				return fmt.Errorf("%w: %s", errors.ErrDirCreateFailed, err.Error())
			}
		case tar.TypeReg:
			if err := writeFile(fs, fpath, tr); err != nil {
				return err
			}
		}
		// links and special files are never materialized
	}

	return nil
}

func walkTarStream(r io.Reader, fn func(Entry) error) error {
	tr := tar.NewReader(r)

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %s", errors.ErrInvalidArchive, err.Error())
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		entry := Entry{
			Name: hdr.Name,
			Size: hdr.Size,
			open: func() (io.ReadCloser, error) { return io.NopCloser(tr), nil },
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
}
