package compression

import (
	"archive/zip"
	"fmt"
	"io"

	"github.com/deploymenttheory/go-workflow-importer/internal/utils/errors"
	"github.com/spf13/afero"
)

// openZIP opens src on fs as a zip archive. The returned file must be closed
// once the reader is no longer used.
func openZIP(fs afero.Fs, src string) (*zip.Reader, afero.File, error) {
	file, err := fs.Open(src)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", errors.ErrFileReadError, err.Error())
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("%w: %s", errors.ErrFileReadError, err.Error())
	}

	r, err := zip.NewReader(file, info.Size())
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("%w: %s", errors.ErrInvalidArchive, err.Error())
	}
	return r, file, nil
}

// ExtractZIP extracts a ZIP archive to the given destination
func ExtractZIP(fs afero.Fs, src, dst string) error {
	r, file, err := openZIP(fs, src)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, f := range r.File {
		fpath, err := safeJoin(dst, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := fs.MkdirAll(fpath, 0755); err != nil {
				return fmt.Errorf("%w: %s", errors.ErrDirCreateFailed, err.Error())
			}
			continue
		}
		if !f.Mode().IsRegular() {
			continue
		}

		if err := extractZIPFile(fs, f, fpath); err != nil {
			return err
		}
	}

	return nil
}

func extractZIPFile(fs afero.Fs, f *zip.File, fpath string) error {
	zippedFile, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: %s", errors.ErrInvalidArchive, err.Error())
	}
	defer zippedFile.Close()

	return writeFile(fs, fpath, zippedFile)
}

func walkZIP(fs afero.Fs, src string, fn func(Entry) error) error {
	r, file, err := openZIP(fs, src)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, f := range r.File {
		if !f.Mode().IsRegular() {
			continue
		}
		zf := f
		entry := Entry{
			Name: zf.Name,
			Size: int64(zf.UncompressedSize64),
			open: func() (io.ReadCloser, error) { return zf.Open() },
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
	return nil
}
