package compression

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/deploymenttheory/go-workflow-importer/internal/utils/errors"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

// Format identifies a supported archive container
type Format string

const (
	FormatZIP   Format = "zip"
	FormatTAR   Format = "tar"
	FormatGZIP  Format = "gzip"  // gzip-compressed tar
	FormatBZIP2 Format = "bzip2" // bzip2-compressed tar
	FormatXZ    Format = "xz"    // xz-compressed tar
)

var mimeFormats = map[string]Format{
	"application/zip":     FormatZIP,
	"application/x-tar":   FormatTAR,
	"application/gzip":    FormatGZIP,
	"application/x-bzip2": FormatBZIP2,
	"application/x-xz":    FormatXZ,
}

// ArchiveExtensions lists the file suffixes recognized as archives
var ArchiveExtensions = []string{".zip", ".tar", ".tar.gz", ".tgz", ".tar.bz2", ".tbz2", ".tar.xz", ".txz"}

// Entry is a single file inside an archive
type Entry struct {
	Name string
	Size int64
	open func() (io.ReadCloser, error)
}

// Open returns the entry content. For tar based archives the reader is only
// valid until the walk callback returns.
func (e Entry) Open() (io.ReadCloser, error) {
	return e.open()
}

// DetectArchiveFormat determines the archive format using content sniffing and file extension
func DetectArchiveFormat(fs afero.Fs, filename string) (Format, error) {
	file, err := fs.Open(filename)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errors.ErrFileReadError, err.Error())
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errors.ErrFileReadError, err.Error())
	}

	// Subtypes such as jar or docx are still zip containers
	for m := mtype; m != nil; m = m.Parent() {
		if format, ok := mimeFormats[m.String()]; ok {
			return format, nil
		}
	}

	// Fallback to extension-based detection
	if format, ok := formatFromExtension(filename); ok {
		return format, nil
	}
	return "", fmt.Errorf("%w: %s", errors.ErrUnsupportedCompression, filepath.Base(filename))
}

func formatFromExtension(filename string) (Format, bool) {
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".zip"):
		return FormatZIP, true
	case strings.HasSuffix(name, ".tar"):
		return FormatTAR, true
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return FormatGZIP, true
	case strings.HasSuffix(name, ".tar.bz2"), strings.HasSuffix(name, ".tbz2"):
		return FormatBZIP2, true
	case strings.HasSuffix(name, ".tar.xz"), strings.HasSuffix(name, ".txz"):
		return FormatXZ, true
	}
	return "", false
}

// IsArchiveName reports whether a file name carries a recognized archive suffix
func IsArchiveName(filename string) bool {
	_, ok := formatFromExtension(filename)
	return ok
}

// ArchiveStem returns the file name without its archive suffix
func ArchiveStem(filename string) string {
	base := filepath.Base(filename)
	lower := strings.ToLower(base)
	for _, ext := range ArchiveExtensions {
		if strings.HasSuffix(lower, ext) {
			return base[:len(base)-len(ext)]
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ExtractArchive fully extracts an archive of any supported format into dst
func ExtractArchive(fs afero.Fs, src, dst string) error {
	format, err := DetectArchiveFormat(fs, src)
	if err != nil {
		return err
	}

	if format == FormatZIP {
		return ExtractZIP(fs, src, dst)
	}

	return withTarStream(fs, src, format, func(r io.Reader) error {
		return extractTarStream(fs, r, dst)
	})
}

// WalkArchive calls fn for every regular file in the archive without
// extracting it to disk
func WalkArchive(fs afero.Fs, src string, fn func(Entry) error) error {
	format, err := DetectArchiveFormat(fs, src)
	if err != nil {
		return err
	}

	if format == FormatZIP {
		return walkZIP(fs, src, fn)
	}

	return withTarStream(fs, src, format, func(r io.Reader) error {
		return walkTarStream(r, fn)
	})
}

// withTarStream opens src and hands fn the decompressed tar stream
func withTarStream(fs afero.Fs, src string, format Format, fn func(io.Reader) error) error {
	file, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %s", errors.ErrFileReadError, err.Error())
	}
	defer file.Close()

	reader, err := decompressor(format, file)
	if err != nil {
		return fmt.Errorf("%w: %s", errors.ErrDecompressionFailed, err.Error())
	}
	defer reader.Close()

	return fn(reader)
}

func decompressor(format Format, r io.Reader) (io.ReadCloser, error) {
	switch format {
	case FormatTAR:
		return io.NopCloser(r), nil
	case FormatGZIP:
		return NewGZIPReader(r)
	case FormatBZIP2:
		return NewBZIP2Reader(r)
	case FormatXZ:
		return NewXZReader(r)
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedCompression, format)
	}
}

// safeJoin resolves an entry name below dst, refusing names that escape it
func safeJoin(dst, name string) (string, error) {
	target := filepath.Join(dst, filepath.FromSlash(name))
	rel, err := filepath.Rel(dst, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %s", errors.ErrUnsafeArchivePath, name)
	}
	return target, nil
}

// writeFile copies r into a new file at path, creating parent directories
func writeFile(fs afero.Fs, path string, r io.Reader) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrDirCreateFailed, err.Error())
	}

	out, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %s", errors.ErrFileWriteError, err.Error())
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrExtractionFailed, err.Error())
	}
	return nil
}
