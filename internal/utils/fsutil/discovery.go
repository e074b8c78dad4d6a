package fsutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/deploymenttheory/go-workflow-importer/internal/utils/errors"
	"github.com/spf13/afero"
)

const (
	// JSONPattern matches workflow documents at any depth
	JSONPattern = "**/*.json"

	// ArchivePattern matches the archive types that can be unpacked
	ArchivePattern = "**/*.{zip,tar,tgz,tar.gz,tar.bz2,tbz2,tar.xz,txz}"
)

// Discover walks root and returns the paths of regular files whose slash
// separated path relative to root matches pattern. Directories named in
// ignoreDirs are not descended into. Results come back in lexical walk order.
func Discover(fs afero.Fs, root, pattern string, ignoreDirs []string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: bad pattern %q", errors.ErrInvalidArgument, pattern)
	}

	exists, err := afero.DirExists(fs, root)
	if err != nil || !exists {
		return nil, fmt.Errorf("%w: %s", errors.ErrDirNotFound, root)
	}

	ignored := make(map[string]bool, len(ignoreDirs))
	for _, name := range ignoreDirs {
		ignored[name] = true
	}

	var matches []string
	walkErr := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// unreadable entries are skipped, the rest of the tree still counts
			if info != nil && info.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			if path != root && ignored[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); ok {
			matches = append(matches, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrPathNotAccessible, walkErr.Error())
	}

	return matches, nil
}

// DiscoverJSONFiles returns every .json file below root
func DiscoverJSONFiles(fs afero.Fs, root string, ignoreDirs []string) ([]string, error) {
	return Discover(fs, root, JSONPattern, ignoreDirs)
}

// DiscoverArchives returns every supported archive below root
func DiscoverArchives(fs afero.Fs, root string, ignoreDirs []string) ([]string, error) {
	return Discover(fs, root, ArchivePattern, ignoreDirs)
}

// FileSize returns the size of a regular file
func FileSize(fs afero.Fs, path string) (int64, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errors.ErrFileNotFound, path)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%w: %s is a directory", errors.ErrUnsupportedFile, path)
	}
	return info.Size(), nil
}
