package fsutil

import (
	"fmt"

	"github.com/deploymenttheory/go-workflow-importer/internal/utils/errors"
	"github.com/spf13/afero"
)

// ScratchPrefix names the per-run working directories
const ScratchPrefix = "n8n-master-import-"

// ScratchDir is a per-run working directory holding extracted archives and
// downloaded snapshots
type ScratchDir struct {
	fs   afero.Fs
	Path string
}

// NewScratchDir creates a fresh working directory inside parent. An empty
// parent means the system temporary directory.
func NewScratchDir(fs afero.Fs, parent string) (*ScratchDir, error) {
	if parent != "" {
		if err := fs.MkdirAll(parent, 0755); err != nil {
			return nil, fmt.Errorf("%w: %s", errors.ErrDirCreateFailed, err.Error())
		}
	}

	path, err := afero.TempDir(fs, parent, ScratchPrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrDirCreateFailed, err.Error())
	}
	return &ScratchDir{fs: fs, Path: path}, nil
}

// Sub creates and returns a subdirectory of the scratch directory
func (s *ScratchDir) Sub(elem ...string) (string, error) {
	path := s.Join(elem...)
	if err := s.fs.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("%w: %s", errors.ErrDirCreateFailed, err.Error())
	}
	return path, nil
}

// Join builds a path inside the scratch directory without creating it
func (s *ScratchDir) Join(elem ...string) string {
	return joinPath(s.Path, elem...)
}

// Remove deletes the scratch directory and everything below it
func (s *ScratchDir) Remove() error {
	return s.fs.RemoveAll(s.Path)
}
