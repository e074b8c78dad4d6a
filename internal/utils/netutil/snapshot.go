package download

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/deploymenttheory/go-workflow-importer/internal/utils/errors"
	"github.com/gosimple/slug"
)

// Snapshot is a downloaded branch archive of a repository
type Snapshot struct {
	Repository string
	Branch     string
	Path       string
}

// SnapshotURL returns the branch archive location of an owner/name repository
func SnapshotURL(baseURL, repository, branch string) string {
	return fmt.Sprintf("%s/%s/zip/refs/heads/%s", strings.TrimRight(baseURL, "/"), repository, branch)
}

// SnapshotName returns the file system friendly stem used for a repository
// branch. Owner and name are slugged separately so that repositories such as
// a/b-c and a-b/c never share a stem.
func SnapshotName(repository, branch string) string {
	owner, name, found := strings.Cut(strings.Trim(repository, "/"), "/")
	if !found {
		return slug.Make(owner) + "__" + branch
	}
	return slug.Make(owner) + "__" + slug.Make(name) + "__" + branch
}

// FetchSnapshot tries each branch in order and saves the first archive that
// downloads successfully into destDir
func (d *Downloader) FetchSnapshot(ctx context.Context, baseURL, repository string, branches []string, destDir string) (*Snapshot, error) {
	repository = strings.Trim(strings.TrimSpace(repository), "/")
	if strings.Count(repository, "/") != 1 {
		return nil, fmt.Errorf("%w: repository must be owner/name, got %q", errors.ErrInvalidArgument, repository)
	}

	var lastErr error
	for _, branch := range branches {
		dest := filepath.Join(destDir, SnapshotName(repository, branch)+".zip")
		if _, err := d.DownloadFile(ctx, SnapshotURL(baseURL, repository, branch), dest); err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		return &Snapshot{Repository: repository, Branch: branch, Path: dest}, nil
	}

	if lastErr == nil {
		return nil, fmt.Errorf("%w: %s: no branches configured", errors.ErrRepositoryNotFound, repository)
	}
	return nil, fmt.Errorf("%w: %s: %s", errors.ErrRepositoryNotFound, repository, lastErr.Error())
}
