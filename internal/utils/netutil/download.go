package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/deploymenttheory/go-workflow-importer/internal/logger"
	"github.com/deploymenttheory/go-workflow-importer/internal/utils/cryptoutil"
	"github.com/deploymenttheory/go-workflow-importer/internal/utils/errors"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/afero"
)

// Downloader fetches remote files to paths on its file system
type Downloader struct {
	fs     afero.Fs
	client *resty.Client
}

// NewDownloader creates a Downloader writing to fs whose requests give up
// after timeout. Failed downloads are never retried.
func NewDownloader(fs afero.Fs, timeout time.Duration) *Downloader {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", "go-workflow-importer")

	return &Downloader{fs: fs, client: client}
}

// DownloadFile downloads url into dest and returns the SHA-256 of the
// written content. Any status other than 200 fails with ErrHTTPStatusFailed.
func (d *Downloader) DownloadFile(ctx context.Context, url, dest string) (string, error) {
	logger.LogDebug("Downloading file", map[string]interface{}{"url": url})

	resp, err := d.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errors.ErrDownloadFailed, err.Error())
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP status %d", errors.ErrHTTPStatusFailed, resp.StatusCode())
	}

	if err := d.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("%w: %s", errors.ErrDirCreateFailed, err.Error())
	}

	out, err := d.fs.Create(dest)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create file", errors.ErrFileWriteError)
	}
	defer out.Close()

	hasher, err := cryptoutil.NewHashWriter(cryptoutil.SHA256)
	if err != nil {
		return "", err
	}

	written, err := io.Copy(io.MultiWriter(out, hasher), body)
	if err != nil {
		out.Close()
		_ = d.fs.Remove(dest)
		return "", fmt.Errorf("%w: %s", errors.ErrDownloadFailed, err.Error())
	}

	checksum := hasher.SumHex()
	logger.LogDebug("Download completed", map[string]interface{}{
		"url":    url,
		"bytes":  written,
		"sha256": checksum,
	})
	return checksum, nil
}
