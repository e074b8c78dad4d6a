package importer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/deploymenttheory/go-workflow-importer/internal/config"
	"github.com/deploymenttheory/go-workflow-importer/internal/logger"
	compression "github.com/deploymenttheory/go-workflow-importer/internal/utils/compressionutil"
	"github.com/deploymenttheory/go-workflow-importer/internal/utils/fsutil"
	"github.com/deploymenttheory/go-workflow-importer/internal/utils/jsonutil"
	download "github.com/deploymenttheory/go-workflow-importer/internal/utils/netutil"
	"github.com/deploymenttheory/go-workflow-importer/internal/workflow"
	"github.com/spf13/afero"
)

// Scratch subdirectories
const (
	localArchivesDir    = "local_zips"
	explicitArchivesDir = "explicit_zips"
	onlineReposDir      = "online_repos"
)

// SourceOptions selects where candidates are collected from
type SourceOptions struct {
	LocalRoots       []string
	LocalArchives    []string
	Repositories     []string
	SkipOnline       bool
	ScanRootArchives bool
	IgnoreDirs       []string

	// LargeThreshold is the archive size above which explicit archives are
	// streamed instead of extracted
	LargeThreshold int64
	// MaxEntrySize bounds the entries read from streamed archives
	MaxEntrySize int64

	CodeloadURL string
	Branches    []string
}

// Collector gathers workflow candidates from local folders, archives and
// repository snapshots
type Collector struct {
	fs         afero.Fs
	opts       SourceOptions
	scratch    *fsutil.ScratchDir
	downloader *download.Downloader

	// FilesScanned counts the JSON files visited by the last Collect
	FilesScanned int
}

// NewCollector creates a Collector. Archives and snapshots are unpacked
// below scratch. downloader may be nil when online sources are skipped.
func NewCollector(fs afero.Fs, scratch *fsutil.ScratchDir, downloader *download.Downloader, opts SourceOptions) *Collector {
	return &Collector{
		fs:         fs,
		opts:       opts,
		scratch:    scratch,
		downloader: downloader,
	}
}

// Collect returns every candidate in discovery order: workflows streamed from
// large archives first, then the JSON files of each root in root order.
// Unreadable sources are logged and skipped.
func (c *Collector) Collect(ctx context.Context) ([]workflow.Candidate, error) {
	c.FilesScanned = 0

	roots := c.localRoots()

	if c.opts.ScanRootArchives {
		roots = append(roots, c.extractRootArchives(roots)...)
	}

	extracted, streamed := c.splitExplicitArchives()
	roots = append(roots, extracted...)

	if !c.opts.SkipOnline {
		roots = append(roots, c.fetchRepositories(ctx)...)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var candidates []workflow.Candidate
	for _, archive := range streamed {
		found := c.streamArchive(archive)
		if len(found) > 0 {
			logger.LogInfo("Streamed workflows from large archive", map[string]interface{}{
				"archive":    filepath.Base(archive),
				"candidates": len(found),
			})
		}
		candidates = append(candidates, found...)
	}

	for _, root := range roots {
		found, err := c.scanRoot(ctx, root)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, found...)
	}

	logger.LogInfo("Scan complete", map[string]interface{}{
		"files":      c.FilesScanned,
		"candidates": len(candidates),
	})
	return candidates, nil
}

func (c *Collector) localRoots() []string {
	var roots []string
	for _, root := range c.opts.LocalRoots {
		if ok, _ := afero.DirExists(c.fs, root); ok {
			roots = append(roots, root)
			continue
		}
		logger.LogWarn("Local root not found, skipping", map[string]interface{}{"root": root})
	}
	return roots
}

// extractRootArchives unpacks archives lying inside the local roots
func (c *Collector) extractRootArchives(roots []string) []string {
	var extracted []string
	for _, root := range roots {
		archives, err := fsutil.DiscoverArchives(c.fs, root, c.opts.IgnoreDirs)
		if err != nil {
			logger.LogWarn("Archive scan failed", map[string]interface{}{"root": root, "error": err.Error()})
			continue
		}
		for _, archive := range archives {
			if dir, ok := c.extract(archive, localArchivesDir); ok {
				extracted = append(extracted, dir)
			}
		}
	}
	return extracted
}

// splitExplicitArchives extracts small explicit archives and returns the
// large ones to be streamed
func (c *Collector) splitExplicitArchives() (extracted, streamed []string) {
	for _, archive := range c.opts.LocalArchives {
		size, err := fsutil.FileSize(c.fs, archive)
		if err != nil {
			logger.LogWarn("Archive not found, skipping", map[string]interface{}{"archive": archive})
			continue
		}
		if !compression.IsArchiveName(archive) {
			if _, err := compression.DetectArchiveFormat(c.fs, archive); err != nil {
				logger.LogWarn("Not a supported archive, skipping", map[string]interface{}{"archive": archive, "error": err.Error()})
				continue
			}
		}
		if c.opts.LargeThreshold > 0 && size > c.opts.LargeThreshold {
			streamed = append(streamed, archive)
			continue
		}
		if dir, ok := c.extract(archive, explicitArchivesDir); ok {
			extracted = append(extracted, dir)
		}
	}
	return extracted, streamed
}

func (c *Collector) extract(archive, group string) (string, bool) {
	if _, err := c.scratch.Sub(group); err != nil {
		logger.LogWarn("Archive extraction failed, skipping", map[string]interface{}{"archive": archive, "error": err.Error()})
		return "", false
	}

	target := c.uniqueTarget(group, "zip_"+compression.ArchiveStem(archive))
	if err := compression.ExtractArchive(c.fs, archive, target); err != nil {
		logger.LogWarn("Archive extraction failed, skipping", map[string]interface{}{
			"archive": archive,
			"error":   err.Error(),
		})
		return "", false
	}
	logger.LogDebug("Archive extracted", map[string]interface{}{"archive": archive, "target": target})
	return target, true
}

// uniqueTarget keeps sources sharing a stem from unpacking into one folder
func (c *Collector) uniqueTarget(group, name string) string {
	target := c.scratch.Join(group, name)
	for n := 2; ; n++ {
		if exists, _ := afero.Exists(c.fs, target); !exists {
			return target
		}
		target = c.scratch.Join(group, fmt.Sprintf("%s_%d", name, n))
	}
}

func (c *Collector) fetchRepositories(ctx context.Context) []string {
	if c.downloader == nil {
		return nil
	}

	destDir, err := c.scratch.Sub(onlineReposDir)
	if err != nil {
		logger.LogWarn("Skipped online repositories", map[string]interface{}{"error": err.Error()})
		return nil
	}

	var roots []string
	for _, repo := range config.MergeUnique(nil, c.opts.Repositories) {
		if ctx.Err() != nil {
			return roots
		}

		snapshot, err := c.downloader.FetchSnapshot(ctx, c.opts.CodeloadURL, repo, c.opts.Branches, destDir)
		if err != nil {
			logger.LogWarn("Skipped repository (download failed)", map[string]interface{}{"repo": repo, "error": err.Error()})
			continue
		}

		target := c.uniqueTarget(onlineReposDir, download.SnapshotName(snapshot.Repository, snapshot.Branch))
		if err := compression.ExtractArchive(c.fs, snapshot.Path, target); err != nil {
			logger.LogWarn("Skipped repository (extraction failed)", map[string]interface{}{"repo": repo, "error": err.Error()})
			continue
		}

		logger.LogInfo("Fetched repository", map[string]interface{}{"repo": repo, "branch": snapshot.Branch})
		roots = append(roots, target)
	}
	return roots
}

// streamArchive reads workflow-looking JSON entries straight out of an
// archive without unpacking it
func (c *Collector) streamArchive(archive string) []workflow.Candidate {
	var candidates []workflow.Candidate
	base := filepath.Base(archive)

	err := compression.WalkArchive(c.fs, archive, func(entry compression.Entry) error {
		if !isWorkflowEntry(entry.Name) {
			return nil
		}
		if c.opts.MaxEntrySize > 0 && entry.Size > c.opts.MaxEntrySize {
			return nil
		}

		data, err := c.readEntry(entry)
		if err != nil {
			logger.LogDebug("Skipping unreadable archive entry", map[string]interface{}{"entry": entry.Name, "error": err.Error()})
			return nil
		}

		payload, err := jsonutil.Decode(jsonutil.DropInvalidUTF8(data))
		if err != nil {
			return nil
		}
		candidates = append(candidates, workflow.Candidates(payload, entry.Name, base+":"+entry.Name)...)
		return nil
	})
	if err != nil {
		logger.LogWarn("Archive stream stopped early", map[string]interface{}{"archive": archive, "error": err.Error()})
	}

	return candidates
}

func (c *Collector) readEntry(entry compression.Entry) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	if c.opts.MaxEntrySize <= 0 {
		return io.ReadAll(rc)
	}

	data, err := io.ReadAll(io.LimitReader(rc, c.opts.MaxEntrySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > c.opts.MaxEntrySize {
		return nil, fmt.Errorf("entry larger than %d bytes", c.opts.MaxEntrySize)
	}
	return data, nil
}

func isWorkflowEntry(name string) bool {
	lower := strings.ToLower(name)
	if !strings.HasSuffix(lower, ".json") {
		return false
	}
	return strings.Contains(lower, "workflow") ||
		strings.Contains(lower, "template") ||
		strings.Contains(lower, ".n8n")
}

func (c *Collector) scanRoot(ctx context.Context, root string) ([]workflow.Candidate, error) {
	files, err := fsutil.DiscoverJSONFiles(c.fs, root, c.opts.IgnoreDirs)
	if err != nil {
		logger.LogWarn("Root scan failed, skipping", map[string]interface{}{"root": root, "error": err.Error()})
		return nil, nil
	}

	var candidates []workflow.Candidate
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.FilesScanned++

		payload, err := jsonutil.LoadFile(c.fs, file)
		if err != nil {
			logger.LogDebug("Skipping unreadable JSON file", map[string]interface{}{"file": file, "error": err.Error()})
			continue
		}
		candidates = append(candidates, workflow.Candidates(payload, file, file)...)
	}
	return candidates, nil
}
