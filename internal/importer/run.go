package importer

import (
	"context"
	"time"

	"github.com/deploymenttheory/go-workflow-importer/internal/config"
	"github.com/deploymenttheory/go-workflow-importer/internal/logger"
	"github.com/deploymenttheory/go-workflow-importer/internal/n8n"
	"github.com/deploymenttheory/go-workflow-importer/internal/utils/cryptoutil"
	"github.com/deploymenttheory/go-workflow-importer/internal/utils/fsutil"
	download "github.com/deploymenttheory/go-workflow-importer/internal/utils/netutil"
	"github.com/deploymenttheory/go-workflow-importer/internal/workflow"
	"github.com/spf13/afero"
)

// Options configures a full import run
type Options struct {
	N8N     n8n.Options
	Sources SourceOptions
	Limits  Limits

	FingerprintAlgorithm string
	FetchTimeout         time.Duration

	TempDir    string
	KeepTemp   bool
	ReportPath string

	// DryRun collects and deduplicates candidates without contacting the
	// destination
	DryRun bool

	// FS backs discovery, archive extraction, snapshot downloads, scratch
	// space and the report. nil means the OS file system.
	FS afero.Fs
}

// OptionsFromConfig maps the application configuration onto run options
func OptionsFromConfig(cfg *config.AppConfig) Options {
	return Options{
		N8N: n8n.Options{
			BaseURL:   cfg.N8N.URL,
			APIKey:    cfg.N8N.APIKey,
			Timeout:   cfg.N8N.Timeout,
			PageLimit: cfg.N8N.PageLimit,
			MaxPages:  cfg.N8N.MaxPages,
		},
		Sources: SourceOptions{
			LocalRoots:       cfg.Sources.LocalRoots,
			LocalArchives:    cfg.Sources.LocalArchives,
			Repositories:     cfg.Sources.Repositories,
			SkipOnline:       cfg.Sources.SkipOnline,
			ScanRootArchives: cfg.Sources.ScanRootArchives,
			IgnoreDirs:       cfg.Sources.IgnoreDirs,
			LargeThreshold:   cfg.Archive.LargeThreshold,
			MaxEntrySize:     cfg.Archive.MaxEntrySize,
			CodeloadURL:      cfg.Fetch.CodeloadURL,
			Branches:         cfg.Fetch.Branches,
		},
		Limits: Limits{
			ProgressEvery: cfg.Import.ProgressEvery,
			MaxFailures:   cfg.Import.MaxFailures,
			MaxImports:    cfg.Import.MaxImports,
		},
		FingerprintAlgorithm: cfg.Fingerprint.Algorithm,
		FetchTimeout:         cfg.Fetch.Timeout,
		TempDir:              cfg.TempDir,
		KeepTemp:             cfg.KeepTemp,
		ReportPath:           cfg.Report,
	}
}

// Run executes the whole pipeline: credential check, health probe, source
// collection, import and report. A nil report with a nil error means no
// candidates were found and nothing was written.
func Run(ctx context.Context, opts Options) (*Report, error) {
	fs := opts.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}

	fingerprinter, err := workflow.NewFingerprinter(cryptoutil.HashAlgorithm(opts.FingerprintAlgorithm))
	if err != nil {
		return nil, err
	}

	var dest Destination
	if opts.DryRun {
		dest = dryRunDestination{}
	} else {
		client, err := n8n.NewClient(opts.N8N)
		if err != nil {
			return nil, err
		}
		dest = client
	}

	scratch, err := fsutil.NewScratchDir(fs, opts.TempDir)
	if err != nil {
		return nil, err
	}
	logger.LogInfo("Scratch directory ready", map[string]interface{}{"path": scratch.Path})
	defer func() {
		if opts.KeepTemp {
			logger.LogInfo("Keeping scratch directory", map[string]interface{}{"path": scratch.Path})
			return
		}
		if err := scratch.Remove(); err != nil {
			logger.LogWarn("Failed to remove scratch directory", map[string]interface{}{"path": scratch.Path, "error": err.Error()})
		}
	}()

	if client, ok := dest.(*n8n.Client); ok {
		if err := client.Healthcheck(ctx); err != nil {
			logger.LogError("Destination unreachable", err, map[string]interface{}{"url": opts.N8N.BaseURL})
			return nil, err
		}
		logger.LogInfo("Destination reachable", map[string]interface{}{"url": opts.N8N.BaseURL})
	}

	var downloader *download.Downloader
	if !opts.Sources.SkipOnline {
		downloader = download.NewDownloader(fs, opts.FetchTimeout)
	}

	candidates, err := NewCollector(fs, scratch, downloader, opts.Sources).Collect(ctx)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		logger.LogInfo("No workflow candidates found", nil)
		return nil, nil
	}

	report, err := New(dest, fingerprinter, opts.Limits).Import(ctx, candidates)
	if err != nil {
		return nil, err
	}

	if opts.ReportPath != "" {
		if err := report.Write(fs, opts.ReportPath); err != nil {
			logger.LogError("Failed to write report", err, map[string]interface{}{"path": opts.ReportPath})
			return report, err
		}
	}

	logger.LogInfo("Import finished", map[string]interface{}{
		"imported":           report.Imported,
		"skipped_duplicates": report.SkippedDuplicates,
		"failed":             report.Failed,
		"report":             opts.ReportPath,
		"dry_run":            opts.DryRun,
	})
	return report, nil
}

// dryRunDestination has an empty catalog and accepts every workflow
type dryRunDestination struct{}

func (dryRunDestination) ListWorkflows(context.Context) ([]map[string]interface{}, error) {
	return nil, nil
}

func (dryRunDestination) CreateWorkflow(context.Context, workflow.Workflow) (string, error) {
	return "dry-run", nil
}

var _ Destination = (*n8n.Client)(nil)
