package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deploymenttheory/go-workflow-importer/internal/logger"
	"github.com/deploymenttheory/go-workflow-importer/internal/workflow"
	"github.com/google/uuid"
)

// Destination is the workflow catalog that candidates are imported into
type Destination interface {
	ListWorkflows(ctx context.Context) ([]map[string]interface{}, error)
	CreateWorkflow(ctx context.Context, wf workflow.Workflow) (string, error)
}

// Limits bounds progress reporting and report size
type Limits struct {
	ProgressEvery int
	MaxFailures   int
	MaxImports    int
}

// DefaultLimits replace zero or negative Limits fields
var DefaultLimits = Limits{
	ProgressEvery: 100,
	MaxFailures:   500,
	MaxImports:    1000,
}

// Importer deduplicates candidates against the destination catalog and
// creates the new ones under unique names
type Importer struct {
	dest          Destination
	fingerprinter *workflow.Fingerprinter
	limits        Limits

	now   func() time.Time
	runID func() string
}

// New creates an Importer
func New(dest Destination, fingerprinter *workflow.Fingerprinter, limits Limits) *Importer {
	if limits.ProgressEvery <= 0 {
		limits.ProgressEvery = DefaultLimits.ProgressEvery
	}
	if limits.MaxFailures <= 0 {
		limits.MaxFailures = DefaultLimits.MaxFailures
	}
	if limits.MaxImports <= 0 {
		limits.MaxImports = DefaultLimits.MaxImports
	}

	return &Importer{
		dest:          dest,
		fingerprinter: fingerprinter,
		limits:        limits,
		now:           time.Now,
		runID:         uuid.NewString,
	}
}

// Import processes candidates in order. Only a failed catalog listing is
// returned as an error; rejected creations end up in the report.
func (im *Importer) Import(ctx context.Context, candidates []workflow.Candidate) (*Report, error) {
	existing, err := im.dest.ListWorkflows(ctx)
	if err != nil {
		return nil, err
	}

	usedNames := make(map[string]struct{}, len(existing))
	seen := make(map[string]struct{}, len(existing)+len(candidates))

	for _, row := range existing {
		if name, ok := row[workflow.KeyName].(string); ok {
			if name = strings.TrimSpace(name); name != "" {
				usedNames[name] = struct{}{}
			}
		}
		if normalized, ok := workflow.Normalize(row, "existing"); ok {
			if sum, err := im.fingerprinter.Fingerprint(normalized); err == nil {
				seen[sum] = struct{}{}
			}
		}
	}
	logger.LogInfo("Loaded destination catalog", map[string]interface{}{
		"workflows":    len(existing),
		"fingerprints": len(seen),
	})

	run := &importRun{
		report: &Report{
			RunID:           im.runID(),
			TotalCandidates: len(candidates),
		},
		seen:      seen,
		usedNames: usedNames,
	}

	for i, candidate := range candidates {
		index := i + 1
		im.importOne(ctx, run, index, candidate)

		if index%im.limits.ProgressEvery == 0 {
			logger.LogInfo("Import progress", map[string]interface{}{
				"processed":          index,
				"imported":           run.report.Imported,
				"skipped_duplicates": run.report.SkippedDuplicates,
				"failed":             run.report.Failed,
			})
		}
	}

	report := run.report
	report.Timestamp = im.now().Unix()
	report.Failures = capFailures(run.failures, im.limits.MaxFailures)
	report.Imports = capImports(run.imports, im.limits.MaxImports)
	return report, nil
}

// importRun is the state shared by the candidates of one Import call
type importRun struct {
	report    *Report
	seen      map[string]struct{}
	usedNames map[string]struct{}
	failures  []Failure
	imports   []Imported
}

// importOne fingerprints a single candidate and creates it unless its
// content was already seen
func (im *Importer) importOne(ctx context.Context, run *importRun, index int, candidate workflow.Candidate) {
	sum, err := im.fingerprinter.Fingerprint(candidate.Workflow)
	if err != nil {
		run.report.Failed++
		run.failures = append(run.failures, Failure{Index: index, Name: candidate.Workflow.Name(), Source: candidate.Source, Error: err.Error()})
		return
	}
	if _, dup := run.seen[sum]; dup {
		run.report.SkippedDuplicates++
		logger.LogDebug("Skipping duplicate workflow", map[string]interface{}{"index": index, "source": candidate.Source})
		return
	}
	run.seen[sum] = struct{}{}

	wf := candidate.Workflow.WithName(UniqueName(candidate.Workflow.Name(), run.usedNames))

	id, err := im.dest.CreateWorkflow(ctx, wf)
	if err != nil {
		run.report.Failed++
		run.failures = append(run.failures, Failure{Index: index, Name: wf.Name(), Source: candidate.Source, Error: err.Error()})
		logger.LogDebug("Workflow creation failed", map[string]interface{}{"index": index, "name": wf.Name(), "error": err.Error()})
		return
	}
	run.report.Imported++
	run.imports = append(run.imports, Imported{Index: index, Name: wf.Name(), Source: candidate.Source, WorkflowID: id})
}

// UniqueName sanitizes base and, when the result is already taken, appends
// " [n]" for the smallest n from 2 that yields a free name. Long names are
// shortened so the suffix survives the length limit. The chosen name is
// added to used.
func UniqueName(base string, used map[string]struct{}) string {
	name := workflow.SanitizeName(base)
	if _, taken := used[name]; !taken {
		used[name] = struct{}{}
		return name
	}

	for n := 2; ; n++ {
		suffix := fmt.Sprintf(" [%d]", n)
		stem := []rune(name)
		if limit := workflow.MaxNameLength - len(suffix); len(stem) > limit {
			stem = stem[:limit]
		}
		candidate := workflow.SanitizeName(string(stem) + suffix)
		if _, taken := used[candidate]; !taken {
			used[candidate] = struct{}{}
			return candidate
		}
	}
}
