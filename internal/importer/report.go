package importer

import (
	"fmt"

	"github.com/deploymenttheory/go-workflow-importer/internal/utils/errors"
	"github.com/deploymenttheory/go-workflow-importer/internal/utils/jsonutil"
	"github.com/spf13/afero"
)

// Failure records a candidate the destination did not accept
type Failure struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Source string `json:"source"`
	Error  string `json:"error"`
}

// Imported records a candidate created on the destination
type Imported struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	Source     string `json:"source"`
	WorkflowID string `json:"workflowId"`
}

// Report summarizes one import run. Indexes are 1-based positions in
// discovery order. Failures and Imports are capped; the counters are not.
type Report struct {
	RunID             string     `json:"runId"`
	Timestamp         int64      `json:"timestamp"`
	TotalCandidates   int        `json:"totalCandidates"`
	Imported          int        `json:"imported"`
	SkippedDuplicates int        `json:"skippedDuplicates"`
	Failed            int        `json:"failed"`
	Failures          []Failure  `json:"failures"`
	Imports           []Imported `json:"imports"`
}

// Write persists the report as indented JSON, creating parent directories
func (r *Report) Write(fs afero.Fs, path string) error {
	if err := jsonutil.WriteJSON(fs, path, r); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrReportWriteFailed, err.Error())
	}
	return nil
}

func capFailures(rows []Failure, limit int) []Failure {
	if len(rows) > limit {
		rows = rows[:limit]
	}
	if rows == nil {
		return []Failure{}
	}
	return rows
}

func capImports(rows []Imported, limit int) []Imported {
	if len(rows) > limit {
		rows = rows[:limit]
	}
	if rows == nil {
		return []Imported{}
	}
	return rows
}
