package workflow

import (
	"github.com/deploymenttheory/go-workflow-importer/internal/utils/jsonutil"
)

// Extract finds every usable workflow inside a parsed JSON document. A list
// contributes the workflows of each object element. An object contributes
// itself, each entry of a "workflows" list and a nested "workflow" object,
// in that order. Extract never fails; documents without workflows yield nil.
func Extract(payload interface{}, sourceName string) []Workflow {
	if items, ok := jsonutil.AsArray(payload); ok {
		var results []Workflow
		for _, item := range items {
			if obj, ok := jsonutil.AsObject(item); ok {
				results = append(results, extractObject(obj, sourceName)...)
			}
		}
		return results
	}

	if obj, ok := jsonutil.AsObject(payload); ok {
		return extractObject(obj, sourceName)
	}

	return nil
}

func extractObject(obj map[string]interface{}, sourceName string) []Workflow {
	var results []Workflow

	if wf, ok := Normalize(obj, sourceName); ok {
		results = append(results, wf)
	}

	if nested, ok := jsonutil.AsArray(obj["workflows"]); ok {
		for _, entry := range nested {
			if wf, ok := Normalize(entry, sourceName); ok {
				results = append(results, wf)
			}
		}
	}

	if single, ok := jsonutil.AsObject(obj["workflow"]); ok {
		if wf, ok := Normalize(single, sourceName); ok {
			results = append(results, wf)
		}
	}

	return results
}

// Candidates wraps the workflows extracted from a document as candidates
// labelled with source
func Candidates(payload interface{}, sourceName, source string) []Candidate {
	workflows := Extract(payload, sourceName)
	if len(workflows) == 0 {
		return nil
	}

	candidates := make([]Candidate, 0, len(workflows))
	for _, wf := range workflows {
		candidates = append(candidates, Candidate{Source: source, Workflow: wf})
	}
	return candidates
}
