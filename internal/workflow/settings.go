package workflow

import (
	"github.com/deploymenttheory/go-workflow-importer/internal/utils/jsonutil"
)

var allowedExecutionOrders = map[string]bool{
	"v0": true,
	"v1": true,
}

var allowedCallerPolicies = map[string]bool{
	"any":                    true,
	"none":                   true,
	"workflowsFromAList":     true,
	"workflowsFromSameOwner": true,
}

// SanitizeSettings keeps only recognized settings whose values are valid.
// Nothing is defaulted: an absent key means the setting is not set.
func SanitizeSettings(value interface{}) map[string]interface{} {
	cleaned := map[string]interface{}{}

	settings, ok := jsonutil.AsObject(value)
	if !ok {
		return cleaned
	}

	if order, ok := jsonutil.AsString(settings["executionOrder"]); ok && allowedExecutionOrders[order] {
		cleaned["executionOrder"] = order
	}

	if timezone, ok := jsonutil.NonBlankString(settings["timezone"]); ok {
		cleaned["timezone"] = timezone
	}

	if errorWorkflow, ok := jsonutil.NonBlankString(settings["errorWorkflow"]); ok {
		cleaned["errorWorkflow"] = errorWorkflow
	}

	if policy, ok := jsonutil.AsString(settings["callerPolicy"]); ok && allowedCallerPolicies[policy] {
		cleaned["callerPolicy"] = policy
	}

	if saveProgress, ok := jsonutil.ParseBool(settings["saveExecutionProgress"]); ok {
		cleaned["saveExecutionProgress"] = saveProgress
	}

	return cleaned
}
