package workflow

import (
	"github.com/deploymenttheory/go-workflow-importer/internal/utils/jsonutil"
)

// allowedNodeKeys lists the node fields the destination accepts on create
var allowedNodeKeys = map[string]bool{
	"name":             true,
	"type":             true,
	"typeVersion":      true,
	"position":         true,
	"parameters":       true,
	"credentials":      true,
	"disabled":         true,
	"alwaysOutputData": true,
	"continueOnFail":   true,
	"retryOnFail":      true,
	"maxTries":         true,
	"waitBetweenTries": true,
	"executeOnce":      true,
	"onError":          true,
	"notes":            true,
	"notesInFlow":      true,
	"webhookId":        true,
}

var nodeBoolKeys = []string{"disabled", "alwaysOutputData", "continueOnFail", "retryOnFail", "executeOnce", "notesInFlow"}

var nodeNumberKeys = []string{"maxTries", "waitBetweenTries"}

var allowedOnErrorValues = map[string]bool{
	"stopWorkflow":          true,
	"continueRegularOutput": true,
	"continueErrorOutput":   true,
}

// SanitizeNode restricts a node to the allowed keys and coerces its fields.
// It returns false when the node has no usable name or type.
func SanitizeNode(node map[string]interface{}) (map[string]interface{}, bool) {
	cleaned := make(map[string]interface{}, len(allowedNodeKeys))
	for key, value := range node {
		if allowedNodeKeys[key] {
			cleaned[key] = value
		}
	}

	if _, ok := jsonutil.NonBlankString(cleaned["name"]); !ok {
		return nil, false
	}
	if _, ok := jsonutil.NonBlankString(cleaned["type"]); !ok {
		return nil, false
	}

	if _, ok := jsonutil.AsObject(cleaned["parameters"]); !ok {
		cleaned["parameters"] = map[string]interface{}{}
	}

	if version, ok := jsonutil.ParseNumber(cleaned["typeVersion"]); ok {
		cleaned["typeVersion"] = version
	} else {
		cleaned["typeVersion"] = 1.0
	}

	cleaned["position"] = sanitizePosition(cleaned["position"])

	if _, ok := jsonutil.AsObject(cleaned["credentials"]); !ok {
		delete(cleaned, "credentials")
	}

	for _, key := range nodeBoolKeys {
		if value, ok := jsonutil.ParseBool(cleaned[key]); ok {
			cleaned[key] = value
		} else {
			delete(cleaned, key)
		}
	}

	for _, key := range nodeNumberKeys {
		if value, ok := jsonutil.ParseNumber(cleaned[key]); ok {
			cleaned[key] = value
		} else {
			delete(cleaned, key)
		}
	}

	if notes, present := cleaned["notes"]; present {
		if notes == nil {
			delete(cleaned, "notes")
		} else if _, isString := notes.(string); !isString {
			cleaned["notes"] = jsonutil.Stringify(notes)
		}
	}

	if onError, ok := jsonutil.AsString(cleaned["onError"]); ok && allowedOnErrorValues[onError] {
		cleaned["onError"] = onError
	} else {
		delete(cleaned, "onError")
	}

	if webhookID, present := cleaned["webhookId"]; present && webhookID != nil {
		if _, isString := webhookID.(string); !isString {
			cleaned["webhookId"] = jsonutil.Stringify(webhookID)
		}
	}

	return cleaned, true
}

// sanitizePosition coerces a position to an [x, y] pair of numbers
func sanitizePosition(value interface{}) []interface{} {
	position, ok := jsonutil.AsArray(value)
	if !ok || len(position) < 2 {
		return []interface{}{0.0, 0.0}
	}

	x, ok := jsonutil.ParseNumber(position[0])
	if !ok {
		x = 0
	}
	y, ok := jsonutil.ParseNumber(position[1])
	if !ok {
		y = 0
	}
	return []interface{}{x, y}
}
