package workflow

import (
	"github.com/deploymenttheory/go-workflow-importer/internal/utils/jsonutil"
)

// IsWorkflow reports whether v looks like a workflow: an object with a nodes
// sequence and a connections mapping or sequence
func IsWorkflow(v interface{}) bool {
	obj, ok := jsonutil.AsObject(v)
	if !ok {
		return false
	}
	if _, ok := jsonutil.AsArray(obj[KeyNodes]); !ok {
		return false
	}
	switch jsonutil.KindOf(obj[KeyConnections]) {
	case jsonutil.KindObject, jsonutil.KindArray:
		return true
	default:
		return false
	}
}

// Normalize reduces a workflow-shaped object to its canonical form.
// sourceName supplies the fallback display name. It returns false when the
// value is not a workflow or none of its nodes survive sanitization.
func Normalize(raw interface{}, sourceName string) (Workflow, bool) {
	if !IsWorkflow(raw) {
		return nil, false
	}

	obj, _ := jsonutil.AsObject(jsonutil.Clone(raw))

	name, ok := jsonutil.NonBlankString(obj[KeyName])
	if !ok {
		name = NameFromSource(sourceName)
	}

	rawNodes, _ := jsonutil.AsArray(obj[KeyNodes])
	nodes := make([]interface{}, 0, len(rawNodes))
	for _, entry := range rawNodes {
		node, ok := jsonutil.AsObject(entry)
		if !ok {
			continue
		}
		if sanitized, ok := SanitizeNode(node); ok {
			nodes = append(nodes, sanitized)
		}
	}
	if len(nodes) == 0 {
		return nil, false
	}

	connections, ok := jsonutil.AsObject(obj[KeyConnections])
	if !ok {
		connections = map[string]interface{}{}
	}

	return Workflow{
		KeyName:        SanitizeName(name),
		KeyNodes:       nodes,
		KeyConnections: connections,
		KeySettings:    SanitizeSettings(obj[KeySettings]),
	}, true
}
