package workflow

// Canonical workflow keys. A normalized workflow carries exactly these.
const (
	KeyName        = "name"
	KeyNodes       = "nodes"
	KeyConnections = "connections"
	KeySettings    = "settings"
)

// DefaultName replaces names that sanitize to nothing
const DefaultName = "Imported Workflow"

// MaxNameLength is the rune limit applied to display names
const MaxNameLength = 180

// Workflow is a normalized workflow definition holding only the canonical
// keys: name, nodes, connections and settings
type Workflow map[string]interface{}

// Name returns the display name
func (w Workflow) Name() string {
	name, _ := w[KeyName].(string)
	return name
}

// Nodes returns the sanitized node list
func (w Workflow) Nodes() []interface{} {
	nodes, _ := w[KeyNodes].([]interface{})
	return nodes
}

// WithName returns a shallow copy carrying a different display name
func (w Workflow) WithName(name string) Workflow {
	out := make(Workflow, len(w))
	for k, v := range w {
		out[k] = v
	}
	out[KeyName] = name
	return out
}

// Candidate is a normalized workflow paired with the source it came from
type Candidate struct {
	// Source describes where the workflow was discovered (file path or archive:entry)
	Source string

	// Workflow is the normalized definition
	Workflow Workflow
}
