package workflow

import (
	"strings"
	"testing"

	"github.com/deploymenttheory/go-workflow-importer/internal/utils/jsonutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, text string) interface{} {
	t.Helper()
	v, err := jsonutil.Decode([]byte(text))
	require.NoError(t, err)
	return v
}

func canonical(t *testing.T, v interface{}) string {
	t.Helper()
	out, err := jsonutil.Canonical(v)
	require.NoError(t, err)
	return string(out)
}

func TestNormalizeExample(t *testing.T) {
	raw := decode(t, `{"name": "  My Flow!! ", "nodes": [{"name":"Start","type":"n8n-nodes-base.start"}], "connections": {}}`)

	wf, ok := Normalize(raw, "flows/my.json")
	require.True(t, ok)

	expected := decode(t, `{"name": "My Flow", "nodes": [{"name":"Start","type":"n8n-nodes-base.start","parameters":{},"typeVersion":1,"position":[0,0]}], "connections": {}, "settings": {}}`)
	assert.Equal(t, canonical(t, expected), canonical(t, wf))
}

func TestNormalizeDropsUnknownKeysAndIDs(t *testing.T) {
	raw := decode(t, `{
		"id": "42",
		"name": "Flow",
		"active": true,
		"tags": ["x"],
		"pinData": {},
		"nodes": [{"id": "n1", "name": "A", "type": "t", "extra": 1}],
		"connections": {"A": {"main": [[{"node": "B", "type": "main", "index": 0}]]}}
	}`)

	wf, ok := Normalize(raw, "x.json")
	require.True(t, ok)

	assert.ElementsMatch(t, []string{KeyName, KeyNodes, KeyConnections, KeySettings}, keys(wf))
	node := wf.Nodes()[0].(map[string]interface{})
	assert.NotContains(t, node, "id")
	assert.NotContains(t, node, "extra")
	assert.Contains(t, wf[KeyConnections], "A")
}

func TestNormalizeFallbackName(t *testing.T) {
	raw := decode(t, `{"name": "   ", "nodes": [{"name":"A","type":"t"}], "connections": []}`)

	wf, ok := Normalize(raw, "/data/templates/Slack Alerts.json")
	require.True(t, ok)
	assert.Equal(t, "Slack Alerts", wf.Name())
	// a connections list passes the shape test but is replaced with a mapping
	assert.Equal(t, map[string]interface{}{}, wf[KeyConnections])
}

func TestNormalizeRejectsWorkflowsWithoutValidNodes(t *testing.T) {
	for _, text := range []string{
		`{"name": "empty", "nodes": [], "connections": {}}`,
		`{"name": "invalid", "nodes": [{"name": "", "type": "t"}, {"type": "t"}, "text", 3], "connections": {}}`,
		`{"name": "shape", "nodes": {}, "connections": {}}`,
		`{"name": "shape", "nodes": [{"name":"A","type":"t"}], "connections": "x"}`,
		`{"name": "shape", "nodes": [{"name":"A","type":"t"}]}`,
	} {
		_, ok := Normalize(decode(t, text), "x.json")
		assert.False(t, ok, text)
	}
}

func TestNormalizeKeepsSiblingsOfInvalidNodes(t *testing.T) {
	raw := decode(t, `{"nodes": [{"name":"A","type":"t"}, {"name":"B"}, {"type":"t"}, {"name":"C","type":"u"}], "connections": {}}`)

	wf, ok := Normalize(raw, "x.json")
	require.True(t, ok)
	require.Len(t, wf.Nodes(), 2)
	assert.Equal(t, "A", wf.Nodes()[0].(map[string]interface{})["name"])
	assert.Equal(t, "C", wf.Nodes()[1].(map[string]interface{})["name"])
}

func TestNormalizeDoesNotAliasInput(t *testing.T) {
	raw := decode(t, `{"name":"F","nodes":[{"name":"A","type":"t","parameters":{"url":"x"}}],"connections":{"A":{}}}`)

	wf, ok := Normalize(raw, "x.json")
	require.True(t, ok)

	raw.(map[string]interface{})["connections"].(map[string]interface{})["B"] = true
	rawNode := raw.(map[string]interface{})["nodes"].([]interface{})[0].(map[string]interface{})
	rawNode["parameters"].(map[string]interface{})["url"] = "changed"

	assert.NotContains(t, wf[KeyConnections], "B")
	params := wf.Nodes()[0].(map[string]interface{})["parameters"].(map[string]interface{})
	assert.Equal(t, "x", params["url"])
}

func TestSanitizeNodeCoercion(t *testing.T) {
	node := decode(t, `{
		"id": "abc",
		"name": "HTTP",
		"type": "n8n-nodes-base.httpRequest",
		"typeVersion": "4.1",
		"position": ["100", "bad", 7],
		"parameters": "nope",
		"credentials": "nope",
		"disabled": "yes",
		"alwaysOutputData": "perhaps",
		"continueOnFail": 0,
		"retryOnFail": "0",
		"maxTries": "3",
		"waitBetweenTries": "soon",
		"onError": "explode",
		"notes": 12,
		"notesInFlow": false,
		"webhookId": 99
	}`).(map[string]interface{})

	cleaned, ok := SanitizeNode(node)
	require.True(t, ok)

	assert.NotContains(t, cleaned, "id")
	assert.Equal(t, 4.1, cleaned["typeVersion"])
	assert.Equal(t, []interface{}{100.0, 0.0}, cleaned["position"])
	assert.Equal(t, map[string]interface{}{}, cleaned["parameters"])
	assert.NotContains(t, cleaned, "credentials")
	assert.Equal(t, true, cleaned["disabled"])
	// unparseable booleans are omitted, never defaulted to false
	assert.NotContains(t, cleaned, "alwaysOutputData")
	// a JSON number is not a boolean spelling
	assert.NotContains(t, cleaned, "continueOnFail")
	assert.Equal(t, false, cleaned["retryOnFail"])
	assert.Equal(t, 3.0, cleaned["maxTries"])
	assert.NotContains(t, cleaned, "waitBetweenTries")
	assert.NotContains(t, cleaned, "onError")
	assert.Equal(t, "12", cleaned["notes"])
	assert.Equal(t, false, cleaned["notesInFlow"])
	assert.Equal(t, "99", cleaned["webhookId"])
}

func TestSanitizeNodeKeepsValidValues(t *testing.T) {
	node := decode(t, `{
		"name": "Mail",
		"type": "n8n-nodes-base.emailSend",
		"typeVersion": 2,
		"position": [10.5, -20],
		"parameters": {"to": "a@b.c"},
		"credentials": {"smtp": {"id": "1", "name": "SMTP"}},
		"onError": "continueErrorOutput",
		"notes": null
	}`).(map[string]interface{})

	cleaned, ok := SanitizeNode(node)
	require.True(t, ok)

	assert.Equal(t, 2.0, cleaned["typeVersion"])
	assert.Equal(t, []interface{}{10.5, -20.0}, cleaned["position"])
	assert.Equal(t, map[string]interface{}{"to": "a@b.c"}, cleaned["parameters"])
	assert.Contains(t, cleaned, "credentials")
	assert.Equal(t, "continueErrorOutput", cleaned["onError"])
	assert.NotContains(t, cleaned, "notes")
}

func TestSanitizeNodeRejectsMissingNameOrType(t *testing.T) {
	for _, text := range []string{
		`{"type": "t"}`,
		`{"name": "A"}`,
		`{"name": "  ", "type": "t"}`,
		`{"name": "A", "type": 5}`,
	} {
		_, ok := SanitizeNode(decode(t, text).(map[string]interface{}))
		assert.False(t, ok, text)
	}
}

func TestSanitizeNodeIsIdempotent(t *testing.T) {
	node := decode(t, `{"id":"x","name":"N","type":"t","typeVersion":"2","position":["1","2"],"disabled":"no","maxTries":"4","notes":{"a":1},"webhookId":7,"onError":"stopWorkflow","parameters":{"k":[1,2]}}`).(map[string]interface{})

	once, ok := SanitizeNode(node)
	require.True(t, ok)
	twice, ok := SanitizeNode(once)
	require.True(t, ok)

	assert.Equal(t, once, twice)
	assert.Equal(t, canonical(t, once), canonical(t, twice))
}

func TestSanitizeSettingsExample(t *testing.T) {
	settings := SanitizeSettings(decode(t, `{"executionOrder":"v1","timezone":"UTC","callerPolicy":"bogus"}`))
	assert.Equal(t, `{"executionOrder":"v1","timezone":"UTC"}`, canonical(t, settings))
}

func TestSanitizeSettings(t *testing.T) {
	settings := SanitizeSettings(decode(t, `{
		"executionOrder": "v2",
		"timezone": "  Europe/Berlin ",
		"errorWorkflow": " 17 ",
		"callerPolicy": "workflowsFromSameOwner",
		"saveExecutionProgress": "yes",
		"saveManualExecutions": true
	}`))

	assert.Equal(t, map[string]interface{}{
		"timezone":              "Europe/Berlin",
		"errorWorkflow":         "17",
		"callerPolicy":          "workflowsFromSameOwner",
		"saveExecutionProgress": true,
	}, settings)

	assert.Equal(t, map[string]interface{}{}, SanitizeSettings("nope"))
	assert.Equal(t, map[string]interface{}{}, SanitizeSettings(nil))
	assert.Equal(t, map[string]interface{}{}, SanitizeSettings(decode(t, `{"timezone":"","saveExecutionProgress":"sometimes"}`)))
}

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "  My Flow!! ", want: "My Flow"},
		{in: "a\t\tb\n c", want: "a b c"},
		{in: "Sync [v2] (prod): a/b.c", want: "Sync [v2] (prod): a/b.c"},
		{in: "Übersicht – Café", want: "Übersicht  Café"},
		{in: "!!!", want: DefaultName},
		{in: "", want: DefaultName},
		{in: "snake_case-name", want: "snake_case-name"},
		{in: "emoji 🚀 launch", want: "emoji  launch"},
		{in: strings.Repeat("x", 200), want: strings.Repeat("x", MaxNameLength)},
		{in: strings.Repeat("é", 200), want: strings.Repeat("é", MaxNameLength)},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, SanitizeName(tc.in), "input %q", tc.in)
	}
}

func TestNameFromSource(t *testing.T) {
	assert.Equal(t, "flow", NameFromSource("/a/b/flow.json"))
	assert.Equal(t, "flow.backup", NameFromSource("dir/flow.backup.json"))
	assert.Equal(t, "flow", NameFromSource(`C:\templates\flow.json`))
	assert.Equal(t, "existing", NameFromSource("existing"))
	assert.Equal(t, ".hidden", NameFromSource(".hidden"))
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
