package workflow

import (
	"testing"

	"github.com/deploymenttheory/go-workflow-importer/internal/utils/cryptoutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const singleNode = `[{"name":"Start","type":"n8n-nodes-base.start"}]`

func TestExtractTopLevelObject(t *testing.T) {
	got := Extract(decode(t, `{"name":"A","nodes":`+singleNode+`,"connections":{}}`), "a.json")
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Name())
}

func TestExtractList(t *testing.T) {
	payload := decode(t, `[
		{"name":"A","nodes":`+singleNode+`,"connections":{}},
		"ignored",
		{"name":"not a workflow"},
		{"workflow": {"name":"B","nodes":`+singleNode+`,"connections":{}}}
	]`)

	got := Extract(payload, "list.json")
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name())
	assert.Equal(t, "B", got[1].Name())
}

func TestExtractNestedShapesContributeIndependently(t *testing.T) {
	payload := decode(t, `{
		"name": "Outer",
		"nodes": `+singleNode+`,
		"connections": {},
		"workflows": [
			{"name":"W1","nodes":`+singleNode+`,"connections":{}},
			{"name":"broken","nodes":[],"connections":{}},
			42
		],
		"workflow": {"name":"Single","nodes":`+singleNode+`,"connections":[]}
	}`)

	got := Extract(payload, "bundle.json")
	require.Len(t, got, 3)
	assert.Equal(t, "Outer", got[0].Name())
	assert.Equal(t, "W1", got[1].Name())
	assert.Equal(t, "Single", got[2].Name())
}

func TestExtractNothing(t *testing.T) {
	assert.Empty(t, Extract(decode(t, `"text"`), "x.json"))
	assert.Empty(t, Extract(decode(t, `null`), "x.json"))
	assert.Empty(t, Extract(decode(t, `{"workflows": "nope", "workflow": []}`), "x.json"))
	assert.Empty(t, Extract(decode(t, `[]`), "x.json"))
}

func TestCandidatesCarrySource(t *testing.T) {
	got := Candidates(decode(t, `{"nodes":`+singleNode+`,"connections":{}}`), "pack/flows/Lead Intake.json", "pack.zip:flows/Lead Intake.json")
	require.Len(t, got, 1)
	assert.Equal(t, "pack.zip:flows/Lead Intake.json", got[0].Source)
	assert.Equal(t, "Lead Intake", got[0].Workflow.Name())

	assert.Nil(t, Candidates(decode(t, `{}`), "x.json", "x.json"))
}

func newFingerprinter(t *testing.T) *Fingerprinter {
	t.Helper()
	fp, err := NewFingerprinter(cryptoutil.SHA1)
	require.NoError(t, err)
	return fp
}

func mustNormalize(t *testing.T, text string) Workflow {
	t.Helper()
	wf, ok := Normalize(decode(t, text), "x.json")
	require.True(t, ok)
	return wf
}

func TestFingerprintIgnoresNameAndActive(t *testing.T) {
	fp := newFingerprinter(t)

	a := mustNormalize(t, `{"name":"First","nodes":`+singleNode+`,"connections":{}}`)
	b := a.WithName("Second")
	c := a.WithName("First")
	c["active"] = true

	fa, err := fp.Fingerprint(a)
	require.NoError(t, err)
	fb, err := fp.Fingerprint(b)
	require.NoError(t, err)
	fc, err := fp.Fingerprint(c)
	require.NoError(t, err)

	assert.Equal(t, fa, fb)
	assert.Equal(t, fa, fc)
	assert.Len(t, fa, 40)
}

func TestFingerprintIgnoresKeyOrder(t *testing.T) {
	fp := newFingerprinter(t)

	a := mustNormalize(t, `{"name":"A","nodes":[{"name":"S","type":"t","parameters":{"x":1,"y":{"b":2,"a":1}}}],"connections":{"S":{"main":[]}},"settings":{"timezone":"UTC","executionOrder":"v1"}}`)
	b := mustNormalize(t, `{"settings":{"executionOrder":"v1","timezone":"UTC"},"connections":{"S":{"main":[]}},"nodes":[{"parameters":{"y":{"a":1,"b":2},"x":1},"type":"t","name":"S"}],"name":"A"}`)

	fa, err := fp.Fingerprint(a)
	require.NoError(t, err)
	fb, err := fp.Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
}

func TestFingerprintChangesWithContent(t *testing.T) {
	fp := newFingerprinter(t)
	base := `{"name":"A","nodes":[{"name":"S","type":"t"}],"connections":{},"settings":{}}`

	variants := []string{
		`{"name":"A","nodes":[{"name":"S","type":"u"}],"connections":{},"settings":{}}`,
		`{"name":"A","nodes":[{"name":"S","type":"t"}],"connections":{"S":{}},"settings":{}}`,
		`{"name":"A","nodes":[{"name":"S","type":"t"}],"connections":{},"settings":{"timezone":"UTC"}}`,
	}

	baseSum, err := fp.Fingerprint(mustNormalize(t, base))
	require.NoError(t, err)

	for _, variant := range variants {
		sum, err := fp.Fingerprint(mustNormalize(t, variant))
		require.NoError(t, err)
		assert.NotEqual(t, baseSum, sum, variant)
	}
}

func TestFingerprintIsDeterministic(t *testing.T) {
	fp := newFingerprinter(t)
	wf := mustNormalize(t, `{"name":"A","nodes":[{"name":"S","type":"t","parameters":{"big":12345678901234567890}}],"connections":{}}`)

	first, err := fp.Fingerprint(wf)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := fp.Fingerprint(wf)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	// canonical form: sorted keys, no whitespace, numbers as written
	assert.Equal(t,
		`{"connections":{},"nodes":[{"name":"S","parameters":{"big":12345678901234567890},"position":[0,0],"type":"t","typeVersion":1}],"settings":{}}`,
		canonical(t, map[string]interface{}{KeyNodes: wf[KeyNodes], KeyConnections: wf[KeyConnections], KeySettings: wf[KeySettings]}),
	)
}

func TestFingerprintAlgorithms(t *testing.T) {
	wf := mustNormalize(t, `{"name":"A","nodes":`+singleNode+`,"connections":{}}`)

	sha256FP, err := NewFingerprinter(cryptoutil.SHA256)
	require.NoError(t, err)
	sum, err := sha256FP.Fingerprint(wf)
	require.NoError(t, err)
	assert.Len(t, sum, 64)
	assert.Equal(t, cryptoutil.SHA256, sha256FP.Algorithm())

	_, err = NewFingerprinter("crc32")
	assert.Error(t, err)
}
