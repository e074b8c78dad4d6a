package importer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/deploymenttheory/go-workflow-importer/internal/logger"
	"github.com/deploymenttheory/go-workflow-importer/internal/n8n"
	"github.com/deploymenttheory/go-workflow-importer/internal/utils/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeServer struct {
	mu          sync.Mutex
	listStatus  int
	listBody    string
	createCalls int
	created     []map[string]interface{}
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.URL.Path == "/healthz":
		w.WriteHeader(http.StatusOK)
	case r.URL.Path == "/api/v1/workflows" && r.Method == http.MethodGet:
		if f.listStatus != 0 {
			w.WriteHeader(f.listStatus)
		}
		_, _ = io.WriteString(w, f.listBody)
	case r.URL.Path == "/api/v1/workflows" && r.Method == http.MethodPost:
		f.createCalls++
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.created = append(f.created, body)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"wf-`+string(rune('0'+f.createCalls))+`"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func runOptions(t *testing.T, url string, roots ...string) Options {
	t.Helper()
	sources := baseSourceOptions()
	sources.LocalRoots = roots

	return Options{
		N8N:                  n8n.Options{BaseURL: url, APIKey: "key", Timeout: 5 * time.Second},
		Sources:              sources,
		FingerprintAlgorithm: "sha1",
		TempDir:              t.TempDir(),
		ReportPath:           filepath.Join(t.TempDir(), "reports", "report.json"),
	}
}

func TestRunRequiresAPIKey(t *testing.T) {
	server := &fakeServer{}
	srv := httptest.NewServer(server)
	defer srv.Close()

	opts := runOptions(t, srv.URL)
	opts.N8N.APIKey = ""

	_, err := Run(context.Background(), opts)
	assert.ErrorIs(t, err, errors.ErrAPIKeyMissing)
	entries, readErr := os.ReadDir(opts.TempDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestRunWithoutCandidatesWritesNoReport(t *testing.T) {
	server := &fakeServer{listBody: `{"data":[]}`}
	srv := httptest.NewServer(server)
	defer srv.Close()

	opts := runOptions(t, srv.URL, t.TempDir())

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Nil(t, report)
	assert.NoFileExists(t, opts.ReportPath)
}

func TestRunAbortsWhenCatalogListingFails(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.json"), []byte(flow("A", "a")))

	server := &fakeServer{listStatus: http.StatusInternalServerError, listBody: "boom"}
	srv := httptest.NewServer(server)
	defer srv.Close()

	opts := runOptions(t, srv.URL, root)

	_, err := Run(context.Background(), opts)
	assert.ErrorIs(t, err, errors.ErrCatalogListing)
	assert.Equal(t, 0, server.createCalls)
	assert.NoFileExists(t, opts.ReportPath)
}

func TestRunUnreachableDestination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := Run(context.Background(), runOptions(t, srv.URL, t.TempDir()))
	assert.ErrorIs(t, err, errors.ErrDestinationUnreachable)
}

func TestRunImportsAndWritesReport(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.json"), []byte(flow("Existing", "dup")))
	writeFile(t, filepath.Join(root, "b.json"), []byte(flow("Existing", "new")))

	server := &fakeServer{
		listBody: `{"data":[{"id":"1","name":"Existing","nodes":[{"name":"Start","type":"dup"}],"connections":{}}],"nextCursor":null}`,
	}
	srv := httptest.NewServer(server)
	defer srv.Close()

	opts := runOptions(t, srv.URL, root)

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, 2, report.TotalCandidates)
	assert.Equal(t, 1, report.SkippedDuplicates)
	assert.Equal(t, 1, report.Imported)
	require.Len(t, server.created, 1)
	assert.Equal(t, "Existing [2]", server.created[0]["name"])
	assert.NotContains(t, server.created[0], "id")

	data, err := os.ReadFile(opts.ReportPath)
	require.NoError(t, err)
	var written map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &written))
	assert.Equal(t, float64(1), written["imported"])
	assert.NotEmpty(t, written["runId"])
	imports := written["imports"].([]interface{})
	require.Len(t, imports, 1)
	assert.Equal(t, "wf-1", imports[0].(map[string]interface{})["workflowId"])
	assert.Equal(t, float64(2), imports[0].(map[string]interface{})["index"])

	// scratch space is removed after the run
	entries, err := os.ReadDir(opts.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunDryRunNeedsNoDestination(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.json"), []byte(flow("A", "a")))
	writeFile(t, filepath.Join(root, "b.json"), []byte(flow("A", "a")))

	opts := runOptions(t, "http://127.0.0.1:1", root)
	opts.N8N.APIKey = ""
	opts.DryRun = true
	opts.KeepTemp = true

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 1, report.SkippedDuplicates)
	assert.Equal(t, "dry-run", report.Imports[0].WorkflowID)
	assert.FileExists(t, opts.ReportPath)

	entries, err := os.ReadDir(opts.TempDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRunReportWriteFailure(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	previous := logger.Logger
	logger.Logger = zap.New(core).Sugar()
	t.Cleanup(func() { logger.Logger = previous })

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.json"), []byte(flow("A", "a")))
	blocker := filepath.Join(t.TempDir(), "blocker")
	writeFile(t, blocker, []byte("not a directory"))

	opts := runOptions(t, "", root)
	opts.DryRun = true
	opts.ReportPath = filepath.Join(blocker, "report.json")

	report, err := Run(context.Background(), opts)
	assert.ErrorIs(t, err, errors.ErrReportWriteFailed)
	require.NotNil(t, report)
	assert.Equal(t, 1, report.Imported)

	entries := logs.FilterMessage("Failed to write report").All()
	require.Len(t, entries, 1)
	assert.Equal(t, opts.ReportPath, entries[0].ContextMap()["path"])
}

func TestRunOnMemoryFileSystem(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/data/flows", 0755))
	require.NoError(t, afero.WriteFile(fs, "/data/flows/a.json", []byte(flow("Plain", "a")), 0644))
	require.NoError(t, afero.WriteFile(fs, "/data/flows/pack.zip", zipBytes(t, map[string]string{
		"pack/b.json": flow("Zipped", "b"),
	}), 0644))

	opts := runOptions(t, "", "/data")
	opts.FS = fs
	opts.DryRun = true
	opts.TempDir = "/scratch"
	opts.ReportPath = "/out/report.json"

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Imported)

	exists, err := afero.Exists(fs, "/out/report.json")
	require.NoError(t, err)
	assert.True(t, exists)

	entries, err := afero.ReadDir(fs, "/scratch")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
