package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devflowhq/devflow/config"
	"github.com/devflowhq/devflow/contracts"
	"github.com/devflowhq/devflow/internal/pipeline"
)

// newTestServer builds a server with one valid and one invalid pipeline.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	m := pipeline.NewManager()

	build := m.CreatePipeline("build", "build pipeline")
	build.AddTask(pipeline.NewTaskFunc("compile", func(rc contracts.Context) (any, error) {
		rc["artifact"] = "bin/app"
		return "compiled", nil
	}))
	build.AddTask(pipeline.NewTaskFunc("test", func(rc contracts.Context) (any, error) {
		return "tested", nil
	}).WithDependencies("compile"))

	broken := m.CreatePipeline("broken", "dangling dependency")
	broken.AddTask(pipeline.NewTaskFunc("lonely", func(rc contracts.Context) (any, error) {
		return nil, nil
	}).WithDependencies("ghost"))

	return NewServer("127.0.0.1:0", m, func() contracts.Status {
		return contracts.Status{"pipeline": m.Status()}
	})
}

// doRequest executes a request against the server's handler and decodes the
// JSON response into out (when non-nil).
func doRequest(t *testing.T, s *Server, method, path, body string, out any) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if out != nil {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), out),
			"body: %s", rr.Body.String())
	}
	return rr
}

func TestServer_ListPipelines(t *testing.T) {
	s := newTestServer(t)

	var summaries []PipelineSummary
	rr := doRequest(t, s, http.MethodGet, "/api/v1/pipelines", "", &summaries)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, summaries, 2)
	assert.Equal(t, "build", summaries[0].Name)
	assert.Equal(t, 2, summaries[0].TotalTasks)
}

func TestServer_GetPipeline(t *testing.T) {
	s := newTestServer(t)

	var detail PipelineDetail
	rr := doRequest(t, s, http.MethodGet, "/api/v1/pipelines/build", "", &detail)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "build", detail.Name)
	require.Len(t, detail.Tasks, 2)
	assert.Equal(t, "compile", detail.Tasks[0].Name)
	assert.Equal(t, 2, detail.StatusCounts["pending"])
}

func TestServer_GetPipeline_NotFound(t *testing.T) {
	s := newTestServer(t)

	var errDTO ErrorDTO
	rr := doRequest(t, s, http.MethodGet, "/api/v1/pipelines/nope", "", &errDTO)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, string(CodePipelineNotFound), errDTO.Code)
}

func TestServer_ExecutePipeline(t *testing.T) {
	s := newTestServer(t)

	var resp ExecutionResponse
	rr := doRequest(t, s, http.MethodPost, "/api/v1/pipelines/build/execute",
		`{"context":{"env":"ci"}}`, &resp)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "build", resp.Pipeline)
	require.NotNil(t, resp.Result)
	assert.True(t, resp.Result.Success)
	assert.Equal(t, []string{"compile", "test"}, resp.Result.ExecutionOrder)
	assert.Equal(t, "ci", resp.Result.Context["env"])
	assert.Equal(t, "bin/app", resp.Result.Context["artifact"])
}

func TestServer_ExecutePipeline_EmptyBody(t *testing.T) {
	s := newTestServer(t)

	var resp ExecutionResponse
	rr := doRequest(t, s, http.MethodPost, "/api/v1/pipelines/build/execute", "", &resp)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, resp.Result.Success)
}

func TestServer_ExecutePipeline_ValidationFailureIsData(t *testing.T) {
	s := newTestServer(t)

	var resp ExecutionResponse
	rr := doRequest(t, s, http.MethodPost, "/api/v1/pipelines/broken/execute", "{}", &resp)

	// Validation failure is a structured result, not an HTTP error.
	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, resp.Result)
	assert.False(t, resp.Result.Success)
	require.Len(t, resp.Result.Errors, 1)
	assert.Contains(t, resp.Result.Errors[0], "depends on missing task")
	assert.Empty(t, resp.Result.CompletedTasks)
}

func TestServer_ExecutePipeline_NotFound(t *testing.T) {
	s := newTestServer(t)

	var errDTO ErrorDTO
	rr := doRequest(t, s, http.MethodPost, "/api/v1/pipelines/nope/execute", "{}", &errDTO)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, string(CodePipelineNotFound), errDTO.Code)
}

func TestServer_ExecutePipeline_InvalidJSON(t *testing.T) {
	s := newTestServer(t)

	var errDTO ErrorDTO
	rr := doRequest(t, s, http.MethodPost, "/api/v1/pipelines/build/execute", "{not json", &errDTO)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, string(CodeInvalidInput), errDTO.Code)
}

func TestServer_Executions(t *testing.T) {
	s := newTestServer(t)

	doRequest(t, s, http.MethodPost, "/api/v1/pipelines/build/execute", "{}", nil)
	doRequest(t, s, http.MethodPost, "/api/v1/pipelines/broken/execute", "{}", nil)

	var all []ExecutionResponse
	rr := doRequest(t, s, http.MethodGet, "/api/v1/executions", "", &all)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, all, 2)

	var filtered []ExecutionResponse
	doRequest(t, s, http.MethodGet, "/api/v1/executions?pipeline=build", "", &filtered)
	require.Len(t, filtered, 1)
	assert.Equal(t, "build", filtered[0].Pipeline)

	var limited []ExecutionResponse
	doRequest(t, s, http.MethodGet, "/api/v1/executions?limit=1", "", &limited)
	assert.Len(t, limited, 1)

	var errDTO ErrorDTO
	rr = doRequest(t, s, http.MethodGet, "/api/v1/executions?limit=bogus", "", &errDTO)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestServer_GetExecution(t *testing.T) {
	s := newTestServer(t)

	var created ExecutionResponse
	doRequest(t, s, http.MethodPost, "/api/v1/pipelines/build/execute", "{}", &created)

	var fetched ExecutionResponse
	rr := doRequest(t, s, http.MethodGet, "/api/v1/executions/"+created.ID, "", &fetched)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, created.Result.ExecutionOrder, fetched.Result.ExecutionOrder)
}

func TestServer_GetExecution_NotFound(t *testing.T) {
	s := newTestServer(t)

	var errDTO ErrorDTO
	rr := doRequest(t, s, http.MethodGet, "/api/v1/executions/unknown-id", "", &errDTO)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, string(CodeExecutionNotFound), errDTO.Code)
}

func TestServer_Status(t *testing.T) {
	s := newTestServer(t)
	doRequest(t, s, http.MethodPost, "/api/v1/pipelines/build/execute", "{}", nil)

	var status StatusResponse
	rr := doRequest(t, s, http.MethodGet, "/api/v1/status", "", &status)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, []string{"build", "broken"}, status.Pipelines)
	assert.Equal(t, 1, status.Executions)
	assert.Contains(t, status.Components, "pipeline")
}

func TestServer_ReloadDuringRequests(t *testing.T) {
	m := pipeline.NewManager()
	cfg := &config.ProjectConfig{
		Pipelines: []config.PipelineConfig{{
			Name:        "build",
			Description: "build pipeline",
			Tasks: []config.TaskConfig{
				{Name: "compile", Command: "true"},
				{Name: "test", Command: "true", DependsOn: []string{"compile"}},
			},
		}},
	}
	config.Build(m, cfg)
	s := NewServer("127.0.0.1:0", m, nil)

	// Config reload rebuilds race against in-flight requests; both sides
	// must hold the execution lock. The handlers take it themselves, the
	// rebuild takes it through ExecLock, as the serve command does.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/pipelines/build", nil)
			rr := httptest.NewRecorder()
			s.Handler().ServeHTTP(rr, req)
			assert.Equal(t, http.StatusOK, rr.Code)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.ExecLock().Lock()
			config.Build(m, cfg)
			s.ExecLock().Unlock()
		}
	}()
	wg.Wait()
}

func TestHistoryStore_Prune(t *testing.T) {
	store := NewHistoryStore(2)

	first := store.Add("p", time.Now(), time.Now(), &contracts.ExecutionResult{Success: true})
	second := store.Add("p", time.Now(), time.Now(), &contracts.ExecutionResult{Success: true})
	third := store.Add("p", time.Now(), time.Now(), &contracts.ExecutionResult{Success: true})

	assert.Equal(t, 2, store.Len())
	_, ok := store.Get(first.ID)
	assert.False(t, ok, "oldest record should be pruned")
	_, ok = store.Get(second.ID)
	assert.True(t, ok)
	_, ok = store.Get(third.ID)
	assert.True(t, ok)
}

func TestHistoryStore_ListNewestFirst(t *testing.T) {
	store := NewHistoryStore(10)

	older := store.Add("p", time.Now().Add(-time.Minute), time.Now(), &contracts.ExecutionResult{})
	newer := store.Add("p", time.Now(), time.Now(), &contracts.ExecutionResult{})

	records := store.List("", 0)
	require.Len(t, records, 2)
	assert.Equal(t, newer.ID, records[0].ID)
	assert.Equal(t, older.ID, records[1].ID)
}
