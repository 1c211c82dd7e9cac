package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/devflowhq/devflow/contracts"
	"github.com/devflowhq/devflow/internal/pipeline"
)

// maxRequestBodySize limits the size of incoming request bodies (4MB).
const maxRequestBodySize = 4 * 1024 * 1024

// StatusFunc supplies extra component status for GET /api/v1/status.
type StatusFunc func() contracts.Status

// Handlers contains the HTTP handler methods for the API.
type Handlers struct {
	manager *pipeline.Manager
	history *HistoryStore
	status  StatusFunc // optional

	// execMu serializes all manager access: a run mutates shared pipeline
	// state, and the manager itself is single-threaded. The same mutex must
	// guard every other manager caller in the process (scheduler ticks,
	// config reload rebuilds); ExecLock exposes it for that.
	execMu *sync.Mutex
}

// NewHandlers creates a new Handlers instance. status may be nil.
func NewHandlers(manager *pipeline.Manager, history *HistoryStore, status StatusFunc) *Handlers {
	return &Handlers{
		manager: manager,
		history: history,
		status:  status,
		execMu:  &sync.Mutex{},
	}
}

// ExecLock returns the mutex guarding all manager access. Any code that
// touches the manager outside these handlers must hold it.
func (h *Handlers) ExecLock() *sync.Mutex {
	return h.execMu
}

// HandleListPipelines handles GET /api/v1/pipelines.
func (h *Handlers) HandleListPipelines(w http.ResponseWriter, r *http.Request) {
	h.execMu.Lock()
	names := h.manager.ListPipelines()
	summaries := make([]PipelineSummary, 0, len(names))
	for _, name := range names {
		p, _ := h.manager.GetPipeline(name)
		summaries = append(summaries, PipelineSummary{
			Name:        p.Name,
			Description: p.Description,
			TotalTasks:  p.Len(),
		})
	}
	h.execMu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, summaries)
}

// HandleGetPipeline handles GET /api/v1/pipelines/{name}.
func (h *Handlers) HandleGetPipeline(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	h.execMu.Lock()
	p, ok := h.manager.GetPipeline(name)
	if !ok {
		h.execMu.Unlock()
		WriteError(w, fmt.Errorf("pipeline %s: %w", name, contracts.ErrPipelineNotFound))
		return
	}

	detail := PipelineDetail{
		Name:           p.Name,
		Description:    p.Description,
		TotalTasks:     p.Len(),
		ExecutionOrder: p.ExecutionOrder(),
		StatusCounts:   make(map[string]int),
	}
	for _, taskName := range p.TaskNames() {
		t, _ := p.Task(taskName)
		detail.Tasks = append(detail.Tasks, t.Snapshot())
		detail.StatusCounts[t.Status.String()]++
	}
	h.execMu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, detail)
}

// HandleExecutePipeline handles POST /api/v1/pipelines/{name}/execute.
// A validation failure is not an HTTP error: it surfaces as a structured
// ExecutionResult with Success=false and Errors populated.
func (h *Handlers) HandleExecutePipeline(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	limitedReader := io.LimitReader(r.Body, maxRequestBodySize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		WriteError(w, fmt.Errorf("failed to read request body: %w", contracts.ErrInvalidInput))
		return
	}
	if len(body) > maxRequestBodySize {
		WriteError(w, fmt.Errorf("request body too large (max %d bytes): %w", maxRequestBodySize, contracts.ErrInvalidInput))
		return
	}

	var req ExecuteRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			WriteError(w, fmt.Errorf("invalid JSON: %w", contracts.ErrInvalidInput))
			return
		}
	}

	h.execMu.Lock()
	if _, ok := h.manager.GetPipeline(name); !ok {
		h.execMu.Unlock()
		WriteError(w, fmt.Errorf("pipeline %s: %w", name, contracts.ErrPipelineNotFound))
		return
	}

	started := time.Now()
	result := h.manager.ExecutePipeline(name, req.Context)
	rec := h.history.Add(name, started, time.Now(), result)
	h.execMu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, recordToResponse(rec))
}

// HandleListExecutions handles GET /api/v1/executions with optional
// ?pipeline= and ?limit= filters.
func (h *Handlers) HandleListExecutions(w http.ResponseWriter, r *http.Request) {
	pipelineFilter := r.URL.Query().Get("pipeline")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			WriteError(w, fmt.Errorf("invalid limit %q: %w", raw, contracts.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	records := h.history.List(pipelineFilter, limit)
	responses := make([]ExecutionResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, recordToResponse(rec))
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, responses)
}

// HandleGetExecution handles GET /api/v1/executions/{id}.
func (h *Handlers) HandleGetExecution(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, ok := h.history.Get(id)
	if !ok {
		WriteError(w, fmt.Errorf("execution %s: %w", id, ErrExecutionNotFound))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, recordToResponse(rec))
}

// HandleStatus handles GET /api/v1/status.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.execMu.Lock()
	resp := StatusResponse{
		Status:     "ok",
		Pipelines:  h.manager.ListPipelines(),
		Executions: h.history.Len(),
	}
	h.execMu.Unlock()

	if h.status != nil {
		resp.Components = h.status()
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, resp)
}
