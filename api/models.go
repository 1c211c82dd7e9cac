// Package api exposes pipelines over HTTP: listing, execution and execution
// history.
package api

import (
	"time"

	"github.com/devflowhq/devflow/contracts"
)

// ExecuteRequest is the body of POST /api/v1/pipelines/{name}/execute.
type ExecuteRequest struct {
	// Context is the initial run context handed to the pipeline.
	Context contracts.Context `json:"context,omitempty"`
}

// PipelineSummary is one entry of the pipeline listing.
type PipelineSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TotalTasks  int    `json:"total_tasks"`
}

// PipelineDetail is the full view of one pipeline.
type PipelineDetail struct {
	Name           string                   `json:"name"`
	Description    string                   `json:"description,omitempty"`
	TotalTasks     int                      `json:"total_tasks"`
	Tasks          []contracts.TaskSnapshot `json:"tasks"`
	ExecutionOrder []string                 `json:"execution_order,omitempty"`
	StatusCounts   map[string]int           `json:"status_counts,omitempty"`
}

// ExecutionResponse is the recorded outcome of one pipeline run.
type ExecutionResponse struct {
	ID         string                     `json:"id"`
	Pipeline   string                     `json:"pipeline"`
	StartedAt  time.Time                  `json:"started_at"`
	FinishedAt time.Time                  `json:"finished_at"`
	Duration   string                     `json:"duration"`
	Result     *contracts.ExecutionResult `json:"result"`
}

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	Status     string           `json:"status"`
	Pipelines  []string         `json:"pipelines"`
	Executions int              `json:"executions"`
	Components contracts.Status `json:"components,omitempty"`
}

// ErrorDTO is the JSON error shape for non-2xx responses.
type ErrorDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// recordToResponse converts a stored execution record to its API shape.
func recordToResponse(rec *ExecutionRecord) ExecutionResponse {
	return ExecutionResponse{
		ID:         rec.ID,
		Pipeline:   rec.Pipeline,
		StartedAt:  rec.StartedAt,
		FinishedAt: rec.FinishedAt,
		Duration:   rec.FinishedAt.Sub(rec.StartedAt).String(),
		Result:     rec.Result,
	}
}
