// Package remote provides an Executor that runs chart fragments on a
// sandbox server over its REST API instead of in-process. Sandboxes are
// acquired through an Acquirer: a static URL for development, or
// SandboxClaim CRDs when running on Kubernetes (see the kubernetes
// subpackage).
package remote

import "github.com/figaro-dev/figaro/pkg/api"

// ExecuteRequest is the request body for POST /execute on the sandbox server.
type ExecuteRequest struct {
	Fragment       string   `json:"fragment"`
	Dataset        *Dataset `json:"dataset"`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty"`
}

// Dataset is the wire representation of a tabular dataset. Cells are JSON
// scalars: numbers, strings, or null.
type Dataset struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// ExecuteResponse is the response from POST /execute on the sandbox server.
// Exactly one of Figure and Error is set.
type ExecuteResponse struct {
	Figure          *api.Figure     `json:"figure,omitempty"`
	Error           *api.ChartError `json:"error,omitempty"`
	ExecutionTimeMs int64           `json:"execution_time_ms"`
}
