package remote

import (
	"context"
	"fmt"

	"github.com/figaro-dev/figaro/pkg/api"
	"github.com/figaro-dev/figaro/pkg/dataset"
	"github.com/figaro-dev/figaro/pkg/sandbox"
)

// Ensure Executor implements the sandbox executor contract.
var _ sandbox.Executor = (*Executor)(nil)

// Acquirer abstracts sandbox acquisition. Implementations exist for
// static URL mode (returns a fixed URL) and SandboxClaim mode (creates CRDs).
type Acquirer interface {
	// Acquire returns a sandbox URL to use for execution.
	// The release function must be called after execution to clean up.
	Acquire(ctx context.Context) (sandboxURL string, release func(), err error)
}

// StaticURLAcquirer returns a fixed sandbox URL (development mode).
type StaticURLAcquirer struct {
	URL string
}

func (a *StaticURLAcquirer) Acquire(_ context.Context) (string, func(), error) {
	return a.URL, func() {}, nil // No cleanup needed for static URL.
}

// Executor runs fragments on a sandbox server acquired per execution.
type Executor struct {
	acquirer       Acquirer
	client         *Client
	timeoutSeconds int
}

// NewExecutor creates a remote executor. timeoutSeconds bounds a single
// execution on the sandbox side; zero means the sandbox default.
func NewExecutor(acquirer Acquirer, timeoutSeconds int) *Executor {
	return &Executor{
		acquirer:       acquirer,
		client:         NewClient(),
		timeoutSeconds: timeoutSeconds,
	}
}

// Execute acquires a sandbox, ships the fragment and dataset to it, and
// maps the response back to a figure or a structured error. Fragment
// faults come back as *api.ChartError; transport failures are plain
// errors since the fragment never ran.
func (e *Executor) Execute(ctx context.Context, fragment string, ds *dataset.Dataset) (*api.Figure, error) {
	sandboxURL, release, err := e.acquirer.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire sandbox: %w", err)
	}
	defer release()

	resp, err := e.client.Execute(ctx, sandboxURL, &ExecuteRequest{
		Fragment:       fragment,
		Dataset:        EncodeDataset(ds),
		TimeoutSeconds: e.timeoutSeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("remote execution: %w", err)
	}

	if resp.Error != nil {
		return nil, resp.Error
	}
	if resp.Figure == nil {
		return nil, api.NewExecutionError("sandbox returned neither figure nor error", fragment)
	}
	return resp.Figure, nil
}

// EncodeDataset converts a dataset to its wire representation.
func EncodeDataset(ds *dataset.Dataset) *Dataset {
	if ds == nil {
		return nil
	}
	rows := make([][]any, ds.NumRows())
	for i := range rows {
		rows[i] = ds.Row(i)
	}
	return &Dataset{
		Columns: ds.Columns(),
		Rows:    rows,
	}
}

// DecodeDataset converts the wire representation back into a dataset,
// rejecting ragged rows or duplicate columns.
func DecodeDataset(wire *Dataset) (*dataset.Dataset, error) {
	if wire == nil {
		return nil, fmt.Errorf("dataset is required")
	}
	ds, err := dataset.New(wire.Columns, wire.Rows)
	if err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return ds, nil
}
