// Package pipeline sequences the chart-generation stages: prompt building,
// the external model call, code extraction, sanitization, and sandbox
// execution. Each call is a clean run; no state is retained between
// attempts and no retries are performed.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/figaro-dev/figaro/pkg/api"
	"github.com/figaro-dev/figaro/pkg/codegen"
	"github.com/figaro-dev/figaro/pkg/dataset"
	"github.com/figaro-dev/figaro/pkg/observability"
	"github.com/figaro-dev/figaro/pkg/provider"
	"github.com/figaro-dev/figaro/pkg/sandbox"
)

// Pipeline drives a single chart-generation run end to end.
type Pipeline struct {
	gen    provider.Generator
	exec   sandbox.Executor
	logger *slog.Logger
}

// New creates a pipeline over a generator and an executor.
func New(gen provider.Generator, exec sandbox.Executor, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{gen: gen, exec: exec, logger: logger}
}

// GenerateChart runs the full pipeline for one user query. An empty query
// is rejected before any service call. A generator failure propagates
// verbatim; extraction cannot fail; any execution fault surfaces as a
// single execution error carrying the fragment source. On failure no
// partial figure is ever returned.
func (p *Pipeline) GenerateChart(ctx context.Context, query string, ds *dataset.Dataset) (*api.Figure, error) {
	if err := api.ValidateQuery(query); err != nil {
		return nil, err
	}

	prompt := codegen.BuildChartPrompt(query, ds.Columns())

	response, err := p.generate(ctx, "chart_code", prompt)
	if err != nil {
		observability.ChartGenerationsTotal.WithLabelValues("generation_error").Inc()
		return nil, err
	}

	fragment := codegen.Sanitize(codegen.ExtractCode(response))

	start := time.Now()
	fig, err := p.exec.Execute(ctx, fragment, ds)
	observability.SandboxExecutionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		observability.SandboxExecutionsTotal.WithLabelValues("error").Inc()
		observability.ChartGenerationsTotal.WithLabelValues("execution_error").Inc()
		p.logger.Warn("fragment execution failed",
			"query", query,
			"error", err.Error(),
		)
		return nil, err
	}
	observability.SandboxExecutionsTotal.WithLabelValues("ok").Inc()
	observability.ChartGenerationsTotal.WithLabelValues("ok").Inc()

	p.logger.Info("chart generated",
		"query", query,
		"traces", len(fig.Data),
		"rows", ds.NumRows(),
	)
	return fig, nil
}

// EnhancePrompt asks the model to rewrite the user's query into a
// better-specified analytical question over the dataset's columns. The
// output is displayed, never executed.
func (p *Pipeline) EnhancePrompt(ctx context.Context, query string, ds *dataset.Dataset) (string, error) {
	if err := api.ValidateQuery(query); err != nil {
		return "", err
	}
	return p.generate(ctx, "enhance_prompt", codegen.BuildEnhancedPrompt(query, ds.Columns()))
}

// generate calls the model backend and records latency/outcome metrics.
func (p *Pipeline) generate(ctx context.Context, operation, prompt string) (string, error) {
	start := time.Now()
	response, err := p.gen.Generate(ctx, prompt)
	observability.GeneratorLatency.WithLabelValues(p.gen.Name(), operation).Observe(time.Since(start).Seconds())

	if err != nil {
		observability.GeneratorRequestsTotal.WithLabelValues(p.gen.Name(), operation, "error").Inc()
		p.logger.Warn("generator call failed",
			"provider", p.gen.Name(),
			"operation", operation,
			"error", err.Error(),
		)
		return "", err
	}
	observability.GeneratorRequestsTotal.WithLabelValues(p.gen.Name(), operation, "ok").Inc()
	return response, nil
}
