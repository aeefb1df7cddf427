// Package provider abstracts the external language-model services the
// pipeline calls: code generation, prompt enhancement, and question
// answering are all a single "instruction in, free text out" operation.
package provider

import "context"

// Generator is a text-generation backend. Implementations must be safe
// for concurrent use by multiple goroutines.
//
// A failed call surfaces verbatim to the pipeline's caller; no retries
// are performed anywhere in the core.
type Generator interface {
	// Name returns the provider identifier (e.g. "groq").
	Name() string

	// Generate sends an instruction and returns the model's free-text
	// output. The output may or may not contain a usable code fragment;
	// extraction is the caller's concern.
	Generate(ctx context.Context, prompt string) (string, error)

	// Close releases provider resources.
	Close() error
}

// GeneratorFunc adapts a function to the Generator interface, used by
// tests to stub the model service.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Name returns "func".
func (f GeneratorFunc) Name() string { return "func" }

// Generate calls the wrapped function.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Close is a no-op.
func (f GeneratorFunc) Close() error { return nil }
