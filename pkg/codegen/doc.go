// Package codegen contains the text-level stages of the chart pipeline:
// building the instruction prompt sent to the code-generation model,
// extracting a code fragment from the model's free-text response, and
// sanitizing that fragment for sandbox execution.
//
// All functions in this package are pure string transformations and
// never fail.
package codegen
