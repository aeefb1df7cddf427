// Package api defines the core types shared across the figaro pipeline:
// the Figure chart artifact, the structured error taxonomy, and input
// validation helpers. It has no dependencies on other figaro packages.
package api
