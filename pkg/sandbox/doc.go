// Package sandbox executes sanitized, model-generated code fragments
// against a caller-supplied dataset and extracts the produced figure.
//
// The local executor runs fragments on an embedded goja JavaScript VM.
// Each execution gets a fresh VM whose global namespace contains exactly
// five names: the dataset as 'df', the chart namespaces 'px' and 'go',
// and the computation helpers 'pd' and 'np'. Nothing else from the
// hosting process is reachable by name.
//
// The namespace is a visibility restriction, not an isolation boundary:
// the fragment runs with full VM semantics in-process. The optional
// wall-clock timeout and call-stack limit bound runaway fragments, and
// the remote subpackage moves execution out of process entirely for
// deployments that need a real boundary.
package sandbox
