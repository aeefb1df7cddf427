package api

import "fmt"

// ErrorType represents the category of a pipeline error.
type ErrorType string

const (
	// ErrorTypeGeneration indicates the code-generation or QA service call
	// failed (network, auth, quota). Never retried by the pipeline.
	ErrorTypeGeneration ErrorType = "generation_error"

	// ErrorTypeExecution indicates the generated fragment raised a fault
	// during sandbox execution or produced no figure binding.
	ErrorTypeExecution ErrorType = "execution_error"

	// ErrorTypeInvalidRequest indicates the caller supplied invalid input
	// (e.g. an empty query), rejected before any service call.
	ErrorTypeInvalidRequest ErrorType = "invalid_request"

	// ErrorTypeNotFound indicates a referenced resource (dataset, session)
	// does not exist.
	ErrorTypeNotFound ErrorType = "not_found"

	// ErrorTypeInternal indicates an unexpected failure inside the service
	// itself, such as a recovered panic or a storage fault.
	ErrorTypeInternal ErrorType = "internal_error"
)

// ChartError is a structured error with type, optional parameter, and
// message. Execution errors additionally carry the full fragment source
// so callers can display exactly what was run.
type ChartError struct {
	Type     ErrorType `json:"type"`
	Param    string    `json:"param,omitempty"`
	Message  string    `json:"message"`
	Fragment string    `json:"fragment,omitempty"`
}

// Error implements the error interface. For execution errors the message
// embeds the fragment source verbatim, matching what is reported to users.
func (e *ChartError) Error() string {
	if e.Type == ErrorTypeExecution && e.Fragment != "" {
		return fmt.Sprintf("%s: %s\ngenerated code:\n%s", e.Type, e.Message, e.Fragment)
	}
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param: %s)", e.Type, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorResponse wraps a ChartError for JSON serialization as the top-level
// error response.
type ErrorResponse struct {
	Error *ChartError `json:"error"`
}

// NewGenerationError creates a ChartError for a failed model service call.
func NewGenerationError(message string) *ChartError {
	return &ChartError{
		Type:    ErrorTypeGeneration,
		Message: message,
	}
}

// NewExecutionError creates a ChartError for a fragment that faulted during
// execution. The fragment source is carried for diagnosis.
func NewExecutionError(message, fragment string) *ChartError {
	return &ChartError{
		Type:     ErrorTypeExecution,
		Message:  message,
		Fragment: fragment,
	}
}

// NewMissingFigureError creates a ChartError for a fragment that ran to
// completion without binding the figure result variable.
func NewMissingFigureError(fragment string) *ChartError {
	return &ChartError{
		Type:     ErrorTypeExecution,
		Message:  "no figure was created (missing 'fig' variable)",
		Fragment: fragment,
	}
}

// NewInvalidRequestError creates a ChartError for invalid caller input.
func NewInvalidRequestError(param, message string) *ChartError {
	return &ChartError{
		Type:    ErrorTypeInvalidRequest,
		Param:   param,
		Message: message,
	}
}

// NewInternalError creates a ChartError for unexpected service failures.
func NewInternalError(message string) *ChartError {
	return &ChartError{
		Type:    ErrorTypeInternal,
		Message: message,
	}
}

// NewNotFoundError creates a ChartError for resources that cannot be found.
func NewNotFoundError(message string) *ChartError {
	return &ChartError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}
