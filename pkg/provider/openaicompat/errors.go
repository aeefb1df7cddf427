package openaicompat

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/figaro-dev/figaro/pkg/api"
)

// maxErrorBody caps how much of a failed response body is consumed while
// looking for an error envelope.
const maxErrorBody = 4096

// MapHTTPError turns a non-2xx backend response into a generation error.
// The backend's own error message is preferred when the body carries a
// parseable envelope; otherwise the status code picks a generic one.
// Backend failures surface verbatim and are never retried.
func MapHTTPError(resp *http.Response) *api.ChartError {
	message := ExtractErrorMessage(resp.Body)
	if message == "" {
		message = statusMessage(resp.StatusCode)
	}
	return api.NewGenerationError(message)
}

func statusMessage(code int) string {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return "backend authentication failed"
	case code == http.StatusTooManyRequests:
		return "backend rate limit exceeded"
	case code >= http.StatusInternalServerError:
		return fmt.Sprintf("backend server error (HTTP %d)", code)
	default:
		return fmt.Sprintf("unexpected backend error (HTTP %d)", code)
	}
}

// MapNetworkError wraps a transport-level failure (refused connection,
// timeout, DNS) as a generation error.
func MapNetworkError(err error) *api.ChartError {
	return api.NewGenerationError(fmt.Sprintf("backend connection error: %s", err.Error()))
}

// ExtractErrorMessage reads an error envelope from a failed response body.
// Returns "" when the body is missing, unparseable, or has no message.
func ExtractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}
	var envelope ChatErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBody)).Decode(&envelope); err != nil {
		return ""
	}
	return envelope.Error.Message
}
