package transport

import (
	"encoding/json"
	"net/http"

	"github.com/figaro-dev/figaro/pkg/api"
)

// HTTPStatusFromError maps a ChartError type to the corresponding HTTP
// status code. Transport-level errors (body too large, unsupported content
// type, method not allowed) are handled separately by the HTTP adapter.
func HTTPStatusFromError(err *api.ChartError) int {
	switch err.Type {
	case api.ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case api.ErrorTypeNotFound:
		return http.StatusNotFound
	case api.ErrorTypeGeneration:
		return http.StatusBadGateway
	case api.ErrorTypeExecution:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// WriteErrorResponse writes a JSON error response using the ErrorResponse
// wrapper format from pkg/api. It sets the Content-Type header and writes
// the HTTP status code.
func WriteErrorResponse(w http.ResponseWriter, chartErr *api.ChartError, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: chartErr})
}

// WriteChartError writes a ChartError response, deriving the HTTP status
// code from the error type.
func WriteChartError(w http.ResponseWriter, chartErr *api.ChartError) {
	WriteErrorResponse(w, chartErr, HTTPStatusFromError(chartErr))
}
