package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// apiError carries an HTTP status with a client-safe message. Operations
// return it so the REST handlers and the callable dispatcher map failures
// identically.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string { return e.Message }

func errBadRequest(message string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Message: message}
}

func errNotFound(message string) *apiError {
	return &apiError{Status: http.StatusNotFound, Message: message}
}

func errInternal(message string) *apiError {
	return &apiError{Status: http.StatusInternalServerError, Message: message}
}

// writeResult writes either the operation result or its error.
func writeResult(w http.ResponseWriter, status int, result any, opErr *apiError) {
	if opErr != nil {
		jsonError(w, opErr.Status, opErr.Message)
		return
	}
	jsonResponse(w, status, result)
}
