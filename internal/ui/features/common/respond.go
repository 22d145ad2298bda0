// Package common holds helpers shared by the JSON API features.
package common

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/leapstack-labs/pdmwatch/pkg/core"
)

// ErrorBody is the JSON shape of every API error.
type ErrorBody struct {
	Detail string   `json:"detail"`
	Errors []string `json:"errors,omitempty"`
}

// HealthBody is returned by the health endpoints.
type HealthBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Health is the fixed health response.
var Health = HealthBody{
	Status:  "online",
	Message: "Predictive Maintenance API is running",
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Detail writes an error body with a message.
func Detail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Detail: msg})
}

// NoContent writes an empty 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidStatus), errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as a JSON error. Unexpected errors are logged and their
// message is not exposed.
func Error(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := StatusFor(err)

	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		JSON(w, status, ErrorBody{Detail: "Request body failed validation", Errors: verr.Errors})
	case status == http.StatusInternalServerError:
		if logger != nil {
			logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		}
		Detail(w, status, "Internal server error")
	default:
		Detail(w, status, err.Error())
	}
}

// HealthHandler serves the health endpoints.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, Health)
}
