package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"rpi-index-lab/internal/rebase"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string, details map[string]string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Code: code, Message: msg, Details: details})
}

// rebaseStatus maps rebase errors to HTTP status and error code.
func rebaseStatus(err error) (int, string) {
	switch {
	case errors.Is(err, rebase.ErrBaseNotFound):
		return http.StatusNotFound, "BASE_NOT_FOUND"
	case errors.Is(err, rebase.ErrDegenerateBase):
		return http.StatusUnprocessableEntity, "DEGENERATE_BASE"
	case errors.Is(err, rebase.ErrInvalidPeriod):
		return http.StatusBadRequest, "INVALID_PERIOD"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}
