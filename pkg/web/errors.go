package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/abgdnv/productapi/pkg/apperrors"
)

const internalErrorMessage = "Internal server error"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Error      string   `json:"error"`
	Message    string   `json:"message"`
	Details    []string `json:"details,omitempty"`
}

// RespondError is the last stage of every request that failed. Domain errors are rendered with
// their declared status and message; anything else becomes a generic 500 and the cause stays in the log.
func RespondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && appErr.Kind != apperrors.Internal {
		status := appErr.StatusCode()
		logger.WarnContext(r.Context(), "Request failed", "status", status, "kind", appErr.Kind.String(), "error", err)
		RespondJSON(w, logger, status, ErrorResponse{
			StatusCode: status,
			Error:      http.StatusText(status),
			Message:    appErr.Message,
			Details:    appErr.Details,
		})
		return
	}
	logger.ErrorContext(r.Context(), "Unhandled error", "error", err)
	writeInternalError(w)
}

// writeInternalError writes the generic 500 body without going through json.Marshal of user data.
func writeInternalError(w http.ResponseWriter) {
	body, _ := json.Marshal(ErrorResponse{
		StatusCode: http.StatusInternalServerError,
		Error:      http.StatusText(http.StatusInternalServerError),
		Message:    internalErrorMessage,
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write(body)
}
