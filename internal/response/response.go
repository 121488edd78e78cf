package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/rpattn/propertyapi/internal/domain"
	"github.com/rpattn/propertyapi/internal/logger"
)

const (
	ErrCodeInvalidPayload  = "invalid_payload"
	ErrCodeValidation      = "validation_error"
	ErrCodeInvalidQuery    = "invalid_query"
	ErrCodeInvalidArgument = "invalid_argument"
	ErrCodeInternal        = "internal_server_error"
)

// ErrorResponse is the JSON body of every non-404 error.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// internalErrorBody is written when a payload cannot be encoded.
const internalErrorBody = `{"code":"` + ErrCodeInternal + `","message":"An unexpected error occurred"}` + "\n"

// WriteJSON encodes payload with the given status. The payload is encoded
// before the header is sent, so an encoding failure becomes a logged 500.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		logger.Log.WithError(err).Error("Failed to encode response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, internalErrorBody)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// WriteErrorWithCode writes an ErrorResponse.
func WriteErrorWithCode(w http.ResponseWriter, status int, code, message string, details any) {
	WriteJSON(w, status, ErrorResponse{Code: code, Message: message, Details: details})
}

// WriteError maps domain errors onto HTTP statuses. Unknown errors become a
// 500 with a generic message and are logged.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *domain.ValidationError
		queryErr      *domain.QueryError
		argumentErr   *domain.InvalidArgumentError
	)

	switch {
	case errors.Is(err, domain.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.As(err, &validationErr):
		WriteErrorWithCode(w, http.StatusBadRequest, ErrCodeValidation, "Validation failed", validationErr.Fields)
	case errors.As(err, &queryErr):
		WriteErrorWithCode(w, http.StatusBadRequest, ErrCodeInvalidQuery, queryErr.Message, nil)
	case errors.As(err, &argumentErr):
		WriteErrorWithCode(w, http.StatusBadRequest, ErrCodeInvalidArgument, argumentErr.Message,
			map[string]string{"argument": argumentErr.Argument})
	default:
		logger.Log.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Error("Request failed")
		WriteErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil)
	}
}
