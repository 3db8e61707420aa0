package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Code:  code,
		Error: message,
	})
}

// writeDomainError writes err as {code, error}. Errors outside the domain
// taxonomy are logged and reported as INTERNAL_SERVER_ERROR.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	de, ok := domain.AsError(err)
	if !ok {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		de = domain.ErrInternal
	}

	writeError(w, statusForKind(de.Kind), string(de.Code), de.Message)
}

// statusForKind maps error kinds to HTTP status codes.
func statusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindMissingField,
		domain.KindMultipleFieldsMissing,
		domain.KindInvalidFormat,
		domain.KindSemanticViolation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindDateTime:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrInvalidRequestBody
	}
	return nil
}
