package dto

import (
	"errors"
	"net/http"

	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared"
)

// Error codes used by the HTTP layer itself. Domain errors keep their own
// codes; these cover transport-level failures.
const (
	ErrCodeInternal     = "ERR_INTERNAL"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeNotFound     = "ERR_NOT_FOUND"
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTooLarge     = "ERR_REQUEST_TOO_LARGE"
)

// HTTPStatusForError maps a domain error to the HTTP status code of its
// kind. Validation problems are the caller's input (400); conflicts collide
// with existing state (409); lifecycle-state and data-integrity violations
// are semantically valid requests the current state refuses (422).
func HTTPStatusForError(err error) int {
	switch {
	case shared.IsValidation(err):
		return http.StatusBadRequest
	case shared.IsNotFound(err):
		return http.StatusNotFound
	case shared.IsConflict(err):
		return http.StatusConflict
	case shared.IsState(err), shared.IsDataIntegrity(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ErrorInfoFromDomain builds the wire error payload for a domain error.
// Non-domain errors collapse to ERR_INTERNAL without leaking details.
func ErrorInfoFromDomain(err error) ErrorInfo {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return ErrorInfo{Code: de.Code, Message: de.Message}
	}
	return ErrorInfo{Code: ErrCodeInternal, Message: "internal server error"}
}
