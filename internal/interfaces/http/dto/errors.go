package dto

import (
	"net/http"

	"github.com/crm/backend/internal/domain/shared"
)

// ErrCodeRequestTooLarge is the transport level code for oversized bodies.
// Domain codes live with their modules.
const ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"

// kindHTTPStatus maps error kinds to HTTP status codes
var kindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindValidation:         http.StatusBadRequest,
	shared.KindNotFound:           http.StatusNotFound,
	shared.KindConflict:           http.StatusConflict,
	shared.KindUnauthorized:       http.StatusUnauthorized,
	shared.KindInvalidToken:       http.StatusUnauthorized,
	shared.KindTokenExpired:       http.StatusUnauthorized,
	shared.KindInvalidCredentials: http.StatusUnauthorized,
	shared.KindRateLimited:        http.StatusTooManyRequests,
	shared.KindInternal:           http.StatusInternalServerError,
}

// HTTPStatus returns the status code for an error kind.
// Unknown kinds map to 500.
func HTTPStatus(kind shared.ErrorKind) int {
	if status, ok := kindHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}
