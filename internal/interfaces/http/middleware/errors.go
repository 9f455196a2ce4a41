package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
)

const internalErrorMessage = "Internal server error"

// ErrorHandler renders the last error recorded on the gin context. Handlers
// and middleware report failures with c.Error and never write error bodies
// themselves.
func ErrorHandler(development bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		status, body := NormalizeError(c.Errors.Last().Err, development)
		c.AbortWithStatusJSON(status, body)
	}
}

// NormalizeError maps any error to exactly one status code and envelope.
// The final branch is a catch-all 500.
func NormalizeError(err error, development bool) (int, dto.ErrorResponse) {
	if details := ValidationDetails(err); details != nil {
		return http.StatusBadRequest, dto.NewErrorResponse(shared.CodeValidation, "Validation failed", details...)
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge, dto.NewErrorResponse(dto.ErrCodeRequestTooLarge,
			fmt.Sprintf("Request body exceeds %d bytes", maxBytesErr.Limit))
	}

	if detail, ok := decodeErrorDetail(err); ok {
		return http.StatusBadRequest, dto.NewErrorResponse(shared.CodeValidation, "Validation failed", detail)
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) && domainErr.Kind != shared.KindInternal {
		return dto.HTTPStatus(domainErr.Kind), dto.NewErrorResponse(domainErr.Code, domainErr.Message, domainErr.Details...)
	}

	var uniqueErr *shared.UniqueViolationError
	if errors.As(err, &uniqueErr) {
		if uniqueErr.Field == "" {
			return http.StatusConflict, dto.NewErrorResponse(shared.CodeDuplicateEntry, "A record with this value already exists")
		}
		return http.StatusConflict, dto.NewErrorResponse(shared.CodeDuplicateEntry,
			fmt.Sprintf("A record with this %s already exists", uniqueErr.Field),
			shared.FieldError{Field: uniqueErr.Field, Message: "Must be unique"})
	}

	if errors.Is(err, shared.ErrNotFound) {
		return http.StatusNotFound, dto.NewErrorResponse(shared.CodeNotFound, "Resource not found")
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized, dto.NewErrorResponse(shared.ErrTokenExpired.Code, shared.ErrTokenExpired.Message)
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, dto.NewErrorResponse(shared.ErrInvalidToken.Code, shared.ErrInvalidToken.Message)
	case errors.Is(err, auth.ErrMissingUserID):
		return http.StatusUnauthorized, dto.NewErrorResponse(shared.ErrUnauthorized.Code, shared.ErrUnauthorized.Message)
	}

	body := dto.NewErrorResponse(shared.CodeInternal, internalErrorMessage)
	if development {
		body.Error.Message = err.Error()
		if domainErr != nil {
			body.Error.Message = domainErr.Message
		}
		body.Error.Stack = stackOf(err)
	}
	return http.StatusInternalServerError, body
}

// decodeErrorDetail recognizes failures of the JSON and query decoders that
// happen before struct validation runs.
func decodeErrorDetail(err error) (shared.FieldError, bool) {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		numErr    *strconv.NumError
	)
	switch {
	case errors.Is(err, io.EOF):
		return shared.FieldError{Field: "body", Message: "Request body is required"}, true
	case errors.Is(err, io.ErrUnexpectedEOF), errors.As(err, &syntaxErr):
		return shared.FieldError{Field: "body", Message: "Malformed JSON"}, true
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return shared.FieldError{Field: field, Message: "Must be of type " + typeErr.Type.String()}, true
	case errors.As(err, &numErr):
		return shared.FieldError{Field: "query", Message: fmt.Sprintf("Invalid number %q", numErr.Num)}, true
	}
	return shared.FieldError{}, false
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// stackOf formats the deepest recorded stack in the chain. Errors that never
// passed through pkg/errors get the stack of the caller.
func stackOf(err error) string {
	var traced error
	for e := err; e != nil; e = errors.Unwrap(e) {
		if _, ok := e.(stackTracer); ok {
			traced = e
		}
	}
	if traced == nil {
		traced = pkgerrors.WithStack(err)
	}
	return fmt.Sprintf("%+v", traced)
}
