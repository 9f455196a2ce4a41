package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupInput struct {
	Name  string `json:"name" validate:"required,min=1,max=5"`
	Email string `json:"email" validate:"required,email"`
	Limit int    `form:"limit" validate:"min=1,max=100"`
}

func validationErr(t *testing.T) error {
	t.Helper()
	v := validator.New()
	v.RegisterTagNameFunc(fieldName)
	err := v.Struct(signupInput{Name: "far too long", Email: "nope", Limit: 500})
	require.Error(t, err)
	return err
}

func TestNormalizeError_Validation(t *testing.T) {
	status, body := NormalizeError(validationErr(t), false)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Equal(t, "Validation failed", body.Error.Message)
	assert.Equal(t, []shared.FieldError{
		{Field: "name", Message: "Must be at most 5 characters"},
		{Field: "email", Message: "Invalid email format"},
		{Field: "limit", Message: "Must be at most 100"},
	}, body.Error.Details)
}

func TestNormalizeError_Mapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "domain not found",
			err:     shared.NewNotFoundError("CUSTOMER_NOT_FOUND", "Customer not found"),
			status:  http.StatusNotFound,
			code:    "CUSTOMER_NOT_FOUND",
			message: "Customer not found",
		},
		{
			name:    "domain conflict",
			err:     shared.NewConflictError("EMAIL_TAKEN", "Email already in use"),
			status:  http.StatusConflict,
			code:    "EMAIL_TAKEN",
			message: "Email already in use",
		},
		{
			name:    "wrapped domain error",
			err:     fmt.Errorf("handler: %w", shared.ErrInvalidCredentials),
			status:  http.StatusUnauthorized,
			code:    "INVALID_CREDENTIALS",
			message: "Invalid email or password",
		},
		{
			name:    "token expired kind",
			err:     shared.ErrTokenExpired,
			status:  http.StatusUnauthorized,
			code:    "TOKEN_EXPIRED",
			message: "Token has expired",
		},
		{
			name:    "storage not found",
			err:     shared.ErrNotFound,
			status:  http.StatusNotFound,
			code:    "NOT_FOUND",
			message: "Resource not found",
		},
		{
			name:    "raw expired token",
			err:     auth.ErrExpiredToken,
			status:  http.StatusUnauthorized,
			code:    "TOKEN_EXPIRED",
			message: "Token has expired",
		},
		{
			name:    "raw invalid token",
			err:     auth.ErrInvalidToken,
			status:  http.StatusUnauthorized,
			code:    "INVALID_TOKEN",
			message: "Invalid token",
		},
		{
			name:    "missing user id",
			err:     auth.ErrMissingUserID,
			status:  http.StatusUnauthorized,
			code:    "UNAUTHORIZED",
			message: "Authentication required",
		},
		{
			name:    "body too large",
			err:     &http.MaxBytesError{Limit: 1024},
			status:  http.StatusRequestEntityTooLarge,
			code:    "REQUEST_TOO_LARGE",
			message: "Request body exceeds 1024 bytes",
		},
		{
			name:    "unknown error",
			err:     errors.New("connection reset by peer"),
			status:  http.StatusInternalServerError,
			code:    "INTERNAL_ERROR",
			message: "Internal server error",
		},
		{
			name:    "wrapped operation",
			err:     shared.WrapOperation(errors.New("deadlock"), "Failed to create customer"),
			status:  http.StatusInternalServerError,
			code:    "INTERNAL_ERROR",
			message: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := NormalizeError(tt.err, false)

			assert.Equal(t, tt.status, status)
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, tt.message, body.Error.Message)
			assert.Empty(t, body.Error.Stack)
		})
	}
}

func TestNormalizeError_UniqueViolation(t *testing.T) {
	status, body := NormalizeError(&shared.UniqueViolationError{Field: "email", Constraint: "customers_email_key"}, false)

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE_ENTRY", body.Error.Code)
	assert.Equal(t, "A record with this email already exists", body.Error.Message)
	assert.Equal(t, []shared.FieldError{{Field: "email", Message: "Must be unique"}}, body.Error.Details)

	status, body = NormalizeError(&shared.UniqueViolationError{}, false)
	assert.Equal(t, http.StatusConflict, status)
	assert.Empty(t, body.Error.Details)
}

func TestNormalizeError_DecodeFailures(t *testing.T) {
	syntaxErr := json.Unmarshal([]byte(`{"name" 1}`), new(map[string]any))

	var typed struct {
		Total float64 `json:"total"`
	}
	typeErr := json.Unmarshal([]byte(`{"total":"abc"}`), &typed)

	_, numErr := strconv.Atoi("abc")

	tests := []struct {
		name  string
		err   error
		field string
	}{
		{"empty body", io.EOF, "body"},
		{"truncated body", io.ErrUnexpectedEOF, "body"},
		{"syntax error", syntaxErr, "body"},
		{"type mismatch", typeErr, "total"},
		{"bad number", numErr, "query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := NormalizeError(tt.err, false)

			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
			require.Len(t, body.Error.Details, 1)
			assert.Equal(t, tt.field, body.Error.Details[0].Field)
		})
	}
}

func TestNormalizeError_DevelopmentExposesInternals(t *testing.T) {
	t.Run("wrapped operation keeps its message and stack", func(t *testing.T) {
		err := shared.WrapOperation(errors.New("deadlock"), "Failed to create customer")

		status, body := NormalizeError(err, true)

		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "Failed to create customer", body.Error.Message)
		assert.Contains(t, body.Error.Stack, "deadlock")
		assert.Contains(t, body.Error.Stack, "errors_test.go")
	})

	t.Run("plain error gets a stack", func(t *testing.T) {
		status, body := NormalizeError(errors.New("boom"), true)

		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "boom", body.Error.Message)
		assert.NotEmpty(t, body.Error.Stack)
	})

	t.Run("client errors never carry a stack", func(t *testing.T) {
		_, body := NormalizeError(pkgerrors.WithStack(shared.ErrNotFound), true)
		assert.Empty(t, body.Error.Stack)
	})
}

func TestErrorHandler(t *testing.T) {
	t.Run("renders the last error", func(t *testing.T) {
		router := gin.New()
		router.Use(ErrorHandler(false))
		router.GET("/test", func(c *gin.Context) {
			_ = c.Error(errors.New("first"))
			_ = c.Error(shared.NewNotFoundError("ORDER_NOT_FOUND", "Order not found"))
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, "ORDER_NOT_FOUND", body.Error.Code)
		assert.NotContains(t, rec.Body.String(), "details")
		assert.NotContains(t, rec.Body.String(), "stack")
	})

	t.Run("leaves written responses alone", func(t *testing.T) {
		router := gin.New()
		router.Use(ErrorHandler(false))
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusAccepted, gin.H{"ok": true})
			_ = c.Error(errors.New("late"))
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	})

	t.Run("no error passes through", func(t *testing.T) {
		router := gin.New()
		router.Use(ErrorHandler(true))
		router.GET("/test", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
