package dto

import "github.com/crm/backend/internal/domain/shared"

// SuccessResponse is the envelope of every 2xx response
type SuccessResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope of every 4xx and 5xx response
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorInfo `json:"error"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details []shared.FieldError `json:"details,omitempty"`
	// Stack is only filled in development
	Stack string `json:"stack,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any, message string) SuccessResponse {
	return SuccessResponse{
		Success: true,
		Data:    data,
		Message: message,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string, details ...shared.FieldError) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error: ErrorInfo{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// IDRequest binds the :id path parameter
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}
