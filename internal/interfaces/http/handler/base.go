// Package handler adapts HTTP requests to the application services.
// Handlers bind and validate input, call one service method and wrap the
// result in the success envelope. Every failure is handed to the error
// handling middleware through c.Error.
package handler

import (
	"net/http"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data, message))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data, message))
}

// Fail records err for the error handler and stops the chain
func (h *BaseHandler) Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// BindJSON binds and validates the request body, failing the request on error
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Fail(c, err)
		return false
	}
	return true
}

// BindQuery binds and validates the query string, failing the request on error
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Fail(c, err)
		return false
	}
	return true
}

// ParseID binds the :id path parameter, failing the request when it is not a UUID
func (h *BaseHandler) ParseID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.Fail(c, err)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.Fail(c, shared.NewValidationError("Validation failed", shared.FieldError{
			Field:   "id",
			Message: "Invalid UUID format",
		}))
		return uuid.Nil, false
	}
	return id, true
}
