package handler

import (
	"context"

	identityapp "github.com/crm/backend/internal/application/identity"
	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
)

// AuthService is the slice of the identity service the handler needs
type AuthService interface {
	Login(ctx context.Context, input identityapp.LoginInput) (*identityapp.LoginResult, error)
	CurrentUser(ctx context.Context, claims *auth.Claims) (*identityapp.UserInfo, error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identityapp.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.Fail(c, err)
		return
	}

	h.Success(c, result, "Login successful")
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context, claims *auth.Claims) {
	user, err := h.authService.CurrentUser(c.Request.Context(), claims)
	if err != nil {
		h.Fail(c, err)
		return
	}

	h.Success(c, user, "Current user retrieved successfully")
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context, claims *auth.Claims) {
	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.Fail(c, err)
		return
	}

	h.Success(c, nil, "Logged out successfully")
}
