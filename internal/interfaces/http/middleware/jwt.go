package middleware

import (
	"errors"
	"strings"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// ErrTokenRevoked is reported for a signed, unexpired token that was revoked by logout
var ErrTokenRevoked = shared.NewDomainError(shared.KindInvalidToken, shared.CodeInvalidToken, "Token has been revoked")

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// Revocations is optional for rejecting logged-out tokens
	Revocations auth.RevocationList
	// Logger for middleware logging
	Logger *zap.Logger
}

// JWTAuth creates JWT authentication middleware without revocation checks
func JWTAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthWithConfig(JWTMiddlewareConfig{JWTService: jwtService})
}

// JWTAuthWithConfig creates JWT authentication middleware. Failures are
// reported through c.Error so the error handler renders them.
func JWTAuthWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader(AuthHeaderKey))
		if !ok {
			abortUnauthorized(c, log, shared.ErrUnauthorized, "missing or malformed authorization header")
			return
		}

		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			abortUnauthorized(c, log, classifyTokenError(err), err.Error())
			return
		}

		if cfg.Revocations != nil && claims.ID != "" {
			revoked, err := cfg.Revocations.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// Fail open: the signature and expiry already passed.
				log.Error("Failed to check token revocation",
					zap.String("jti", claims.ID),
					zap.Error(err))
			} else if revoked {
				abortUnauthorized(c, log, ErrTokenRevoked, "token revoked")
				return
			}
		}

		c.Set(JWTClaimsKey, claims)

		ctx := auth.ContextWithClaims(c.Request.Context(), claims)
		ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		log.Debug("JWT authentication successful", zap.String("user_id", claims.UserID))

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.ErrTokenExpired
	case errors.Is(err, auth.ErrInvalidToken):
		return shared.ErrInvalidToken
	default:
		return shared.ErrUnauthorized
	}
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error, reason string) {
	log.Debug("JWT authentication failed",
		zap.String("reason", reason),
		zap.String("path", c.Request.URL.Path),
	)
	_ = c.Error(err)
	c.Abort()
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// Authenticated adapts a handler that needs the caller's identity. The claims
// are handed over as an argument; a route mounted without JWTAuth fails with
// 401 instead of running the handler.
func Authenticated(handler func(c *gin.Context, claims *auth.Claims)) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			_ = c.Error(shared.ErrUnauthorized)
			c.Abort()
			return
		}
		handler(c, claims)
	}
}
