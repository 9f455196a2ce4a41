package identity

import (
	"context"
	"errors"
	"time"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo    identity.UserRepository
	jwtService  *auth.JWTService
	revocations auth.RevocationList
	logger      *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	revocations auth.RevocationList,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		jwtService:  jwtService,
		revocations: revocations,
		logger:      logger,
	}
}

// Login verifies the credentials and issues a signed token. Unknown email and
// wrong password fail with the same error.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			identity.VerifyDummyPassword(input.Password)
			s.logger.Warn("Login failed", zap.String("reason", "unknown_email"))
			return nil, shared.ErrInvalidCredentials
		}
		return nil, shared.WrapOperation(err, "Login failed")
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Login failed",
			zap.String("reason", "bad_password"),
			zap.String("user_id", user.ID.String()))
		return nil, shared.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, shared.WrapOperation(err, "Failed to generate authentication token")
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))

	return &LoginResult{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
		User:      toUserInfo(user),
	}, nil
}

// CurrentUser resolves the user behind verified claims. A token whose user no
// longer exists is treated as unauthenticated.
func (s *AuthService) CurrentUser(ctx context.Context, claims *auth.Claims) (*UserInfo, error) {
	userID, err := claims.UserUUID()
	if err != nil {
		return nil, shared.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, shared.WrapOperation(err, "Failed to fetch user")
	}

	info := toUserInfo(user)
	return &info, nil
}

// Logout revokes the presented token for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims.ID == "" || claims.ExpiresAt == nil {
		return shared.ErrInvalidToken
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return shared.WrapOperation(err, "Failed to log out")
	}

	s.logger.Info("User logged out", zap.String("user_id", claims.UserID))
	return nil
}
