package identity

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/invoicehub/backend/internal/domain/identity"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/infrastructure/auth"
)

// LoginRequest contains admin login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued admin token
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Email     string    `json:"email"`
}

// AuthService handles admin authentication
type AuthService struct {
	users  identity.AdminUserRepository
	jwt    *auth.JWTService
	logger *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users identity.AdminUserRepository, jwt *auth.JWTService, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, jwt: jwt, logger: logger}
}

// Login verifies credentials and issues an admin token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsActive || !user.CheckPassword(req.Password) {
		return nil, shared.ErrUnauthorized
	}

	token, expiresAt, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("admin logged in", zap.String("email", user.Email))
	return &LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Email:     user.Email,
	}, nil
}

// Register creates a new admin user. Exposed through the seeding command, not
// through the HTTP surface.
func (s *AuthService) Register(ctx context.Context, email, password string) (*identity.AdminUser, error) {
	user, err := identity.NewAdminUser(email, password)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
