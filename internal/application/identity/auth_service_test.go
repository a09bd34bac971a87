package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/invoicehub/backend/internal/domain/identity"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/infrastructure/auth"
	"github.com/invoicehub/backend/internal/infrastructure/config"
)

type fakeUserRepo struct {
	users map[string]*identity.AdminUser
	saved []*identity.AdminUser
	err   error
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*identity.AdminUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) Save(_ context.Context, u *identity.AdminUser) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, u)
	return nil
}

func newAuthService(repo *fakeUserRepo) *AuthService {
	jwtSvc := auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-at-least-32-characters!!",
		Expiration: time.Hour,
		Issuer:     "invoicehub-backend",
	})
	return NewAuthService(repo, jwtSvc, zap.NewNop())
}

func TestLogin(t *testing.T) {
	user, err := identity.NewAdminUser("admin@example.com", "correct-horse")
	require.NoError(t, err)
	repo := &fakeUserRepo{users: map[string]*identity.AdminUser{user.Email: user}}
	svc := newAuthService(repo)

	t.Run("valid credentials issue a token", func(t *testing.T) {
		resp, err := svc.Login(context.Background(), LoginRequest{
			Email:    "admin@example.com",
			Password: "correct-horse",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "admin@example.com", resp.Email)
		assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, time.Minute)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginRequest{
			Email:    "nobody@example.com",
			Password: "correct-horse",
		})

		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginRequest{
			Email:    "admin@example.com",
			Password: "wrong",
		})

		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("deactivated admin", func(t *testing.T) {
		inactive, err := identity.NewAdminUser("former@example.com", "correct-horse")
		require.NoError(t, err)
		inactive.IsActive = false
		svc := newAuthService(&fakeUserRepo{users: map[string]*identity.AdminUser{inactive.Email: inactive}})

		_, err = svc.Login(context.Background(), LoginRequest{
			Email:    "former@example.com",
			Password: "correct-horse",
		})

		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("repository failure is not masked as unauthorized", func(t *testing.T) {
		svc := newAuthService(&fakeUserRepo{err: errors.New("connection reset")})

		_, err := svc.Login(context.Background(), LoginRequest{
			Email:    "admin@example.com",
			Password: "correct-horse",
		})

		require.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrUnauthorized)
	})
}

func TestRegister(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]*identity.AdminUser{}}
	svc := newAuthService(repo)

	user, err := svc.Register(context.Background(), "admin@example.com", "correct-horse")

	require.NoError(t, err)
	require.Len(t, repo.saved, 1)
	assert.True(t, user.CheckPassword("correct-horse"))
	assert.True(t, user.IsActive)
}
