package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAdminUser(t *testing.T) {
	u, err := NewAdminUser("admin@example.com", "s3cret-password")

	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", u.Email)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "s3cret-password", u.PasswordHash)
}

func TestCheckPassword(t *testing.T) {
	u, err := NewAdminUser("admin@example.com", "s3cret-password")
	require.NoError(t, err)

	assert.True(t, u.CheckPassword("s3cret-password"))
	assert.False(t, u.CheckPassword("wrong"))
	assert.False(t, u.CheckPassword(""))
}
