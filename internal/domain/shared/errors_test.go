package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError([]string{"seller NTN/CNIC is required", "item 1: rate is required"})

	assert.True(t, errors.Is(err, ErrValidationFailed))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "seller NTN/CNIC is required")
	assert.Contains(t, err.Error(), "item 1: rate is required")
}

func TestSubmissionError(t *testing.T) {
	t.Run("matches its sentinel", func(t *testing.T) {
		err := &SubmissionError{Detail: "Sale type not valid"}

		assert.True(t, errors.Is(err, ErrSubmissionFailed))
		assert.Equal(t, "Sale type not valid", err.Error())
	})

	t.Run("empty detail falls back to sentinel message", func(t *testing.T) {
		err := &SubmissionError{}

		assert.Equal(t, ErrSubmissionFailed.Message, err.Error())
	})
}

func TestConnectionError(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := &ConnectionError{Host: "db.internal", Message: "database server unreachable", Cause: cause}

	assert.True(t, errors.Is(err, ErrConnectionFailure))
	assert.Equal(t, "database server unreachable", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestDomainErrorWrapping(t *testing.T) {
	wrapped := fmt.Errorf("resolving tenant: %w", ErrTenantNotFound)

	assert.True(t, errors.Is(wrapped, ErrTenantNotFound))
	assert.False(t, errors.Is(wrapped, ErrTenantInactive))
}
