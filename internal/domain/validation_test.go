package domain_test

import (
	"errors"
	"testing"

	"github.com/straye-as/crm-console/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("valid login", func(t *testing.T) {
		err := domain.Validate(domain.LoginRequest{Email: "ada@example.com", Password: "secret"})
		assert.NoError(t, err)
	})

	t.Run("reports json field names", func(t *testing.T) {
		err := domain.Validate(domain.LoginRequest{Email: "not-an-email"})
		require.Error(t, err)

		var ve *domain.ValidationError
		require.True(t, errors.As(err, &ve))
		require.Len(t, ve.Fields, 2)
		assert.Equal(t, "email", ve.Fields[0].Field)
		assert.Equal(t, "Must be a valid email address", ve.Fields[0].Message)
		assert.Equal(t, "password", ve.Fields[1].Field)
		assert.Equal(t, "password is required", ve.Fields[1].Message)
	})

	t.Run("staff role must be a backend role", func(t *testing.T) {
		err := domain.Validate(domain.CreateStaffRequest{
			Name:     "Sam",
			Email:    "sam@example.com",
			Password: "secret1",
			Role:     "OWNER",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "role: Must be one of")
	})

	t.Run("short password", func(t *testing.T) {
		err := domain.Validate(domain.RegisterCustomerRequest{
			FullName: "Ada",
			Email:    "ada@example.com",
			Password: "123",
			Phone:    "+4712345678",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Must be at least 6 characters")
	})
}

func TestAPIError_Message(t *testing.T) {
	assert.Equal(t, "Invalid credentials", (&domain.APIError{Status: 400, Message: "Invalid credentials"}).Error())
	assert.Equal(t, "Request failed: 502", (&domain.APIError{Status: 502}).Error())
}
