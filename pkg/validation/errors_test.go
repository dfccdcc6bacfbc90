package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	IPAddress string `validate:"required"`
	Email     string `validate:"required,email"`
}

func TestNewValidationErrorMapsFields(t *testing.T) {
	validate := validator.New()
	err := validate.Struct(&sampleRequest{Email: "not-an-email"})
	require.Error(t, err)

	validationErr := NewValidationError(err.(validator.ValidationErrors))

	msg, ok := validationErr.GetFieldError("IPAddress")
	assert.True(t, ok)
	assert.Equal(t, "IPAddress is required", msg)

	msg, ok = validationErr.GetFieldError("Email")
	assert.True(t, ok)
	assert.Equal(t, "Email must be a valid email address", msg)

	assert.True(t, validationErr.HasErrors())
	assert.Contains(t, validationErr.Error(), "IPAddress")
}

func TestAddError(t *testing.T) {
	validationErr := &ValidationError{}
	validationErr.AddError("CouponID", "CouponID must be a valid UUID")

	msg, ok := validationErr.GetFieldError("CouponID")
	assert.True(t, ok)
	assert.Equal(t, "CouponID must be a valid UUID", msg)
}
