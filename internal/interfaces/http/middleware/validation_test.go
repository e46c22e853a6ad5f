package middleware

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationFixture struct {
	Email string `json:"email" binding:"omitempty,email"`
	Name  string `json:"name" binding:"required,min=1,max=255"`
	Role  string `json:"role" binding:"required,oneof=admin manager clerk"`
}

func TestFormatValidationErrors(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	err := v.Struct(validationFixture{Email: "not-an-email", Role: "superuser"})
	require.Error(t, err)

	resp := FormatValidationErrors(err, "req-123")
	assert.False(t, resp.Success)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "req-123", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 3)

	byField := make(map[string]string)
	for _, d := range resp.Error.Details {
		byField[d.Field] = d.Message
	}
	// Field names come from the JSON tags, not the Go struct fields
	assert.Equal(t, "Invalid email format", byField["email"])
	assert.Equal(t, "This field is required", byField["name"])
	assert.Equal(t, "Must be one of: admin manager clerk", byField["role"])
}

func TestFormatValidationErrorsNonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-456")
	assert.False(t, resp.Success)
	assert.Empty(t, resp.Error.Details)
}
