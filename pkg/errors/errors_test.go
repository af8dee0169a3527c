package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := NewInternalError("failed to insert lead", fmt.Errorf("connection reset"))
	assert.Equal(t, "INTERNAL: failed to insert lead: connection reset", err.Error())

	assert.Equal(t, "NOT_FOUND: service point not found", NewNotFoundError("service point not found").Error())
}

func TestTypeOf(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NewValidationError("name is required"))

	assert.Equal(t, ErrorTypeValidation, TypeOf(wrapped))
	assert.Equal(t, ErrorTypeInternal, TypeOf(fmt.Errorf("plain")))
	assert.True(t, Is(wrapped, ErrorTypeValidation))
	assert.False(t, Is(wrapped, ErrorTypeNotFound))
}
