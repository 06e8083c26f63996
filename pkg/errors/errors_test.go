package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorKinds(t *testing.T) {
	missing := NewMissingFieldError("Income")
	assert.True(t, Is(missing, ErrMissingField))
	assert.False(t, Is(missing, ErrInvalidInput))

	invalid := NewValidationError("Age", "must be an integer", "abc")
	assert.True(t, Is(invalid, ErrInvalidInput))
	assert.Contains(t, invalid.Error(), "field 'Age'")

	wrapped := Wrap(invalid, "encode")
	var ve *ValidationError
	require.True(t, As(wrapped, &ve))
	assert.Equal(t, "Age", ve.Field)
}

func TestInferenceErrorMatchesSentinelAndCause(t *testing.T) {
	cause := fmt.Errorf("shape mismatch")
	err := Wrap(NewInferenceError("amount", cause), "run ensemble")

	assert.True(t, Is(err, ErrInference))
	assert.True(t, Is(err, cause))
	assert.Equal(t, "run ensemble: amount model: shape mismatch", err.Error())
}

func TestPersistenceErrorMatchesSentinelAndCause(t *testing.T) {
	err := NewPersistenceError("supabase", "insert", ErrTimeout)

	assert.True(t, Is(err, ErrPersistence))
	assert.True(t, Is(err, ErrTimeout))
	assert.Equal(t, "supabase insert: operation timeout", err.Error())
}

func TestMultiError(t *testing.T) {
	var m MultiError
	assert.NoError(t, m.ToError())

	m.Add(nil)
	m.Add(ErrTimeout)
	m.Add(ErrUnavailable)
	require.Error(t, m.ToError())
	assert.Equal(t, "multiple errors (2): operation timeout", m.Error())
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "ctx"))
	assert.NoError(t, Wrapf(nil, "ctx %d", 1))
}
