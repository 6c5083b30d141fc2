package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeRoundTrip(t *testing.T) {
	code := MakeCode(ServiceEvent, CategoryRequest, 42)
	service, category, sequence := ParseCode(code)
	assert.Equal(t, ServiceEvent, service)
	assert.Equal(t, CategoryRequest, category)
	assert.Equal(t, 42, sequence)
	assert.Equal(t, CategoryRequest, GetCategory(code))
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(ErrInvalidParam.Code))
	assert.True(t, IsClientError(ErrNotFound.Code))
	assert.False(t, IsClientError(ErrInternal.Code))
	assert.False(t, IsClientError(ErrDatabase.Code))
}

func TestWithCausePreservesIdentity(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := ErrDatabase.WithCause(cause)

	assert.True(t, stderrors.Is(err, ErrDatabase))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")

	// The shared predefined value must not be mutated.
	assert.NoError(t, ErrDatabase.Unwrap())
}

func TestWithMessageKeepsCode(t *testing.T) {
	err := ErrInvalidParam.WithMessagef("field %q is required", "name")
	assert.Equal(t, ErrInvalidParam.Code, err.Code)
	assert.Contains(t, err.Message, `field "name" is required`)
	assert.True(t, stderrors.Is(err, ErrInvalidParam))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	passthrough := FromError(ErrNotFound)
	assert.Equal(t, ErrNotFound.Code, passthrough.Code)

	wrapped := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, wrapped.Code)
	assert.Equal(t, http.StatusInternalServerError, wrapped.HTTPStatus())
}

func TestRegistryLookup(t *testing.T) {
	found, ok := Lookup(ErrNotFound.Code)
	require.True(t, ok)
	assert.Equal(t, ErrNotFound.Code, found.Code)

	_, ok = Lookup(9999999)
	assert.False(t, ok)
}
