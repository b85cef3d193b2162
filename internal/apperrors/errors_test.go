package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatusCode(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindInvalidInput, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindStorage, http.StatusInternalServerError},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.StatusCode())
		})
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("get portfolio: %w", NotFound("Portfolio not found"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, IsNotFound(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "Invalid name", PublicMessage(InvalidInput("Invalid name")))
	assert.Equal(t, "throttled", PublicMessage(Storage(errors.New("throttled"))))
	assert.Equal(t, "Internal error", PublicMessage(Storage(errors.New(""))))
	assert.Equal(t, "Internal error", PublicMessage(&Error{Kind: KindStorage}))
	assert.Equal(t, "plain", PublicMessage(errors.New("plain")))
}

func TestStorageUnwrap(t *testing.T) {
	cause := errors.New("access denied")
	err := Storage(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "access denied", err.Error())
}
