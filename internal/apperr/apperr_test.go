package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_WrappedChain(t *testing.T) {
	base := New(KindNotFound, "Category not found")
	wrapped := fmt.Errorf("delete rule: %w", base)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.False(t, Is(wrapped, KindConflict))
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(KindPersistence, "load rules", nil))

	cause := errors.New("disk full")
	err := Wrap(KindPersistence, "save rules", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "save rules: disk full", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusUnprocessableEntity},
		{KindConflict, http.StatusBadRequest},
		{KindBadRequest, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindNoRules, http.StatusConflict},
		{KindPersistence, http.StatusInternalServerError},
		{KindBackendUnavailable, http.StatusServiceUnavailable},
		{KindUnparseableResponse, http.StatusBadGateway},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.kind))
		})
	}
}
