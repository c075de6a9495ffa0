package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeBadRequest, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeSelfRequestNotAllowed, http.StatusForbidden},
		{CodeNotOwnedByCaller, http.StatusForbidden},
		{CodeGuideAccessRequired, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeInvalidCode, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeDuplicateActive, http.StatusConflict},
		{CodeAlreadyResolved, http.StatusConflict},
		{CodeCooldownActive, http.StatusTooManyRequests},
		{CodeInvalidSchedule, http.StatusUnprocessableEntity},
		{CodeDateMismatch, http.StatusUnprocessableEntity},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeInternal, http.StatusInternalServerError},
		{Code("unknown_code"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTTPStatus(tt.code))
		})
	}
}

func TestCodeOfAndHasCode(t *testing.T) {
	err := New(CodeInvalidSchedule, "scheduled_date is malformed")
	assert.Equal(t, CodeInvalidSchedule, CodeOf(err))
	assert.True(t, HasCode(err, CodeInvalidSchedule))
	assert.False(t, HasCode(err, CodeBadRequest))

	wrapped := fmt.Errorf("resolve: %w", err)
	assert.Equal(t, CodeInvalidSchedule, CodeOf(wrapped))
	assert.True(t, HasCode(wrapped, CodeInvalidSchedule))

	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	assert.False(t, HasCode(nil, CodeInternal))
}

func TestWrapAndDetails(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodeUnavailable, "store unreachable").
		WithDetail("attempt", "2")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "2", Detail(err, "attempt"))
	assert.Empty(t, Detail(err, "missing"))
	assert.Contains(t, err.Error(), "store unreachable")
	assert.Contains(t, err.Error(), "connection reset")
}
