package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"auth", ErrAuthenticationRequired, http.StatusUnauthorized},
		{"pending", New(ErrApprovalPending, "wait"), http.StatusForbidden},
		{"deactivated", ErrAccountDeactivated, http.StatusForbidden},
		{"forbidden wrapped", fmt.Errorf("gate: %w", ErrForbidden), http.StatusForbidden},
		{"not found", New(ErrNotFound, "profile not found"), http.StatusNotFound},
		{"validation", ErrValidation, http.StatusBadRequest},
		{"conflict", ErrConflict, http.StatusConflict},
		{"upstream", Wrap(ErrUpstream, "ai", errors.New("boom")), http.StatusBadGateway},
		{"crypto", ErrCrypto, http.StatusInternalServerError},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Status(tc.err))
		})
	}
}

func TestReasonHidesInternalDetail(t *testing.T) {
	assert.Equal(t, "profile not found", Reason(New(ErrNotFound, "profile not found")))
	assert.Equal(t, "internal server error", Reason(errors.New("pq: password authentication failed")))
	assert.Equal(t, ErrCrypto.Error(), Reason(Wrap(ErrCrypto, "refresh token", errors.New("bad tag"))))
	assert.Equal(t, ErrForbidden.Error(), Reason(fmt.Errorf("x: %w", ErrForbidden)))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Wrap(ErrUpstream, "google token refresh", cause)

	assert.True(t, errors.Is(err, ErrUpstream))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "google token refresh: dial tcp: timeout", err.Error())
}
