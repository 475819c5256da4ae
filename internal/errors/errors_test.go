package errors

import (
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NewError("provider missing").Mark(ErrNotFound), http.StatusNotFound},
		{"validation", NewError("bad amount").WithHint("Amount must not be negative").Mark(ErrValidation), http.StatusBadRequest},
		{"unauthorized", NewError("no session").Mark(ErrUnauthorized), http.StatusUnauthorized},
		{"rate limited", NewError("slow down").Mark(ErrTooManyRequests), http.StatusTooManyRequests},
		{"too large", NewError("body over limit").Mark(ErrPayloadTooLarge), http.StatusRequestEntityTooLarge},
		{"conflict", NewError("duplicate event").Mark(ErrAlreadyExists), http.StatusConflict},
		{"http client", WithError(errors.New("stripe down")).Mark(ErrHTTPClient), http.StatusInternalServerError},
		{"unmarked", errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromErr(tt.err))
		})
	}
}

func TestMarkedErrorsKeepHints(t *testing.T) {
	err := NewError("failed to create account link").
		WithHint("Could not start onboarding").
		Mark(ErrHTTPClient)

	assert.True(t, IsHTTPClient(err))
	assert.False(t, IsNotFound(err))
	assert.Contains(t, errors.GetAllHints(err), "Could not start onboarding")
}
