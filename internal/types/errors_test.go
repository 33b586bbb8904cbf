package types

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeValidationFailed, http.StatusBadRequest},
		{ErrCodeValidationInvalidJSON, http.StatusBadRequest},
		{ErrCodeAuthTokenMissing, http.StatusUnauthorized},
		{ErrCodeAuthTokenInvalid, http.StatusUnauthorized},
		{ErrCodeAuthTokenExpired, http.StatusUnauthorized},
		{ErrCodeWebhookSecretUnconfigured, http.StatusInternalServerError},
		{ErrCodeWebhookSignatureMissing, http.StatusForbidden},
		{ErrCodeWebhookSignatureInvalid, http.StatusForbidden},
		{ErrCodeWebhookVerificationFailed, http.StatusUnauthorized},
		{ErrCodeWebhookEventMalformed, http.StatusBadRequest},
		{ErrCodeWebhookUnprocessable, http.StatusUnprocessableEntity},
		{ErrCodeNotFoundTodo, http.StatusNotFound},
		{ErrCodeNotFoundUser, http.StatusNotFound},
		{ErrCodeInternalDB, http.StatusInternalServerError},
		{ErrCodeInternalUnexpected, http.StatusInternalServerError},
		{ErrCodeUpstreamBilling, http.StatusBadGateway},
		{ErrorCode("something_unrecognized"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("row not found")
	appErr := NewAppError(ErrCodeNotFoundTodo, "no todo item", cause)

	assert.Equal(t, "not_found_todo: no todo item", appErr.Error())
	assert.Equal(t, cause, errors.Unwrap(appErr))
	assert.True(t, errors.Is(appErr, cause))
}

func TestAppError_ErrorsAsThroughWrapping(t *testing.T) {
	appErr := NewAppError(ErrCodeInternalDB, "query failed", nil)
	wrapped := fmt.Errorf("processing event: %w", appErr)

	var got *AppError
	require.True(t, errors.As(wrapped, &got))
	assert.Equal(t, ErrCodeInternalDB, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.HTTPStatus())
}

func TestNewAppErrorWithDetails(t *testing.T) {
	appErr := NewAppErrorWithDetails(ErrCodeValidationFailed, "Invalid data", nil,
		map[string]any{"errors": []string{"title is Title is required"}})

	require.NotNil(t, appErr.Details)
	assert.Contains(t, appErr.Details, "errors")
}
