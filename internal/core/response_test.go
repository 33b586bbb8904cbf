package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saasterkit/internal/types"
)

func decodeRequest(body string, dst any) error {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	return DecodeJSON(httptest.NewRecorder(), req, dst)
}

func TestDecodeJSON_Valid(t *testing.T) {
	var dst struct {
		Title string `json:"title"`
	}
	require.NoError(t, decodeRequest(`{"title":"hello"}`, &dst))
	assert.Equal(t, "hello", dst.Title)
}

func TestDecodeJSON_UnknownFieldsTolerated(t *testing.T) {
	var dst struct {
		Title string `json:"title"`
	}
	require.NoError(t, decodeRequest(`{"title":"hello","extra":{"nested":true}}`, &dst))
	assert.Equal(t, "hello", dst.Title)
}

func TestDecodeJSON_Failures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"malformed", `{"title":`},
		{"type mismatch", `{"title":123}`},
		{"trailing value", `{"title":"a"}{"title":"b"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst struct {
				Title string `json:"title"`
			}
			err := decodeRequest(tt.body, &dst)
			require.Error(t, err)

			var appErr *types.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, types.ErrCodeValidationInvalidJSON, appErr.Code)
			assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus())
		})
	}
}

func TestError_AppErrorMapping(t *testing.T) {
	tests := []struct {
		code       types.ErrorCode
		wantStatus int
	}{
		{types.ErrCodeValidationFailed, http.StatusBadRequest},
		{types.ErrCodeAuthTokenMissing, http.StatusUnauthorized},
		{types.ErrCodeWebhookSignatureMissing, http.StatusForbidden},
		{types.ErrCodeWebhookVerificationFailed, http.StatusUnauthorized},
		{types.ErrCodeWebhookUnprocessable, http.StatusUnprocessableEntity},
		{types.ErrCodeNotFoundTodo, http.StatusNotFound},
		{types.ErrCodeWebhookSecretUnconfigured, http.StatusInternalServerError},
		{types.ErrCodeUpstreamBilling, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()

			Error(rec, req, types.NewAppError(tt.code, "boom", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, string(tt.code), recordedErrorCode(t, rec))
		})
	}
}

func TestError_WrappedAppError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	inner := types.NewAppError(types.ErrCodeNotFoundUser, "no user", nil)
	Error(rec, req, errors.Join(errors.New("outer context"), inner))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(types.ErrCodeNotFoundUser), recordedErrorCode(t, rec))
}

func TestError_GenericErrorHidesDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	Error(rec, req, errors.New("pq: secret table does not exist"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp APIErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(types.ErrCodeInternalUnexpected), resp.Error.Code)
	assert.Equal(t, "an unexpected error occurred", resp.Error.Message)
	assert.NotContains(t, rec.Body.String(), "secret table")
}

func TestJSON_WritesStatusAndContentType(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	JSON(rec, req, http.StatusCreated, map[string]int{"n": 1})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
}
