package types

import (
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Complete error code constants.
// All handlers MUST use these constants instead of hardcoded strings.
const (
	// Validation (400)
	ErrCodeValidationFailed      ErrorCode = "validation_failed"
	ErrCodeValidationInvalidJSON ErrorCode = "validation_invalid_json"

	// Auth (401)
	ErrCodeAuthTokenMissing ErrorCode = "auth_token_missing"
	ErrCodeAuthTokenInvalid ErrorCode = "auth_token_invalid"
	ErrCodeAuthTokenExpired ErrorCode = "auth_token_expired"

	// Webhook authenticity
	ErrCodeWebhookSecretUnconfigured ErrorCode = "webhook_secret_unconfigured" // 500
	ErrCodeWebhookSignatureMissing   ErrorCode = "webhook_signature_missing"   // 403
	ErrCodeWebhookSignatureInvalid   ErrorCode = "webhook_signature_invalid"   // 403
	ErrCodeWebhookVerificationFailed ErrorCode = "webhook_verification_failed" // 401
	ErrCodeWebhookEventMalformed     ErrorCode = "webhook_event_malformed"     // 400
	ErrCodeWebhookUnprocessable      ErrorCode = "webhook_unprocessable"       // 422

	// Not Found (404)
	ErrCodeNotFoundTodo ErrorCode = "not_found_todo"
	ErrCodeNotFoundUser ErrorCode = "not_found_user"

	// Internal/Upstream (500/502)
	ErrCodeInternalDB         ErrorCode = "internal_database_error"
	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected_error"
	ErrCodeUpstreamBilling    ErrorCode = "upstream_billing_unavailable"
)

// HTTPStatus maps an ErrorCode to its corresponding HTTP status code.
// Used by the API layer to translate AppErrors into HTTP responses.
// Returns 500 for unrecognized error codes as a safe default.
func (c ErrorCode) HTTPStatus() int {
	s := string(c)
	switch {
	case strings.HasPrefix(s, "validation_"):
		return http.StatusBadRequest // 400
	case strings.HasPrefix(s, "auth_"):
		return http.StatusUnauthorized // 401
	case s == string(ErrCodeWebhookSecretUnconfigured):
		return http.StatusInternalServerError // 500
	case s == string(ErrCodeWebhookSignatureMissing),
		s == string(ErrCodeWebhookSignatureInvalid):
		return http.StatusForbidden // 403
	case s == string(ErrCodeWebhookVerificationFailed):
		return http.StatusUnauthorized // 401
	case s == string(ErrCodeWebhookEventMalformed):
		return http.StatusBadRequest // 400
	case s == string(ErrCodeWebhookUnprocessable):
		return http.StatusUnprocessableEntity // 422
	case strings.HasPrefix(s, "not_found_"):
		return http.StatusNotFound // 404
	case strings.HasPrefix(s, "upstream_"):
		return http.StatusBadGateway // 502
	case strings.HasPrefix(s, "internal_"):
		return http.StatusInternalServerError // 500
	default:
		return http.StatusInternalServerError // 500
	}
}

// AppError is the standard application error type used throughout the service.
// All domain and handler errors should be expressed as AppError to enable
// consistent error formatting, HTTP status mapping, and error chain support.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code corresponding to this error's code.
func (e *AppError) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// NewAppError creates a new AppError with the given code, message, and optional
// underlying error. This is the standard constructor for domain errors.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewAppErrorWithDetails creates a new AppError with the given code, message,
// underlying error, and structured details.
func NewAppErrorWithDetails(code ErrorCode, message string, err error, details map[string]any) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: details,
	}
}
