package core

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"saasterkit/internal/types"
)

// Validator wraps go-playground/validator and translates violations into
// the human-readable message list the API returns for schema errors.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a new Validator. Field names in violation messages
// use the struct's json tag so the messages match the wire format.
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v, logger: logger}
}

// ValidateStruct validates s against its validate tags.
//
// On violation it returns a 400 AppError with code "validation_failed"
// whose details carry every violated field as a message of the form
// "<field> is <reason>" (e.g. "title is Title is required").
//
// A non-violation error from the validator (an invalid argument rather
// than invalid data) is returned as a 500 AppError.
func (v *Validator) ValidateStruct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		v.logger.Error("validator failed on non-validation error", "error", err)
		return types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"Internal Server Error",
			err,
		)
	}

	messages := make([]map[string]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, map[string]string{
			"message": fe.Field() + " is " + fieldReason(fe),
		})
	}

	return types.NewAppErrorWithDetails(
		types.ErrCodeValidationFailed,
		"Invalid data",
		err,
		map[string]any{"errors": messages},
	)
}

// fieldReason renders a human-readable reason for a single violation.
func fieldReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		switch fe.Field() {
		case "title":
			return "Title is required"
		case "userId":
			return "User ID is required"
		case "dueDate":
			return "Due date is required"
		default:
			return "Required"
		}
	case "oneof":
		return "Invalid enum value. Expected " + strings.Join(strings.Fields(fe.Param()), " | ")
	case "datetime":
		return "Invalid datetime"
	case "min":
		return "Too short"
	default:
		return "Invalid"
	}
}
