package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/net/http/httpguts"

	"github.com/kbukum/nativefetch/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their wire names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("http_method", isHTTPMethod)
	})
	return validate
}

// isHTTPMethod accepts any RFC 9110 token, so extension methods such as
// PROPFIND pass.
func isHTTPMethod(fl validator.FieldLevel) bool {
	return httpguts.ValidHeaderFieldName(fl.Field().String())
}

// Validate validates a struct using struct tags such as `validate:"required,url"`.
// It returns nil or an *errors.AppError with code INVALID_ARGS.
func Validate(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Validation("validation failed").WithCause(err)
	}

	fieldErrors := make([]FieldError, 0, len(validationErrors))
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		fe := FieldError{Field: fieldPath(e), Message: formatValidationError(e)}
		fieldErrors = append(fieldErrors, fe)
		messages = append(messages, fe.Field+": "+fe.Message)
	}

	return errors.Validation(strings.Join(messages, "; ")).WithDetail("fields", fieldErrors)
}

// fieldPath drops the root struct name from the namespace ("ClientConfig.proxy.all.url" -> "proxy.all.url").
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "http_url":
		return "must be an absolute http or https URL"
	case "http_method":
		return "must be an HTTP method token"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte", "min":
		return "must be at least " + e.Param()
	case "lte", "max":
		return "must be at most " + e.Param()
	default:
		return "is invalid"
	}
}
