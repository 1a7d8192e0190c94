package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/token-auth-service/pkg/util/errorutil"
)

// newValidator reports fields by their wire name and adds a "notblank" rule
// that rejects whitespace-only strings.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return isUsername(fl.Field().String())
	})
	return v
}

// validateStruct returns a ValidationError naming the first failing field in
// declaration order.
func validateStruct(v *validator.Validate, req any) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.NewInternalError(err)
	}

	fe := fieldErrs[0]
	var msg string
	switch fe.Tag() {
	case "required", "notblank":
		msg = fmt.Sprintf("%s is required", fe.Field())
	case "email":
		msg = fmt.Sprintf("%s is not a valid email address", fe.Field())
	case "e164":
		msg = fmt.Sprintf("%s is not a valid phone number", fe.Field())
	case "username":
		msg = fmt.Sprintf("%s must start with a letter and may not contain '@'", fe.Field())
	default:
		msg = fmt.Sprintf("%s is invalid", fe.Field())
	}
	return apperrors.NewValidationError(fe.Field(), msg)
}

// isUsername keeps usernames distinguishable from emails and phone numbers.
func isUsername(s string) bool {
	if s == "" || strings.ContainsAny(s, "@ \t\r\n") {
		return false
	}
	first := s[0]
	return (first >= 'a' && first <= 'z') || (first >= 'A' && first <= 'Z')
}
