// Package validate wraps go-playground/validator so every layer reports
// invalid input the same way: as an apperror.ErrValidation naming the JSON
// field at fault.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/apperror"
)

// New returns a validator that reports fields by their JSON names.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates s and converts the first failure to an *apperror.AppError.
func Struct(v *validator.Validate, s any) error {
	if err := v.Struct(s); err != nil {
		return ToAppError(err)
	}
	return nil
}

// ToAppError converts a validator error to an *apperror.AppError.
// Errors that are not validation failures are returned unchanged.
func ToAppError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	return apperror.ValidationFailed(fe.Field(), message(fe))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
