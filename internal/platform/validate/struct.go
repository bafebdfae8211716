// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
)

// structValidator is safe for concurrent use and caches struct metadata.
var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON tag names so details match the request body.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRegex.MatchString(fl.Field().String())
	})

	return v
}

// Struct validates a DTO using its `validate` struct tags.
//
// Failures are returned as a single VALIDATION_ERROR [apperr.AppError]
// with one [apperr.FieldError] per failing field.
func Struct(target any) error {
	err := structValidator.Struct(target)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperr.Internal(fmt.Errorf("validate_struct_failed: %w", err))
	}

	details := make([]apperr.FieldError, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		details = append(details, apperr.FieldError{
			Field:   fieldErr.Field(),
			Message: friendlyMessage(fieldErr),
		})
	}

	return apperr.ValidationError("Validation failed", details...)
}

func friendlyMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "max":
		if fieldErr.Kind() == reflect.String {
			return fmt.Sprintf("Maximum %s characters", fieldErr.Param())
		}
		return "Must be at most " + fieldErr.Param()
	case "min":
		if fieldErr.Kind() == reflect.String {
			return fmt.Sprintf("Minimum %s characters", fieldErr.Param())
		}
		return "Must be at least " + fieldErr.Param()
	case "gte":
		return "Must be greater than or equal to " + fieldErr.Param()
	case "lte":
		return "Must be less than or equal to " + fieldErr.Param()
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fieldErr.Param(), " ", ", ")
	case "username":
		return fmt.Sprintf("Up to %d letters, digits and @/./+/-/_ only", MaxUsernameLen)
	case "slug":
		return slugMessage
	default:
		return "Is invalid"
	}
}
