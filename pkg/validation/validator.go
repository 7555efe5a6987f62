// Package validation wraps struct tag validation and reports failures as
// validation AppErrors with one detail entry per offending field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	apperrors "loangraph/pkg/errors"

	"github.com/go-playground/validator/v10"
)

// Validator validates structs against their `validate` tags
type Validator struct {
	validate *validator.Validate
}

var (
	instance *Validator
	once     sync.Once
)

// Default returns the shared validator instance
func Default() *Validator {
	once.Do(func() {
		instance = New()
	})
	return instance
}

// New creates a validator that names fields after their json or yaml tag
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "yaml"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return &Validator{validate: v}
}

// Struct validates s and returns a validation AppError listing every failure
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.NewValidationError(err.Error()).WithCause(err)
	}

	details := make(map[string]interface{}, len(validationErrors))
	fields := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		details[field] = message(e.Tag(), e.Param())
		fields = append(fields, field)
	}
	sort.Strings(fields)

	return apperrors.NewValidationError(fmt.Sprintf("invalid %s", strings.Join(fields, ", "))).
		WithDetails(details).
		WithCause(err)
}

func message(tag, param string) string {
	switch tag {
	case "required":
		return "This field is required"
	case "min", "gte":
		return fmt.Sprintf("Must be at least %s", param)
	case "max", "lte":
		return fmt.Sprintf("Must be at most %s", param)
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(param, " ", ", "))
	case "gt":
		return fmt.Sprintf("Must be greater than %s", param)
	case "hostname_port":
		return "Must be a host:port address"
	default:
		return fmt.Sprintf("Failed %s validation", tag)
	}
}
