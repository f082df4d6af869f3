package rest

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/limaJavier/seating/pkg/model"
	"github.com/limaJavier/seating/pkg/roll"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterValidation("branch", func(fl validator.FieldLevel) bool {
		_, ok := roll.Code(model.Branch(fl.Field().String()))
		return ok
	})
	validate.RegisterValidation("rollnumber", func(fl validator.FieldLevel) bool {
		_, err := roll.Parse(fl.Field().String())
		return err == nil
	})

	return validate
}

var errValidation = errors.New("validation error")

// validateStruct validates a request body based on its validation tags
func validateStruct(s any) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		messages = append(messages, formatFieldError(fieldErr))
	}
	return fmt.Errorf("%w: %v", errValidation, strings.Join(messages, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := e.Field()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "len":
		return fmt.Sprintf("%s must hold exactly %s values", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "branch":
		return fmt.Sprintf("%s has unknown branch \"%v\"", field, e.Value())
	case "rollnumber":
		return fmt.Sprintf("%s must look like 1601-22-73X-YYY (X: 2-7, YYY: 001-320)", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
