package models

import (
	"strings"

	"github.com/go-playground/validator"
)

// ValidationError reports a body that cannot be stored as given.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	// present only fails on a nil pointer, so a zero value still counts as given
	_ = validate.RegisterValidation("present", func(fl validator.FieldLevel) bool {
		return true
	})
}

// requiredError names every field listed in fields when model fails its
// validate tags, e.g. "name and email required".
func requiredError(model interface{}, fields []string) error {
	if err := validate.Struct(model); err != nil {
		if _, ok := err.(validator.ValidationErrors); !ok {
			return err
		}
		return &ValidationError{Message: strings.Join(fields, " and ") + " required"}
	}

	return nil
}
