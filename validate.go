package wordcache

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var configValidator = validator.New()

// Validate checks the configuration and returns a *ValidationError naming
// every invalid field.
func (c Config) Validate() error {
	err := configValidator.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &ValidationError{Message: err.Error()}
	}

	fields := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, strings.TrimPrefix(fe.Namespace(), "Config."))
	}
	return &ValidationError{
		Message: "invalid gateway configuration",
		Fields:  fields,
	}
}
