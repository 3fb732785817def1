package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/next-trace/scg-mediator/dispatch"
)

// Validator is a wrapper around go-playground/validator with the config rules registered.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator knowing the "strategy" tag and the relay transport rules.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("strategy", func(fl validator.FieldLevel) bool {
		_, err := dispatch.ParseStrategy(fl.Field().String())
		return err == nil
	})

	v.RegisterStructValidation(validateRelay, RelayConfig{})

	return &Validator{validate: v}
}

// Validate validates a struct using validation tags
func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return formatValidationError(err)
	}

	return nil
}

// Validate validates the entire configuration.
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

func validateRelay(sl validator.StructLevel) {
	rc, ok := sl.Current().Interface().(RelayConfig)
	if !ok {
		return
	}

	switch rc.Transport {
	case "nats", "rabbitmq":
		if rc.URL == "" {
			sl.ReportError(rc.URL, "URL", "url", "required_for_transport", rc.Transport)
		}
	case "kafka":
		if len(rc.Brokers) == 0 {
			sl.ReportError(rc.Brokers, "Brokers", "brokers", "required_for_transport", rc.Transport)
		}
	}
}

// formatValidationError converts validator errors into readable messages
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		messages = append(messages, fmt.Sprintf(
			"field '%s' failed validation: %s (value: '%v')",
			e.Namespace(),
			e.Tag(),
			e.Value(),
		))
	}

	return fmt.Errorf("validation failed:\n  %s", strings.Join(messages, "\n  "))
}
