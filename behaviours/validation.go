package behaviours

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	berr "github.com/next-trace/scg-mediator/contract/errors"
	cmed "github.com/next-trace/scg-mediator/contract/mediator"
)

// ValidationError reports the fields of a signal that failed their
// `validate` tags. It matches berr.ErrValidationFailed with errors.Is.
type ValidationError struct {
	Signal string
	Fields validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed validation: %s (value: '%v')", f.Field(), f.Tag(), f.Value()))
	}

	return fmt.Sprintf("%s: validation failed: %s", e.Signal, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() []error { return []error{berr.ErrValidationFailed, e.Fields} }

// Validation is a pre-processor checking S against its struct tags with
// go-playground/validator. Non-struct signals pass unchecked.
type Validation[S any] struct {
	validate *validator.Validate
}

// NewValidation returns a validation pre-processor. A nil v uses a fresh validator.New.
func NewValidation[S any](v *validator.Validate) *Validation[S] {
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}

	return &Validation[S]{validate: v}
}

var _ cmed.PreProcessor[struct{}] = (*Validation[struct{}])(nil)

func (p *Validation[S]) Process(ctx context.Context, s S) error {
	t := reflect.TypeOf(s)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	err := p.validate.StructCtx(ctx, s)
	if err == nil {
		return nil
	}

	var fields validator.ValidationErrors
	if errors.As(err, &fields) {
		return &ValidationError{Signal: t.String(), Fields: fields}
	}

	return fmt.Errorf("validate %s: %w", t.String(), errors.Join(berr.ErrValidationFailed, err))
}
