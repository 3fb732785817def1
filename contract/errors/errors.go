package errors

import "strings"

// Error codes for the mediator contracts. Keep stable; used across the engine, container and relays.
const (
	ErrCodeNullArgument        = "mediator.null_argument"
	ErrCodeTypeMismatch        = "mediator.type_mismatch"
	ErrCodeHandlerNotFound     = "mediator.handler_not_found"
	ErrCodeHandlerExists       = "mediator.handler_exists"
	ErrCodeAdapterConstruction = "mediator.adapter_construction"
	ErrCodeHandlerPanic        = "mediator.handler_panic"
	ErrCodeNotConfigured       = "mediator.not_configured"
	ErrCodeRelayFailed         = "mediator.relay_failed"
	ErrCodeSerializationFailed = "mediator.serialization_failed"
	ErrCodeValidationFailed    = "mediator.validation_failed"
	ErrCodeRateLimited         = "mediator.rate_limited"
)

// Code returns an error value that carries only a code string.
// It implements error by returning the code string in Error().
func Code(code string) error { return codedError(code) }

type codedError string

func (e codedError) Error() string { return string(e) }

var (
	ErrNullArgument        = Code(ErrCodeNullArgument)
	ErrTypeMismatch        = Code(ErrCodeTypeMismatch)
	ErrHandlerNotFound     = Code(ErrCodeHandlerNotFound)
	ErrHandlerExists       = Code(ErrCodeHandlerExists)
	ErrAdapterConstruction = Code(ErrCodeAdapterConstruction)
	ErrHandlerPanic        = Code(ErrCodeHandlerPanic)
	ErrNotConfigured       = Code(ErrCodeNotConfigured)
	ErrRelayFailed         = Code(ErrCodeRelayFailed)
	ErrSerializationFailed = Code(ErrCodeSerializationFailed)
	ErrValidationFailed    = Code(ErrCodeValidationFailed)
	ErrRateLimited         = Code(ErrCodeRateLimited)
)

// AggregateError bundles the failures collected by a multicast strategy.
// Errors keeps handler order. errors.Is and errors.As see every member.
type AggregateError struct {
	Errors []error
}

// Aggregate returns nil for no errors, otherwise an *AggregateError with nested
// aggregates flattened into a single level.
func Aggregate(errs ...error) error {
	flat := make([]error, 0, len(errs))
	for _, err := range errs {
		flat = appendFlat(flat, err)
	}

	if len(flat) == 0 {
		return nil
	}

	return &AggregateError{Errors: flat}
}

func appendFlat(dst []error, err error) []error {
	if err == nil {
		return dst
	}

	if agg, ok := err.(*AggregateError); ok {
		for _, inner := range agg.Errors {
			dst = appendFlat(dst, inner)
		}

		return dst
	}

	return append(dst, err)
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return "one or more errors occurred: " + e.Errors[0].Error()
	}

	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}

	return "one or more errors occurred: [" + strings.Join(msgs, "; ") + "]"
}

func (e *AggregateError) Unwrap() []error { return e.Errors }
