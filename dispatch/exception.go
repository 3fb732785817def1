package dispatch

import (
	"context"
	"fmt"
	"reflect"

	berr "github.com/next-trace/scg-mediator/contract/errors"
	cmed "github.com/next-trace/scg-mediator/contract/mediator"
)

// ErrorCategories lists the categories the exception pipeline visits for err,
// most specific first: the concrete type of every error in the unwrap chain
// (depth-first, each type once), then mediator.RootErrorCategory.
func ErrorCategories(err error) []reflect.Type {
	var (
		out  []reflect.Type
		seen = map[reflect.Type]bool{}
	)

	var walk func(e error)
	walk = func(e error) {
		if e == nil {
			return
		}

		if t := reflect.TypeOf(e); !seen[t] {
			seen[t] = true
			out = append(out, t)
		}

		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}

	walk(err)

	if !seen[cmed.RootErrorCategory] {
		out = append(out, cmed.RootErrorCategory)
	}

	return out
}

// ExceptionActionBehaviour runs the exception actions registered for a failed
// send. It observes failures and never suppresses them.
type ExceptionActionBehaviour[S cmed.Signal[R], R any] struct {
	resolver cmed.Resolver
}

// NewExceptionActionBehaviour returns an action behaviour resolving from r.
func NewExceptionActionBehaviour[S cmed.Signal[R], R any](r cmed.Resolver) *ExceptionActionBehaviour[S, R] {
	return &ExceptionActionBehaviour[S, R]{resolver: r}
}

func (b *ExceptionActionBehaviour[S, R]) Handle(ctx context.Context, s S, next cmed.Next[R]) (R, error) {
	var zero R

	res, err := next()
	if err == nil {
		return res, nil
	}

	msg := reflect.TypeFor[S]()

	for _, category := range ErrorCategories(err) {
		actions := Prioritize(b.resolver.ResolveAll(cmed.ExceptionActionContractOf(msg, category)), s)

		for _, inst := range actions {
			a, ok := inst.(cmed.ExceptionAction[S])
			if !ok {
				return zero, fmt.Errorf("exception action %T: %w", inst, berr.ErrTypeMismatch)
			}

			if aerr := a.Execute(ctx, s, err); aerr != nil {
				return zero, aerr
			}
		}
	}

	return zero, err
}

// ExceptionHandlerBehaviour offers a failed send to the registered exception
// handlers, most specific category first. The first handler marking the shared
// state handled supplies the response; otherwise the original error propagates.
type ExceptionHandlerBehaviour[S cmed.Signal[R], R any] struct {
	resolver cmed.Resolver
}

// NewExceptionHandlerBehaviour returns a recovering behaviour resolving from r.
func NewExceptionHandlerBehaviour[S cmed.Signal[R], R any](r cmed.Resolver) *ExceptionHandlerBehaviour[S, R] {
	return &ExceptionHandlerBehaviour[S, R]{resolver: r}
}

func (b *ExceptionHandlerBehaviour[S, R]) Handle(ctx context.Context, s S, next cmed.Next[R]) (R, error) {
	var zero R

	res, err := next()
	if err == nil {
		return res, nil
	}

	msg := reflect.TypeFor[S]()
	resp := reflect.TypeFor[R]()
	state := &cmed.ExceptionState[R]{}

	for _, category := range ErrorCategories(err) {
		handlers := Prioritize(b.resolver.ResolveAll(cmed.ExceptionHandlerContractOf(msg, resp, category)), s)

		for _, inst := range handlers {
			h, ok := inst.(cmed.ExceptionHandler[S, R])
			if !ok {
				return zero, fmt.Errorf("exception handler %T: %w", inst, berr.ErrTypeMismatch)
			}

			if herr := h.Handle(ctx, s, err, state); herr != nil {
				return zero, herr
			}

			if state.Handled() {
				return state.Response(), nil
			}
		}
	}

	return zero, err
}
