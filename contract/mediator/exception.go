package mediator

import "context"

// ExceptionAction observes a failed signal. It is registered for one error
// category and receives the original error. Returning an error replaces the
// failure being propagated.
type ExceptionAction[S any] interface {
	Execute(ctx context.Context, s S, err error) error
}

// ExceptionActionFunc adapts a function to an ExceptionAction.
type ExceptionActionFunc[S any] func(ctx context.Context, s S, err error) error

func (f ExceptionActionFunc[S]) Execute(ctx context.Context, s S, err error) error {
	return f(ctx, s, err)
}

// ExceptionHandler may recover a failed signal by marking state handled.
type ExceptionHandler[S Signal[R], R any] interface {
	Handle(ctx context.Context, s S, err error, state *ExceptionState[R]) error
}

// ExceptionHandlerFunc adapts a function to an ExceptionHandler.
type ExceptionHandlerFunc[S Signal[R], R any] func(ctx context.Context, s S, err error, state *ExceptionState[R]) error

func (f ExceptionHandlerFunc[S, R]) Handle(ctx context.Context, s S, err error, state *ExceptionState[R]) error {
	return f(ctx, s, err, state)
}

// ExceptionState is shared by the exception handlers of one failed send.
type ExceptionState[R any] struct {
	handled  bool
	response R
}

// SetHandled marks the failure handled and supplies the replacement response.
func (s *ExceptionState[R]) SetHandled(response R) {
	s.handled = true
	s.response = response
}

// Handled reports whether a handler recovered the failure.
func (s *ExceptionState[R]) Handled() bool { return s.handled }

// Response returns the replacement response set by SetHandled.
func (s *ExceptionState[R]) Response() R { return s.response }
