package mediator

import "context"

// Next continues the pipeline. The innermost Next invokes the signal handler.
type Next[R any] func() (R, error)

// PipelineBehaviour wraps handler execution. A behaviour may act before and after
// calling next, replace the response, or skip next entirely.
type PipelineBehaviour[S Signal[R], R any] interface {
	Handle(ctx context.Context, s S, next Next[R]) (R, error)
}

// PipelineBehaviourFunc adapts a function to a PipelineBehaviour.
type PipelineBehaviourFunc[S Signal[R], R any] func(ctx context.Context, s S, next Next[R]) (R, error)

func (f PipelineBehaviourFunc[S, R]) Handle(ctx context.Context, s S, next Next[R]) (R, error) {
	return f(ctx, s, next)
}

// PreProcessor runs before the handler. Returning an error aborts the send.
type PreProcessor[S any] interface {
	Process(ctx context.Context, s S) error
}

// PreProcessorFunc adapts a function to a PreProcessor.
type PreProcessorFunc[S any] func(ctx context.Context, s S) error

func (f PreProcessorFunc[S]) Process(ctx context.Context, s S) error { return f(ctx, s) }

// PostProcessor runs after the handler returned successfully.
type PostProcessor[S Signal[R], R any] interface {
	Process(ctx context.Context, s S, r R) error
}

// PostProcessorFunc adapts a function to a PostProcessor.
type PostProcessorFunc[S Signal[R], R any] func(ctx context.Context, s S, r R) error

func (f PostProcessorFunc[S, R]) Process(ctx context.Context, s S, r R) error {
	return f(ctx, s, r)
}

