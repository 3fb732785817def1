package dispatch

import (
	"context"
	"fmt"

	berr "github.com/next-trace/scg-mediator/contract/errors"
	cmed "github.com/next-trace/scg-mediator/contract/mediator"
)

// PreProcessorBehaviour runs every registered PreProcessor for S, in
// registration order, before continuing the pipeline.
type PreProcessorBehaviour[S cmed.Signal[R], R any] struct {
	resolver cmed.Resolver
}

// NewPreProcessorBehaviour returns a behaviour resolving pre-processors from r on every send.
func NewPreProcessorBehaviour[S cmed.Signal[R], R any](r cmed.Resolver) *PreProcessorBehaviour[S, R] {
	return &PreProcessorBehaviour[S, R]{resolver: r}
}

func (b *PreProcessorBehaviour[S, R]) Handle(ctx context.Context, s S, next cmed.Next[R]) (R, error) {
	var zero R

	for _, inst := range b.resolver.ResolveAll(cmed.PreProcessorContract[S]()) {
		p, ok := inst.(cmed.PreProcessor[S])
		if !ok {
			return zero, fmt.Errorf("pre-process %T: %w", inst, berr.ErrTypeMismatch)
		}

		if err := p.Process(ctx, s); err != nil {
			return zero, err
		}
	}

	return next()
}

// PostProcessorBehaviour runs every registered PostProcessor for (S, R), in
// registration order, after the rest of the pipeline succeeded.
type PostProcessorBehaviour[S cmed.Signal[R], R any] struct {
	resolver cmed.Resolver
}

// NewPostProcessorBehaviour returns a behaviour resolving post-processors from r on every send.
func NewPostProcessorBehaviour[S cmed.Signal[R], R any](r cmed.Resolver) *PostProcessorBehaviour[S, R] {
	return &PostProcessorBehaviour[S, R]{resolver: r}
}

func (b *PostProcessorBehaviour[S, R]) Handle(ctx context.Context, s S, next cmed.Next[R]) (R, error) {
	var zero R

	res, err := next()
	if err != nil {
		return res, err
	}

	for _, inst := range b.resolver.ResolveAll(cmed.PostProcessorContract[S, R]()) {
		p, ok := inst.(cmed.PostProcessor[S, R])
		if !ok {
			return zero, fmt.Errorf("post-process %T: %w", inst, berr.ErrTypeMismatch)
		}

		if err := p.Process(ctx, s, res); err != nil {
			return zero, err
		}
	}

	return res, nil
}
