package dispatch

import (
	"context"
	"fmt"
	"reflect"

	berr "github.com/next-trace/scg-mediator/contract/errors"
	cmed "github.com/next-trace/scg-mediator/contract/mediator"
)

// signalAdapter is the type-erased face of a per-type signal adapter.
type signalAdapter interface {
	handleAny(ctx context.Context, s any, m *Mediator) (any, error)
	responseType() reflect.Type
}

// signalAdapterOf bridges erased dispatch to the typed handler and pipeline of S.
// It holds no state; handlers and behaviours are resolved per call.
type signalAdapterOf[S cmed.Signal[R], R any] struct{}

func (*signalAdapterOf[S, R]) responseType() reflect.Type { return reflect.TypeFor[R]() }

func (a *signalAdapterOf[S, R]) handleAny(ctx context.Context, s any, m *Mediator) (any, error) {
	typed, ok := s.(S)
	if !ok {
		return nil, fmt.Errorf("send %T: %w", s, berr.ErrTypeMismatch)
	}

	return a.handle(ctx, typed, m)
}

func (*signalAdapterOf[S, R]) handle(ctx context.Context, s S, m *Mediator) (R, error) {
	var zero R

	contract := cmed.HandlerContract[S, R]()

	inst, ok := m.resolver.Resolve(contract)
	if !ok || inst == nil {
		m.logger.WarnContext(ctx, "no handler registered", "contract", contract.String())
		return zero, fmt.Errorf("send %s: %w", contract.Message.String(), berr.ErrHandlerNotFound)
	}

	h, ok := inst.(cmed.SignalHandler[S, R])
	if !ok {
		return zero, fmt.Errorf("send %s: handler %T: %w", contract.Message.String(), inst, berr.ErrTypeMismatch)
	}

	behaviours := m.resolver.ResolveAll(cmed.BehaviourContract[S, R]())

	// Build chain so the first registered behaviour runs first
	next := cmed.Next[R](func() (R, error) { return h.Handle(ctx, s) })

	for i := len(behaviours) - 1; i >= 0; i-- {
		b, ok := behaviours[i].(cmed.PipelineBehaviour[S, R])
		if !ok {
			return zero, fmt.Errorf("send %s: behaviour %T: %w", contract.Message.String(), behaviours[i], berr.ErrTypeMismatch)
		}

		inner := next
		next = func() (R, error) { return b.Handle(ctx, s, inner) }
	}

	return next()
}
