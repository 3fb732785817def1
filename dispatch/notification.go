package dispatch

import (
	"context"
	"fmt"

	berr "github.com/next-trace/scg-mediator/contract/errors"
	cmed "github.com/next-trace/scg-mediator/contract/mediator"
)

type notificationAdapter interface {
	publishAny(ctx context.Context, n any, m *Mediator, s Strategy) error
}

type notificationAdapterOf[N cmed.Notification] struct{}

func (a *notificationAdapterOf[N]) publishAny(ctx context.Context, n any, m *Mediator, s Strategy) error {
	typed, ok := n.(N)
	if !ok {
		return fmt.Errorf("publish %T: %w", n, berr.ErrTypeMismatch)
	}

	return a.publish(ctx, typed, m, s)
}

func (*notificationAdapterOf[N]) publish(ctx context.Context, n N, m *Mediator, s Strategy) error {
	contract := cmed.NotificationHandlerContract[N]()
	instances := m.resolver.ResolveAll(contract)

	calls := make([]Invocation, 0, len(instances))

	for _, inst := range instances {
		h, ok := inst.(cmed.NotificationHandler[N])
		if !ok {
			return fmt.Errorf("publish %s: handler %T: %w", contract.Message.String(), inst, berr.ErrTypeMismatch)
		}

		calls = append(calls, func() error { return h.Handle(ctx, n) })
	}

	return m.multicast(ctx, s, calls)
}
