package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	berr "github.com/next-trace/scg-mediator/contract/errors"
	cmed "github.com/next-trace/scg-mediator/contract/mediator"
)

// Mediator dispatches signals and notifications through adapters built once per
// concrete message type. It is concurrency-safe and contains no global state.
type Mediator struct {
	resolver cmed.Resolver
	logger   *slog.Logger
	strategy Strategy
	onBuilt  func(reflect.Type)

	signals       adapterCache[signalAdapter]
	notifications adapterCache[notificationAdapter]

	// factories for the type-erased entry points, keyed by concrete message type
	signalFactories       sync.Map // reflect.Type -> func() signalAdapter
	notificationFactories sync.Map // reflect.Type -> func() notificationAdapter
}

// New constructs a Mediator resolving handlers from r. A nil logger discards output.
func New(r cmed.Resolver, logger *slog.Logger, opts ...Option) *Mediator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	m := &Mediator{
		resolver: r,
		logger:   logger,
		strategy: DefaultStrategy,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Register makes signal type S dispatchable through the type-erased Send.
// Typed sends register S implicitly.
func Register[S cmed.Signal[R], R any](m *Mediator) {
	m.signalFactories.Store(reflect.TypeFor[S](), func() signalAdapter { return &signalAdapterOf[S, R]{} })
}

// RegisterNotification makes notification type N publishable through the
// type-erased Publish. Typed publishes register N implicitly.
func RegisterNotification[N cmed.Notification](m *Mediator) {
	m.notificationFactories.Store(reflect.TypeFor[N](), func() notificationAdapter { return &notificationAdapterOf[N]{} })
}

// Send dispatches s to its single handler and returns the typed response.
func Send[S cmed.Signal[R], R any](ctx context.Context, m *Mediator, s S) (R, error) {
	var zero R

	if isNil(s) {
		return zero, fmt.Errorf("send %s: %w", reflect.TypeFor[S]().String(), berr.ErrNullArgument)
	}

	t := reflect.TypeOf(s)
	if t != reflect.TypeFor[S]() {
		// S is an interface type; the concrete type decides the adapter
		return sendErasedAs[R](ctx, m, s)
	}

	a, err := m.signalAdapter(t, func() (signalAdapter, error) {
		m.signalFactories.LoadOrStore(t, func() signalAdapter { return &signalAdapterOf[S, R]{} })
		return &signalAdapterOf[S, R]{}, nil
	})
	if err != nil {
		return zero, err
	}

	typed, ok := a.(*signalAdapterOf[S, R])
	if !ok {
		return zero, fmt.Errorf("send %s: response %s: %w", t.String(), reflect.TypeFor[R]().String(), berr.ErrTypeMismatch)
	}

	return typed.handle(ctx, s, m)
}

func sendErasedAs[R any](ctx context.Context, m *Mediator, s any) (R, error) {
	var zero R

	res, err := m.Send(ctx, s)
	if err != nil {
		return zero, err
	}

	r, ok := res.(R)
	if !ok {
		return zero, fmt.Errorf("send %s: response %T: %w", reflect.TypeOf(s).String(), res, berr.ErrTypeMismatch)
	}

	return r, nil
}

// Send dispatches an untyped signal. The signal must implement mediator.AnySignal and
// its concrete type must have been registered, or sent through the typed Send before.
func (m *Mediator) Send(ctx context.Context, s any) (any, error) {
	if isNil(s) {
		return nil, fmt.Errorf("send: %w", berr.ErrNullArgument)
	}

	t := reflect.TypeOf(s)

	sig, ok := s.(cmed.AnySignal)
	if !ok {
		return nil, fmt.Errorf("send %s: does not implement Signal: %w", t.String(), berr.ErrTypeMismatch)
	}

	a, err := m.signalAdapter(t, func() (signalAdapter, error) {
		f, ok := m.signalFactories.Load(t)
		if !ok {
			return nil, fmt.Errorf("send %s: no adapter registered: %w", t.String(), berr.ErrAdapterConstruction)
		}

		built := f.(func() signalAdapter)()
		if built.responseType() != sig.ResponseType() {
			return nil, fmt.Errorf("send %s: response %s: %w", t.String(), sig.ResponseType().String(), berr.ErrTypeMismatch)
		}

		return built, nil
	})
	if err != nil {
		return nil, err
	}

	return a.handleAny(ctx, s, m)
}

// Publish sends n to every registered handler using the default strategy.
func Publish[N cmed.Notification](ctx context.Context, m *Mediator, n N) error {
	return PublishWith(ctx, m, n, m.strategy)
}

// PublishWith sends n to every registered handler using strategy s.
func PublishWith[N cmed.Notification](ctx context.Context, m *Mediator, n N, s Strategy) error {
	if isNil(n) {
		return fmt.Errorf("publish %s: %w", reflect.TypeFor[N]().String(), berr.ErrNullArgument)
	}

	t := reflect.TypeOf(n)
	if t != reflect.TypeFor[N]() {
		return m.PublishWith(ctx, n, s)
	}

	a, err := m.notificationAdapter(t, func() (notificationAdapter, error) {
		m.notificationFactories.LoadOrStore(t, func() notificationAdapter { return &notificationAdapterOf[N]{} })
		return &notificationAdapterOf[N]{}, nil
	})
	if err != nil {
		return err
	}

	typed, ok := a.(*notificationAdapterOf[N])
	if !ok {
		return fmt.Errorf("publish %s: %w", t.String(), berr.ErrTypeMismatch)
	}

	return typed.publish(ctx, n, m, s)
}

// Publish sends an untyped notification using the default strategy.
func (m *Mediator) Publish(ctx context.Context, n any) error {
	return m.PublishWith(ctx, n, m.strategy)
}

// PublishWith sends an untyped notification using strategy s.
func (m *Mediator) PublishWith(ctx context.Context, n any, s Strategy) error {
	if isNil(n) {
		return fmt.Errorf("publish: %w", berr.ErrNullArgument)
	}

	t := reflect.TypeOf(n)
	if _, ok := n.(cmed.Notification); !ok {
		return fmt.Errorf("publish %s: does not implement Notification: %w", t.String(), berr.ErrTypeMismatch)
	}

	a, err := m.notificationAdapter(t, func() (notificationAdapter, error) {
		f, ok := m.notificationFactories.Load(t)
		if !ok {
			return nil, fmt.Errorf("publish %s: no adapter registered: %w", t.String(), berr.ErrAdapterConstruction)
		}

		return f.(func() notificationAdapter)(), nil
	})
	if err != nil {
		return err
	}

	return a.publishAny(ctx, n, m, s)
}

// Strategy returns the default multicast strategy.
func (m *Mediator) Strategy() Strategy { return m.strategy }

// Resolver returns the resolver handlers are requested from.
func (m *Mediator) Resolver() cmed.Resolver { return m.resolver }

func (m *Mediator) signalAdapter(t reflect.Type, build func() (signalAdapter, error)) (signalAdapter, error) {
	return m.signals.getOrBuild(t, instrumentBuild(m, t, "signal", build))
}

func (m *Mediator) notificationAdapter(
	t reflect.Type,
	build func() (notificationAdapter, error),
) (notificationAdapter, error) {
	return m.notifications.getOrBuild(t, instrumentBuild(m, t, "notification", build))
}

func instrumentBuild[A any](m *Mediator, t reflect.Type, kind string, build func() (A, error)) func() (A, error) {
	return func() (A, error) {
		a, err := build()
		if err != nil {
			m.logger.Debug("dispatch adapter construction failed", "kind", kind, "type", t.String(), "error", err)
			return a, err
		}

		m.logger.Debug("dispatch adapter built", "kind", kind, "type", t.String())

		if m.onBuilt != nil {
			m.onBuilt(t)
		}

		return a, nil
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
