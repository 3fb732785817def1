// Package memory composes a ready-to-use mediator backed by the in-memory
// container, optionally configured from config.Config.
package memory

import (
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/next-trace/scg-mediator/behaviours"
	"github.com/next-trace/scg-mediator/config"
	"github.com/next-trace/scg-mediator/container"
	"github.com/next-trace/scg-mediator/contract/bridge"
	berr "github.com/next-trace/scg-mediator/contract/errors"
	cmed "github.com/next-trace/scg-mediator/contract/mediator"
	"github.com/next-trace/scg-mediator/dispatch"
	"github.com/next-trace/scg-mediator/relay"
)

// Mediator is a dispatch.Mediator together with the container it resolves
// from and the optional outbound relayer.
type Mediator struct {
	*dispatch.Mediator

	Container *container.Container
	Relayer   bridge.Relayer

	logger  *slog.Logger
	limiter *rate.Limiter
}

// New constructs a mediator over a fresh container and returns it along with
// a cleanup function.
func New(logger *slog.Logger, opts ...dispatch.Option) (*Mediator, func()) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := container.New()

	return &Mediator{
		Mediator:  dispatch.New(c, logger, opts...),
		Container: c,
		logger:    logger,
	}, func() {}
}

// FromConfig constructs a mediator with the configured default strategy,
// relay transport and rate limit. The cleanup closes the relay connection.
func FromConfig(cfg *config.Config, logger *slog.Logger) (*Mediator, func(), error) {
	strategy, err := cfg.Strategy()
	if err != nil {
		return nil, nil, err
	}

	m, _ := New(logger, dispatch.WithDefaultStrategy(strategy))

	r, cleanup, err := relay.Open(cfg.Relay, m.logger)
	if err != nil {
		return nil, nil, err
	}

	m.Relayer = r

	if cfg.RateLimit.RPS > 0 {
		m.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	}

	return m, cleanup, nil
}

// Handle registers h for S together with the standard pipeline, outermost first:
// logging, rate limiting (when configured), exception actions, exception
// handlers, pre-processors, post-processors. It also makes S sendable through
// the type-erased Send.
func Handle[S cmed.Signal[R], R any](m *Mediator, h cmed.SignalHandler[S, R]) error {
	c := m.Container

	if err := container.AddSignalHandler[S, R](c, h); err != nil {
		return err
	}

	pipeline := []cmed.PipelineBehaviour[S, R]{behaviours.NewLogging[S, R](m.logger)}
	if m.limiter != nil {
		pipeline = append(pipeline, behaviours.NewRateLimitWith[S, R](m.limiter, true))
	}

	pipeline = append(pipeline,
		dispatch.NewExceptionActionBehaviour[S, R](c),
		dispatch.NewExceptionHandlerBehaviour[S, R](c),
		dispatch.NewPreProcessorBehaviour[S, R](c),
		dispatch.NewPostProcessorBehaviour[S, R](c),
	)

	for _, b := range pipeline {
		if err := container.AddBehaviour[S, R](c, b); err != nil {
			return err
		}
	}

	dispatch.Register[S, R](m.Mediator)

	return nil
}

// Subscribe registers a notification handler for N and makes N publishable
// through the type-erased Publish.
func Subscribe[N cmed.Notification](m *Mediator, h cmed.NotificationHandler[N]) error {
	if err := container.AddNotificationHandler[N](m.Container, h); err != nil {
		return err
	}

	dispatch.RegisterNotification[N](m.Mediator)

	return nil
}

// Relay subscribes a relay.Handler for N using the configured Relayer.
func Relay[N cmed.Notification](m *Mediator, opts ...relay.Option[N]) error {
	if m.Relayer == nil {
		return fmt.Errorf("relay %s: %w", bridge.TypeName(*new(N)), berr.ErrNotConfigured)
	}

	return Subscribe[N](m, relay.NewHandler[N](m.Relayer, m.logger, opts...))
}
