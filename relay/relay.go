// Package relay forwards published notifications to an external broker.
//
// A Handler is an ordinary notification handler: register it next to the
// in-process handlers and every Publish also relays the notification through
// a bridge.Relayer. Nothing is ever received back.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/google/uuid"

	"github.com/next-trace/scg-mediator/contract/bridge"
	berr "github.com/next-trace/scg-mediator/contract/errors"
	cmed "github.com/next-trace/scg-mediator/contract/mediator"
)

// Handler relays notifications of type N. The zero value is not usable; use NewHandler.
type Handler[N cmed.Notification] struct {
	relayer bridge.Relayer
	logger  *slog.Logger
	cfg     handlerConfig[N]
}

type handlerConfig[N cmed.Notification] struct {
	subject string
	key     func(N) string
	headers map[string]string
	newID   func() string
}

// Option configures a Handler.
type Option[N cmed.Notification] func(*handlerConfig[N])

// WithSubject overrides the subject every notification is relayed to.
func WithSubject[N cmed.Notification](subject string) Option[N] {
	return func(c *handlerConfig[N]) { c.subject = subject }
}

// WithKey derives the partition/routing key from the notification.
func WithKey[N cmed.Notification](fn func(N) string) Option[N] {
	return func(c *handlerConfig[N]) { c.key = fn }
}

// WithHeaders adds static headers to every relayed notification.
func WithHeaders[N cmed.Notification](h map[string]string) Option[N] {
	return func(c *handlerConfig[N]) { c.headers = maps.Clone(h) }
}

// WithIDGenerator replaces the message-id generator (uuid v4 by default).
func WithIDGenerator[N cmed.Notification](fn func() string) Option[N] {
	return func(c *handlerConfig[N]) { c.newID = fn }
}

// NewHandler returns a handler relaying through r. A nil logger discards output.
func NewHandler[N cmed.Notification](r bridge.Relayer, logger *slog.Logger, opts ...Option[N]) *Handler[N] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	h := &Handler[N]{relayer: r, logger: logger, cfg: handlerConfig[N]{newID: uuid.NewString}}
	for _, opt := range opts {
		opt(&h.cfg)
	}

	return h
}

var _ cmed.NotificationHandler[cmed.NotificationBase] = (*Handler[cmed.NotificationBase])(nil)

func (h *Handler[N]) Handle(ctx context.Context, n N) error {
	typeName := bridge.TypeName(n)

	if h.relayer == nil {
		return fmt.Errorf("relay %s: no relayer: %w", typeName, berr.ErrNotConfigured)
	}

	headers := make(map[string]string, len(h.cfg.headers)+2)
	maps.Copy(headers, h.cfg.headers)
	headers[bridge.HeaderMessageID] = h.cfg.newID()
	headers[bridge.HeaderMessageType] = typeName

	opts := bridge.RelayOptions{SubjectOverride: h.cfg.subject, Headers: headers}
	if h.cfg.key != nil {
		opts.Key = h.cfg.key(n)
	}

	if err := h.relayer.Relay(ctx, n, opts); err != nil {
		h.logger.WarnContext(ctx, "relay failed",
			"type", typeName, "message_id", headers[bridge.HeaderMessageID], "error", err)

		return fmt.Errorf("relay %s: %w", typeName, err)
	}

	h.logger.DebugContext(ctx, "relayed notification",
		"type", typeName, "message_id", headers[bridge.HeaderMessageID])

	return nil
}
