package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/next-trace/scg-mediator/contract/bridge"
	berr "github.com/next-trace/scg-mediator/contract/errors"
)

// DefaultExchange is the topic exchange relayed notifications are published to.
const DefaultExchange = "notifications"

type PubMsg struct {
	Exchange   string
	RoutingKey string
	Body       []byte
	Headers    map[string]string
}

type Publisher interface {
	Publish(ctx context.Context, m PubMsg) error
}

// Relayer implements bridge.Relayer on top of a Publisher. The routing key is
// the notification's subject.
type Relayer struct {
	Publisher  Publisher
	Exchange   string
	Propagator bridge.HeaderPropagator // optional, for context propagation into headers
}

var _ bridge.Relayer = (*Relayer)(nil)

func New(p Publisher) *Relayer { return &Relayer{Publisher: p, Exchange: DefaultExchange} }

// NewWithPropagator allows configuring a HeaderPropagator for context propagation.
func NewWithPropagator(p Publisher, hp bridge.HeaderPropagator) *Relayer {
	return &Relayer{Publisher: p, Exchange: DefaultExchange, Propagator: hp}
}

func (r *Relayer) Relay(ctx context.Context, n any, opts bridge.RelayOptions) error {
	if err := r.ready(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("rabbitmq relay serialize: %w", errors.Join(berr.ErrSerializationFailed, err))
	}

	return r.publish(ctx, bridge.Subject(n, opts), body, bridge.Headers(opts))
}

func (r *Relayer) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if r.Publisher == nil {
		return fmt.Errorf("rabbitmq relay: no publisher: %w", berr.ErrNotConfigured)
	}

	return nil
}

func (r *Relayer) publish(ctx context.Context, routingKey string, body []byte, headers map[string]string) error {
	// Inject tracing context via configured propagator (keeps relayer decoupled)
	if r.Propagator != nil {
		r.Propagator.Inject(ctx, headers)
	}

	msg := PubMsg{
		Exchange:   r.Exchange,
		RoutingKey: routingKey,
		Body:       body,
		Headers:    headers,
	}
	if err := r.Publisher.Publish(ctx, msg); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		return fmt.Errorf("rabbitmq relay publish %s: %w", routingKey, errors.Join(berr.ErrRelayFailed, err))
	}

	return nil
}

// publishing maps a PubMsg onto AMQP properties; well-known relay headers
// also populate MessageId and Type.
func publishing(m PubMsg) amqp.Publishing {
	var h amqp.Table
	if len(m.Headers) > 0 {
		h = amqp.Table{}
		for k, v := range m.Headers {
			h[k] = v
		}
	}

	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Headers:      h,
		MessageId:    m.Headers[bridge.HeaderMessageID],
		Type:         m.Headers[bridge.HeaderMessageType],
		ContentType:  "application/json",
		Body:         m.Body,
	}
}

type amqpChannelPublisher struct{ ch *amqp.Channel }

func (p amqpChannelPublisher) Publish(ctx context.Context, m PubMsg) error {
	return p.ch.PublishWithContext(ctx, m.Exchange, m.RoutingKey, false, false, publishing(m))
}

// NewWithAMQPChannel publishes on an existing channel. The exchange must already exist.
func NewWithAMQPChannel(ch *amqp.Channel, exchange string) *Relayer {
	r := New(amqpChannelPublisher{ch: ch})
	if exchange != "" {
		r.Exchange = exchange
	}

	return r
}
