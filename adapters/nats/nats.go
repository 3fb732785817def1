package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/next-trace/scg-mediator/contract/bridge"
	berr "github.com/next-trace/scg-mediator/contract/errors"
)

// DefaultPrefix is prepended to every subject unless Relayer.Prefix is set.
const DefaultPrefix = "notifications."

// Client is a minimal NATS-like publisher interface decoupled from any concrete library.
// Users can provide a wrapper around their NATS connection to satisfy this.
type Client interface {
	// Publish publishes a message to a subject with optional headers.
	Publish(ctx context.Context, subject string, data []byte, headers map[string]string) error
}

// Relayer implements bridge.Relayer using an injected NATS-like Client.
type Relayer struct {
	Client     Client
	Prefix     string
	Propagator bridge.HeaderPropagator // optional
}

var _ bridge.Relayer = (*Relayer)(nil)

// New creates a NATS relayer with the provided client and the default subject prefix.
func New(c Client) *Relayer { return &Relayer{Client: c, Prefix: DefaultPrefix} }

func (r *Relayer) Relay(ctx context.Context, n any, opts bridge.RelayOptions) error {
	if err := r.ready(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("nats relay serialize: %w", errors.Join(berr.ErrSerializationFailed, err))
	}

	headers := bridge.Headers(opts)
	if r.Propagator != nil {
		r.Propagator.Inject(ctx, headers)
	}

	return r.publish(ctx, r.Prefix+bridge.Subject(n, opts), body, headers)
}

func (r *Relayer) publish(ctx context.Context, subject string, body []byte, headers map[string]string) error {
	if err := r.Client.Publish(ctx, subject, body, headers); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		return fmt.Errorf("nats relay publish %s: %w", subject, errors.Join(berr.ErrRelayFailed, err))
	}

	return nil
}

func (r *Relayer) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if r.Client == nil {
		return fmt.Errorf("nats relay: no client: %w", berr.ErrNotConfigured)
	}

	return nil
}
