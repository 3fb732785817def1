package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/next-trace/scg-mediator/contract/bridge"
	berr "github.com/next-trace/scg-mediator/contract/errors"
)

// DefaultPrefix is prepended to every topic unless Relayer.Prefix is set.
const DefaultPrefix = "notifications."

// Writer is a minimal Kafka-like writer interface.
// Users can adapt segmentio/kafka-go or any other client to this.
type Writer interface {
	Write(ctx context.Context, topic string, key, value []byte, headers map[string]string) error
}

// Relayer implements bridge.Relayer using an injected Writer.
// RelayOptions.Key becomes the record key rather than a header.
type Relayer struct {
	Writer     Writer
	Prefix     string
	Propagator bridge.HeaderPropagator // optional
}

var _ bridge.Relayer = (*Relayer)(nil)

// New creates a Kafka relayer with the provided writer and the default topic prefix.
func New(w Writer) *Relayer { return &Relayer{Writer: w, Prefix: DefaultPrefix} }

func (r *Relayer) Relay(ctx context.Context, n any, opts bridge.RelayOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if r.Writer == nil {
		return fmt.Errorf("kafka relay: no writer: %w", berr.ErrNotConfigured)
	}

	val, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("kafka relay serialize: %w", errors.Join(berr.ErrSerializationFailed, err))
	}

	topic := r.Prefix + bridge.Subject(n, opts)

	var key []byte
	if opts.Key != "" {
		key = []byte(opts.Key)
	}

	headers := bridge.Headers(bridge.RelayOptions{Headers: opts.Headers})
	if r.Propagator != nil {
		r.Propagator.Inject(ctx, headers)
	}

	if err = r.Writer.Write(ctx, topic, key, val, headers); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		// separate return from preceding multi-line block (wsl)
		return fmt.Errorf("kafka relay write %s: %w", topic, errors.Join(berr.ErrRelayFailed, err))
	}

	return nil
}
