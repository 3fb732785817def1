package relay

import (
	"fmt"
	"log/slog"

	"github.com/next-trace/scg-mediator/adapters/inmemory"
	"github.com/next-trace/scg-mediator/adapters/kafka"
	"github.com/next-trace/scg-mediator/adapters/nats"
	"github.com/next-trace/scg-mediator/adapters/rabbitmq"
	"github.com/next-trace/scg-mediator/config"
	"github.com/next-trace/scg-mediator/contract/bridge"
	berr "github.com/next-trace/scg-mediator/contract/errors"
)

// Open builds the Relayer selected by cfg.Transport and its cleanup.
// Transport "none" yields a nil Relayer.
func Open(cfg config.RelayConfig, logger *slog.Logger) (bridge.Relayer, func(), error) {
	noop := func() {}

	switch cfg.Transport {
	case "", "none":
		return nil, noop, nil
	case "inmemory":
		return inmemory.New(), noop, nil
	case "nats":
		r, cleanup, err := nats.NewWithNATS(nats.Config{URL: cfg.URL, Name: cfg.ClientID, Prefix: cfg.SubjectPrefix})
		if err != nil {
			return nil, nil, err
		}

		return r, cleanup, nil
	case "kafka":
		r, cleanup, err := kafka.NewWithKgo(kafka.Config{Brokers: cfg.Brokers, ClientID: cfg.ClientID, Prefix: cfg.SubjectPrefix})
		if err != nil {
			return nil, nil, err
		}

		return r, cleanup, nil
	case "rabbitmq":
		r, cleanup, err := rabbitmq.NewWithAMQPConn(rabbitmq.Config{URL: cfg.URL, Exchange: cfg.Exchange, Logger: logger})
		if err != nil {
			return nil, nil, err
		}

		return r, cleanup, nil
	default:
		return nil, nil, fmt.Errorf("relay transport %q: %w", cfg.Transport, berr.ErrNotConfigured)
	}
}
