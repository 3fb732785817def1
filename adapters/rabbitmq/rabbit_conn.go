package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	berr "github.com/next-trace/scg-mediator/contract/errors"
)

// Concrete AMQP connection-backed constructor and publisher wrapper with auto-reconnect.

const (
	exchangeKind       = "topic"
	defaultConnTimeout = 30 * time.Second
	maxBackoff         = 30 * time.Second
)

type Config struct {
	URL         string
	Exchange    string
	ConnTimeout time.Duration
	Logger      *slog.Logger
}

type reconnectingPublisher struct {
	cfg    Config
	logger *slog.Logger

	mu   sync.RWMutex
	conn *amqp.Connection
	ch   *amqp.Channel

	closed    chan struct{}
	closeOnce sync.Once
	ready     chan struct{} // closed after the first successful connect
	readyOnce sync.Once
}

func newReconnectingPublisher(cfg Config) (*reconnectingPublisher, func()) {
	rp := &reconnectingPublisher{
		cfg:    cfg,
		logger: cfg.Logger,
		closed: make(chan struct{}),
		ready:  make(chan struct{}),
	}
	if rp.logger == nil {
		rp.logger = slog.New(slog.DiscardHandler)
	}

	go rp.run()

	return rp, rp.close
}

func (rp *reconnectingPublisher) Publish(ctx context.Context, m PubMsg) error {
	select {
	case <-rp.ready:
	case <-rp.closed:
		return fmt.Errorf("%w: rabbitmq publisher closed", berr.ErrRelayFailed)
	case <-ctx.Done():
		return ctx.Err()
	}

	rp.mu.RLock()
	ch := rp.ch
	rp.mu.RUnlock()

	if ch == nil {
		return fmt.Errorf("%w: rabbitmq not connected", berr.ErrRelayFailed)
	}

	return ch.PublishWithContext(ctx, m.Exchange, m.RoutingKey, false, false, publishing(m))
}

func (rp *reconnectingPublisher) dial() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.DialConfig(rp.cfg.URL, amqp.Config{
		Locale:     "en_US",
		Properties: amqp.Table{"product": "scg-mediator"},
		Dial:       amqp.DefaultDial(rp.cfg.ConnTimeout),
	})
	if err != nil {
		return nil, nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	if err := ch.ExchangeDeclare(rp.cfg.Exchange, exchangeKind, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()

		return nil, nil, err
	}

	return conn, ch, nil
}

func (rp *reconnectingPublisher) run() {
	backoff := time.Second

	for {
		conn, ch, err := rp.dial()
		if err != nil {
			// exponential backoff with jitter
			sleep := min(backoff+rand.N(backoff/2), maxBackoff)
			rp.logger.Warn("rabbitmq connect failed", "error", err, "retry_in", sleep)

			t := time.NewTimer(sleep)
			select {
			case <-rp.closed:
				t.Stop()
				return
			case <-t.C:
			}

			backoff = min(backoff*2, maxBackoff)

			continue
		}

		backoff = time.Second

		rp.mu.Lock()
		rp.conn, rp.ch = conn, ch
		rp.mu.Unlock()

		rp.readyOnce.Do(func() { close(rp.ready) })
		rp.logger.Debug("rabbitmq connected", "exchange", rp.cfg.Exchange)

		// Block on connection close notifications to trigger reconnect
		notify := conn.NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-rp.closed:
			return
		case amqpErr := <-notify:
			rp.logger.Warn("rabbitmq connection lost", "error", amqpErr)

			rp.mu.Lock()
			rp.conn, rp.ch = nil, nil
			rp.mu.Unlock()

			_ = ch.Close()
			_ = conn.Close()
		}
	}
}

func (rp *reconnectingPublisher) close() {
	rp.closeOnce.Do(func() {
		close(rp.closed)

		rp.mu.Lock()
		defer rp.mu.Unlock()

		if rp.ch != nil {
			_ = rp.ch.Close()
			rp.ch = nil
		}

		if rp.conn != nil {
			_ = rp.conn.Close()
			rp.conn = nil
		}
	})
}

// NewWithAMQPConn dials RabbitMQ with auto-reconnect, declares the exchange, and returns a Relayer and cleanup.
func NewWithAMQPConn(cfg Config) (*Relayer, func(), error) {
	if cfg.URL == "" {
		return nil, nil, fmt.Errorf("%w: rabbitmq url required", berr.ErrNotConfigured)
	}

	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}

	if cfg.ConnTimeout <= 0 {
		cfg.ConnTimeout = defaultConnTimeout
	}

	pub, cleanup := newReconnectingPublisher(cfg)

	r := New(pub)
	r.Exchange = cfg.Exchange

	return r, cleanup, nil
}
