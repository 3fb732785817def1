package kafka_test

import (
	"context"
	"errors"
	"testing"

	"github.com/next-trace/scg-mediator/adapters/kafka"
	"github.com/next-trace/scg-mediator/contract/bridge"
	berr "github.com/next-trace/scg-mediator/contract/errors"
)

type written struct {
	topic   string
	key     []byte
	value   []byte
	headers map[string]string
}

type fakeWriter struct {
	calls []written
	err   error
}

func (f *fakeWriter) Write(_ context.Context, topic string, key, value []byte, headers map[string]string) error {
	f.calls = append(f.calls, written{topic, key, value, headers})

	return f.err
}

type orderPlaced struct{ ID string }

type withTopic struct{ X int }

func (e withTopic) Topic() string { return "evt.orders" }

func TestKafka_Relay_KeyBecomesRecordKey(t *testing.T) {
	fw := &fakeWriter{}
	r := kafka.New(fw)

	opts := bridge.RelayOptions{Key: "key1", Headers: map[string]string{"ph": "pv"}}
	if err := r.Relay(t.Context(), orderPlaced{ID: "7"}, opts); err != nil {
		t.Fatalf("relay: %v", err)
	}

	if len(fw.calls) != 1 {
		t.Fatalf("want 1, got %d", len(fw.calls))
	}

	c := fw.calls[0]
	if c.topic != "notifications.orderPlaced" {
		t.Fatalf("topic: %s", c.topic)
	}

	if string(c.key) != "key1" {
		t.Fatalf("key: %s", string(c.key))
	}

	if string(c.value) != `{"ID":"7"}` {
		t.Fatalf("value: %s", c.value)
	}

	if c.headers["ph"] != "pv" {
		t.Fatalf("headers: %+v", c.headers)
	}

	if _, ok := c.headers[bridge.HeaderKey]; ok {
		t.Fatalf("key must not be duplicated as a header: %+v", c.headers)
	}
}

func TestKafka_Relay_DefaultTopic_WithPointerNotification(t *testing.T) {
	fw := &fakeWriter{}
	r := &kafka.Relayer{Writer: fw}

	if err := r.Relay(t.Context(), &withTopic{X: 2}, bridge.RelayOptions{}); err != nil {
		t.Fatalf("relay: %v", err)
	}

	if fw.calls[0].topic != "evt.orders" {
		t.Fatalf("topic: %s", fw.calls[0].topic)
	}

	if fw.calls[0].key != nil {
		t.Fatalf("empty key should be nil: %v", fw.calls[0].key)
	}
}

func TestKafka_NilWriterError(t *testing.T) {
	r := kafka.New(nil)
	if err := r.Relay(t.Context(), orderPlaced{}, bridge.RelayOptions{}); !errors.Is(err, berr.ErrNotConfigured) {
		t.Fatalf("want ErrNotConfigured, got %v", err)
	}
}

func TestKafka_WriteErrors(t *testing.T) {
	boom := errors.New("boom")

	err := kafka.New(&fakeWriter{err: boom}).Relay(t.Context(), orderPlaced{}, bridge.RelayOptions{})
	if !errors.Is(err, berr.ErrRelayFailed) || !errors.Is(err, boom) {
		t.Fatalf("want wrapped ErrRelayFailed, got %v", err)
	}

	err = kafka.New(&fakeWriter{err: context.DeadlineExceeded}).Relay(t.Context(), orderPlaced{}, bridge.RelayOptions{})
	if !errors.Is(err, context.DeadlineExceeded) || errors.Is(err, berr.ErrRelayFailed) {
		t.Fatalf("want bare deadline error, got %v", err)
	}
}

func TestNewWithKgo_Validation(t *testing.T) {
	if _, _, err := kafka.NewWithKgo(kafka.Config{}); !errors.Is(err, berr.ErrNotConfigured) {
		t.Fatalf("empty brokers: %v", err)
	}

	if _, _, err := kafka.NewWithKgo(kafka.Config{Brokers: []string{"localhost:9092"}, Acks: "some"}); !errors.Is(err, berr.ErrNotConfigured) {
		t.Fatalf("bad acks: %v", err)
	}

	_, _, err := kafka.NewWithKgo(kafka.Config{Brokers: []string{"localhost:9092"}, Compression: "brotli"})
	if !errors.Is(err, berr.ErrNotConfigured) {
		t.Fatalf("bad compression: %v", err)
	}
}
