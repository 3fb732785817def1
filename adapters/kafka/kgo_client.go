package kafka

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/twmb/franz-go/pkg/kgo"

	berr "github.com/next-trace/scg-mediator/contract/errors"
)

// Concrete franz-go based constructor and writer wrapper.

type Config struct {
	Brokers  []string
	ClientID string
	Prefix   string
	TLS      *tls.Config
	// Acks is one of "all" (default), "leader" or "none". Anything but "all"
	// disables idempotent writes.
	Acks string
	// Compression is one of "none" (default), "gzip", "snappy", "lz4" or "zstd".
	Compression string
}

type kgoWriter struct{ cl *kgo.Client }

func (w kgoWriter) Write(ctx context.Context, topic string, key, value []byte, headers map[string]string) error {
	rec := &kgo.Record{Topic: topic, Key: key, Value: value}
	if len(headers) > 0 {
		rec.Headers = make([]kgo.RecordHeader, 0, len(headers))
		for k, v := range headers {
			rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
		}
	}

	return w.cl.ProduceSync(ctx, rec).FirstErr()
}

// NewWithKgo builds a franz-go client based Relayer. The returned cleanup should be called to close the client.
func NewWithKgo(cfg Config) (*Relayer, func(), error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil, fmt.Errorf("%w: kafka brokers required", berr.ErrNotConfigured)
	}

	opts := []kgo.Opt{kgo.SeedBrokers(cfg.Brokers...)}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}

	if cfg.TLS != nil {
		opts = append(opts, kgo.DialTLSConfig(cfg.TLS))
	}

	ackOpts, err := acksOpts(cfg.Acks)
	if err != nil {
		return nil, nil, err
	}

	opts = append(opts, ackOpts...)

	codec, err := compression(cfg.Compression)
	if err != nil {
		return nil, nil, err
	}

	opts = append(opts, kgo.ProducerBatchCompression(codec))

	cl, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: kafka client init: %w", berr.ErrRelayFailed, err)
	}

	r := New(kgoWriter{cl: cl})
	if cfg.Prefix != "" {
		r.Prefix = cfg.Prefix
	}

	cleanup := func() { cl.Close() }

	return r, cleanup, nil
}

func acksOpts(name string) ([]kgo.Opt, error) {
	switch strings.ToLower(name) {
	case "", "all":
		return []kgo.Opt{kgo.RequiredAcks(kgo.AllISRAcks())}, nil
	case "leader":
		return []kgo.Opt{kgo.RequiredAcks(kgo.LeaderAck()), kgo.DisableIdempotentWrite()}, nil
	case "none":
		return []kgo.Opt{kgo.RequiredAcks(kgo.NoAck()), kgo.DisableIdempotentWrite()}, nil
	default:
		return nil, fmt.Errorf("%w: kafka acks %q", berr.ErrNotConfigured, name)
	}
}

func compression(name string) (kgo.CompressionCodec, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return kgo.NoCompression(), nil
	case "gzip":
		return kgo.GzipCompression(), nil
	case "snappy":
		return kgo.SnappyCompression(), nil
	case "lz4":
		return kgo.Lz4Compression(), nil
	case "zstd":
		return kgo.ZstdCompression(), nil
	default:
		return kgo.CompressionCodec{}, fmt.Errorf("%w: kafka compression %q", berr.ErrNotConfigured, name)
	}
}
