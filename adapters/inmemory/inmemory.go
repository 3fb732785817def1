package inmemory

import (
	"context"
	"maps"
	"sync"

	"github.com/next-trace/scg-mediator/contract/bridge"
)

// Record is one relayed notification as the in-memory relayer saw it.
type Record struct {
	Subject      string
	Notification any
	Headers      map[string]string
}

// Relayer is a thread-safe in-memory implementation of bridge.Relayer.
// It records relayed notifications for testing and examples.
type Relayer struct {
	mu      sync.Mutex
	records []Record
	err     error
}

var _ bridge.Relayer = (*Relayer)(nil)

// New creates a new in-memory relayer.
func New() *Relayer { return &Relayer{} }

func (r *Relayer) Relay(ctx context.Context, n any, opts bridge.RelayOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}

	r.records = append(r.records, Record{
		Subject:      bridge.Subject(n, opts),
		Notification: n,
		Headers:      bridge.Headers(opts),
	})

	return nil
}

// FailWith makes every later Relay return err; nil restores normal recording.
func (r *Relayer) FailWith(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

// Records returns a snapshot of everything relayed so far, in order.
func (r *Relayer) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Record, len(r.records))
	for i, rec := range r.records {
		rec.Headers = maps.Clone(rec.Headers)
		out[i] = rec
	}

	return out
}

// Reset drops every recorded notification.
func (r *Relayer) Reset() {
	r.mu.Lock()
	r.records = nil
	r.mu.Unlock()
}
