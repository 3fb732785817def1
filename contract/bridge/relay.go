package bridge

import (
	"context"
	"reflect"
)

// Header keys set on every relayed message.
const (
	HeaderMessageID   = "message-id"
	HeaderMessageType = "message-type"
	HeaderKey         = "key"
)

// Relayer forwards a published notification to an external broker.
// Implementations map it to NATS, Kafka, RabbitMQ etc. and must be safe for concurrent use.
type Relayer interface {
	Relay(ctx context.Context, n any, opts RelayOptions) error
}

// RelayOptions controls how a single notification is relayed.
type RelayOptions struct {
	SubjectOverride string
	Key             string
	Headers         map[string]string
}

// Topical is implemented by notifications that name their own subject.
type Topical interface{ Topic() string }

// Subject picks the destination for n: the override, then n's Topic, then its type name.
func Subject(n any, o RelayOptions) string {
	if o.SubjectOverride != "" {
		return o.SubjectOverride
	}

	if t, ok := n.(Topical); ok && t.Topic() != "" {
		return t.Topic()
	}

	return TypeName(n)
}

// TypeName returns the unqualified name of n's type, dereferencing pointers.
func TypeName(n any) string {
	t := reflect.TypeOf(n)
	if t == nil {
		return ""
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	name := t.Name()
	if name == "" { // unnamed (e.g., map/struct literal)
		name = t.String()
	}

	return name
}

// Headers copies the option headers and adds the relay key when set.
// The caller's map is never mutated.
func Headers(o RelayOptions) map[string]string {
	h := make(map[string]string, len(o.Headers)+1)
	for k, v := range o.Headers {
		h[k] = v
	}

	if o.Key != "" {
		h[HeaderKey] = o.Key
	}

	return h
}
