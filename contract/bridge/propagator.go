package bridge

import "context"

// HeaderPropagator abstracts injecting tracing context into relay headers.
// Implementations may bridge to OpenTelemetry or any other propagation standard.
// Inject mutates headers in place and must be safe for concurrent use.
type HeaderPropagator interface {
	Inject(ctx context.Context, headers map[string]string)
}

// NopHeaderPropagator is a no-op implementation useful for tests or when tracing is disabled.
type NopHeaderPropagator struct{}

func (NopHeaderPropagator) Inject(context.Context, map[string]string) {}
