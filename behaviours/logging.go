package behaviours

import (
	"context"
	"log/slog"
	"reflect"
	"time"

	cmed "github.com/next-trace/scg-mediator/contract/mediator"
)

// Logging logs every send of S: start and success at debug, failures at warn.
type Logging[S cmed.Signal[R], R any] struct {
	logger *slog.Logger
	name   string
	now    func() time.Time
}

// NewLogging returns a logging behaviour. A nil logger uses slog.Default.
func NewLogging[S cmed.Signal[R], R any](logger *slog.Logger) *Logging[S, R] {
	if logger == nil {
		logger = slog.Default()
	}

	return &Logging[S, R]{
		logger: logger,
		name:   reflect.TypeFor[S]().String(),
		now:    time.Now,
	}
}

func (b *Logging[S, R]) Handle(ctx context.Context, s S, next cmed.Next[R]) (R, error) {
	start := b.now()

	b.logger.DebugContext(ctx, "handling signal", "signal", b.name)

	res, err := next()

	elapsed := b.now().Sub(start)
	if err != nil {
		b.logger.WarnContext(ctx, "signal failed", "signal", b.name, "duration", elapsed, "error", err)
		return res, err
	}

	b.logger.DebugContext(ctx, "handled signal", "signal", b.name, "duration", elapsed)

	return res, nil
}
