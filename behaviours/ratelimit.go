package behaviours

import (
	"context"
	"fmt"
	"reflect"

	"golang.org/x/time/rate"

	berr "github.com/next-trace/scg-mediator/contract/errors"
	cmed "github.com/next-trace/scg-mediator/contract/mediator"
)

// RateLimit throttles sends of S with a token bucket. In blocking mode a send
// waits for a token (bounded by its context); otherwise it fails fast with
// ErrRateLimited.
type RateLimit[S cmed.Signal[R], R any] struct {
	limiter  *rate.Limiter
	blocking bool
}

// NewRateLimit allows rps sends per second with the given burst.
func NewRateLimit[S cmed.Signal[R], R any](rps float64, burst int, blocking bool) *RateLimit[S, R] {
	return &RateLimit[S, R]{limiter: rate.NewLimiter(rate.Limit(rps), burst), blocking: blocking}
}

// NewRateLimitWith shares an existing limiter, e.g. across several signal types.
func NewRateLimitWith[S cmed.Signal[R], R any](l *rate.Limiter, blocking bool) *RateLimit[S, R] {
	return &RateLimit[S, R]{limiter: l, blocking: blocking}
}

func (b *RateLimit[S, R]) Handle(ctx context.Context, s S, next cmed.Next[R]) (R, error) {
	var zero R

	if !b.blocking {
		if !b.limiter.Allow() {
			return zero, fmt.Errorf("send %s: %w", reflect.TypeFor[S]().String(), berr.ErrRateLimited)
		}

		return next()
	}

	if err := b.limiter.Wait(ctx); err != nil {
		return zero, fmt.Errorf("send %s: %w", reflect.TypeFor[S]().String(), err)
	}

	return next()
}
