package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	berr "github.com/next-trace/scg-mediator/contract/errors"
)

// Invocation runs one notification handler with the publish call's context and notification bound.
type Invocation func() error

// Strategy selects how notification handlers are executed and how their failures surface.
type Strategy uint8

const (
	// SequentialContinue runs handlers one at a time and aggregates every failure.
	SequentialContinue Strategy = iota + 1
	// SequentialStop runs handlers one at a time and returns the first failure as-is.
	SequentialStop
	// ConcurrentContinue runs handlers concurrently, waits for all and aggregates every failure.
	ConcurrentContinue
	// ConcurrentJoinAll runs handlers concurrently, waits for all and returns the first failure.
	ConcurrentJoinAll
	// ConcurrentJoinAny runs handlers concurrently and returns after the first completes.
	ConcurrentJoinAny
	// FireAndForget schedules handlers concurrently and returns immediately.
	FireAndForget
)

// DefaultStrategy is used by Publish unless WithDefaultStrategy overrides it.
const DefaultStrategy = SequentialContinue

var strategyNames = map[Strategy]string{
	SequentialContinue: "sequential-continue",
	SequentialStop:     "sequential-stop",
	ConcurrentContinue: "concurrent-continue",
	ConcurrentJoinAll:  "concurrent-join-all",
	ConcurrentJoinAny:  "concurrent-join-any",
	FireAndForget:      "fire-and-forget",
}

func (s Strategy) String() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}

	return fmt.Sprintf("Strategy(%d)", uint8(s))
}

// ParseStrategy maps a strategy name such as "sequential-stop" to its Strategy.
func ParseStrategy(name string) (Strategy, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for s, n := range strategyNames {
		if n == norm {
			return s, nil
		}
	}

	return 0, fmt.Errorf("publish strategy %q: %w", name, berr.ErrNotConfigured)
}

// StrategyNames lists every strategy name accepted by ParseStrategy.
func StrategyNames() []string {
	names := make([]string, 0, len(strategyNames))
	for s := SequentialContinue; s <= FireAndForget; s++ {
		names = append(names, strategyNames[s])
	}

	return names
}

func (m *Mediator) multicast(ctx context.Context, s Strategy, calls []Invocation) error {
	if len(calls) == 0 {
		return nil
	}

	if s == 0 {
		s = m.strategy
	}

	switch s {
	case SequentialStop:
		return sequentialStop(calls)
	case SequentialContinue:
		return sequentialContinue(calls)
	case ConcurrentContinue:
		return concurrentContinue(calls)
	case ConcurrentJoinAll:
		return concurrentJoinAll(calls)
	case ConcurrentJoinAny:
		return m.concurrentJoinAny(ctx, calls)
	case FireAndForget:
		m.fireAndForget(ctx, calls)
		return nil
	default:
		return fmt.Errorf("publish strategy %s: %w", s, berr.ErrNotConfigured)
	}
}

func sequentialStop(calls []Invocation) error {
	for _, call := range calls {
		if err := call(); err != nil {
			return err
		}
	}

	return nil
}

func sequentialContinue(calls []Invocation) error {
	var errs []error

	for _, call := range calls {
		if err := call(); err != nil {
			errs = append(errs, err)
		}
	}

	return berr.Aggregate(errs...)
}

func concurrentContinue(calls []Invocation) error {
	errs := make([]error, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Go(func() { errs[i] = guarded(call) })
	}

	wg.Wait()

	return berr.Aggregate(errs...)
}

func concurrentJoinAll(calls []Invocation) error {
	var g errgroup.Group
	for _, call := range calls {
		g.Go(func() error { return guarded(call) })
	}

	return g.Wait()
}

func (m *Mediator) concurrentJoinAny(ctx context.Context, calls []Invocation) error {
	done := make(chan struct{}, len(calls))

	for _, call := range calls {
		go func() {
			defer func() { done <- struct{}{} }()

			m.detached(ctx, call)
		}()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mediator) fireAndForget(ctx context.Context, calls []Invocation) {
	for _, call := range calls {
		go m.detached(ctx, call)
	}
}

// detached runs a handler whose outcome the caller never observes.
func (m *Mediator) detached(ctx context.Context, call Invocation) {
	if err := guarded(call); err != nil {
		m.logger.DebugContext(ctx, "detached notification handler failed", "error", err)
	}
}

func guarded(call Invocation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", berr.ErrHandlerPanic, r)
		}
	}()

	return call()
}
