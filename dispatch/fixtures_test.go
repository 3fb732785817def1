package dispatch_test

import (
	"context"
	"sync"

	"github.com/next-trace/scg-mediator/container"
	cmed "github.com/next-trace/scg-mediator/contract/mediator"
	"github.com/next-trace/scg-mediator/dispatch"
)

type ping struct {
	cmed.SignalOf[pong]
	Msg string
}

type pong struct{ Msg string }

type voidPing struct {
	cmed.VoidSignal
}

type pinged struct {
	cmed.NotificationBase
	N int
}

type notASignal struct{ X int }

// recorder is a concurrency-safe ordered log shared by handlers and behaviours.
type recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.lines = append(r.lines, s)
	r.mu.Unlock()
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.lines...)
}

func newMediator(opts ...dispatch.Option) (*dispatch.Mediator, *container.Container) {
	c := container.New()
	return dispatch.New(c, nil, opts...), c
}

func pingHandler(rec *recorder) cmed.SignalHandler[ping, pong] {
	return cmed.SignalHandlerFunc[ping, pong](func(ctx context.Context, p ping) (pong, error) {
		if rec != nil {
			rec.add("handler")
		}

		return pong{Msg: p.Msg + " pong"}, nil
	})
}

func tracingBehaviour(rec *recorder, name string) cmed.PipelineBehaviour[ping, pong] {
	return cmed.PipelineBehaviourFunc[ping, pong](func(ctx context.Context, p ping, next cmed.Next[pong]) (pong, error) {
		rec.add(name + " before")

		res, err := next()

		rec.add(name + " after")

		return res, err
	})
}
