package dispatch_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/next-trace/scg-mediator/container"
	cmed "github.com/next-trace/scg-mediator/contract/mediator"
	"github.com/next-trace/scg-mediator/dispatch"
)

type notFoundError struct{ ID string }

func (e *notFoundError) Error() string { return "not found: " + e.ID }

func failingPing(t *testing.T, c *container.Container, err error) {
	t.Helper()
	require.NoError(t, container.AddSignalHandler[ping, pong](c,
		cmed.SignalHandlerFunc[ping, pong](func(context.Context, ping) (pong, error) { return pong{}, err })))
}

func withExceptionHandling(t *testing.T, c *container.Container) {
	t.Helper()
	require.NoError(t, container.AddBehaviour[ping, pong](c, dispatch.NewExceptionHandlerBehaviour[ping, pong](c)))
}

func TestErrorCategories_MostSpecificFirstThenRoot(t *testing.T) {
	inner := &notFoundError{ID: "42"}
	wrapped := fmt.Errorf("load: %w", inner)

	got := dispatch.ErrorCategories(wrapped)
	require.Len(t, got, 3)
	assert.Equal(t, reflect.TypeOf(wrapped), got[0])
	assert.Equal(t, reflect.TypeFor[*notFoundError](), got[1])
	assert.Equal(t, cmed.RootErrorCategory, got[2])
}

func TestErrorCategories_JoinedErrorsVisitEachTypeOnce(t *testing.T) {
	joined := errors.Join(&notFoundError{ID: "a"}, errors.New("plain"), &notFoundError{ID: "b"})

	got := dispatch.ErrorCategories(joined)
	assert.Equal(t, []reflect.Type{
		reflect.TypeOf(joined),
		reflect.TypeFor[*notFoundError](),
		reflect.TypeOf(errors.New("")),
		cmed.RootErrorCategory,
	}, got)
}

func TestExceptionHandler_MarkHandledSuppliesResponse(t *testing.T) {
	m, c := newMediator()
	failingPing(t, c, fmt.Errorf("lookup: %w", &notFoundError{ID: "7"}))
	withExceptionHandling(t, c)

	require.NoError(t, container.AddExceptionHandler[ping, pong, *notFoundError](c,
		cmed.ExceptionHandlerFunc[ping, pong](func(_ context.Context, _ ping, err error, st *cmed.ExceptionState[pong]) error {
			var nf *notFoundError
			require.ErrorAs(t, err, &nf)
			st.SetHandled(pong{Msg: "fallback " + nf.ID})

			return nil
		})))

	res, err := dispatch.Send[ping, pong](t.Context(), m, ping{})
	require.NoError(t, err)
	assert.Equal(t, "fallback 7", res.Msg)
}

func TestExceptionHandler_RootCategoryCatchesEverything(t *testing.T) {
	m, c := newMediator()
	failingPing(t, c, errors.New("anything"))
	withExceptionHandling(t, c)

	require.NoError(t, container.AddExceptionHandler[ping, pong, error](c,
		cmed.ExceptionHandlerFunc[ping, pong](func(_ context.Context, _ ping, _ error, st *cmed.ExceptionState[pong]) error {
			st.SetHandled(pong{Msg: "V"})
			return nil
		})))

	res, err := dispatch.Send[ping, pong](t.Context(), m, ping{})
	require.NoError(t, err)
	assert.Equal(t, "V", res.Msg)
}

func TestExceptionHandler_SpecificCategoryBeforeRootAndUnhandledPropagates(t *testing.T) {
	m, c := newMediator()
	boom := &notFoundError{ID: "x"}
	rec := &recorder{}

	failingPing(t, c, boom)
	withExceptionHandling(t, c)

	require.NoError(t, container.AddExceptionHandler[ping, pong, error](c,
		cmed.ExceptionHandlerFunc[ping, pong](func(context.Context, ping, error, *cmed.ExceptionState[pong]) error {
			rec.add("root")
			return nil
		})))
	require.NoError(t, container.AddExceptionHandler[ping, pong, *notFoundError](c,
		cmed.ExceptionHandlerFunc[ping, pong](func(context.Context, ping, error, *cmed.ExceptionState[pong]) error {
			rec.add("specific")
			return nil
		})))

	_, err := dispatch.Send[ping, pong](t.Context(), m, ping{})
	assert.Same(t, boom, err)
	assert.Equal(t, []string{"specific", "root"}, rec.all())
}

func TestExceptionHandler_OwnErrorPassesThrough(t *testing.T) {
	m, c := newMediator()
	replaced := errors.New("replaced")

	failingPing(t, c, errors.New("original"))
	withExceptionHandling(t, c)

	require.NoError(t, container.AddExceptionHandler[ping, pong, error](c,
		cmed.ExceptionHandlerFunc[ping, pong](func(context.Context, ping, error, *cmed.ExceptionState[pong]) error {
			return replaced
		})))

	_, err := dispatch.Send[ping, pong](t.Context(), m, ping{})
	assert.Same(t, replaced, err)
}

func TestExceptionAction_ObservesAndRethrows(t *testing.T) {
	m, c := newMediator()
	boom := &notFoundError{ID: "1"}

	var seen []error

	failingPing(t, c, boom)
	require.NoError(t, container.AddBehaviour[ping, pong](c, dispatch.NewExceptionActionBehaviour[ping, pong](c)))
	require.NoError(t, container.AddExceptionAction[ping, *notFoundError](c,
		cmed.ExceptionActionFunc[ping](func(_ context.Context, _ ping, err error) error {
			seen = append(seen, err)
			return nil
		})))
	require.NoError(t, container.AddExceptionAction[ping, error](c,
		cmed.ExceptionActionFunc[ping](func(_ context.Context, _ ping, err error) error {
			seen = append(seen, err)
			return nil
		})))

	_, err := dispatch.Send[ping, pong](t.Context(), m, ping{})
	assert.Same(t, boom, err)
	assert.Equal(t, []error{boom, boom}, seen)
}

func TestExceptionAction_ErrorReplacesOriginal(t *testing.T) {
	m, c := newMediator()
	actionErr := errors.New("action failed")

	failingPing(t, c, errors.New("original"))
	require.NoError(t, container.AddBehaviour[ping, pong](c, dispatch.NewExceptionActionBehaviour[ping, pong](c)))
	require.NoError(t, container.AddExceptionAction[ping, error](c,
		cmed.ExceptionActionFunc[ping](func(context.Context, ping, error) error { return actionErr })))

	_, err := dispatch.Send[ping, pong](t.Context(), m, ping{})
	assert.Same(t, actionErr, err)
}

func TestExceptionBehaviours_PassSuccessThrough(t *testing.T) {
	m, c := newMediator()

	require.NoError(t, container.AddSignalHandler[ping, pong](c, pingHandler(nil)))
	withExceptionHandling(t, c)
	require.NoError(t, container.AddBehaviour[ping, pong](c, dispatch.NewExceptionActionBehaviour[ping, pong](c)))

	res, err := dispatch.Send[ping, pong](t.Context(), m, ping{Msg: "ok"})
	require.NoError(t, err)
	assert.Equal(t, "ok pong", res.Msg)
}
