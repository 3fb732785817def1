package behaviours_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/next-trace/scg-mediator/behaviours"
	"github.com/next-trace/scg-mediator/container"
	berr "github.com/next-trace/scg-mediator/contract/errors"
	cmed "github.com/next-trace/scg-mediator/contract/mediator"
	"github.com/next-trace/scg-mediator/dispatch"
)

type createUser struct {
	cmed.SignalOf[string]
	Email string `validate:"required,email"`
	Age   int    `validate:"min=18"`
}

func setup(t *testing.T, handlerErr error) (*dispatch.Mediator, *container.Container, *int) {
	t.Helper()

	c := container.New()
	calls := 0

	require.NoError(t, container.AddSignalHandler[createUser, string](c,
		cmed.SignalHandlerFunc[createUser, string](func(_ context.Context, s createUser) (string, error) {
			calls++
			return "created " + s.Email, handlerErr
		})))

	return dispatch.New(c, nil), c, &calls
}

func TestLogging_LogsSuccessAndFailure(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	m, c, _ := setup(t, nil)
	require.NoError(t, container.AddBehaviour[createUser, string](c, behaviours.NewLogging[createUser, string](logger)))

	res, err := dispatch.Send[createUser, string](t.Context(), m, createUser{Email: "a@b.c", Age: 20})
	require.NoError(t, err)
	assert.Equal(t, "created a@b.c", res)
	assert.Contains(t, buf.String(), "handling signal")
	assert.Contains(t, buf.String(), "handled signal")
	assert.Contains(t, buf.String(), "behaviours_test.createUser")

	buf.Reset()

	boom := errors.New("boom")
	m2, c2, _ := setup(t, boom)
	require.NoError(t, container.AddBehaviour[createUser, string](c2, behaviours.NewLogging[createUser, string](logger)))

	_, err = dispatch.Send[createUser, string](t.Context(), m2, createUser{})
	assert.Same(t, boom, err)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "signal failed")
}

func TestRateLimit_FailFast(t *testing.T) {
	m, c, calls := setup(t, nil)
	require.NoError(t, container.AddBehaviour[createUser, string](c,
		behaviours.NewRateLimit[createUser, string](0.001, 1, false)))

	_, err := dispatch.Send[createUser, string](t.Context(), m, createUser{})
	require.NoError(t, err)

	_, err = dispatch.Send[createUser, string](t.Context(), m, createUser{})
	require.ErrorIs(t, err, berr.ErrRateLimited)
	assert.Equal(t, 1, *calls)
}

func TestRateLimit_BlockingHonoursContext(t *testing.T) {
	m, c, calls := setup(t, nil)
	require.NoError(t, container.AddBehaviour[createUser, string](c,
		behaviours.NewRateLimit[createUser, string](0.001, 1, true)))

	_, err := dispatch.Send[createUser, string](t.Context(), m, createUser{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err = dispatch.Send[createUser, string](ctx, m, createUser{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, *calls)
}

func TestValidation_RejectsInvalidSignalBeforeHandler(t *testing.T) {
	m, c, calls := setup(t, nil)
	require.NoError(t, container.AddBehaviour[createUser, string](c, dispatch.NewPreProcessorBehaviour[createUser, string](c)))
	require.NoError(t, container.AddPreProcessor[createUser](c, behaviours.NewValidation[createUser](nil)))

	_, err := dispatch.Send[createUser, string](t.Context(), m, createUser{Email: "nope", Age: 3})
	require.ErrorIs(t, err, berr.ErrValidationFailed)

	var verr *behaviours.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
	assert.Contains(t, err.Error(), "field 'Email' failed validation: email")
	assert.Equal(t, 0, *calls)

	res, err := dispatch.Send[createUser, string](t.Context(), m, createUser{Email: "a@b.c", Age: 30})
	require.NoError(t, err)
	assert.Equal(t, "created a@b.c", res)
}

func TestValidation_NonStructPassesAndNilPointerFails(t *testing.T) {
	require.NoError(t, behaviours.NewValidation[int](nil).Process(t.Context(), 5))

	err := behaviours.NewValidation[*createUser](nil).Process(t.Context(), nil)
	require.ErrorIs(t, err, berr.ErrValidationFailed)
}

func TestValidation_ErrorIsAnExceptionCategory(t *testing.T) {
	m, c, _ := setup(t, nil)
	require.NoError(t, container.AddBehaviour[createUser, string](c, dispatch.NewExceptionHandlerBehaviour[createUser, string](c)))
	require.NoError(t, container.AddBehaviour[createUser, string](c, dispatch.NewPreProcessorBehaviour[createUser, string](c)))
	require.NoError(t, container.AddPreProcessor[createUser](c, behaviours.NewValidation[createUser](nil)))
	require.NoError(t, container.AddExceptionHandler[createUser, string, *behaviours.ValidationError](c,
		cmed.ExceptionHandlerFunc[createUser, string](func(_ context.Context, _ createUser, _ error, st *cmed.ExceptionState[string]) error {
			st.SetHandled("rejected")
			return nil
		})))

	res, err := dispatch.Send[createUser, string](t.Context(), m, createUser{})
	require.NoError(t, err)
	assert.Equal(t, "rejected", res)
}
