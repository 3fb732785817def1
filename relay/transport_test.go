package relay_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/next-trace/scg-mediator/adapters/inmemory"
	"github.com/next-trace/scg-mediator/config"
	berr "github.com/next-trace/scg-mediator/contract/errors"
	cmed "github.com/next-trace/scg-mediator/contract/mediator"
	"github.com/next-trace/scg-mediator/relay"
)

type shipmentSent struct {
	cmed.NotificationBase
	Tracking string
}

func TestOpen_SelectsTransport(t *testing.T) {
	r, cleanup, err := relay.Open(config.RelayConfig{Transport: "none"}, nil)
	require.NoError(t, err)
	assert.Nil(t, r)
	cleanup()

	r, cleanup, err = relay.Open(config.RelayConfig{Transport: "inmemory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &inmemory.Relayer{}, r)
	cleanup()
}

func TestOpen_RejectsMissingEndpointsAndUnknownTransport(t *testing.T) {
	for _, transport := range []string{"nats", "kafka", "rabbitmq", "smtp"} {
		_, _, err := relay.Open(config.RelayConfig{Transport: transport}, nil)
		require.ErrorIs(t, err, berr.ErrNotConfigured, transport)
	}
}

func TestOpen_RelayerServesHandler(t *testing.T) {
	r, cleanup, err := relay.Open(config.RelayConfig{Transport: "inmemory"}, nil)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	h := relay.NewHandler[shipmentSent](r, nil, relay.WithSubject[shipmentSent]("shipments.sent"))
	require.NoError(t, h.Handle(t.Context(), shipmentSent{Tracking: "TR-1"}))

	rec, ok := r.(*inmemory.Relayer)
	require.True(t, ok)

	got := rec.Records()
	require.Len(t, got, 1)
	assert.Equal(t, "shipments.sent", got[0].Subject)
	assert.Equal(t, "TR-1", got[0].Notification.(shipmentSent).Tracking)
}
