package nats_test

import (
	"errors"
	"testing"

	"github.com/next-trace/scg-mediator/adapters/nats"
	berr "github.com/next-trace/scg-mediator/contract/errors"
)

func TestNewWithNATS_EmptyURL(t *testing.T) {
	_, _, err := nats.NewWithNATS(nats.Config{})
	if err == nil {
		t.Fatalf("expected error")
	}

	if !errors.Is(err, berr.ErrNotConfigured) {
		t.Fatalf("want ErrNotConfigured, got %v", err)
	}
}
