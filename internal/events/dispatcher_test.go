package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishInvokesAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventTokenIssued, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.ID)
		return errors.New("boom")
	})
	d.Subscribe(EventTokenIssued, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.ID)
		return nil
	})
	d.Subscribe(EventTokenRevoked, func(context.Context, Event) error {
		calls = append(calls, "revoked")
		return nil
	})

	err := d.Publish(context.Background(), Event{ID: "e1", Type: EventTokenIssued})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, []string{"first:e1", "second:e1"}, calls)
}

func TestPublishWithoutListeners(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventPrincipalRegistered}))
}

func TestPublishContainsHandlerPanic(t *testing.T) {
	d := NewInMemoryDispatcher()
	var reached bool
	d.Subscribe(EventTokenRevoked, func(context.Context, Event) error {
		panic("nil payload")
	})
	d.Subscribe(EventTokenRevoked, func(context.Context, Event) error {
		reached = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTokenRevoked})
	assert.ErrorContains(t, err, "token_revoked handler panicked: nil payload")
	assert.True(t, reached)
}
