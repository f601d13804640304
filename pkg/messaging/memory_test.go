package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBroker_PublishSubscribe(t *testing.T) {
	b := NewMemoryBroker(4)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := b.Subscribe(ctx, "events")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "events", map[string]string{"type": "message.sent"}))
	require.NoError(t, b.Publish(ctx, "other", map[string]string{"type": "ignored"}))

	select {
	case raw := <-ch:
		var got map[string]string
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "message.sent", got["type"])
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}

	select {
	case raw := <-ch:
		t.Fatalf("unexpected message %s", raw)
	default:
	}
}

func TestMemoryBroker_CancelClosesSubscription(t *testing.T) {
	b := NewMemoryBroker(1)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := b.Subscribe(ctx, "events")
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed")
	}
}

func TestMemoryBroker_Closed(t *testing.T) {
	b := NewMemoryBroker(1)
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	err := b.Publish(context.Background(), "events", "x")
	assert.ErrorIs(t, err, ErrBrokerClosed)

	_, err = b.Subscribe(context.Background(), "events")
	assert.ErrorIs(t, err, ErrBrokerClosed)
}
