package sse

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubSubscribePublish(t *testing.T) {
	hub := NewHub()

	ch, cleanup := hub.Subscribe("u1")
	assert.Equal(t, 1, hub.SubscriberCount("u1"))
	assert.Equal(t, []string{"u1"}, hub.Users())

	hub.Publish("u1", Event{UserID: "u1", Event: "ping", Data: 1})
	hub.Publish("u2", Event{UserID: "u2", Event: "ping", Data: 2})

	ev := <-ch
	assert.Equal(t, "ping", ev.Event)
	assert.Equal(t, 1, ev.Data)
	assert.Empty(t, ch)

	cleanup()
	cleanup()
	assert.Zero(t, hub.TotalSubscribers())
	assert.Empty(t, hub.Users())
}

func TestHubPublishDropsWhenFull(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("u1")
	defer cleanup()

	for i := 0; i < 25; i++ {
		hub.Publish("u1", Event{Event: "tick", Data: i})
	}
	assert.Len(t, ch, 10)
}

func TestBroadcaster(t *testing.T) {
	hub := NewHub()
	a, cleanupA := hub.Subscribe("a")
	defer cleanupA()
	b, cleanupB := hub.Subscribe("b")
	defer cleanupB()

	bc := NewBroadcaster(hub, "working_hours", func(ctx context.Context, userID string) (interface{}, error) {
		if userID == "b" {
			return nil, errors.New("boom")
		}
		return map[string]float64{"hours": 1.5}, nil
	})

	err := bc.Broadcast(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `user "b"`)

	require.Len(t, a, 1)
	ev := <-a
	assert.Equal(t, "working_hours", ev.Event)
	assert.Equal(t, "a", ev.UserID)
	assert.Empty(t, b)
}
