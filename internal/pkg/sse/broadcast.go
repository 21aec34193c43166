package sse

import (
	"context"
	"errors"
	"fmt"
)

// Source builds the payload pushed to one user on every broadcast tick.
type Source func(ctx context.Context, userID string) (interface{}, error)

// Broadcaster pushes a freshly computed event to every subscribed user.
type Broadcaster struct {
	hub    *Hub
	event  string
	source Source
}

func NewBroadcaster(hub *Hub, event string, source Source) *Broadcaster {
	return &Broadcaster{
		hub:    hub,
		event:  event,
		source: source,
	}
}

// Broadcast computes and publishes one event per subscribed user. Users whose
// payload fails are skipped; the failures are returned joined.
func (b *Broadcaster) Broadcast(ctx context.Context) error {
	var errs []error
	for _, userID := range b.hub.Users() {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := b.source(ctx, userID)
		if err != nil {
			errs = append(errs, fmt.Errorf("user %q: %w", userID, err))
			continue
		}
		b.hub.Publish(userID, Event{
			UserID: userID,
			Event:  b.event,
			Data:   data,
		})
	}
	return errors.Join(errs...)
}
