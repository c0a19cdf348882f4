// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pipeline

import (
	"context"
	"fmt"

	"github.com/relabs-tech/split_pointer/internal/event"
)

// Channel is a bounded FIFO of events. Any number of devices may send into it;
// exactly one chain receives from it.
type Channel struct {
	name string
	ch   chan event.Event
}

// NewChannel creates a channel holding up to capacity events.
func NewChannel(name string, capacity int) (*Channel, error) {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		return nil, fmt.Errorf("%s: %w (got %d)", name, ErrInvalidCapacity, capacity)
	}
	return &Channel{name: name, ch: make(chan event.Event, capacity)}, nil
}

// Send queues ev, blocking while the channel is full. Events are never dropped;
// the only error is ctx cancellation.
func (c *Channel) Send(ctx context.Context, ev event.Event) error {
	select {
	case c.ch <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive blocks until an event is available.
func (c *Channel) Receive(ctx context.Context) (event.Event, error) {
	select {
	case ev := <-c.ch:
		return ev, nil
	case <-ctx.Done():
		return event.Event{}, ctx.Err()
	}
}

func (c *Channel) Name() string { return c.name }
func (c *Channel) Len() int     { return len(c.ch) }
func (c *Channel) Cap() int     { return cap(c.ch) }
