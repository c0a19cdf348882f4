// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/relabs-tech/split_pointer/internal/event"
)

// recorder logs what it sees and stops events of one kind.
type recorder struct {
	stopKind event.Kind
	seen     []event.Event
}

func (r *recorder) Process(_ context.Context, ev event.Event) (Result, error) {
	r.seen = append(r.seen, ev)
	if ev.Kind == r.stopKind {
		return Stop(), nil
	}
	return Continue(ev), nil
}

func TestNewChain_Empty(t *testing.T) {
	if _, err := NewChain("empty"); !errors.Is(err, ErrEmptyChain) {
		t.Errorf("expected ErrEmptyChain, got %v", err)
	}
}

func TestChain_StopHaltsPropagation(t *testing.T) {
	first := &recorder{stopKind: event.Joystick}
	second := &recorder{stopKind: event.Battery}
	c, _ := NewChain("test", first, second)
	ctx := context.Background()

	consumed, err := c.Offer(ctx, event.NewJoystick(1, 2))
	if err != nil || !consumed {
		t.Fatalf("expected joystick event consumed, got %v, %v", consumed, err)
	}
	if len(second.seen) != 0 {
		t.Errorf("second processor should not see a stopped event")
	}

	consumed, _ = c.Offer(ctx, event.NewBattery(100))
	if !consumed {
		t.Error("expected battery event consumed by second processor")
	}
	if len(first.seen) != 2 || len(second.seen) != 1 {
		t.Errorf("unexpected counts: first=%d second=%d", len(first.seen), len(second.seen))
	}

	consumed, _ = c.Offer(ctx, event.NewKey(0, 0, true))
	if consumed {
		t.Error("key event should fall off the end of the chain")
	}
}

func TestChain_ContinueMayRewrite(t *testing.T) {
	rewrite := ProcessorFunc(func(_ context.Context, ev event.Event) (Result, error) {
		if ev.Kind == event.Key {
			ev.Key.Col += 6
		}
		return Continue(ev), nil
	})
	last := &recorder{stopKind: event.Key}
	c, _ := NewChain("rewrite", rewrite, last)

	c.Offer(context.Background(), event.NewKey(1, 2, true))
	if got := last.seen[0].Key.Col; got != 8 {
		t.Errorf("expected rewritten column 8, got %d", got)
	}
}

func TestChain_ErrorAbortsOffer(t *testing.T) {
	failing := ProcessorFunc(func(ctx context.Context, ev event.Event) (Result, error) {
		return Result{}, context.Canceled
	})
	after := &recorder{}
	c, _ := NewChain("err", failing, after)
	if _, err := c.Offer(context.Background(), event.NewBattery(1)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(after.seen) != 0 {
		t.Error("processor after a failing one must not run")
	}
}

func TestChain_RunPreservesOrder(t *testing.T) {
	ch, _ := NewChannel("ordered", 16)
	rec := &recorder{stopKind: event.Joystick}
	c, _ := NewChain("ordered", rec)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, ch) }()

	for i := int16(0); i < 8; i++ {
		ch.Send(ctx, event.NewJoystick(i))
	}
	deadline := time.After(time.Second)
	for ch.Len() > 0 {
		select {
		case <-deadline:
			t.Fatal("chain did not drain channel")
		case <-time.After(time.Millisecond):
		}
	}
	// The last event may still be inside Offer; give it a moment.
	time.Sleep(10 * time.Millisecond)
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	if len(rec.seen) != 8 {
		t.Fatalf("expected 8 events, got %d", len(rec.seen))
	}
	for i, ev := range rec.seen {
		if ev.Values()[0] != int16(i) {
			t.Errorf("event %d out of order: %v", i, ev)
		}
	}
}
