// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pipeline

import (
	"context"

	"github.com/relabs-tech/split_pointer/internal/event"
)

// Result is what a processor decides about an event: pass it on, or stop it.
type Result struct {
	stop bool
	ev   event.Event
}

// Continue offers ev (possibly rewritten) to the next processor.
func Continue(ev event.Event) Result {
	return Result{ev: ev}
}

// Stop marks the event as consumed.
func Stop() Result {
	return Result{stop: true}
}

func (r Result) Stopped() bool      { return r.stop }
func (r Result) Event() event.Event { return r.ev }

// Processor is one stateful stage of a chain. Events it does not understand
// must be returned with Continue, unchanged. A returned error means the
// pipeline is shutting down (ctx cancelled while waiting), nothing else.
type Processor interface {
	Process(ctx context.Context, ev event.Event) (Result, error)
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, ev event.Event) (Result, error)

func (f ProcessorFunc) Process(ctx context.Context, ev event.Event) (Result, error) {
	return f(ctx, ev)
}

// Device is a free-running event producer.
type Device interface {
	Run(ctx context.Context, ch *Channel) error
}
