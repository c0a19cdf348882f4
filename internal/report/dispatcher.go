// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package report

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"
)

const (
	// LaneBuffer is the per-transport backlog of a lossless transport.
	LaneBuffer = 8
	// MirrorBuffer is the per-transport backlog of a Mirror before it drops.
	MirrorBuffer = 16
)

// Transport delivers a report to one outbound destination (HID bridge, MQTT, ...).
type Transport interface {
	Deliver(r Report) error
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(r Report) error

func (f TransportFunc) Deliver(r Report) error { return f(r) }

// Mirror marks a best-effort transport: when it falls behind, reports for it
// are dropped instead of holding back the queue.
type Mirror struct {
	Transport
}

type lane struct {
	name    string
	t       Transport
	ch      chan Report
	lossy   bool
	dropped uint64
}

// Dispatcher drains a Queue and fans every report out to all transports.
// Each transport runs on its own goroutine.
type Dispatcher struct {
	queue *Queue
	lanes []*lane
}

func NewDispatcher(q *Queue) *Dispatcher {
	return &Dispatcher{queue: q}
}

// Add registers a transport; name is only used for logging. Wrapping t in
// Mirror makes it lossy.
func (d *Dispatcher) Add(name string, t Transport) {
	l := &lane{name: name, t: t, ch: make(chan Report, LaneBuffer)}
	if m, ok := t.(Mirror); ok {
		l.t = m.Transport
		l.lossy = true
		l.ch = make(chan Report, MirrorBuffer)
	}
	d.lanes = append(d.lanes, l)
}

// Run delivers reports until ctx is cancelled. A failing or slow mirror is
// logged and does not hold back the other transports; a lossless transport
// that falls behind blocks the queue.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, l := range d.lanes {
		g.Go(func() error { return l.run(gctx) })
	}
	g.Go(func() error { return d.fanOut(gctx) })
	return g.Wait()
}

func (d *Dispatcher) fanOut(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r := <-d.queue.Reports():
			for _, l := range d.lanes {
				if err := l.offer(ctx, r); err != nil {
					return err
				}
			}
		}
	}
}

func (l *lane) offer(ctx context.Context, r Report) error {
	if l.lossy {
		select {
		case l.ch <- r:
		default:
			l.dropped++
			if l.dropped == 1 || l.dropped%100 == 0 {
				log.Printf("report: %s behind, dropped %d reports", l.name, l.dropped)
			}
		}
		return nil
	}
	select {
	case l.ch <- r:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *lane) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r := <-l.ch:
			if err := l.t.Deliver(r); err != nil {
				log.Printf("report: %s deliver error (%s): %v", l.name, r.Kind, err)
			}
		}
	}
}
