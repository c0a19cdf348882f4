// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pipeline

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Group runs devices, chains and auxiliary tasks for the lifetime of ctx. The
// first task to fail cancels all others.
type Group struct {
	g   *errgroup.Group
	ctx context.Context
}

func NewGroup(ctx context.Context) *Group {
	g, gctx := errgroup.WithContext(ctx)
	return &Group{g: g, ctx: gctx}
}

// Context is cancelled as soon as any task returns an error.
func (g *Group) Context() context.Context { return g.ctx }

func (g *Group) AddDevice(d Device, ch *Channel) {
	g.g.Go(func() error { return d.Run(g.ctx, ch) })
}

func (g *Group) AddChain(c *Chain, ch *Channel) {
	g.g.Go(func() error { return c.Run(g.ctx, ch) })
}

// Go runs an arbitrary task, e.g. the report dispatcher.
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.g.Go(func() error { return fn(g.ctx) })
}

// Wait blocks until every task returned. Cancellation of the parent context
// is a normal shutdown and is not reported as an error.
func (g *Group) Wait() error {
	err := g.g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
