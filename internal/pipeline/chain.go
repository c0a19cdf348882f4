// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/relabs-tech/split_pointer/internal/event"
)

// Chain is an ordered list of processors consuming one channel.
type Chain struct {
	name       string
	processors []Processor

	// Verbose logs events that leave the chain unconsumed.
	Verbose bool
}

func NewChain(name string, processors ...Processor) (*Chain, error) {
	if len(processors) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyChain)
	}
	return &Chain{name: name, processors: processors}, nil
}

func (c *Chain) Name() string { return c.name }

// Offer passes ev through the processors in order and reports whether one of
// them consumed it. An event that falls off the end is discarded.
func (c *Chain) Offer(ctx context.Context, ev event.Event) (bool, error) {
	for _, p := range c.processors {
		res, err := p.Process(ctx, ev)
		if err != nil {
			return false, err
		}
		if res.Stopped() {
			return true, nil
		}
		ev = res.Event()
	}
	if c.Verbose {
		log.Printf("%s: discarded unconsumed %s", c.name, ev)
	}
	return false, nil
}

// Run receives events from ch one at a time until ctx is cancelled. Events are
// never processed concurrently, so ordering within the channel is preserved.
func (c *Chain) Run(ctx context.Context, ch *Channel) error {
	log.Printf("%s: consuming %s (capacity %d)", c.name, ch.Name(), ch.Cap())
	for {
		ev, err := ch.Receive(ctx)
		if err != nil {
			return err
		}
		if _, err := c.Offer(ctx, ev); err != nil {
			return err
		}
	}
}
