// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package joystick

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/split_pointer/internal/event"
	"github.com/relabs-tech/split_pointer/internal/keymap"
	"github.com/relabs-tech/split_pointer/internal/pipeline"
	"github.com/relabs-tech/split_pointer/internal/report"
)

// DefaultRateGate bounds how often one processor emits a pointer report.
const DefaultRateGate = 5 * time.Millisecond

// Processor turns Joystick events of one sensor cluster into mouse reports.
// It is owned by a single chain goroutine and is not safe for concurrent use.
type Processor struct {
	cal     Calibration
	side    Side
	mapping Mapping
	keymap  *keymap.Keymap
	sink    report.Sink

	gate  time.Duration
	sleep func(ctx context.Context, d time.Duration) error

	record      []int16
	shapeWarned bool
}

// Option customizes a Processor.
type Option func(*Processor)

// WithRateGate sets the delay between latching a sample and emitting its report.
func WithRateGate(d time.Duration) Option {
	return func(p *Processor) { p.gate = d }
}

// WithMapping overrides the side's default report mapping.
func WithMapping(m Mapping) Option {
	return func(p *Processor) { p.mapping = m }
}

// WithSleep replaces the rate-gate wait.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Processor) { p.sleep = fn }
}

// New builds a processor for a cluster with cal.Axes() axes. km is borrowed
// read-only and may be nil when no layer-dependent mapping is used.
func New(cal Calibration, side Side, km *keymap.Keymap, sink report.Sink, opts ...Option) (*Processor, error) {
	if err := cal.Validate(cal.Axes()); err != nil {
		return nil, fmt.Errorf("%s joystick: %w", side, err)
	}
	if sink == nil {
		return nil, fmt.Errorf("%s joystick: nil report sink", side)
	}
	p := &Processor{
		cal:     cal,
		side:    side,
		mapping: DefaultMapping(side),
		keymap:  km,
		sink:    sink,
		gate:    DefaultRateGate,
		sleep:   sleepCtx,
		record:  make([]int16, cal.Axes()),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.mapping.UngateLayer >= 0 && km == nil {
		return nil, fmt.Errorf("%s joystick: ungate layer %d needs a keymap", side, p.mapping.UngateLayer)
	}
	return p, nil
}

func (p *Processor) Side() Side               { return p.side }
func (p *Processor) Axes() int                { return len(p.record) }
func (p *Processor) Mapping() Mapping         { return p.mapping }
func (p *Processor) Keymap() *keymap.Keymap   { return p.keymap }
func (p *Processor) Calibration() Calibration { return p.cal }

// Record returns a copy of the bias-corrected values of the last sample.
func (p *Processor) Record() []int16 {
	return append([]int16(nil), p.record...)
}

// CheckAxes verifies at composition time that a device producing n-axis
// joystick events can feed this processor.
func (p *Processor) CheckAxes(n int) error {
	if n != len(p.record) {
		return fmt.Errorf("%s joystick: %w: device produces %d axes, processor expects %d",
			p.side, ErrShape, n, len(p.record))
	}
	return nil
}

// Process consumes Joystick events with the configured axis count and passes
// everything else through unchanged.
func (p *Processor) Process(ctx context.Context, ev event.Event) (pipeline.Result, error) {
	if ev.Kind != event.Joystick {
		return pipeline.Continue(ev), nil
	}
	if len(ev.Joystick) != len(p.record) {
		if !p.shapeWarned {
			log.Printf("%s joystick: ignoring %d-axis event, expected %d (wiring error)",
				p.side, len(ev.Joystick), len(p.record))
			p.shapeWarned = true
		}
		return pipeline.Continue(ev), nil
	}

	for i, r := range ev.Joystick {
		p.record[i] = r.Value
	}

	if p.gate > 0 {
		if err := p.sleep(ctx, p.gate); err != nil {
			return pipeline.Result{}, err
		}
	}

	if err := p.sink.Send(ctx, report.FromMouse(p.generate())); err != nil {
		return pipeline.Result{}, err
	}
	return pipeline.Stop(), nil
}

// generate corrects the latched record in place and maps the result.
func (p *Processor) generate() report.Mouse {
	p.cal.Correct(p.record)
	out := p.cal.Apply(p.record)

	var active func(int) bool
	if p.keymap != nil {
		active = p.keymap.IsActive
	}
	return p.mapping.assemble(out, p.mapping.open(active))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
