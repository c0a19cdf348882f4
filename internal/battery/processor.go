// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package battery

import (
	"context"
	"fmt"
	"log"

	"github.com/relabs-tech/split_pointer/internal/event"
	"github.com/relabs-tech/split_pointer/internal/keymap"
	"github.com/relabs-tech/split_pointer/internal/pipeline"
	"github.com/relabs-tech/split_pointer/internal/report"
)

const (
	// 12-bit single-ended conversion against a 0.6V reference at 1/6 gain.
	fullScaleMillivolts = 3600
	adcCounts           = 4096

	EmptyMillivolts = 3000
	FullMillivolts  = 4200
)

// Processor converts raw battery divider samples into battery level reports.
type Processor struct {
	measured uint32
	total    uint32
	keymap   *keymap.Keymap
	sink     report.Sink

	last int // last reported percent, -1 before the first report
}

// New builds a processor for a resistor divider where the ADC sees
// measured/total of the battery voltage (values in any common unit, e.g. kΩ).
func New(measured, total uint32, km *keymap.Keymap, sink report.Sink) (*Processor, error) {
	if measured == 0 || total < measured {
		return nil, fmt.Errorf("battery: invalid divider %d/%d", measured, total)
	}
	if sink == nil {
		return nil, fmt.Errorf("battery: nil report sink")
	}
	return &Processor{measured: measured, total: total, keymap: km, sink: sink, last: -1}, nil
}

func (p *Processor) Keymap() *keymap.Keymap { return p.keymap }

// Millivolts estimates the battery voltage for a raw ADC sample.
func (p *Processor) Millivolts(raw int16) uint32 {
	if raw <= 0 {
		return 0
	}
	adc := uint64(raw) * fullScaleMillivolts / adcCounts
	return uint32(adc * uint64(p.total) / uint64(p.measured))
}

// Percent maps a battery voltage linearly between EmptyMillivolts and FullMillivolts.
func Percent(mv uint32) uint8 {
	switch {
	case mv <= EmptyMillivolts:
		return 0
	case mv >= FullMillivolts:
		return 100
	}
	return uint8((mv - EmptyMillivolts) * 100 / (FullMillivolts - EmptyMillivolts))
}

// Process consumes Battery events. A report is sent only when the level changes.
func (p *Processor) Process(ctx context.Context, ev event.Event) (pipeline.Result, error) {
	if ev.Kind != event.Battery {
		return pipeline.Continue(ev), nil
	}

	mv := p.Millivolts(ev.Battery.Raw)
	pct := Percent(mv)
	if int(pct) == p.last {
		return pipeline.Stop(), nil
	}
	if p.last < 0 {
		log.Printf("battery: first sample raw=%d -> %dmV (%d%%)", ev.Battery.Raw, mv, pct)
	}
	p.last = int(pct)

	if err := p.sink.Send(ctx, report.FromBattery(report.Battery{Percent: pct, Millivolts: mv})); err != nil {
		return pipeline.Result{}, err
	}
	return pipeline.Stop(), nil
}
