// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package keyboard

import (
	"context"
	"log"
	"time"

	"github.com/relabs-tech/split_pointer/internal/event"
	"github.com/relabs-tech/split_pointer/internal/keymap"
	"github.com/relabs-tech/split_pointer/internal/pipeline"
	"github.com/relabs-tech/split_pointer/internal/report"
)

const DefaultTapTimeout = 200 * time.Millisecond

type position struct {
	row, col uint8
}

// held remembers what a pressed position did, so its release undoes the same
// action even if the layer changed in between.
type held struct {
	action      keymap.Action
	pressedAt   time.Time
	interrupted bool
}

// Processor turns key transitions into keyboard reports. It is the only
// writer of the keymap's layer state.
type Processor struct {
	keymap *keymap.Keymap
	sink   report.Sink

	tapTimeout time.Duration
	now        func() time.Time

	held      map[position]*held
	keys      []uint8
	modifiers uint8
}

type Option func(*Processor)

func WithTapTimeout(d time.Duration) Option {
	return func(p *Processor) { p.tapTimeout = d }
}

// WithClock replaces time.Now for tap decisions.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

func New(km *keymap.Keymap, sink report.Sink, opts ...Option) *Processor {
	p := &Processor{
		keymap:     km,
		sink:       sink,
		tapTimeout: DefaultTapTimeout,
		now:        time.Now,
		held:       make(map[position]*held),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) Keymap() *keymap.Keymap { return p.keymap }

// Process consumes Key events and passes everything else through.
func (p *Processor) Process(ctx context.Context, ev event.Event) (pipeline.Result, error) {
	if ev.Kind != event.Key {
		return pipeline.Continue(ev), nil
	}
	pos := position{ev.Key.Row, ev.Key.Col}

	var changed bool
	var err error
	if ev.Key.Pressed {
		changed, err = p.press(ctx, pos)
	} else {
		changed, err = p.release(ctx, pos)
	}
	if err != nil {
		return pipeline.Result{}, err
	}
	if changed {
		if err := p.send(ctx); err != nil {
			return pipeline.Result{}, err
		}
	}
	return pipeline.Stop(), nil
}

func (p *Processor) press(ctx context.Context, pos position) (bool, error) {
	if _, ok := p.held[pos]; ok {
		return false, nil
	}
	for _, h := range p.held {
		h.interrupted = true
	}

	a := p.keymap.Lookup(int(pos.row), int(pos.col))
	p.held[pos] = &held{action: a, pressedAt: p.now()}

	switch a.Type {
	case keymap.Key:
		return p.addCode(a.Code), nil
	case keymap.Shifted:
		p.modifiers |= keymap.ModifierBit(keymap.KcLShift)
		p.addCode(a.Code)
		return true, nil
	case keymap.LayerTap, keymap.Momentary:
		p.keymap.Activate(a.Layer)
		return false, nil
	}
	return false, nil
}

func (p *Processor) release(ctx context.Context, pos position) (bool, error) {
	h, ok := p.held[pos]
	if !ok {
		return false, nil
	}
	delete(p.held, pos)

	a := h.action
	switch a.Type {
	case keymap.Key:
		if keymap.IsModifier(a.Code) && p.modifierHeld(keymap.ModifierBit(a.Code)) {
			return false, nil
		}
		return p.removeCode(a.Code), nil
	case keymap.Shifted:
		p.removeCode(a.Code)
		if bit := keymap.ModifierBit(keymap.KcLShift); !p.modifierHeld(bit) {
			p.modifiers &^= bit
		}
		return true, nil
	case keymap.Momentary:
		p.keymap.Deactivate(a.Layer)
	case keymap.LayerTap:
		p.keymap.Deactivate(a.Layer)
		if !h.interrupted && p.now().Sub(h.pressedAt) < p.tapTimeout {
			p.addCode(a.Code)
			if err := p.send(ctx); err != nil {
				return false, err
			}
			p.removeCode(a.Code)
			return true, nil
		}
	}
	return false, nil
}

// modifierHeld reports whether a still-pressed position holds the modifier bit.
func (p *Processor) modifierHeld(bit uint8) bool {
	for _, h := range p.held {
		switch h.action.Type {
		case keymap.Key:
			if keymap.IsModifier(h.action.Code) && keymap.ModifierBit(h.action.Code) == bit {
				return true
			}
		case keymap.Shifted:
			if bit == keymap.ModifierBit(keymap.KcLShift) {
				return true
			}
		}
	}
	return false
}

func (p *Processor) addCode(code uint8) bool {
	if keymap.IsModifier(code) {
		bit := keymap.ModifierBit(code)
		if p.modifiers&bit != 0 {
			return false
		}
		p.modifiers |= bit
		return true
	}
	for _, k := range p.keys {
		if k == code {
			return false
		}
	}
	if len(p.keys) == 6 {
		log.Printf("keyboard: rollover limit reached, dropping %#02x", code)
		return false
	}
	p.keys = append(p.keys, code)
	return true
}

func (p *Processor) removeCode(code uint8) bool {
	if keymap.IsModifier(code) {
		bit := keymap.ModifierBit(code)
		if p.modifiers&bit == 0 {
			return false
		}
		p.modifiers &^= bit
		return true
	}
	for i, k := range p.keys {
		if k == code {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			return true
		}
	}
	return false
}

// Report returns the current keyboard state.
func (p *Processor) Report() report.Keyboard {
	r := report.Keyboard{Modifiers: p.modifiers}
	copy(r.Keys[:], p.keys)
	return r
}

func (p *Processor) send(ctx context.Context) error {
	return p.sink.Send(ctx, report.FromKeyboard(p.Report()))
}
