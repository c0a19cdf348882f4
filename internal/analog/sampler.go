// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package analog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"periph.io/x/conn/v3/analog"

	"github.com/relabs-tech/split_pointer/internal/event"
	"github.com/relabs-tech/split_pointer/internal/pipeline"
)

var ErrLayout = errors.New("analog: pin count does not match layout")

type SlotKind uint8

const (
	Joystick SlotKind = iota
	Battery
)

// Slot consumes Width consecutive pins. Battery slots are always one pin wide.
type Slot struct {
	Kind  SlotKind
	Width int
}

type Layout []Slot

// Pins returns how many ADC pins the layout consumes.
func (l Layout) Pins() int {
	n := 0
	for _, s := range l {
		n += s.width()
	}
	return n
}

func (s Slot) width() int {
	if s.Kind == Battery {
		return 1
	}
	return s.Width
}

const (
	DefaultInterval      = 5 * time.Millisecond
	DefaultLightSleep    = 50 * time.Millisecond
	DefaultIdlePolls     = 200
	DefaultIdleTolerance = 32
	DefaultBatteryEvery  = 2000
)

// Sampler polls ADC pins and turns their readings into joystick and battery events.
type Sampler struct {
	name   string
	pins   []analog.PinADC
	layout Layout

	interval      time.Duration
	lightSleep    time.Duration
	idlePolls     int
	idleTolerance int16
	batteryEvery  int

	last  []int16
	idle  int
	polls int
}

type Option func(*Sampler)

func WithInterval(d time.Duration) Option {
	return func(s *Sampler) { s.interval = d }
}

// WithLightSleep sets the slower interval used once the joysticks have been
// still for idlePolls polls.
func WithLightSleep(d time.Duration, idlePolls int) Option {
	return func(s *Sampler) {
		s.lightSleep = d
		s.idlePolls = idlePolls
	}
}

func WithIdleTolerance(t int16) Option {
	return func(s *Sampler) { s.idleTolerance = t }
}

func WithBatteryEvery(n int) Option {
	return func(s *Sampler) { s.batteryEvery = n }
}

func WithName(name string) Option {
	return func(s *Sampler) { s.name = name }
}

func New(pins []analog.PinADC, layout Layout, opts ...Option) (*Sampler, error) {
	if len(pins) != layout.Pins() {
		return nil, fmt.Errorf("%w: %d pins, layout needs %d", ErrLayout, len(pins), layout.Pins())
	}
	s := &Sampler{
		name:          "analog",
		pins:          pins,
		layout:        layout,
		interval:      DefaultInterval,
		lightSleep:    DefaultLightSleep,
		idlePolls:     DefaultIdlePolls,
		idleTolerance: DefaultIdleTolerance,
		batteryEvery:  DefaultBatteryEvery,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.interval <= 0 {
		return nil, fmt.Errorf("analog: poll interval must be positive")
	}
	if s.batteryEvery <= 0 {
		s.batteryEvery = 1
	}
	s.last = make([]int16, len(pins))
	return s, nil
}

// JoystickAxes returns the width of the first joystick slot, or 0 if there is none.
func (s *Sampler) JoystickAxes() int {
	for _, slot := range s.layout {
		if slot.Kind == Joystick {
			return slot.Width
		}
	}
	return 0
}

// Idle reports whether the sampler has switched to the light-sleep interval.
func (s *Sampler) Idle() bool {
	return s.idlePolls > 0 && s.idle >= s.idlePolls
}

// Poll reads the pins once and returns the events for this poll. Battery
// slots only produce an event every batteryEvery polls, starting with the first.
func (s *Sampler) Poll() ([]event.Event, error) {
	battery := s.polls%s.batteryEvery == 0
	s.polls++

	var out []event.Event
	moved := false
	idx := 0
	for _, slot := range s.layout {
		switch slot.Kind {
		case Battery:
			if battery {
				v, err := s.read(idx)
				if err != nil {
					return nil, err
				}
				out = append(out, event.NewBattery(v))
			}
			idx++
		case Joystick:
			values := make([]int16, slot.Width)
			for i := range values {
				v, err := s.read(idx + i)
				if err != nil {
					return nil, err
				}
				if d := int32(v) - int32(s.last[idx+i]); d > int32(s.idleTolerance) || -d > int32(s.idleTolerance) {
					moved = true
				}
				values[i] = v
			}
			for i, v := range values {
				s.last[idx+i] = v
			}
			out = append(out, event.NewJoystick(values...))
			idx += slot.Width
		}
	}

	if moved {
		if s.Idle() {
			log.Printf("%s: motion, leaving light sleep", s.name)
		}
		s.idle = 0
	} else if s.idle < s.idlePolls {
		s.idle++
		if s.Idle() {
			log.Printf("%s: idle, polling every %v", s.name, s.lightSleep)
		}
	}
	return out, nil
}

func (s *Sampler) read(i int) (int16, error) {
	sample, err := s.pins[i].Read()
	if err != nil {
		return 0, fmt.Errorf("%s: read %s: %w", s.name, s.pins[i], err)
	}
	return clamp16(sample.Raw), nil
}

func clamp16(v int32) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// Run polls until ctx is done and forwards every event to ch.
func (s *Sampler) Run(ctx context.Context, ch *pipeline.Channel) error {
	log.Printf("%s: sampling %d pins every %v", s.name, len(s.pins), s.interval)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		events, err := s.Poll()
		if err != nil {
			log.Printf("%s: %v", s.name, err)
		}
		for _, ev := range events {
			if err := ch.Send(ctx, ev); err != nil {
				return err
			}
		}

		if s.Idle() {
			timer.Reset(s.lightSleep)
		} else {
			timer.Reset(s.interval)
		}
	}
}
