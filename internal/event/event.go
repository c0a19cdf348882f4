// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package event

import (
	"fmt"
	"strings"
)

// Kind tags which payload of an Event is populated.
type Kind uint8

const (
	Unknown Kind = iota
	Key
	Joystick
	Battery
)

func (k Kind) String() string {
	switch k {
	case Key:
		return "key"
	case Joystick:
		return "joystick"
	case Battery:
		return "battery"
	default:
		return "unknown"
	}
}

// KeyEvent is one debounced transition of a matrix switch.
type KeyEvent struct {
	Row     uint8 `json:"row"`
	Col     uint8 `json:"col"`
	Pressed bool  `json:"pressed"`
}

// AxisReading is a raw, sign-extended ADC sample for one joystick axis.
type AxisReading struct {
	Axis  uint8 `json:"axis"`
	Value int16 `json:"value"`
}

// BatterySample is a raw ADC sample of the battery divider.
type BatterySample struct {
	Raw int16 `json:"raw"`
}

// Event is the common currency between input devices and processors.
// Only the field matching Kind is meaningful.
type Event struct {
	Kind     Kind          `json:"kind"`
	Key      KeyEvent      `json:"key,omitempty"`
	Joystick []AxisReading `json:"joystick,omitempty"`
	Battery  BatterySample `json:"battery,omitempty"`
}

func NewKey(row, col uint8, pressed bool) Event {
	return Event{Kind: Key, Key: KeyEvent{Row: row, Col: col, Pressed: pressed}}
}

// NewJoystick builds a Joystick event with one reading per axis, in axis order.
func NewJoystick(values ...int16) Event {
	readings := make([]AxisReading, len(values))
	for i, v := range values {
		readings[i] = AxisReading{Axis: uint8(i), Value: v}
	}
	return Event{Kind: Joystick, Joystick: readings}
}

func NewBattery(raw int16) Event {
	return Event{Kind: Battery, Battery: BatterySample{Raw: raw}}
}

// Values returns the joystick readings as plain integers.
func (e Event) Values() []int16 {
	out := make([]int16, len(e.Joystick))
	for i, r := range e.Joystick {
		out[i] = r.Value
	}
	return out
}

func (e Event) String() string {
	switch e.Kind {
	case Key:
		state := "up"
		if e.Key.Pressed {
			state = "down"
		}
		return fmt.Sprintf("key(%d,%d %s)", e.Key.Row, e.Key.Col, state)
	case Joystick:
		parts := make([]string, len(e.Joystick))
		for i, r := range e.Joystick {
			parts[i] = fmt.Sprintf("%d", r.Value)
		}
		return "joystick[" + strings.Join(parts, " ") + "]"
	case Battery:
		return fmt.Sprintf("battery(%d)", e.Battery.Raw)
	default:
		return "unknown"
	}
}
