// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package report

import (
	"context"
	"fmt"
)

// Kind tags the populated payload of a Report.
type Kind uint8

const (
	KindMouse Kind = iota + 1
	KindKeyboard
	KindBattery
)

func (k Kind) String() string {
	switch k {
	case KindMouse:
		return "mouse"
	case KindKeyboard:
		return "keyboard"
	case KindBattery:
		return "battery"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Mouse is a relative pointer report as carried by a boot-compatible HID mouse.
type Mouse struct {
	Buttons uint8 `json:"buttons"`
	X       int8  `json:"x"`
	Y       int8  `json:"y"`
	Wheel   int8  `json:"wheel"`
	Pan     int8  `json:"pan"`
}

// Keyboard is a 6KRO boot keyboard report.
type Keyboard struct {
	Modifiers uint8    `json:"modifiers"`
	Keys      [6]uint8 `json:"keys"`
}

// Battery carries the estimated charge level.
type Battery struct {
	Percent    uint8  `json:"percent"`
	Millivolts uint32 `json:"millivolts"`
}

// Report is one outbound, transport-ready state description.
type Report struct {
	Kind     Kind     `json:"kind"`
	Mouse    Mouse    `json:"mouse,omitempty"`
	Keyboard Keyboard `json:"keyboard,omitempty"`
	Battery  Battery  `json:"battery,omitempty"`
}

func FromMouse(m Mouse) Report       { return Report{Kind: KindMouse, Mouse: m} }
func FromKeyboard(k Keyboard) Report { return Report{Kind: KindKeyboard, Keyboard: k} }
func FromBattery(b Battery) Report   { return Report{Kind: KindBattery, Battery: b} }

func (r Report) String() string {
	switch r.Kind {
	case KindMouse:
		m := r.Mouse
		return fmt.Sprintf("mouse b=%02x x=%d y=%d wheel=%d pan=%d", m.Buttons, m.X, m.Y, m.Wheel, m.Pan)
	case KindKeyboard:
		k := r.Keyboard
		return fmt.Sprintf("keyboard mod=%02x keys=%v", k.Modifiers, k.Keys)
	case KindBattery:
		return fmt.Sprintf("battery %d%% (%dmV)", r.Battery.Percent, r.Battery.Millivolts)
	default:
		return r.Kind.String()
	}
}

// Sink accepts reports from processors. Send blocks until the report is queued.
type Sink interface {
	Send(ctx context.Context, r Report) error
}
