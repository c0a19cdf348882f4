// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package joystick

import (
	"fmt"
	"strings"

	"github.com/relabs-tech/split_pointer/internal/report"
)

// Side names the physical half a sensor cluster sits on.
type Side uint8

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Field is a pointer report field an output axis can drive.
type Field uint8

const (
	None Field = iota
	X
	Y
	Wheel
	Pan
)

func (f Field) String() string {
	switch f {
	case X:
		return "x"
	case Y:
		return "y"
	case Wheel:
		return "wheel"
	case Pan:
		return "pan"
	default:
		return "none"
	}
}

// ParseField accepts the names produced by Field.String.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return None, nil
	case "x":
		return X, nil
	case "y":
		return Y, nil
	case "wheel":
		return Wheel, nil
	case "pan":
		return Pan, nil
	}
	return None, fmt.Errorf("unknown report field %q", s)
}

// Mapping routes output axes 0 and 1 to report fields. A gated mapping still
// computes the motion but reports zeros, unless UngateLayer is active.
type Mapping struct {
	Axes        [2]Field
	Gated       bool
	UngateLayer int // -1 disables
}

// DefaultMapping: the left stick moves the pointer, the right stick is wired
// to wheel/pan but held at zero.
func DefaultMapping(side Side) Mapping {
	if side == Right {
		return Mapping{Axes: [2]Field{Wheel, Pan}, Gated: true, UngateLayer: -1}
	}
	return Mapping{Axes: [2]Field{X, Y}, UngateLayer: -1}
}

// open reports whether the mapped values reach the report.
func (m Mapping) open(activeLayer func(int) bool) bool {
	if !m.Gated {
		return true
	}
	return m.UngateLayer >= 0 && activeLayer != nil && activeLayer(m.UngateLayer)
}

// assemble builds the mouse report for out (len >= 2).
func (m Mapping) assemble(out []int8, open bool) report.Mouse {
	var r report.Mouse
	if !open {
		return r
	}
	for axis, f := range m.Axes {
		v := out[axis]
		switch f {
		case X:
			r.X = v
		case Y:
			r.Y = v
		case Wheel:
			r.Wheel = v
		case Pan:
			r.Pan = v
		}
	}
	return r
}
