// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package keymap

import "fmt"

// ActionType selects how a key position behaves.
type ActionType uint8

const (
	// No does nothing and blocks lower layers.
	No ActionType = iota
	// Transparent falls through to the next active layer below.
	Transparent
	// Key sends a HID keycode (modifier keycodes set modifier bits).
	Key
	// Shifted sends a HID keycode with left shift held.
	Shifted
	// LayerTap activates Layer while held, sends Code when tapped.
	LayerTap
	// Momentary activates Layer while held.
	Momentary
)

// Action is one keymap entry.
type Action struct {
	Type  ActionType
	Code  uint8
	Layer uint8
}

func K(code uint8) Action         { return Action{Type: Key, Code: code} }
func S(code uint8) Action         { return Action{Type: Shifted, Code: code} }
func LT(layer, code uint8) Action { return Action{Type: LayerTap, Layer: layer, Code: code} }
func MO(layer uint8) Action       { return Action{Type: Momentary, Layer: layer} }

var (
	NoAction = Action{Type: No}
	Trans    = Action{Type: Transparent}
)

func (a Action) String() string {
	switch a.Type {
	case No:
		return "no"
	case Transparent:
		return "trans"
	case Key:
		return fmt.Sprintf("key(%#02x)", a.Code)
	case Shifted:
		return fmt.Sprintf("shifted(%#02x)", a.Code)
	case LayerTap:
		return fmt.Sprintf("lt(%d,%#02x)", a.Layer, a.Code)
	case Momentary:
		return fmt.Sprintf("mo(%d)", a.Layer)
	default:
		return "invalid"
	}
}

// HID usage IDs used by the default layout.
const (
	KcA         uint8 = 0x04
	KcB         uint8 = 0x05
	KcC         uint8 = 0x06
	KcD         uint8 = 0x07
	KcE         uint8 = 0x08
	KcF         uint8 = 0x09
	KcG         uint8 = 0x0a
	KcH         uint8 = 0x0b
	KcI         uint8 = 0x0c
	KcJ         uint8 = 0x0d
	KcK         uint8 = 0x0e
	KcL         uint8 = 0x0f
	KcM         uint8 = 0x10
	KcN         uint8 = 0x11
	KcO         uint8 = 0x12
	KcP         uint8 = 0x13
	KcQ         uint8 = 0x14
	KcR         uint8 = 0x15
	KcS         uint8 = 0x16
	KcT         uint8 = 0x17
	KcU         uint8 = 0x18
	KcV         uint8 = 0x19
	KcW         uint8 = 0x1a
	KcX         uint8 = 0x1b
	KcY         uint8 = 0x1c
	KcZ         uint8 = 0x1d
	Kc1         uint8 = 0x1e
	Kc2         uint8 = 0x1f
	Kc3         uint8 = 0x20
	Kc4         uint8 = 0x21
	Kc5         uint8 = 0x22
	Kc6         uint8 = 0x23
	Kc7         uint8 = 0x24
	Kc8         uint8 = 0x25
	Kc9         uint8 = 0x26
	Kc0         uint8 = 0x27
	KcEnter     uint8 = 0x28
	KcEscape    uint8 = 0x29
	KcBackspace uint8 = 0x2a
	KcTab       uint8 = 0x2b
	KcSpace     uint8 = 0x2c
	KcMinus     uint8 = 0x2d
	KcEqual     uint8 = 0x2e
	KcLBracket  uint8 = 0x2f
	KcRBracket  uint8 = 0x30
	KcBackslash uint8 = 0x31
	KcSemicolon uint8 = 0x33
	KcQuote     uint8 = 0x34
	KcGrave     uint8 = 0x35
	KcComma     uint8 = 0x36
	KcDot       uint8 = 0x37
	KcSlash     uint8 = 0x38
	KcRight     uint8 = 0x4f
	KcLeft      uint8 = 0x50
	KcDown      uint8 = 0x51
	KcUp        uint8 = 0x52

	KcLCtrl  uint8 = 0xe0
	KcLShift uint8 = 0xe1
	KcLAlt   uint8 = 0xe2
	KcLGui   uint8 = 0xe3
	KcRCtrl  uint8 = 0xe4
	KcRShift uint8 = 0xe5
	KcRAlt   uint8 = 0xe6
	KcRGui   uint8 = 0xe7
)

// IsModifier reports whether code is one of the eight modifier usages.
func IsModifier(code uint8) bool {
	return code >= KcLCtrl && code <= KcRGui
}

// ModifierBit returns the report bit for a modifier keycode.
func ModifierBit(code uint8) uint8 {
	return 1 << (code - KcLCtrl)
}
