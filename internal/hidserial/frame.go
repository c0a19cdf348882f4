// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package hidserial forwards reports to a USB HID bridge over a UART.
//
// Each report is sent as one frame:
//
//	0xFD | len | reportID | payload... | checksum
//
// len counts reportID and payload. checksum is the sum of reportID and the
// payload bytes modulo 256.
package hidserial

import (
	"errors"
	"fmt"
	"math"

	"github.com/relabs-tech/split_pointer/internal/report"
)

const Start byte = 0xFD

const (
	IDKeyboard byte = 0x01
	IDMouse    byte = 0x02
	IDBattery  byte = 0x03
)

var (
	ErrUnknownKind = errors.New("hidserial: unknown report kind")
	ErrFrame       = errors.New("hidserial: malformed frame")
)

// Encode builds the frame for r.
func Encode(r report.Report) ([]byte, error) {
	var id byte
	var payload []byte
	switch r.Kind {
	case report.KindKeyboard:
		id = IDKeyboard
		payload = make([]byte, 0, 8)
		payload = append(payload, r.Keyboard.Modifiers, 0)
		payload = append(payload, r.Keyboard.Keys[:]...)
	case report.KindMouse:
		m := r.Mouse
		id = IDMouse
		payload = []byte{m.Buttons, byte(m.X), byte(m.Y), byte(m.Wheel), byte(m.Pan)}
	case report.KindBattery:
		mv := r.Battery.Millivolts
		if mv > math.MaxUint16 {
			mv = math.MaxUint16
		}
		id = IDBattery
		payload = []byte{r.Battery.Percent, byte(mv), byte(mv >> 8)}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, r.Kind)
	}

	frame := make([]byte, 0, len(payload)+4)
	frame = append(frame, Start, byte(len(payload)+1), id)
	frame = append(frame, payload...)
	frame = append(frame, checksum(frame[2:]))
	return frame, nil
}

// Decode parses one frame back into a report. The bridge firmware never sends
// frames back; Decode exists for loopback testing and the serial monitor.
func Decode(frame []byte) (report.Report, error) {
	if len(frame) < 4 || frame[0] != Start {
		return report.Report{}, ErrFrame
	}
	n := int(frame[1])
	if len(frame) != n+3 {
		return report.Report{}, fmt.Errorf("%w: length %d, header says %d", ErrFrame, len(frame), n+3)
	}
	body := frame[2 : 2+n]
	if sum := checksum(body); sum != frame[len(frame)-1] {
		return report.Report{}, fmt.Errorf("%w: checksum %#02x, want %#02x", ErrFrame, frame[len(frame)-1], sum)
	}
	p := body[1:]
	switch body[0] {
	case IDKeyboard:
		if len(p) != 8 {
			return report.Report{}, ErrFrame
		}
		var k report.Keyboard
		k.Modifiers = p[0]
		copy(k.Keys[:], p[2:])
		return report.FromKeyboard(k), nil
	case IDMouse:
		if len(p) != 5 {
			return report.Report{}, ErrFrame
		}
		return report.FromMouse(report.Mouse{
			Buttons: p[0],
			X:       int8(p[1]),
			Y:       int8(p[2]),
			Wheel:   int8(p[3]),
			Pan:     int8(p[4]),
		}), nil
	case IDBattery:
		if len(p) != 3 {
			return report.Report{}, ErrFrame
		}
		return report.FromBattery(report.Battery{
			Percent:    p[0],
			Millivolts: uint32(p[1]) | uint32(p[2])<<8,
		}), nil
	default:
		return report.Report{}, fmt.Errorf("%w: report id %#02x", ErrFrame, body[0])
	}
}

func checksum(b []byte) byte {
	var sum byte
	for _, v := range b {
		sum += v
	}
	return sum
}
