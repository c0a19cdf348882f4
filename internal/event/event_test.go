// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package event

import "testing"

func TestNewJoystick(t *testing.T) {
	ev := NewJoystick(50, -30, 7)
	if ev.Kind != Joystick {
		t.Fatalf("expected Joystick kind, got %v", ev.Kind)
	}
	if len(ev.Joystick) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(ev.Joystick))
	}
	for i, r := range ev.Joystick {
		if int(r.Axis) != i {
			t.Errorf("reading %d has axis %d", i, r.Axis)
		}
	}
	got := ev.Values()
	want := []int16{50, -30, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Values()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{NewKey(1, 4, true), "key(1,4 down)"},
		{NewKey(0, 0, false), "key(0,0 up)"},
		{NewJoystick(1, -2), "joystick[1 -2]"},
		{NewBattery(2048), "battery(2048)"},
		{Event{}, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.ev.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
