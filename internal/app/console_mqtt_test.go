// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"testing"

	"github.com/relabs-tech/split_pointer/internal/report"
)

func TestFormatReport(t *testing.T) {
	tests := []struct {
		in   report.Report
		want string
	}{
		{
			report.FromMouse(report.Mouse{X: -20, Y: 10}),
			"[MOUSE] buttons=00 x= -20 y=  10 wheel=   0 pan=   0",
		},
		{
			report.FromKeyboard(report.Keyboard{Modifiers: 0x02, Keys: [6]uint8{0x04, 0x14}}),
			"[KEYS ] mods=00000010 keys=04 14 00 00 00 00",
		},
		{
			report.FromBattery(report.Battery{Percent: 7, Millivolts: 3084}),
			"[BATT ]   7% 3084mV",
		},
	}
	for _, tt := range tests {
		if got := formatReport(tt.in); got != tt.want {
			t.Errorf("formatReport(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
