// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"math"
	"time"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/physic"
)

// mockPin is an ADC channel that traces a slow sine around a center value.
type mockPin struct {
	name      string
	num       int
	start     time.Time
	center    float64
	amplitude float64
	period    time.Duration
	phase     float64
}

// NewMockJoystick returns ADC pins for a stick drifting in circles around
// center, plus a battery pin reading a half-charged cell when battery is set.
// It lets the pipeline run on a machine without the ADC boards.
func NewMockJoystick(name string, axes int, center int16, amplitude float64, battery bool) []analog.PinADC {
	start := time.Now()
	pins := make([]analog.PinADC, 0, axes+1)
	for i := 0; i < axes; i++ {
		pins = append(pins, &mockPin{
			name:      fmt.Sprintf("%s_A%d", name, i),
			num:       i,
			start:     start,
			center:    float64(center),
			amplitude: amplitude,
			period:    4 * time.Second,
			phase:     float64(i) * math.Pi / 2,
		})
	}
	if battery {
		// 1.85 V at the ADC is ~3.7 V behind a 1/2 divider.
		pins = append(pins, &mockPin{
			name:   name + "_BAT",
			num:    axes,
			start:  start,
			center: 1850 * batteryRawMax / 3600,
		})
	}
	return pins
}

func (m *mockPin) String() string   { return m.name }
func (m *mockPin) Name() string     { return m.name }
func (m *mockPin) Number() int      { return m.num }
func (m *mockPin) Function() string { return "ADC" }
func (m *mockPin) Halt() error      { return nil }

func (m *mockPin) Range() (analog.Sample, analog.Sample) {
	return analog.Sample{V: 0, Raw: math.MinInt16}, analog.Sample{V: adcMaxVoltage, Raw: math.MaxInt16}
}

func (m *mockPin) Read() (analog.Sample, error) {
	v := m.center
	if m.amplitude != 0 && m.period > 0 {
		t := time.Since(m.start).Seconds() / m.period.Seconds()
		v += m.amplitude * math.Sin(2*math.Pi*t+m.phase)
	}
	raw := int32(math.Round(v))
	return analog.Sample{V: physic.ElectricPotential(raw) * physic.MilliVolt, Raw: raw}, nil
}
