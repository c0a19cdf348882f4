// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
)

const (
	adcMaxVoltage = 4096 * physic.MilliVolt
	adcFrequency  = 860 * physic.Hertz

	// Battery samples are rescaled to a 12-bit reading against a 3.6 V
	// reference, the unit the battery processor converts from.
	batteryFullScale = 3600 * physic.MilliVolt
	batteryRawMax    = 4096
)

var joystickChannels = []ads1x15.Channel{ads1x15.Channel0, ads1x15.Channel1, ads1x15.Channel2, ads1x15.Channel3}

// OpenJoystickADC opens an ADS1115 and returns one pin per joystick axis,
// channels 0..axes-1. With battery set, the next channel is returned last as
// the battery pin.
func OpenJoystickADC(busName string, addr uint16, axes int, battery bool) ([]analog.PinADC, error) {
	need := axes
	if battery {
		need++
	}
	if axes < 1 || need > len(joystickChannels) {
		return nil, fmt.Errorf("ADC %#x: %d axes (battery=%v) do not fit 4 channels", addr, axes, battery)
	}
	if err := InitHost(); err != nil {
		return nil, err
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("ADC %#x: I2C open %q: %w", addr, busName, err)
	}

	opts := ads1x15.DefaultOpts
	opts.I2cAddress = addr
	dev, err := ads1x15.NewADS1115(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("ADC %#x: init: %w", addr, err)
	}

	pins := make([]analog.PinADC, 0, need)
	for i := 0; i < need; i++ {
		p, err := dev.PinForChannel(joystickChannels[i], adcMaxVoltage, adcFrequency, ads1x15.BestQuality)
		if err != nil {
			bus.Close()
			return nil, fmt.Errorf("ADC %#x: channel %d: %w", addr, i, err)
		}
		if battery && i == axes {
			pins = append(pins, &batteryPin{PinADC: p})
			continue
		}
		pins = append(pins, p)
	}
	log.Printf("sensors: ADS1115 at %#x on %s, %d joystick axes, battery=%v", addr, bus, axes, battery)
	return pins, nil
}

// batteryPin reports Raw as a 12-bit reading of a 3.6 V full scale.
type batteryPin struct {
	analog.PinADC
}

func (b *batteryPin) Read() (analog.Sample, error) {
	s, err := b.PinADC.Read()
	if err != nil {
		return s, err
	}
	s.Raw = batteryRaw(s.V)
	return s, nil
}

func batteryRaw(v physic.ElectricPotential) int32 {
	if v <= 0 {
		return 0
	}
	raw := int64(v) * batteryRawMax / int64(batteryFullScale)
	if raw > batteryRawMax-1 {
		raw = batteryRawMax - 1
	}
	return int32(raw)
}
