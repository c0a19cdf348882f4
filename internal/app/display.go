// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"image"
	"log"
	"strings"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/split_pointer/internal/config"
	"github.com/relabs-tech/split_pointer/internal/sensors"
)

const (
	displayWidth  = 128
	displayHeight = 64
	lineHeight    = 13
)

// RunDisplay shows battery, pointer motion and held keys on an SSD1306.
func RunDisplay() error {
	cfg := config.Get()

	if err := sensors.InitHost(); err != nil {
		return err
	}

	bus, err := i2creg.Open(cfg.ADCI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, cfg.DisplayI2CAddr, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Printf("display: initialized at 0x%02X", cfg.DisplayI2CAddr)

	if err := dev.Draw(dev.Bounds(), renderLines("Split Pointer", "Waiting..."), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	mon := NewMonitor()
	client, err := connectMQTT(cfg, cfg.MQTTClientIDDisplay, "display")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	if err := subscribeReports(client, cfg, "display", mon.Update); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	var last time.Time
	for range ticker.C {
		s := mon.Snapshot()
		if s.Updated.Equal(last) {
			continue
		}
		last = s.Updated
		if err := dev.Draw(dev.Bounds(), renderState(s), image.Point{}); err != nil {
			log.Printf("display: error updating: %v", err)
		}
	}
	return nil
}

func renderState(s State) *image1bit.VerticalLSB {
	batt := "Batt: --"
	if s.HaveBattery {
		batt = fmt.Sprintf("Batt: %3d%% %4dmV", s.Battery.Percent, s.Battery.Millivolts)
	}
	m := s.Mouse
	var keys []string
	for _, k := range s.Keyboard.Keys {
		if k != 0 {
			keys = append(keys, fmt.Sprintf("%02x", k))
		}
	}
	return renderLines(
		batt,
		fmt.Sprintf("XY: %4d %4d", m.X, m.Y),
		fmt.Sprintf("WP: %4d %4d", m.Wheel, m.Pan),
		fmt.Sprintf("K%02x %s", s.Keyboard.Modifiers, strings.Join(keys, " ")),
	)
}

// renderLines draws up to four lines of text, one per 13 pixel row.
func renderLines(lines ...string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		y := (i + 1) * lineHeight
		if y > displayHeight {
			break
		}
		drawer.Dot = fixed.P(0, y)
		drawer.DrawString(line)
	}
	return img
}
