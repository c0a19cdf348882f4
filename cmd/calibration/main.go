// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// ./cmd/calibration/main.go
//
// Guided joystick calibration.
//  1. Rest: the stick is left alone; the mean becomes the bias and the noise
//     sizes the dead zone.
//  2. Sweep: the stick is rolled around its full range; the larger half range
//     per axis sets the scale so full deflection reaches -max-speed.
//
// Output:
//
//	Writes a JSON file under ./calibration/ and prints the config lines to
//	paste into split_pointer_config.txt.
//
// Run:
//
//	sudo go run ./cmd/calibration -side left
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/relabs-tech/split_pointer/internal/calibration"
	"github.com/relabs-tech/split_pointer/internal/config"
	"github.com/relabs-tech/split_pointer/internal/joystick"
	"github.com/relabs-tech/split_pointer/internal/sensors"
)

const (
	sampleHz      = 100
	restDuration  = 5 * time.Second
	sweepDuration = 20 * time.Second
)

func main() {
	in := bufio.NewReader(os.Stdin)

	configPath := flag.String("config", "./split_pointer_config.txt", "path to configuration file")
	sideName := flag.String("side", "left", "joystick to calibrate: left or right")
	axes := flag.Int("axes", 2, "number of joystick axes")
	maxSpeed := flag.Float64("max-speed", calibration.DefaultParams.MaxSpeed, "report value at full deflection")
	noiseSigma := flag.Float64("noise-sigma", calibration.DefaultParams.NoiseSigma, "dead zone in rest noise standard deviations")
	outDir := flag.String("out", "calibration", "directory for calibration results")
	flag.Parse()

	fmt.Println("=== Guided Joystick Calibration ===")
	fmt.Println()

	if err := config.InitGlobal(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to load config from %s: %v\n", *configPath, err)
		os.Exit(1)
	}
	cfg := config.Get()

	side := joystick.Left
	addr := cfg.ADCLeftAddr
	switch *sideName {
	case "left":
	case "right":
		side = joystick.Right
		addr = cfg.ADCRightAddr
	default:
		fatal(fmt.Errorf("unknown side %q", *sideName))
	}

	pins, err := sensors.OpenJoystickADC(cfg.ADCI2CBus, addr, *axes, false)
	if err != nil {
		fatal(err)
	}
	read := func() ([]int16, error) {
		v := make([]int16, len(pins))
		for i, p := range pins {
			s, err := p.Read()
			if err != nil {
				return nil, err
			}
			v[i] = clampRaw(s.Raw)
		}
		return v, nil
	}
	period := time.Second / sampleHz

	fmt.Printf("Selected joystick: %s (ADC %#x)\n\n", side, addr)

	fmt.Println("Step 1/2 - Rest")
	fmt.Println("Do not touch the joystick.")
	waitEnter(in, fmt.Sprintf("Press ENTER to start rest capture (%s)...", restDuration))
	_, rest, err := calibration.Capture(read, restDuration, period, nil)
	if err != nil {
		fatal(err)
	}
	for a, st := range rest.Axes {
		fmt.Printf("  axis %d: mean=%.1f stddev=%.2f\n", a, st.Mean, st.StdDev)
	}

	fmt.Println("\nStep 2/2 - Sweep")
	fmt.Println("Roll the joystick slowly around its full range, touching every edge.")
	waitEnter(in, fmt.Sprintf("Press ENTER to start, ENTER again to finish (max %s)...", sweepDuration))
	stop := make(chan struct{})
	go func() {
		_, _ = in.ReadString('\n')
		close(stop)
	}()
	_, sweep, err := calibration.Capture(read, sweepDuration, period, stop)
	if err != nil {
		fatal(err)
	}
	for a, st := range sweep.Axes {
		fmt.Printf("  axis %d: min=%.0f max=%.0f\n", a, st.Min, st.Max)
	}

	params := calibration.DefaultParams
	params.MaxSpeed = *maxSpeed
	params.NoiseSigma = *noiseSigma
	cal, err := calibration.Suggest(rest, sweep, params)
	if err != nil {
		fatal(err)
	}

	now := time.Now()
	res := calibration.NewResult(side, rest, sweep, cal, now)
	fmt.Printf("\nConfidence: rest=%.2f sweep=%.2f overall=%.2f\n",
		res.Confidence.Rest, res.Confidence.Sweep, res.Confidence.Overall)

	name, err := calibration.Write(*outDir, res, now)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("\nWrote: %s\n\n", name)

	fmt.Println("Config lines:")
	for _, line := range calibration.ConfigLines(side, cal) {
		fmt.Println(line)
	}
}

func clampRaw(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

func waitEnter(in *bufio.Reader, prompt string) {
	fmt.Print(prompt)
	_, _ = in.ReadString('\n')
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
