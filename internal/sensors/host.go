// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

var (
	hostOnce    sync.Once
	hostInitErr error
)

// InitHost loads the periph host drivers. Safe to call more than once.
func InitHost() error {
	hostOnce.Do(func() {
		state, err := host.Init()
		if err != nil {
			hostInitErr = fmt.Errorf("periph host init: %w", err)
			return
		}
		log.Printf("sensors: periph host ready, %d drivers loaded", len(state.Loaded))
	})
	return hostInitErr
}

// MatrixPins resolves the row and column GPIO names of the key matrix.
func MatrixPins(rowNames, colNames []string) ([]gpio.PinOut, []gpio.PinIn, error) {
	if err := InitHost(); err != nil {
		return nil, nil, err
	}
	rows := make([]gpio.PinOut, len(rowNames))
	for i, name := range rowNames {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, nil, fmt.Errorf("matrix row %d: pin %q not found", i, name)
		}
		rows[i] = p
	}
	cols := make([]gpio.PinIn, len(colNames))
	for i, name := range colNames {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, nil, fmt.Errorf("matrix col %d: pin %q not found", i, name)
		}
		cols[i] = p
	}
	return rows, cols, nil
}
