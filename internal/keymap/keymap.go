// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package keymap

import (
	"errors"
	"fmt"
	"sync/atomic"
)

var ErrInvalidLayout = errors.New("invalid keymap layout")

// Keymap is the layered key layout shared by every processor. The layout is
// immutable after New. The active-layer mask is the only mutable part and is
// written exclusively by the keyboard processor; all other holders only read.
type Keymap struct {
	layers   [][][]Action
	rows     int
	cols     int
	triLayer *[3]uint8

	// bit n set = layer n active; layer 0 is always active
	active atomic.Uint32
}

// New validates that every layer has the same rows x cols shape.
// triLayer, when non-nil, activates triLayer[2] whenever both triLayer[0]
// and triLayer[1] are active.
func New(layers [][][]Action, triLayer *[3]uint8) (*Keymap, error) {
	if len(layers) == 0 || len(layers) > 32 {
		return nil, fmt.Errorf("%w: need 1-32 layers, got %d", ErrInvalidLayout, len(layers))
	}
	rows := len(layers[0])
	if rows == 0 {
		return nil, fmt.Errorf("%w: layer 0 has no rows", ErrInvalidLayout)
	}
	cols := len(layers[0][0])
	for l, layer := range layers {
		if len(layer) != rows {
			return nil, fmt.Errorf("%w: layer %d has %d rows, want %d", ErrInvalidLayout, l, len(layer), rows)
		}
		for r, row := range layer {
			if len(row) != cols {
				return nil, fmt.Errorf("%w: layer %d row %d has %d cols, want %d", ErrInvalidLayout, l, r, len(row), cols)
			}
		}
	}
	if triLayer != nil {
		for _, l := range triLayer {
			if int(l) >= len(layers) {
				return nil, fmt.Errorf("%w: tri-layer references layer %d of %d", ErrInvalidLayout, l, len(layers))
			}
		}
	}
	km := &Keymap{layers: layers, rows: rows, cols: cols, triLayer: triLayer}
	km.active.Store(1)
	return km, nil
}

func (k *Keymap) Rows() int   { return k.rows }
func (k *Keymap) Cols() int   { return k.cols }
func (k *Keymap) Layers() int { return len(k.layers) }

// Lookup resolves the action at row/col through the active layers, highest
// first, skipping Transparent entries.
func (k *Keymap) Lookup(row, col int) Action {
	if row < 0 || row >= k.rows || col < 0 || col >= k.cols {
		return NoAction
	}
	mask := k.active.Load()
	for l := len(k.layers) - 1; l >= 0; l-- {
		if mask&(1<<l) == 0 {
			continue
		}
		a := k.layers[l][row][col]
		if a.Type != Transparent {
			return a
		}
	}
	return NoAction
}

// ActiveLayer returns the highest active layer.
func (k *Keymap) ActiveLayer() int {
	mask := k.active.Load()
	for l := len(k.layers) - 1; l > 0; l-- {
		if mask&(1<<l) != 0 {
			return l
		}
	}
	return 0
}

// IsActive reports whether layer is currently active.
func (k *Keymap) IsActive(layer int) bool {
	if layer < 0 || layer >= 32 {
		return false
	}
	return k.active.Load()&(1<<layer) != 0
}

// Activate turns layer on. Only the keyboard processor calls this.
func (k *Keymap) Activate(layer uint8) {
	if int(layer) >= len(k.layers) {
		return
	}
	k.store(k.active.Load() | 1<<layer)
}

// Deactivate turns layer off. Layer 0 cannot be deactivated.
func (k *Keymap) Deactivate(layer uint8) {
	if layer == 0 || int(layer) >= len(k.layers) {
		return
	}
	k.store(k.active.Load() &^ (1 << layer))
}

func (k *Keymap) store(mask uint32) {
	if t := k.triLayer; t != nil {
		if mask&(1<<t[0]) != 0 && mask&(1<<t[1]) != 0 {
			mask |= 1 << t[2]
		} else {
			mask &^= 1 << t[2]
		}
	}
	k.active.Store(mask | 1)
}
