// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package matrix

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/relabs-tech/split_pointer/internal/event"
	"github.com/relabs-tech/split_pointer/internal/pipeline"
)

const (
	DefaultScanInterval = time.Millisecond
	DefaultDebounce     = 10 * time.Millisecond
)

// Matrix scans a row/column switch matrix. Rows are driven low one at a time,
// columns are pulled up, so a closed switch reads Low on its column.
type Matrix struct {
	rows []gpio.PinOut
	cols []gpio.PinIn

	scanInterval time.Duration
	debounce     time.Duration
	settle       time.Duration

	// per key: debounced state and how many scans the raw state disagreed
	state   [][]bool
	counter [][]uint16
	limit   uint16
}

type Option func(*Matrix)

func WithScanInterval(d time.Duration) Option {
	return func(m *Matrix) { m.scanInterval = d }
}

// WithDebounce sets how long a raw change must persist before it is reported.
func WithDebounce(d time.Duration) Option {
	return func(m *Matrix) { m.debounce = d }
}

// WithSettle waits after driving a row before the columns are read.
func WithSettle(d time.Duration) Option {
	return func(m *Matrix) { m.settle = d }
}

func New(rows []gpio.PinOut, cols []gpio.PinIn, opts ...Option) (*Matrix, error) {
	if len(rows) == 0 || len(cols) == 0 {
		return nil, fmt.Errorf("matrix: need rows and columns, got %dx%d", len(rows), len(cols))
	}
	if len(rows) > 256 || len(cols) > 256 {
		return nil, fmt.Errorf("matrix: %dx%d exceeds 256x256", len(rows), len(cols))
	}
	m := &Matrix{
		rows:         rows,
		cols:         cols,
		scanInterval: DefaultScanInterval,
		debounce:     DefaultDebounce,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.scanInterval <= 0 {
		return nil, fmt.Errorf("matrix: scan interval must be positive")
	}
	scans := m.debounce / m.scanInterval
	if scans > math.MaxUint16 {
		return nil, fmt.Errorf("matrix: debounce %v spans %d scans, max %d", m.debounce, scans, math.MaxUint16)
	}
	m.limit = uint16(scans)
	if m.limit == 0 {
		m.limit = 1
	}
	m.state = make([][]bool, len(rows))
	m.counter = make([][]uint16, len(rows))
	for r := range rows {
		m.state[r] = make([]bool, len(cols))
		m.counter[r] = make([]uint16, len(cols))
	}
	return m, nil
}

func (m *Matrix) Rows() int { return len(m.rows) }
func (m *Matrix) Cols() int { return len(m.cols) }

// Init puts every row high and configures the columns with pull-ups.
func (m *Matrix) Init() error {
	for i, r := range m.rows {
		if err := r.Out(gpio.High); err != nil {
			return fmt.Errorf("matrix: row %d (%s): %w", i, r, err)
		}
	}
	for i, c := range m.cols {
		if err := c.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return fmt.Errorf("matrix: col %d (%s): %w", i, c, err)
		}
	}
	return nil
}

// Scan reads the whole matrix once and returns the debounced transitions.
func (m *Matrix) Scan() ([]event.KeyEvent, error) {
	var out []event.KeyEvent
	for r, row := range m.rows {
		if err := row.Out(gpio.Low); err != nil {
			return out, fmt.Errorf("matrix: drive row %d: %w", r, err)
		}
		if m.settle > 0 {
			time.Sleep(m.settle)
		}
		for c, col := range m.cols {
			pressed := col.Read() == gpio.Low
			if pressed == m.state[r][c] {
				m.counter[r][c] = 0
				continue
			}
			m.counter[r][c]++
			if m.counter[r][c] >= m.limit {
				m.counter[r][c] = 0
				m.state[r][c] = pressed
				out = append(out, event.KeyEvent{Row: uint8(r), Col: uint8(c), Pressed: pressed})
			}
		}
		if err := row.Out(gpio.High); err != nil {
			return out, fmt.Errorf("matrix: release row %d: %w", r, err)
		}
	}
	return out, nil
}

// Run scans at the configured interval and sends every transition to ch.
func (m *Matrix) Run(ctx context.Context, ch *pipeline.Channel) error {
	if err := m.Init(); err != nil {
		return err
	}
	log.Printf("matrix: scanning %dx%d every %v (debounce %v)", len(m.rows), len(m.cols), m.scanInterval, m.debounce)

	ticker := time.NewTicker(m.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		keys, err := m.Scan()
		if err != nil {
			log.Printf("matrix: scan error: %v", err)
		}
		for _, k := range keys {
			if err := ch.Send(ctx, event.Event{Kind: event.Key, Key: k}); err != nil {
				return err
			}
		}
	}
}
