// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package joystick

import (
	"errors"
	"fmt"
	"math"
)

var ErrShape = errors.New("calibration shape mismatch")

// Calibration holds the per-unit constants of one sensor cluster with N axes.
//
//	corrected[j] = sat16(raw[j] + Bias[j])
//	out[i]       = sum_j Transform[i][j] * corrected[j]
//	out[i]       = 0 when |out[i]| < Threshold[i]
//
// Only rows 0 and 1 of Transform drive the report; unused rows and columns
// should be zero.
type Calibration struct {
	Transform [][]float32
	Bias      []int16
	Threshold []float32
}

// Axes returns N.
func (c Calibration) Axes() int { return len(c.Bias) }

// Validate checks that every vector has n entries and Transform is n x n.
func (c Calibration) Validate(n int) error {
	if n < 2 {
		return fmt.Errorf("%w: need at least 2 axes, got %d", ErrShape, n)
	}
	if len(c.Bias) != n {
		return fmt.Errorf("%w: bias has %d entries, want %d", ErrShape, len(c.Bias), n)
	}
	if len(c.Threshold) != n {
		return fmt.Errorf("%w: threshold has %d entries, want %d", ErrShape, len(c.Threshold), n)
	}
	if len(c.Transform) != n {
		return fmt.Errorf("%w: transform has %d rows, want %d", ErrShape, len(c.Transform), n)
	}
	for i, row := range c.Transform {
		if len(row) != n {
			return fmt.Errorf("%w: transform row %d has %d columns, want %d", ErrShape, i, len(row), n)
		}
	}
	return nil
}

// Identity returns an n-axis calibration with unit transform, zero bias and
// zero thresholds.
func Identity(n int) Calibration {
	c := Calibration{
		Transform: make([][]float32, n),
		Bias:      make([]int16, n),
		Threshold: make([]float32, n),
	}
	for i := range c.Transform {
		c.Transform[i] = make([]float32, n)
		c.Transform[i][i] = 1
	}
	return c
}

// SaturatingAdd adds two int16 values, clamping at the type bounds.
func SaturatingAdd(a, b int16) int16 {
	s := int32(a) + int32(b)
	switch {
	case s > math.MaxInt16:
		return math.MaxInt16
	case s < math.MinInt16:
		return math.MinInt16
	}
	return int16(s)
}

// Quantize clamps v to [-128, 127] and truncates toward zero. NaN maps to 0.
func Quantize(v float32) int8 {
	switch {
	case v != v:
		return 0
	case v >= 127:
		return 127
	case v <= -128:
		return -128
	}
	return int8(v)
}

// Correct applies the bias to raw in place.
func (c Calibration) Correct(raw []int16) {
	for i := range raw {
		raw[i] = SaturatingAdd(raw[i], c.Bias[i])
	}
}

// Apply runs the transform, dead zone and quantization over already
// bias-corrected values.
func (c Calibration) Apply(corrected []int16) []int8 {
	out := make([]int8, len(corrected))
	for i := range corrected {
		var sum float32
		for j, v := range corrected {
			sum += c.Transform[i][j] * float32(v)
		}
		if abs32(sum) < c.Threshold[i] {
			sum = 0
		}
		out[i] = Quantize(sum)
	}
	return out
}

// Compute is the stateless form of the processor arithmetic: bias, transform,
// dead zone, quantization. raw is not modified.
func (c Calibration) Compute(raw []int16) []int8 {
	rec := append([]int16(nil), raw...)
	c.Correct(rec)
	return c.Apply(rec)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
