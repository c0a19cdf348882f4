// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package calibration derives joystick bias, dead zone and scale from raw
// samples taken with the stick at rest and while sweeping its full range.
//
// All values are in RAW ADC counts until Suggest turns them into a
// joystick.Calibration.
package calibration

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/relabs-tech/split_pointer/internal/joystick"
)

const SchemaVersion = 1

// Generic quality heuristics, in raw counts.
const (
	stillStdGood = 3.0  // "good" standard deviation for a stick at rest
	stillStdBad  = 40.0 // above this confidence bottoms out

	// A sweep that covers less than this half range is not a real sweep.
	minHalfRange = 500.0

	confFloor = 0.05
)

type AxisStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

type PhaseStats struct {
	Samples     int         `json:"samples"`
	DurationSec float64     `json:"duration_sec"`
	Axes        []AxisStats `json:"axes"`
	Notes       []string    `json:"notes,omitempty"`
}

type Suggested struct {
	Transform [][]float32 `json:"transform"`
	Bias      []int16     `json:"bias"`
	Threshold []float32   `json:"threshold"`
}

type Result struct {
	SchemaVersion int    `json:"schema_version"`
	CalibrationAt string `json:"calibration_at"` // RFC3339
	Side          string `json:"side"`           // "left" or "right"

	Rest  PhaseStats `json:"rest"`
	Sweep PhaseStats `json:"sweep"`

	Suggested Suggested `json:"suggested"`

	Confidence struct {
		Rest    float64 `json:"rest"`
		Sweep   float64 `json:"sweep"`
		Overall float64 `json:"overall"`
	} `json:"confidence"`
}

// Params tune Suggest.
type Params struct {
	// MaxSpeed is the report value produced at full deflection.
	MaxSpeed float64
	// NoiseSigma sizes the dead zone in standard deviations of rest noise.
	NoiseSigma float64
	// DefaultScale is used for axes without a usable sweep.
	DefaultScale float64
}

var DefaultParams = Params{MaxSpeed: 20, NoiseSigma: 4, DefaultScale: 0.004}

// ComputeStats summarizes n-axis samples.
func ComputeStats(values [][]int16, dur time.Duration) PhaseStats {
	st := PhaseStats{Samples: len(values), DurationSec: dur.Seconds()}
	if len(values) == 0 {
		return st
	}
	n := len(values[0])
	st.Axes = make([]AxisStats, n)
	for a := range st.Axes {
		st.Axes[a].Min = math.Inf(1)
		st.Axes[a].Max = math.Inf(-1)
	}
	for _, v := range values {
		for a := 0; a < n && a < len(v); a++ {
			x := float64(v[a])
			st.Axes[a].Mean += x
			st.Axes[a].Min = math.Min(st.Axes[a].Min, x)
			st.Axes[a].Max = math.Max(st.Axes[a].Max, x)
		}
	}
	count := float64(len(values))
	for a := range st.Axes {
		st.Axes[a].Mean /= count
	}
	for _, v := range values {
		for a := 0; a < n && a < len(v); a++ {
			d := float64(v[a]) - st.Axes[a].Mean
			st.Axes[a].StdDev += d * d
		}
	}
	for a := range st.Axes {
		st.Axes[a].StdDev = math.Sqrt(st.Axes[a].StdDev / count)
	}
	return st
}

// Suggest builds a diagonal calibration: bias cancels the rest mean, each
// axis is scaled so the larger half of its sweep maps to p.MaxSpeed, and the
// dead zone swallows p.NoiseSigma standard deviations of rest noise (at least
// one count of output).
func Suggest(rest, sweep PhaseStats, p Params) (joystick.Calibration, error) {
	n := len(rest.Axes)
	if n < 2 {
		return joystick.Calibration{}, fmt.Errorf("rest phase has %d axes, need at least 2", n)
	}
	if len(sweep.Axes) != 0 && len(sweep.Axes) != n {
		return joystick.Calibration{}, fmt.Errorf("sweep has %d axes, rest has %d", len(sweep.Axes), n)
	}

	cal := joystick.Identity(n)
	for a, st := range rest.Axes {
		cal.Bias[a] = clampInt16(-math.Round(st.Mean))

		scale := p.DefaultScale
		if len(sweep.Axes) == n {
			if half := halfRange(sweep.Axes[a], st.Mean); half >= minHalfRange {
				scale = p.MaxSpeed / half
			}
		}
		cal.Transform[a][a] = float32(scale)
		cal.Threshold[a] = float32(math.Max(1, p.NoiseSigma*st.StdDev*scale))
	}
	return cal, nil
}

func halfRange(sweep AxisStats, center float64) float64 {
	return math.Max(math.Abs(sweep.Max-center), math.Abs(sweep.Min-center))
}

// NewResult assembles the stored record for one calibration run.
func NewResult(side joystick.Side, rest, sweep PhaseStats, cal joystick.Calibration, at time.Time) Result {
	res := Result{
		SchemaVersion: SchemaVersion,
		CalibrationAt: at.Format(time.RFC3339),
		Side:          side.String(),
		Rest:          rest,
		Sweep:         sweep,
		Suggested: Suggested{
			Transform: cal.Transform,
			Bias:      cal.Bias,
			Threshold: cal.Threshold,
		},
	}
	res.Confidence.Rest = StillnessConfidence(rest)
	res.Confidence.Sweep = CoverageConfidence(rest, sweep)
	res.Confidence.Overall = clamp01(0.5*res.Confidence.Rest + 0.5*res.Confidence.Sweep)
	return res
}

// StillnessConfidence rates how quiet the stick was at rest.
func StillnessConfidence(st PhaseStats) float64 {
	if len(st.Axes) == 0 {
		return 0
	}
	var s float64
	for _, a := range st.Axes {
		s += a.StdDev
	}
	s /= float64(len(st.Axes))
	switch {
	case s <= stillStdGood:
		return 1.0
	case s >= stillStdBad:
		return confFloor
	default:
		t := (s - stillStdGood) / (stillStdBad - stillStdGood)
		return clamp01(1.0 - 0.95*t)
	}
}

// CoverageConfidence rates how much of its range each axis covered in the
// sweep; the worst axis wins.
func CoverageConfidence(rest, sweep PhaseStats) float64 {
	if len(sweep.Axes) == 0 || len(sweep.Axes) != len(rest.Axes) {
		return 0
	}
	worst := 1.0
	for a, st := range sweep.Axes {
		lo := math.Abs(st.Min - rest.Axes[a].Mean)
		hi := math.Abs(st.Max - rest.Axes[a].Mean)
		// Both directions must be reached, and far.
		c := clamp01(math.Min(lo, hi) / (4 * minHalfRange))
		worst = math.Min(worst, c)
	}
	return math.Max(worst, confFloor)
}

// ConfigLines renders cal in config file syntax for the given side.
func ConfigLines(side joystick.Side, cal joystick.Calibration) []string {
	prefix := "JOYSTICK_" + strings.ToUpper(side.String())
	rows := make([]string, len(cal.Transform))
	for i, row := range cal.Transform {
		rows[i] = joinFloats(row)
	}
	bias := make([]string, len(cal.Bias))
	for i, b := range cal.Bias {
		bias[i] = strconv.Itoa(int(b))
	}
	return []string{
		prefix + "_TRANSFORM=" + strings.Join(rows, ";"),
		prefix + "_BIAS=" + strings.Join(bias, ","),
		prefix + "_THRESHOLD=" + joinFloats(cal.Threshold),
	}
}

func joinFloats(vs []float32) string {
	s := make([]string, len(vs))
	for i, v := range vs {
		s[i] = strconv.FormatFloat(float64(v), 'g', 6, 32)
	}
	return strings.Join(s, ",")
}

// Write stores res as <dir>/<side>_<timestamp>_joystick_calibration.json.
func Write(dir string, res Result, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	ts := now.Format("2006-01-02T15-04-05Z07-00")
	name := filepath.Join(dir, fmt.Sprintf("%s_%s_joystick_calibration.json", res.Side, ts))

	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(name, b, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

// Capture reads samples every period until dur has elapsed or stop is closed.
func Capture(read func() ([]int16, error), dur, period time.Duration, stop <-chan struct{}) ([][]int16, PhaseStats, error) {
	start := time.Now()
	deadline := start.Add(dur)

	var values [][]int16
	for time.Now().Before(deadline) {
		select {
		case <-stop:
			return values, ComputeStats(values, time.Since(start)), nil
		default:
		}
		v, err := read()
		if err != nil {
			return nil, PhaseStats{}, err
		}
		values = append(values, v)
		time.Sleep(period)
	}
	st := ComputeStats(values, time.Since(start))
	if stop != nil {
		st.Notes = append(st.Notes, "stopped_by_timeout")
	}
	return values, st, nil
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func clampInt16(x float64) int16 {
	if x > math.MaxInt16 {
		return math.MaxInt16
	}
	if x < math.MinInt16 {
		return math.MinInt16
	}
	return int16(x)
}
