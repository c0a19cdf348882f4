// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package analog

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"

	"github.com/relabs-tech/split_pointer/internal/event"
	"github.com/relabs-tech/split_pointer/internal/pipeline"
)

type fakeADC struct {
	*gpiotest.Pin
	raw int32
	err error
}

func (f *fakeADC) Range() (analog.Sample, analog.Sample) {
	return analog.Sample{V: 0, Raw: 0}, analog.Sample{V: 4 * physic.Volt, Raw: math.MaxInt16}
}

func (f *fakeADC) Read() (analog.Sample, error) {
	if f.err != nil {
		return analog.Sample{}, f.err
	}
	return analog.Sample{Raw: f.raw}, nil
}

func newPins(raw ...int32) ([]analog.PinADC, []*fakeADC) {
	var pins []analog.PinADC
	var fakes []*fakeADC
	for i, r := range raw {
		f := &fakeADC{Pin: &gpiotest.Pin{N: "A", Num: i}, raw: r}
		pins = append(pins, f)
		fakes = append(fakes, f)
	}
	return pins, fakes
}

func TestNew_LayoutMismatch(t *testing.T) {
	pins, _ := newPins(0, 0)
	_, err := New(pins, Layout{{Kind: Joystick, Width: 2}, {Kind: Battery}})
	if !errors.Is(err, ErrLayout) {
		t.Errorf("expected ErrLayout, got %v", err)
	}
}

func TestPoll_JoystickAndBattery(t *testing.T) {
	pins, fakes := newPins(100, -200, 2048)
	s, err := New(pins, Layout{{Kind: Joystick, Width: 2}, {Kind: Battery}}, WithBatteryEvery(3))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if s.JoystickAxes() != 2 {
		t.Errorf("JoystickAxes() = %d, want 2", s.JoystickAxes())
	}

	evs, err := s.Poll()
	if err != nil {
		t.Fatalf("Poll() failed: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("first poll: got %d events, want 2", len(evs))
	}
	if evs[0].Kind != event.Joystick || evs[0].Values()[0] != 100 || evs[0].Values()[1] != -200 {
		t.Errorf("unexpected joystick event %v", evs[0])
	}
	if evs[1].Kind != event.Battery || evs[1].Battery.Raw != 2048 {
		t.Errorf("unexpected battery event %v", evs[1])
	}

	fakes[0].raw = 1 << 20
	evs, _ = s.Poll()
	if len(evs) != 1 {
		t.Fatalf("second poll: got %d events, want 1", len(evs))
	}
	if evs[0].Values()[0] != math.MaxInt16 {
		t.Errorf("raw value not clamped: %d", evs[0].Values()[0])
	}

	s.Poll()
	evs, _ = s.Poll()
	if len(evs) != 2 {
		t.Errorf("fourth poll should sample battery again, got %d events", len(evs))
	}
}

func TestPoll_ReadError(t *testing.T) {
	pins, fakes := newPins(0, 0)
	s, _ := New(pins, Layout{{Kind: Joystick, Width: 2}})
	fakes[1].err = errors.New("i2c nack")
	if _, err := s.Poll(); err == nil {
		t.Error("expected read error")
	}
	fakes[1].err = nil
	if _, err := s.Poll(); err != nil {
		t.Errorf("sampler should recover after read error: %v", err)
	}
}

func TestPoll_LightSleep(t *testing.T) {
	pins, fakes := newPins(0, 0)
	s, _ := New(pins, Layout{{Kind: Joystick, Width: 2}}, WithLightSleep(time.Second, 3), WithIdleTolerance(10))

	for i := 0; i < 3; i++ {
		if s.Idle() {
			t.Fatalf("idle after %d polls", i)
		}
		s.Poll()
	}
	if !s.Idle() {
		t.Fatal("expected idle after 3 still polls")
	}

	fakes[0].raw = 5
	s.Poll()
	if !s.Idle() {
		t.Error("movement within tolerance must not wake the sampler")
	}

	fakes[0].raw = 500
	s.Poll()
	if s.Idle() {
		t.Error("movement beyond tolerance must wake the sampler")
	}
}

func TestRun_ForwardsEvents(t *testing.T) {
	pins, _ := newPins(1, 2)
	s, _ := New(pins, Layout{{Kind: Joystick, Width: 2}}, WithInterval(time.Millisecond))
	ch, _ := pipeline.NewChannel("local", 4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, ch) }()

	recvCtx, recvCancel := context.WithTimeout(ctx, time.Second)
	defer recvCancel()
	ev, err := ch.Receive(recvCtx)
	if err != nil {
		t.Fatalf("Receive() failed: %v", err)
	}
	if ev.Kind != event.Joystick {
		t.Errorf("expected joystick event, got %v", ev)
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
