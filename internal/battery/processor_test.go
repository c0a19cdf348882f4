// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package battery

import (
	"context"
	"testing"

	"github.com/relabs-tech/split_pointer/internal/event"
	"github.com/relabs-tech/split_pointer/internal/joystick"
	"github.com/relabs-tech/split_pointer/internal/pipeline"
	"github.com/relabs-tech/split_pointer/internal/report"
)

type captureSink struct {
	reports []report.Report
}

func (s *captureSink) Send(_ context.Context, r report.Report) error {
	s.reports = append(s.reports, r)
	return nil
}

func TestNew_InvalidDivider(t *testing.T) {
	for _, d := range [][2]uint32{{0, 10}, {10, 5}} {
		if _, err := New(d[0], d[1], nil, &captureSink{}); err == nil {
			t.Errorf("New(%d, %d) should fail", d[0], d[1])
		}
	}
	if _, err := New(1, 1, nil, nil); err == nil {
		t.Error("New() with nil sink should fail")
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		mv   uint32
		want uint8
	}{
		{0, 0},
		{2900, 0},
		{3000, 0},
		{3600, 50},
		{4200, 100},
		{5000, 100},
	}
	for _, tt := range tests {
		if got := Percent(tt.mv); got != tt.want {
			t.Errorf("Percent(%d) = %d, want %d", tt.mv, got, tt.want)
		}
	}
}

func TestMillivolts(t *testing.T) {
	p, _ := New(1, 1, nil, &captureSink{})
	if got := p.Millivolts(4096); got != 3600 {
		t.Errorf("full scale = %d, want 3600", got)
	}
	if got := p.Millivolts(-5); got != 0 {
		t.Errorf("negative sample = %d, want 0", got)
	}

	halved, _ := New(1, 2, nil, &captureSink{})
	if got := halved.Millivolts(2048); got != 3600 {
		t.Errorf("divided sample = %d, want 3600", got)
	}
}

func TestProcess_ReportsOnChange(t *testing.T) {
	sink := &captureSink{}
	p, _ := New(1, 2, nil, sink)
	ctx := context.Background()

	for _, raw := range []int16{2048, 2048, 2049, 2400} {
		res, err := p.Process(ctx, event.NewBattery(raw))
		if err != nil {
			t.Fatalf("Process() failed: %v", err)
		}
		if !res.Stopped() {
			t.Fatal("battery events must be consumed")
		}
	}
	if len(sink.reports) != 2 {
		t.Fatalf("expected 2 reports (50%% then higher), got %d: %v", len(sink.reports), sink.reports)
	}
	if sink.reports[0].Battery.Percent != 50 {
		t.Errorf("first report = %v", sink.reports[0])
	}
	if sink.reports[1].Battery.Percent <= 50 {
		t.Errorf("second report should be higher, got %v", sink.reports[1])
	}
}

func TestProcess_PassThrough(t *testing.T) {
	p, _ := New(1, 1, nil, &captureSink{})
	res, _ := p.Process(context.Background(), event.NewJoystick(3, 4))
	if res.Stopped() || res.Event().Kind != event.Joystick {
		t.Error("non-battery events must pass through")
	}
}

// A battery sample on the local chain passes the joystick processor and is
// consumed by the battery processor behind it.
func TestChain_JoystickThenBattery(t *testing.T) {
	sink := &captureSink{}
	js, err := joystick.New(joystick.Identity(2), joystick.Left, nil, sink, joystick.WithRateGate(0))
	if err != nil {
		t.Fatalf("joystick.New() failed: %v", err)
	}
	batt, _ := New(1, 1, nil, sink)

	var offered []event.Kind
	spy := func(p pipeline.Processor) pipeline.Processor {
		return pipeline.ProcessorFunc(func(ctx context.Context, ev event.Event) (pipeline.Result, error) {
			offered = append(offered, ev.Kind)
			return p.Process(ctx, ev)
		})
	}
	chain, _ := pipeline.NewChain("local", js, spy(batt))

	res, err := js.Process(context.Background(), event.NewBattery(4000))
	if err != nil || res.Stopped() {
		t.Fatalf("joystick processor should Continue a battery event, got %v, %v", res, err)
	}

	consumed, err := chain.Offer(context.Background(), event.NewBattery(4000))
	if err != nil || !consumed {
		t.Fatalf("battery event not consumed: %v, %v", consumed, err)
	}
	if len(offered) != 1 || offered[0] != event.Battery {
		t.Errorf("battery processor offered %v", offered)
	}
	if len(sink.reports) != 1 || sink.reports[0].Kind != report.KindBattery {
		t.Errorf("expected one battery report, got %v", sink.reports)
	}

	consumed, _ = chain.Offer(context.Background(), event.NewJoystick(5, 6))
	if !consumed || len(offered) != 1 {
		t.Error("joystick event should stop at the joystick processor")
	}
}
