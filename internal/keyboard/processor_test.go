// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package keyboard

import (
	"context"
	"testing"
	"time"

	"github.com/relabs-tech/split_pointer/internal/event"
	"github.com/relabs-tech/split_pointer/internal/keymap"
	"github.com/relabs-tech/split_pointer/internal/report"
)

type captureSink struct {
	reports []report.Keyboard
}

func (s *captureSink) Send(_ context.Context, r report.Report) error {
	s.reports = append(s.reports, r.Keyboard)
	return nil
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func setup(t *testing.T) (*Processor, *keymap.Keymap, *captureSink, *fakeClock) {
	t.Helper()
	km, err := keymap.Default()
	if err != nil {
		t.Fatalf("keymap.Default() failed: %v", err)
	}
	sink := &captureSink{}
	clk := &fakeClock{t: time.Unix(0, 0)}
	return New(km, sink, WithClock(clk.now)), km, sink, clk
}

func feed(t *testing.T, p *Processor, row, col uint8, pressed bool) {
	t.Helper()
	res, err := p.Process(context.Background(), event.NewKey(row, col, pressed))
	if err != nil {
		t.Fatalf("Process() failed: %v", err)
	}
	if !res.Stopped() {
		t.Fatal("key events must be consumed")
	}
}

func TestPressRelease(t *testing.T) {
	p, _, sink, _ := setup(t)

	feed(t, p, 0, 1, true) // Q
	feed(t, p, 0, 1, false)

	if len(sink.reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(sink.reports))
	}
	if sink.reports[0].Keys[0] != keymap.KcQ {
		t.Errorf("press report = %+v", sink.reports[0])
	}
	if sink.reports[1] != (report.Keyboard{}) {
		t.Errorf("release report = %+v", sink.reports[1])
	}
}

func TestModifier(t *testing.T) {
	p, _, sink, _ := setup(t)
	feed(t, p, 2, 0, true) // LShift
	feed(t, p, 0, 2, true) // W
	last := sink.reports[len(sink.reports)-1]
	if last.Modifiers != 0x02 || last.Keys[0] != keymap.KcW {
		t.Errorf("unexpected report %+v", last)
	}
}

func TestLayerTap_Hold(t *testing.T) {
	p, km, sink, clk := setup(t)

	feed(t, p, 3, 4, true) // LT(1, Space)
	if km.ActiveLayer() != 1 {
		t.Fatalf("layer 1 should be active, got %d", km.ActiveLayer())
	}
	feed(t, p, 0, 1, true) // 1 on lower layer
	if sink.reports[0].Keys[0] != keymap.Kc1 {
		t.Errorf("expected Kc1 on lower layer, got %+v", sink.reports[0])
	}
	clk.advance(500 * time.Millisecond)
	feed(t, p, 3, 4, false)
	if km.ActiveLayer() != 0 {
		t.Error("layer 1 should be released")
	}
	// Key pressed on layer 1 must release the code it sent.
	feed(t, p, 0, 1, false)
	if last := sink.reports[len(sink.reports)-1]; last != (report.Keyboard{}) {
		t.Errorf("expected empty report, got %+v", last)
	}
}

func TestLayerTap_Tap(t *testing.T) {
	p, km, sink, clk := setup(t)

	feed(t, p, 3, 4, true)
	clk.advance(50 * time.Millisecond)
	feed(t, p, 3, 4, false)

	if km.ActiveLayer() != 0 {
		t.Error("layer must be released after tap")
	}
	if len(sink.reports) != 2 {
		t.Fatalf("expected tap press+release, got %v", sink.reports)
	}
	if sink.reports[0].Keys[0] != keymap.KcSpace || sink.reports[1] != (report.Keyboard{}) {
		t.Errorf("unexpected tap reports %+v", sink.reports)
	}
}

func TestLayerTap_SlowReleaseIsNotTap(t *testing.T) {
	p, _, sink, clk := setup(t)
	feed(t, p, 3, 4, true)
	clk.advance(time.Second)
	feed(t, p, 3, 4, false)
	if len(sink.reports) != 0 {
		t.Errorf("slow release must not tap, got %v", sink.reports)
	}
}

func TestTriLayer(t *testing.T) {
	p, km, _, _ := setup(t)
	feed(t, p, 3, 4, true) // LT(1)
	feed(t, p, 3, 7, true) // LT(2) on layer 1
	if km.ActiveLayer() != 3 {
		t.Errorf("expected adjust layer, got %d", km.ActiveLayer())
	}
	feed(t, p, 3, 7, false)
	feed(t, p, 3, 4, false)
	if km.ActiveLayer() != 0 {
		t.Errorf("expected base layer, got %d", km.ActiveLayer())
	}
}

func TestShifted(t *testing.T) {
	p, km, sink, _ := setup(t)
	km.Activate(1)
	feed(t, p, 1, 1, true) // S(Kc9) => '('
	r := sink.reports[0]
	if r.Modifiers != 0x02 || r.Keys[0] != keymap.Kc9 {
		t.Errorf("unexpected shifted report %+v", r)
	}
	feed(t, p, 1, 1, false)
	if last := sink.reports[len(sink.reports)-1]; last != (report.Keyboard{}) {
		t.Errorf("expected empty report, got %+v", last)
	}
}

func TestRollover(t *testing.T) {
	p, _, sink, _ := setup(t)
	for col := uint8(1); col <= 7; col++ {
		feed(t, p, 0, col, true)
	}
	if len(sink.reports) != 6 {
		t.Errorf("seventh key must not produce a report, got %d reports", len(sink.reports))
	}
	if p.Report().Keys[5] != keymap.KcY {
		t.Errorf("unexpected keys %v", p.Report().Keys)
	}
}

func TestPassThrough(t *testing.T) {
	p, _, _, _ := setup(t)
	res, _ := p.Process(context.Background(), event.NewJoystick(1, 2))
	if res.Stopped() {
		t.Error("joystick events must pass through the keyboard")
	}
}

func TestShiftedKeepsHeldShift(t *testing.T) {
	km, err := keymap.New([][][]keymap.Action{{{keymap.K(keymap.KcLShift), keymap.S(keymap.KcA)}}}, nil)
	if err != nil {
		t.Fatalf("keymap.New() failed: %v", err)
	}
	sink := &captureSink{}
	p := New(km, sink)

	feed(t, p, 0, 0, true)  // LShift
	feed(t, p, 0, 1, true)  // shifted A
	feed(t, p, 0, 1, false) // release shifted A
	if got := p.Report().Modifiers; got != 0x02 {
		t.Fatalf("modifiers while LShift held = %#02x, want 0x02", got)
	}
	if p.Report().Keys[0] != 0 {
		t.Errorf("A still reported after release: %v", p.Report().Keys)
	}

	feed(t, p, 0, 0, false)
	if last := sink.reports[len(sink.reports)-1]; last != (report.Keyboard{}) {
		t.Errorf("expected empty report after releasing LShift, got %+v", last)
	}
}

func TestHeldShiftedSurvivesShiftRelease(t *testing.T) {
	km, err := keymap.New([][][]keymap.Action{{{keymap.K(keymap.KcLShift), keymap.S(keymap.KcA)}}}, nil)
	if err != nil {
		t.Fatalf("keymap.New() failed: %v", err)
	}
	p := New(km, &captureSink{})

	feed(t, p, 0, 1, true)  // shifted A
	feed(t, p, 0, 0, true)  // LShift
	feed(t, p, 0, 0, false) // release LShift
	if got := p.Report().Modifiers; got != 0x02 {
		t.Errorf("modifiers while shifted A held = %#02x, want 0x02", got)
	}
}
