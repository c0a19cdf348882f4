// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package keymap

import (
	"errors"
	"testing"
)

func smallKeymap(t *testing.T, tri *[3]uint8) *Keymap {
	t.Helper()
	layers := [][][]Action{
		{{K(KcA), K(KcB)}, {MO(1), MO(2)}},
		{{Trans, K(Kc1)}, {Trans, Trans}},
		{{K(KcX), Trans}, {Trans, Trans}},
		{{K(KcZ), NoAction}, {Trans, Trans}},
	}
	km, err := New(layers, tri)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return km
}

func TestNew_RejectsRaggedLayout(t *testing.T) {
	tests := []struct {
		name   string
		layers [][][]Action
	}{
		{"no layers", nil},
		{"no rows", [][][]Action{{}}},
		{"row count", [][][]Action{{{NoAction}}, {{NoAction}, {NoAction}}}},
		{"col count", [][][]Action{{{NoAction, NoAction}, {NoAction}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.layers, nil); !errors.Is(err, ErrInvalidLayout) {
				t.Errorf("expected ErrInvalidLayout, got %v", err)
			}
		})
	}

	tri := [3]uint8{1, 2, 9}
	if _, err := New([][][]Action{{{NoAction}}}, &tri); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("expected ErrInvalidLayout for tri-layer, got %v", err)
	}
}

func TestLookup_Transparency(t *testing.T) {
	km := smallKeymap(t, nil)

	if a := km.Lookup(0, 0); a != K(KcA) {
		t.Errorf("base lookup = %v", a)
	}
	km.Activate(1)
	if a := km.Lookup(0, 0); a != K(KcA) {
		t.Errorf("transparent key should fall through, got %v", a)
	}
	if a := km.Lookup(0, 1); a != K(Kc1) {
		t.Errorf("layer 1 lookup = %v", a)
	}
	if km.ActiveLayer() != 1 {
		t.Errorf("ActiveLayer() = %d, want 1", km.ActiveLayer())
	}
	km.Deactivate(1)
	if a := km.Lookup(0, 1); a != K(KcB) {
		t.Errorf("after deactivate lookup = %v", a)
	}
	if a := km.Lookup(5, 5); a != NoAction {
		t.Errorf("out of range lookup = %v", a)
	}
}

func TestTriLayer(t *testing.T) {
	tri := [3]uint8{1, 2, 3}
	km := smallKeymap(t, &tri)

	km.Activate(1)
	if km.IsActive(3) {
		t.Fatal("tri layer active with only one trigger layer")
	}
	km.Activate(2)
	if !km.IsActive(3) || km.ActiveLayer() != 3 {
		t.Fatalf("tri layer not active, mask layer %d", km.ActiveLayer())
	}
	if a := km.Lookup(0, 0); a != K(KcZ) {
		t.Errorf("tri layer lookup = %v", a)
	}
	if a := km.Lookup(0, 1); a != NoAction {
		t.Errorf("NoAction must block lower layers, got %v", a)
	}
	km.Deactivate(1)
	if km.IsActive(3) {
		t.Error("tri layer should drop with a trigger layer")
	}
	if km.ActiveLayer() != 2 {
		t.Errorf("ActiveLayer() = %d, want 2", km.ActiveLayer())
	}
}

func TestBaseLayerAlwaysActive(t *testing.T) {
	km := smallKeymap(t, nil)
	km.Deactivate(0)
	if !km.IsActive(0) {
		t.Error("layer 0 must stay active")
	}
	km.Activate(200)
	if km.ActiveLayer() != 0 {
		t.Error("activating a missing layer must be ignored")
	}
}

func TestDefault(t *testing.T) {
	km, err := Default()
	if err != nil {
		t.Fatalf("Default() failed: %v", err)
	}
	if km.Rows() != DefaultRows || km.Cols() != DefaultCols || km.Layers() != DefaultLayers {
		t.Errorf("unexpected shape %dx%dx%d", km.Layers(), km.Rows(), km.Cols())
	}
	if a := km.Lookup(3, 4); a != LT(1, KcSpace) {
		t.Errorf("thumb key = %v", a)
	}
}

func TestModifierBit(t *testing.T) {
	if !IsModifier(KcLShift) || IsModifier(KcA) {
		t.Error("IsModifier misclassified")
	}
	if ModifierBit(KcLCtrl) != 0x01 || ModifierBit(KcLShift) != 0x02 || ModifierBit(KcRGui) != 0x80 {
		t.Error("unexpected modifier bits")
	}
}
