// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package keymap

const (
	DefaultRows   = 4
	DefaultCols   = 12
	DefaultLayers = 4
)

// DefaultTriLayer activates the adjust layer while lower and raise are held.
var DefaultTriLayer = [3]uint8{1, 2, 3}

// Default returns the corne layout with the default tri-layer.
func Default() (*Keymap, error) {
	tri := DefaultTriLayer
	return New(DefaultLayout(), &tri)
}

// DefaultLayout is the corne layout: base, lower (numbers/navigation),
// raise (symbols) and an empty adjust layer.
func DefaultLayout() [][][]Action {
	var (
		no  = NoAction
		tr  = Trans
		ent = K(KcEnter)
	)
	base := [][]Action{
		{K(KcTab), K(KcQ), K(KcW), K(KcE), K(KcR), K(KcT), K(KcY), K(KcU), K(KcI), K(KcO), K(KcP), K(KcBackspace)},
		{K(KcEscape), K(KcA), K(KcS), K(KcD), K(KcF), K(KcG), K(KcH), K(KcJ), K(KcK), K(KcL), K(KcSemicolon), K(KcQuote)},
		{K(KcLShift), K(KcZ), K(KcX), K(KcC), K(KcV), K(KcB), K(KcN), K(KcM), K(KcComma), K(KcDot), K(KcSlash), K(KcLAlt)},
		{no, no, no, K(KcLGui), LT(1, KcSpace), K(KcSlash), ent, LT(2, KcBackspace), K(KcLCtrl), no, no, no},
	}
	lower := [][]Action{
		{K(KcTab), K(Kc1), K(Kc2), K(Kc3), K(Kc4), K(Kc5), K(Kc6), K(Kc7), K(Kc8), K(Kc9), K(Kc0), K(KcBackspace)},
		{no, S(Kc9), no, S(Kc4), K(KcBackslash), S(Kc5), K(KcLeft), K(KcDown), K(KcUp), K(KcRight), no, no},
		{no, S(Kc0), S(KcLBracket), S(KcRBracket), K(KcLBracket), K(KcRBracket), no, no, no, no, no, no},
		{no, no, no, K(KcLGui), tr, K(KcSpace), tr, LT(2, KcBackspace), K(KcLCtrl), no, no, no},
	}
	raise := [][]Action{
		{no, no, no, no, no, no, S(Kc6), S(Kc7), S(Kc8), no, no, no},
		{no, no, no, no, S(Kc9), S(Kc0), K(KcMinus), S(KcEqual), K(KcGrave), S(KcBackslash), no, no},
		{no, no, no, no, K(KcEscape), K(KcTab), S(KcMinus), K(KcEqual), S(KcGrave), S(Kc3), no, no},
		{no, no, no, K(KcLShift), tr, K(KcSpace), ent, tr, K(KcLCtrl), no, no, no},
	}
	adjust := make([][]Action, DefaultRows)
	for r := range adjust {
		adjust[r] = make([]Action, DefaultCols)
	}
	return [][][]Action{base, lower, raise, adjust}
}
