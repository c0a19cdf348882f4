// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pipeline

import "errors"

var (
	// ErrInvalidCapacity is returned when a channel capacity is not a power of two.
	ErrInvalidCapacity = errors.New("channel capacity must be a power of two")

	// ErrEmptyChain is returned when a chain is built without processors.
	ErrEmptyChain = errors.New("processor chain is empty")
)
