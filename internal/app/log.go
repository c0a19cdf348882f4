// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import "log"

func logf(component, format string, args ...interface{}) {
	log.Printf(component+": "+format, args...)
}
