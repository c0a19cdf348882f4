// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/split_pointer/internal/config"
	"github.com/relabs-tech/split_pointer/internal/report"
)

// RunConsoleMQTT prints every report published by the keyboard until Ctrl+C.
func RunConsoleMQTT() error {
	cfg := config.Get()

	client, err := connectMQTT(cfg, cfg.MQTTClientIDConsole, "console")
	if err != nil {
		return err
	}

	if err := subscribeReports(client, cfg, "console", func(r report.Report) {
		fmt.Println(formatReport(r))
	}); err != nil {
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}

func formatReport(r report.Report) string {
	switch r.Kind {
	case report.KindMouse:
		m := r.Mouse
		return fmt.Sprintf("[MOUSE] buttons=%02x x=%4d y=%4d wheel=%4d pan=%4d",
			m.Buttons, m.X, m.Y, m.Wheel, m.Pan)
	case report.KindKeyboard:
		k := r.Keyboard
		return fmt.Sprintf("[KEYS ] mods=%08b keys=% x", k.Modifiers, k.Keys[:])
	case report.KindBattery:
		return fmt.Sprintf("[BATT ] %3d%% %4dmV", r.Battery.Percent, r.Battery.Millivolts)
	}
	return fmt.Sprintf("[?????] %s", r)
}
