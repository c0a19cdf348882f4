// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/split_pointer/internal/app"
	"github.com/relabs-tech/split_pointer/internal/config"
)

func main() {
	configPath := flag.String("config", "./split_pointer_config.txt", "path to configuration file")
	mock := flag.Bool("mock", false, "run on simulated joysticks without hardware")
	flag.Parse()

	log.Println("starting split-pointer keyboard (matrix + joysticks → HID bridge, MQTT)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if *mock {
		if err := app.RunMockKeyboard(); err != nil {
			log.Fatalf("fatal: %v", err)
		}
		return
	}

	log.Println("Note: GPIO and I2C access usually needs root (sudo ./keyboard)")

	if err := app.RunKeyboard(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
