// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"log"
	"net/http"

	"github.com/relabs-tech/split_pointer/internal/config"
)

// RunWeb subscribes to the report topics and serves /api/state, the /ws
// report stream and the static files under ./web.
func RunWeb() error {
	cfg := config.Get()
	mon := NewMonitor()

	client, err := connectMQTT(cfg, cfg.MQTTClientIDWeb, "web")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeReports(client, cfg, "web", mon.Update); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, mon.Handler("web"))
}
