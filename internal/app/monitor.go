// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/split_pointer/internal/report"
)

// Counts is the number of reports received per kind.
type Counts struct {
	Mouse    uint64 `json:"mouse"`
	Keyboard uint64 `json:"keyboard"`
	Battery  uint64 `json:"battery"`
}

// State is the latest report of each kind as seen by a monitor.
type State struct {
	Mouse       report.Mouse    `json:"mouse"`
	Keyboard    report.Keyboard `json:"keyboard"`
	Battery     report.Battery  `json:"battery"`
	HaveBattery bool            `json:"have_battery"`
	Counts      Counts          `json:"counts"`
	Updated     time.Time       `json:"updated"`
}

// Monitor keeps the last reports received over MQTT and streams new ones to
// websocket clients.
type Monitor struct {
	mu      sync.RWMutex
	state   State
	clients map[chan report.Report]struct{}
}

const wsClientBuffer = 32

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

func NewMonitor() *Monitor {
	return &Monitor{clients: make(map[chan report.Report]struct{})}
}

// Update records r and forwards it to every connected client. Slow clients
// miss reports rather than stall the MQTT callback.
func (m *Monitor) Update(r report.Report) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch r.Kind {
	case report.KindMouse:
		m.state.Mouse = r.Mouse
		m.state.Counts.Mouse++
	case report.KindKeyboard:
		m.state.Keyboard = r.Keyboard
		m.state.Counts.Keyboard++
	case report.KindBattery:
		m.state.Battery = r.Battery
		m.state.HaveBattery = true
		m.state.Counts.Battery++
	default:
		return
	}
	m.state.Updated = time.Now()

	for c := range m.clients {
		select {
		case c <- r:
		default:
		}
	}
}

func (m *Monitor) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Monitor) subscribe() chan report.Report {
	c := make(chan report.Report, wsClientBuffer)
	m.mu.Lock()
	m.clients[c] = struct{}{}
	m.mu.Unlock()
	return c
}

func (m *Monitor) unsubscribe(c chan report.Report) {
	m.mu.Lock()
	delete(m.clients, c)
	m.mu.Unlock()
}

// HandleState serves the current State as JSON.
func (m *Monitor) HandleState(w http.ResponseWriter, r *http.Request) {
	s := m.Snapshot()
	if s.Updated.IsZero() {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

// HandleWS streams every report received after the connection was opened.
func (m *Monitor) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	reports := m.subscribe()
	defer m.unsubscribe(reports)

	// The reader only notices the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case rep := <-reports:
			if err := conn.WriteJSON(rep); err != nil {
				log.Printf("web: websocket write error: %v", err)
				return
			}
		}
	}
}

// Handler routes the monitor API and serves static files from dir.
func (m *Monitor) Handler(dir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/state", m.HandleState)
	mux.HandleFunc("/ws", m.HandleWS)
	if dir != "" {
		mux.Handle("/", http.FileServer(http.Dir(dir)))
	}
	return mux
}
