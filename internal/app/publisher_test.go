// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/split_pointer/internal/config"
	"github.com/relabs-tech/split_pointer/internal/report"
)

type fakeToken struct {
	err     error
	timeout bool
}

func (t *fakeToken) Wait() bool                     { return !t.timeout }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.timeout }
func (t *fakeToken) Done() <-chan struct{} {
	c := make(chan struct{})
	if !t.timeout {
		close(c)
	}
	return c
}
func (t *fakeToken) Error() error { return t.err }

type published struct {
	topic    string
	retained bool
	payload  []byte
}

type fakeBroker struct {
	msgs  []published
	token *fakeToken
}

func (b *fakeBroker) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	b.msgs = append(b.msgs, published{topic: topic, retained: retained, payload: payload.([]byte)})
	if b.token != nil {
		return b.token
	}
	return &fakeToken{}
}

func TestMQTTPublisher_Topics(t *testing.T) {
	cfg := config.Default()
	broker := &fakeBroker{}
	pub := NewMQTTPublisher(broker, cfg)

	reports := []report.Report{
		report.FromMouse(report.Mouse{X: 1}),
		report.FromKeyboard(report.Keyboard{Keys: [6]uint8{0x04}}),
		report.FromBattery(report.Battery{Percent: 42}),
	}
	for _, r := range reports {
		if err := pub.Deliver(r); err != nil {
			t.Fatalf("Deliver(%v) failed: %v", r, err)
		}
	}

	wantTopics := []string{cfg.TopicMouse, cfg.TopicKeyboard, cfg.TopicBattery}
	for i, m := range broker.msgs {
		if m.topic != wantTopics[i] {
			t.Errorf("report %d published on %q, want %q", i, m.topic, wantTopics[i])
		}
		if m.retained != (i == 2) {
			t.Errorf("report %d retained=%v", i, m.retained)
		}
		var back report.Report
		if err := json.Unmarshal(m.payload, &back); err != nil {
			t.Fatalf("payload %d: %v", i, err)
		}
		if back != reports[i] {
			t.Errorf("payload %d = %v, want %v", i, back, reports[i])
		}
	}
}

func TestMQTTPublisher_Errors(t *testing.T) {
	cfg := config.Default()

	if err := NewMQTTPublisher(&fakeBroker{}, cfg).Deliver(report.Report{}); err == nil {
		t.Error("expected error for a report without topic")
	}

	boom := errors.New("not connected")
	pub := NewMQTTPublisher(&fakeBroker{token: &fakeToken{err: boom}}, cfg)
	if err := pub.Deliver(report.FromMouse(report.Mouse{})); !errors.Is(err, boom) {
		t.Errorf("expected token error, got %v", err)
	}

	pub = NewMQTTPublisher(&fakeBroker{token: &fakeToken{timeout: true}}, cfg)
	if err := pub.Deliver(report.FromMouse(report.Mouse{})); err == nil {
		t.Error("expected timeout error")
	}
}
