// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/split_pointer/internal/config"
	"github.com/relabs-tech/split_pointer/internal/report"
)

const publishTimeout = 250 * time.Millisecond

// publisher is the part of mqtt.Client the mirror needs.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTPublisher mirrors every report as JSON onto the per-kind topic.
// It implements report.Transport.
type MQTTPublisher struct {
	client publisher
	topics map[report.Kind]string
}

func NewMQTTPublisher(client publisher, cfg *config.Config) *MQTTPublisher {
	return &MQTTPublisher{
		client: client,
		topics: reportTopics(cfg),
	}
}

func reportTopics(cfg *config.Config) map[report.Kind]string {
	return map[report.Kind]string{
		report.KindMouse:    cfg.TopicMouse,
		report.KindKeyboard: cfg.TopicKeyboard,
		report.KindBattery:  cfg.TopicBattery,
	}
}

func (p *MQTTPublisher) Deliver(r report.Report) error {
	topic, ok := p.topics[r.Kind]
	if !ok || topic == "" {
		return fmt.Errorf("mqtt: no topic for %s reports", r.Kind)
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("mqtt: marshal %s: %w", r.Kind, err)
	}
	// Battery reports are rare, keep the last one for late subscribers.
	retained := r.Kind == report.KindBattery
	token := p.client.Publish(topic, 0, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt: publish %s timed out", topic)
	}
	return token.Error()
}

// connectMQTT connects a client with the given id to the configured broker.
func connectMQTT(cfg *config.Config, clientID, component string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	logf(component, "connected to MQTT broker at %s", cfg.MQTTBroker)
	return client, nil
}

// subscribeReports decodes every report published on the report topics and
// hands it to fn. fn runs on the paho callback goroutine.
func subscribeReports(client mqtt.Client, cfg *config.Config, component string, fn func(report.Report)) error {
	for kind, topic := range reportTopics(cfg) {
		token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var r report.Report
			if err := json.Unmarshal(msg.Payload(), &r); err != nil {
				logf(component, "%s unmarshal error: %v", kind, err)
				return
			}
			if r.Kind != kind {
				logf(component, "%s topic carried a %s report", kind, r.Kind)
				return
			}
			fn(r)
		})
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		logf(component, "subscribed to %s", topic)
	}
	return nil
}
