// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	periphanalog "periph.io/x/conn/v3/analog"

	"github.com/relabs-tech/split_pointer/internal/analog"
	"github.com/relabs-tech/split_pointer/internal/battery"
	"github.com/relabs-tech/split_pointer/internal/config"
	"github.com/relabs-tech/split_pointer/internal/hidserial"
	"github.com/relabs-tech/split_pointer/internal/joystick"
	"github.com/relabs-tech/split_pointer/internal/keyboard"
	"github.com/relabs-tech/split_pointer/internal/keymap"
	"github.com/relabs-tech/split_pointer/internal/matrix"
	"github.com/relabs-tech/split_pointer/internal/pipeline"
	"github.com/relabs-tech/split_pointer/internal/report"
	"github.com/relabs-tech/split_pointer/internal/sensors"
)

// Pipeline is the wired event topology:
//
//	local  (left ADC)             -> [joystick left, battery]
//	events (matrix + right ADC)   -> [joystick right, keyboard]
//
// Every processor writes to the same report queue.
type Pipeline struct {
	Keymap *keymap.Keymap
	Queue  *report.Queue

	Local  *pipeline.Channel
	Events *pipeline.Channel

	JoystickLeft  *joystick.Processor
	JoystickRight *joystick.Processor
	Battery       *battery.Processor
	Keyboard      *keyboard.Processor

	localChain  *pipeline.Chain
	eventsChain *pipeline.Chain
}

// NewPipeline builds keymap, processors, channels and chains from cfg.
func NewPipeline(cfg *config.Config) (*Pipeline, error) {
	var tri *[3]uint8
	if len(cfg.TriLayer) == 3 {
		tri = &[3]uint8{cfg.TriLayer[0], cfg.TriLayer[1], cfg.TriLayer[2]}
	}
	km, err := keymap.New(keymap.DefaultLayout(), tri)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{Keymap: km, Queue: report.NewQueue(cfg.ReportQueueCapacity)}

	if p.Local, err = pipeline.NewChannel("local", cfg.EventChannelCapacity); err != nil {
		return nil, err
	}
	if p.Events, err = pipeline.NewChannel("events", cfg.EventChannelCapacity); err != nil {
		return nil, err
	}

	gate := joystick.WithRateGate(time.Duration(cfg.JoystickRateGate) * time.Millisecond)

	leftMap, err := mappingFor(joystick.Left, cfg.JoystickLeft, false, -1)
	if err != nil {
		return nil, err
	}
	p.JoystickLeft, err = joystick.New(calibrationFor(cfg.JoystickLeft), joystick.Left, km, p.Queue,
		gate, joystick.WithMapping(leftMap))
	if err != nil {
		return nil, err
	}

	rightMap, err := mappingFor(joystick.Right, cfg.JoystickRight, cfg.JoystickRightGated, cfg.JoystickScrollLayer)
	if err != nil {
		return nil, err
	}
	p.JoystickRight, err = joystick.New(calibrationFor(cfg.JoystickRight), joystick.Right, km, p.Queue,
		gate, joystick.WithMapping(rightMap))
	if err != nil {
		return nil, err
	}

	if p.Battery, err = battery.New(cfg.BatteryDividerMeasured, cfg.BatteryDividerTotal, km, p.Queue); err != nil {
		return nil, err
	}
	p.Keyboard = keyboard.New(km, p.Queue, keyboard.WithTapTimeout(time.Duration(cfg.TapTimeout)*time.Millisecond))

	if p.localChain, err = pipeline.NewChain("local", p.JoystickLeft, p.Battery); err != nil {
		return nil, err
	}
	if p.eventsChain, err = pipeline.NewChain("events", p.JoystickRight, p.Keyboard); err != nil {
		return nil, err
	}
	return p, nil
}

func calibrationFor(jc config.JoystickConfig) joystick.Calibration {
	return joystick.Calibration{Transform: jc.Transform, Bias: jc.Bias, Threshold: jc.Threshold}
}

func mappingFor(side joystick.Side, jc config.JoystickConfig, gated bool, ungate int) (joystick.Mapping, error) {
	m := joystick.Mapping{Gated: gated, UngateLayer: ungate}
	for i, name := range jc.Mapping {
		f, err := joystick.ParseField(name)
		if err != nil {
			return m, fmt.Errorf("%s joystick mapping: %w", side, err)
		}
		m.Axes[i] = f
	}
	return m, nil
}

// Run starts the devices on their channels, both chains and the report
// dispatcher, and blocks until ctx is done or one of them fails.
func (p *Pipeline) Run(ctx context.Context, local, events []pipeline.Device, transports map[string]report.Transport) error {
	g := pipeline.NewGroup(ctx)
	for _, d := range local {
		g.AddDevice(d, p.Local)
	}
	for _, d := range events {
		g.AddDevice(d, p.Events)
	}
	g.AddChain(p.localChain, p.Local)
	g.AddChain(p.eventsChain, p.Events)

	d := report.NewDispatcher(p.Queue)
	for name, t := range transports {
		d.Add(name, t)
	}
	g.Go(d.Run)

	return g.Wait()
}

// RunKeyboard brings up the hardware described by the global config and runs
// the pipeline until SIGINT/SIGTERM.
func RunKeyboard() error {
	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("keyboard: config not initialized")
	}

	p, err := NewPipeline(cfg)
	if err != nil {
		return err
	}

	left, err := openSampler(cfg, "adc-left", cfg.ADCLeftAddr, p.JoystickLeft, true)
	if err != nil {
		return err
	}
	right, err := openSampler(cfg, "adc-right", cfg.ADCRightAddr, p.JoystickRight, false)
	if err != nil {
		return err
	}
	events := []pipeline.Device{right}

	if len(cfg.MatrixRowPins) > 0 {
		rows, cols, err := sensors.MatrixPins(cfg.MatrixRowPins, cfg.MatrixColPins)
		if err != nil {
			return err
		}
		if len(rows) > p.Keymap.Rows() || len(cols) > p.Keymap.Cols() {
			return fmt.Errorf("keyboard: %dx%d matrix does not fit the %dx%d keymap",
				len(rows), len(cols), p.Keymap.Rows(), p.Keymap.Cols())
		}
		m, err := matrix.New(rows, cols,
			matrix.WithScanInterval(time.Duration(cfg.MatrixScanInterval)*time.Millisecond),
			matrix.WithDebounce(time.Duration(cfg.MatrixDebounce)*time.Millisecond))
		if err != nil {
			return err
		}
		events = append(events, m)
	} else {
		log.Println("keyboard: no matrix pins configured, running pointer only")
	}

	transports := map[string]report.Transport{}
	if cfg.HIDSerialPort != "" {
		port, err := hidserial.Open(cfg.HIDSerialPort, uint(cfg.HIDBaudRate))
		if err != nil {
			return err
		}
		defer port.Close()
		transports["hid"] = hidserial.NewWriter(port)
	} else {
		log.Println("keyboard: HID_SERIAL_PORT not set, reports only go to MQTT")
	}

	client, err := connectMQTT(cfg, cfg.MQTTClientIDKeyboard, "keyboard")
	if err != nil {
		log.Printf("keyboard: MQTT unavailable, not mirroring reports: %v", err)
	} else {
		defer client.Disconnect(250)
		transports["mqtt"] = report.Mirror{Transport: NewMQTTPublisher(client, cfg)}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("keyboard: running")
	err = p.Run(ctx, []pipeline.Device{left}, events, transports)
	log.Println("keyboard: shutting down")
	return err
}

func openSampler(cfg *config.Config, name string, addr uint16, jp *joystick.Processor, withBattery bool) (*analog.Sampler, error) {
	pins, err := sensors.OpenJoystickADC(cfg.ADCI2CBus, addr, jp.Axes(), withBattery)
	if err != nil {
		return nil, err
	}
	return newSampler(cfg, name, pins, jp, withBattery)
}

func newSampler(cfg *config.Config, name string, pins []periphanalog.PinADC, jp *joystick.Processor, withBattery bool) (*analog.Sampler, error) {
	layout := analog.Layout{{Kind: analog.Joystick, Width: jp.Axes()}}
	if withBattery {
		layout = append(layout, analog.Slot{Kind: analog.Battery})
	}
	s, err := analog.New(pins, layout,
		analog.WithName(name),
		analog.WithInterval(time.Duration(cfg.ADCPollInterval)*time.Millisecond),
		analog.WithLightSleep(time.Duration(cfg.ADCLightSleep)*time.Millisecond, cfg.ADCIdlePolls),
		analog.WithBatteryEvery(cfg.ADCBatteryEvery))
	if err != nil {
		return nil, err
	}
	if err := jp.CheckAxes(s.JoystickAxes()); err != nil {
		return nil, err
	}
	return s, nil
}

// RunMockKeyboard runs the pipeline on simulated joysticks, printing every
// report and mirroring it to MQTT when a broker is reachable. No GPIO, I2C or
// serial port is touched.
func RunMockKeyboard() error {
	global := config.Get()
	if global == nil {
		return fmt.Errorf("keyboard: config not initialized")
	}
	// Simulated sticks never rest, skip light sleep.
	c := *global
	c.ADCIdlePolls = 0
	cfg := &c

	p, err := NewPipeline(cfg)
	if err != nil {
		return err
	}
	left, err := newSampler(cfg, "mock-left", sensors.NewMockJoystick("left", p.JoystickLeft.Axes(), 2500, 2000, true), p.JoystickLeft, true)
	if err != nil {
		return err
	}
	right, err := newSampler(cfg, "mock-right", sensors.NewMockJoystick("right", p.JoystickRight.Axes(), 2500, 800, false), p.JoystickRight, false)
	if err != nil {
		return err
	}

	transports := map[string]report.Transport{
		"console": report.TransportFunc(func(r report.Report) error {
			fmt.Println(formatReport(r))
			return nil
		}),
	}
	if client, err := connectMQTT(cfg, cfg.MQTTClientIDKeyboard, "keyboard"); err != nil {
		log.Printf("keyboard: MQTT unavailable, console only: %v", err)
	} else {
		defer client.Disconnect(250)
		transports["mqtt"] = report.Mirror{Transport: NewMQTTPublisher(client, cfg)}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("keyboard: running on mock joysticks")
	return p.Run(ctx, []pipeline.Device{left}, []pipeline.Device{right}, transports)
}
