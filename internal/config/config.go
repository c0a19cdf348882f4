package config

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
)

// JoystickConfig is the calibration of one stick, N axes.
type JoystickConfig struct {
	Transform [][]float32 // N rows of N columns
	Bias      []int16
	Threshold []float32
	Mapping   [2]string // report fields for output axes 0 and 1
}

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDKeyboard string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicMouse    string
	TopicKeyboard string
	TopicBattery  string

	// Joysticks
	JoystickLeft        JoystickConfig
	JoystickRight       JoystickConfig
	JoystickRateGate    int  // milliseconds
	JoystickRightGated  bool // right stick reports zeros unless ungated
	JoystickScrollLayer int  // layer that ungates the right stick, -1 for none

	// Pipeline
	EventChannelCapacity int
	ReportQueueCapacity  int

	// ADC (ADS1115 on I2C)
	ADCI2CBus       string
	ADCLeftAddr     uint16
	ADCRightAddr    uint16
	ADCPollInterval int // milliseconds
	ADCLightSleep   int // milliseconds
	ADCIdlePolls    int
	ADCBatteryEvery int // polls between battery samples

	// Battery divider
	BatteryDividerMeasured uint32
	BatteryDividerTotal    uint32

	// Key matrix
	MatrixRowPins      []string
	MatrixColPins      []string
	MatrixScanInterval int // milliseconds
	MatrixDebounce     int // milliseconds

	// Keymap
	TriLayer   []uint8 // empty disables tri-layer
	TapTimeout int     // milliseconds

	// HID bridge
	HIDSerialPort string
	HIDBaudRate   int

	// Web Server
	WebServerPort int

	// Display
	DisplayI2CAddr        uint16
	DisplayUpdateInterval int // milliseconds
}

// globalConfig is only reachable through InitGlobal and Get; configMu guards it.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the values used for keys missing from the config file.
func Default() *Config {
	return &Config{
		MQTTBroker:           "tcp://localhost:1883",
		MQTTClientIDKeyboard: "split-pointer-keyboard",
		MQTTClientIDConsole:  "split-pointer-console",
		MQTTClientIDWeb:      "split-pointer-web",
		MQTTClientIDDisplay:  "split-pointer-display",

		TopicMouse:    "split_pointer/mouse",
		TopicKeyboard: "split_pointer/keyboard",
		TopicBattery:  "split_pointer/battery",

		JoystickLeft:        identity(2, "x", "y"),
		JoystickRight:       identity(2, "wheel", "pan"),
		JoystickRateGate:    5,
		JoystickRightGated:  true,
		JoystickScrollLayer: -1,

		EventChannelCapacity: 8,
		ReportQueueCapacity:  8,

		ADCI2CBus:       "",
		ADCLeftAddr:     0x48,
		ADCRightAddr:    0x49,
		ADCPollInterval: 5,
		ADCLightSleep:   50,
		ADCIdlePolls:    200,
		ADCBatteryEvery: 2000,

		BatteryDividerMeasured: 1,
		BatteryDividerTotal:    2,

		MatrixScanInterval: 1,
		MatrixDebounce:     10,

		TriLayer:   []uint8{1, 2, 3},
		TapTimeout: 200,

		HIDBaudRate: 115200,

		WebServerPort: 8080,

		DisplayI2CAddr:        0x3C,
		DisplayUpdateInterval: 200,
	}
}

func identity(n int, fields ...string) JoystickConfig {
	jc := JoystickConfig{
		Transform: make([][]float32, n),
		Bias:      make([]int16, n),
		Threshold: make([]float32, n),
	}
	for i := range jc.Transform {
		jc.Transform[i] = make([]float32, n)
		jc.Transform[i][i] = 1
	}
	copy(jc.Mapping[:], fields)
	return jc
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_KEYBOARD":
		c.MQTTClientIDKeyboard = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_MOUSE":
		c.TopicMouse = value
	case "TOPIC_KEYBOARD":
		c.TopicKeyboard = value
	case "TOPIC_BATTERY":
		c.TopicBattery = value

	// Joysticks
	case "JOYSTICK_LEFT_TRANSFORM":
		c.JoystickLeft.Transform, err = parseMatrix(value)
	case "JOYSTICK_LEFT_BIAS":
		c.JoystickLeft.Bias, err = parseInt16s(value)
	case "JOYSTICK_LEFT_THRESHOLD":
		c.JoystickLeft.Threshold, err = parseFloats(value)
	case "JOYSTICK_LEFT_MAPPING":
		c.JoystickLeft.Mapping, err = parseMapping(value)
	case "JOYSTICK_RIGHT_TRANSFORM":
		c.JoystickRight.Transform, err = parseMatrix(value)
	case "JOYSTICK_RIGHT_BIAS":
		c.JoystickRight.Bias, err = parseInt16s(value)
	case "JOYSTICK_RIGHT_THRESHOLD":
		c.JoystickRight.Threshold, err = parseFloats(value)
	case "JOYSTICK_RIGHT_MAPPING":
		c.JoystickRight.Mapping, err = parseMapping(value)
	case "JOYSTICK_RATE_GATE_MS":
		c.JoystickRateGate, err = parseNonNegative(value)
	case "JOYSTICK_RIGHT_GATED":
		c.JoystickRightGated, err = strconv.ParseBool(value)
	case "JOYSTICK_SCROLL_LAYER":
		c.JoystickScrollLayer, err = strconv.Atoi(value)

	// Pipeline
	case "EVENT_CHANNEL_CAPACITY":
		c.EventChannelCapacity, err = parsePowerOfTwo(value)
	case "REPORT_QUEUE_CAPACITY":
		c.ReportQueueCapacity, err = parsePowerOfTwo(value)

	// ADC
	case "ADC_I2C_BUS":
		c.ADCI2CBus = value
	case "ADC_LEFT_I2C_ADDR":
		c.ADCLeftAddr, err = parseAddr(value)
	case "ADC_RIGHT_I2C_ADDR":
		c.ADCRightAddr, err = parseAddr(value)
	case "ADC_POLL_INTERVAL":
		c.ADCPollInterval, err = parseNonNegative(value)
	case "ADC_LIGHT_SLEEP_INTERVAL":
		c.ADCLightSleep, err = parseNonNegative(value)
	case "ADC_IDLE_POLLS":
		c.ADCIdlePolls, err = parseNonNegative(value)
	case "ADC_BATTERY_EVERY":
		c.ADCBatteryEvery, err = parseNonNegative(value)

	// Battery
	case "BATTERY_DIVIDER_MEASURED":
		c.BatteryDividerMeasured, err = parseUint32(value)
	case "BATTERY_DIVIDER_TOTAL":
		c.BatteryDividerTotal, err = parseUint32(value)

	// Key matrix
	case "MATRIX_ROW_PINS":
		c.MatrixRowPins = parseList(value)
	case "MATRIX_COL_PINS":
		c.MatrixColPins = parseList(value)
	case "MATRIX_SCAN_INTERVAL":
		c.MatrixScanInterval, err = parseNonNegative(value)
	case "MATRIX_DEBOUNCE":
		c.MatrixDebounce, err = parseNonNegative(value)

	// Keymap
	case "TRI_LAYER":
		c.TriLayer, err = parseTriLayer(value)
	case "TAP_TIMEOUT":
		c.TapTimeout, err = parseNonNegative(value)

	// HID bridge
	case "HID_SERIAL_PORT":
		c.HIDSerialPort = value
	case "HID_BAUD_RATE":
		c.HIDBaudRate, err = strconv.Atoi(value)

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = strconv.Atoi(value)

	// Display
	case "DISPLAY_I2C_ADDR":
		c.DisplayI2CAddr, err = parseAddr(value)
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = parseNonNegative(value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return nil
}

// validate checks that required fields are set and that both joystick
// calibrations are internally consistent.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if err := c.JoystickLeft.check("JOYSTICK_LEFT"); err != nil {
		return err
	}
	if err := c.JoystickRight.check("JOYSTICK_RIGHT"); err != nil {
		return err
	}
	if c.BatteryDividerMeasured == 0 || c.BatteryDividerTotal == 0 {
		return fmt.Errorf("BATTERY_DIVIDER_MEASURED and BATTERY_DIVIDER_TOTAL must be non-zero")
	}
	if len(c.MatrixRowPins) > 0 != (len(c.MatrixColPins) > 0) {
		return fmt.Errorf("MATRIX_ROW_PINS and MATRIX_COL_PINS must be set together")
	}
	if c.ADCPollInterval == 0 {
		return fmt.Errorf("ADC_POLL_INTERVAL must be positive")
	}
	if c.MatrixScanInterval == 0 {
		return fmt.Errorf("MATRIX_SCAN_INTERVAL must be positive")
	}
	if c.MatrixDebounce/c.MatrixScanInterval > math.MaxUint16 {
		return fmt.Errorf("MATRIX_DEBOUNCE must be at most %d scans of MATRIX_SCAN_INTERVAL", math.MaxUint16)
	}
	if c.JoystickScrollLayer == 0 || c.JoystickScrollLayer < -1 {
		return fmt.Errorf("JOYSTICK_SCROLL_LAYER must be -1 or a layer >= 1, got %d", c.JoystickScrollLayer)
	}
	return nil
}

func (j JoystickConfig) check(prefix string) error {
	n := len(j.Transform)
	if n < 2 {
		return fmt.Errorf("%s_TRANSFORM needs at least 2 rows, got %d", prefix, n)
	}
	for i, row := range j.Transform {
		if len(row) != n {
			return fmt.Errorf("%s_TRANSFORM row %d has %d values, want %d", prefix, i, len(row), n)
		}
	}
	if len(j.Bias) != n {
		return fmt.Errorf("%s_BIAS has %d values, want %d", prefix, len(j.Bias), n)
	}
	if len(j.Threshold) != n {
		return fmt.Errorf("%s_THRESHOLD has %d values, want %d", prefix, len(j.Threshold), n)
	}
	return nil
}

func parseList(value string) []string {
	var out []string
	for _, f := range strings.Split(value, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func parseFloats(value string) ([]float32, error) {
	fields := parseList(value)
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}

func parseInt16s(value string) ([]int16, error) {
	fields := parseList(value)
	out := make([]int16, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 16)
		if err != nil {
			return nil, err
		}
		out[i] = int16(v)
	}
	return out, nil
}

// parseMatrix reads rows separated by ';' of comma-separated numbers.
func parseMatrix(value string) ([][]float32, error) {
	var out [][]float32
	for _, row := range strings.Split(value, ";") {
		if strings.TrimSpace(row) == "" {
			continue
		}
		vals, err := parseFloats(row)
		if err != nil {
			return nil, err
		}
		out = append(out, vals)
	}
	return out, nil
}

func parseMapping(value string) ([2]string, error) {
	var m [2]string
	fields := parseList(value)
	if len(fields) != 2 {
		return m, fmt.Errorf("want two fields, got %d", len(fields))
	}
	copy(m[:], fields)
	return m, nil
}

func parseTriLayer(value string) ([]uint8, error) {
	fields := parseList(value)
	if len(fields) == 0 {
		return nil, nil
	}
	if len(fields) != 3 {
		return nil, fmt.Errorf("want three layers, got %d", len(fields))
	}
	out := make([]uint8, 3)
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 5)
		if err != nil {
			return nil, err
		}
		out[i] = uint8(v)
	}
	return out, nil
}

func parseNonNegative(value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return v, nil
}

func parsePowerOfTwo(value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if v <= 0 || v&(v-1) != 0 {
		return 0, fmt.Errorf("must be a positive power of two")
	}
	return v, nil
}

func parseUint32(value string) (uint32, error) {
	v, err := strconv.ParseUint(value, 10, 32)
	return uint32(v), err
}

func parseAddr(value string) (uint16, error) {
	v, err := strconv.ParseUint(value, 0, 16)
	return uint16(v), err
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
