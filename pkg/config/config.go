package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/itohio/badgelab/pkg/access"
	"github.com/itohio/badgelab/pkg/thermistor"
)

// Config represents the application configuration shared by the status unit,
// the badge reader and the receiver.
type Config struct {
	Serial     SerialConfig     `yaml:"serial"`
	Thermistor ThermistorConfig `yaml:"thermistor"`
	Sampling   SamplingConfig   `yaml:"sampling"`
	Status     StatusConfig     `yaml:"status"`
	Access     AccessConfig     `yaml:"access"`
	Link       LinkConfig       `yaml:"link"`
	GPIO       GPIOConfig       `yaml:"gpio"`
	Reader     ReaderConfig     `yaml:"reader"`
	Receiver   ReceiverConfig   `yaml:"receiver"`
	Mock       MockConfig       `yaml:"mock"`
}

// SerialConfig contains serial port configuration of the sensor firmware.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// ThermistorConfig contains the divider and thermistor calibration constants.
type ThermistorConfig struct {
	SupplyVoltage     float64 `yaml:"supply_voltage"`
	SeriesResistance  float64 `yaml:"series_resistance"`
	NominalResistance float64 `yaml:"nominal_resistance"`
	NominalTempC      float64 `yaml:"nominal_temp_c"`
	Beta              float64 `yaml:"beta"`
}

// Params converts the section to estimator parameters.
func (t ThermistorConfig) Params() thermistor.Params {
	return thermistor.Params{
		SupplyVoltage:     t.SupplyVoltage,
		SeriesResistance:  t.SeriesResistance,
		NominalResistance: t.NominalResistance,
		NominalTempC:      t.NominalTempC,
		Beta:              t.Beta,
	}
}

// SamplingConfig contains measurement parameters.
type SamplingConfig struct {
	AverageSamples int     `yaml:"average_samples"` // Raw samples averaged per estimate
	WindowSeconds  float64 `yaml:"window_seconds"`  // Temperature history kept for display
	// BurstGap is the pause between raw samples that starts a new averaging
	// block. Negative disables re-alignment.
	BurstGap time.Duration `yaml:"burst_gap"`
}

// StatusConfig contains status unit behaviour.
type StatusConfig struct {
	DefaultMessage  string        `yaml:"default_message"`
	IdleMessage     string        `yaml:"idle_message"`
	MessageDuration time.Duration `yaml:"message_duration"`
	AlarmTempC      float64       `yaml:"alarm_temp_c"`
	LightThreshold  int           `yaml:"light_threshold"` // LED turns on below this raw light level
}

// AccessConfig contains the UID allow-list.
type AccessConfig struct {
	Allowed []AllowedUID `yaml:"allowed"`
}

// AllowedUID is one allow-list entry. Set either UID or UIDHash.
type AllowedUID struct {
	UID     string `yaml:"uid,omitempty"`
	UIDHash string `yaml:"uid_hash,omitempty"`
	Level   string `yaml:"level,omitempty"` // granted (default), limited or denied
}

// List builds the access list. Validate must have succeeded.
func (a AccessConfig) List() *access.List {
	entries := make([]access.Entry, 0, len(a.Allowed))
	for _, e := range a.Allowed {
		level, _ := access.ParseLevel(e.Level)
		entries = append(entries, access.Entry{UID: e.UID, Hash: e.UIDHash, Level: level})
	}
	return access.NewList(entries)
}

// LinkConfig contains the UDP broadcast link configuration.
type LinkConfig struct {
	BroadcastAddr string `yaml:"broadcast_addr"`
	ListenAddr    string `yaml:"listen_addr"`
}

// GPIOConfig names the host GPIO pins (periph.io names, e.g. GPIO17).
// Empty names disable the output.
type GPIOConfig struct {
	LED    string `yaml:"led"`
	Buzzer string `yaml:"buzzer"`
	Red    string `yaml:"red"`
	Green  string `yaml:"green"`
	Blue   string `yaml:"blue"`
	Dimmer string `yaml:"dimmer"` // PWM pin for the decor display backlight
}

// ReaderConfig contains NFC reader parameters.
type ReaderConfig struct {
	Device       string        `yaml:"device"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Debounce     time.Duration `yaml:"debounce"` // Minimum time between broadcasts of the same UID
}

// ReceiverConfig contains receiver journal parameters.
type ReceiverConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	History  int    `yaml:"history"`
}

// MockConfig contains mock sensor configuration.
type MockConfig struct {
	BaseTempC  float64       `yaml:"base_temp_c"` // Mean simulated temperature (C)
	SwingC     float64       `yaml:"swing_c"`     // Peak deviation from the mean (C)
	Period     time.Duration `yaml:"period"`      // Period of the temperature swing
	NoiseLevel float64       `yaml:"noise_level"` // ADC counts of noise
	Light      int           `yaml:"light"`       // Mean raw light level
	SampleRate time.Duration `yaml:"sample_rate"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	p := thermistor.DefaultParams()
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyACM0",
			BaudRate: 115200,
		},
		Thermistor: ThermistorConfig{
			SupplyVoltage:     p.SupplyVoltage,
			SeriesResistance:  p.SeriesResistance,
			NominalResistance: p.NominalResistance,
			NominalTempC:      p.NominalTempC,
			Beta:              p.Beta,
		},
		Sampling: SamplingConfig{
			AverageSamples: thermistor.DefaultSamples,
			WindowSeconds:  60,
			BurstGap:       50 * time.Millisecond,
		},
		Status: StatusConfig{
			DefaultMessage:  "SYSTEM STATUS",
			IdleMessage:     "WAITING...",
			MessageDuration: 5 * time.Second,
			AlarmTempC:      40,
			LightThreshold:  1000,
		},
		Access: AccessConfig{},
		Link: LinkConfig{
			BroadcastAddr: "255.255.255.255:4210",
			ListenAddr:    ":4210",
		},
		Reader: ReaderConfig{
			Device:       "/dev/ttyUSB0",
			PollInterval: 100 * time.Millisecond,
			Debounce:     time.Second,
		},
		Receiver: ReceiverConfig{
			HTTPAddr: ":8080",
			History:  100,
		},
		Mock: MockConfig{
			BaseTempC:  30,
			SwingC:     15,
			Period:     time.Minute,
			NoiseLevel: 4,
			Light:      1500,
			SampleRate: 5 * time.Millisecond,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks values that have no usable default.
func (c *Config) Validate() error {
	if err := c.Thermistor.Params().Validate(); err != nil {
		return fmt.Errorf("thermistor: %w", err)
	}
	for i, e := range c.Access.Allowed {
		if e.UID == "" && e.UIDHash == "" {
			return fmt.Errorf("access entry %d: uid or uid_hash required", i)
		}
		if e.UID != "" && e.UIDHash != "" {
			return fmt.Errorf("access entry %d: set only one of uid and uid_hash", i)
		}
		if _, err := access.ParseLevel(e.Level); err != nil {
			return fmt.Errorf("access entry %d: %w", i, err)
		}
	}
	if c.Sampling.AverageSamples < 0 {
		return errors.New("sampling: average_samples must not be negative")
	}
	return nil
}

// ensureDefaults replaces zero values that have no meaning. Load starts from
// Default, so keys absent from the file already hold defaults; zero is a
// valid setting for average_samples, alarm_temp_c and light_threshold and is
// kept.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Thermistor.SupplyVoltage == 0 {
		c.Thermistor.SupplyVoltage = def.Thermistor.SupplyVoltage
	}
	if c.Thermistor.SeriesResistance == 0 {
		c.Thermistor.SeriesResistance = def.Thermistor.SeriesResistance
	}
	if c.Thermistor.NominalResistance == 0 {
		c.Thermistor.NominalResistance = def.Thermistor.NominalResistance
	}
	if c.Thermistor.Beta == 0 {
		c.Thermistor.Beta = def.Thermistor.Beta
	}

	if c.Sampling.WindowSeconds == 0 {
		c.Sampling.WindowSeconds = def.Sampling.WindowSeconds
	}
	if c.Sampling.BurstGap == 0 {
		c.Sampling.BurstGap = def.Sampling.BurstGap
	}

	if c.Status.DefaultMessage == "" {
		c.Status.DefaultMessage = def.Status.DefaultMessage
	}
	if c.Status.IdleMessage == "" {
		c.Status.IdleMessage = def.Status.IdleMessage
	}
	if c.Status.MessageDuration == 0 {
		c.Status.MessageDuration = def.Status.MessageDuration
	}

	if c.Link.BroadcastAddr == "" {
		c.Link.BroadcastAddr = def.Link.BroadcastAddr
	}
	if c.Link.ListenAddr == "" {
		c.Link.ListenAddr = def.Link.ListenAddr
	}

	if c.Reader.Device == "" {
		c.Reader.Device = def.Reader.Device
	}
	if c.Reader.PollInterval == 0 {
		c.Reader.PollInterval = def.Reader.PollInterval
	}
	if c.Reader.Debounce == 0 {
		c.Reader.Debounce = def.Reader.Debounce
	}

	if c.Receiver.HTTPAddr == "" {
		c.Receiver.HTTPAddr = def.Receiver.HTTPAddr
	}
	if c.Receiver.History == 0 {
		c.Receiver.History = def.Receiver.History
	}

	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
	if c.Mock.Period == 0 {
		c.Mock.Period = def.Mock.Period
	}
}
