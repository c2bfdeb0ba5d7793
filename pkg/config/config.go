// Package config loads the LBMS node configuration file
package config

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ZentaChain/lbms-node/pkg/api"
	"github.com/ZentaChain/lbms-node/pkg/radio"
)

const MaxTxID = 0xFFFF

var (
	ErrMissingRadioPort = errors.New("radio port is required")
	ErrInvalidBaud      = errors.New("baud rate must be positive")
	ErrMissingDictDir   = errors.New("dictionary directory is required")
	ErrMissingPadDir    = errors.New("pad directory is required")
)

// Config is the node configuration file
type Config struct {
	Radio      RadioConfig      `yaml:"radio"`
	Node       NodeConfig       `yaml:"node"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Pad        PadConfig        `yaml:"pad"`
	Storage    StorageConfig    `yaml:"storage"`
	API        APIConfig        `yaml:"api"`
	Log        LogConfig        `yaml:"log"`
}

// RadioConfig selects the transceiver
type RadioConfig struct {
	Port    string        `yaml:"port"`
	Baud    int           `yaml:"baud"`
	Timeout time.Duration `yaml:"timeout"`
	// DryRun replaces the serial transceiver with an in-memory one
	DryRun bool `yaml:"dry_run"`
}

// NodeConfig holds the message settings
type NodeConfig struct {
	TxID                 int           `yaml:"tx_id"`
	RespondToAck         bool          `yaml:"respond_to_ack"`
	RespondToRebroadcast bool          `yaml:"respond_to_rebroadcast"`
	PollInterval         time.Duration `yaml:"poll_interval"`
	DedupWindow          time.Duration `yaml:"dedup_window"`
}

type DictionaryConfig struct {
	Dir string `yaml:"dir"`
}

// PadConfig locates the one-time pad. File and Meta default to the
// standard names inside Dir.
type PadConfig struct {
	Dir  string `yaml:"dir"`
	File string `yaml:"file"`
	Meta string `yaml:"meta"`
}

// StorageConfig locates the message history. An empty path disables it.
type StorageConfig struct {
	Path string `yaml:"path"`
}

type APIConfig struct {
	Enabled    bool `yaml:"enabled"`
	api.Config `yaml:",inline"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Radio: RadioConfig{
			Baud:    115200,
			Timeout: radio.DefaultResponseTimeout,
		},
		Node: NodeConfig{
			RespondToAck:         true,
			RespondToRebroadcast: true,
			PollInterval:         time.Second,
			DedupWindow:          5 * time.Minute,
		},
		Dictionary: DictionaryConfig{Dir: "Dictionaries"},
		Pad:        PadConfig{Dir: "Pad"},
		Storage:    StorageConfig{Path: "lbms.db"},
		API: APIConfig{
			Enabled: true,
			Config:  *api.DefaultConfig(),
		},
		Log: DefaultLogConfig(),
	}
}

// Load reads a YAML file over the defaults and validates the result
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the configuration. A transmitter ID outside 0-0xFFFF is
// replaced by a random one rather than rejected.
func (c *Config) Validate() error {
	if c.Radio.Port == "" && !c.Radio.DryRun {
		return ErrMissingRadioPort
	}
	if c.Radio.Baud <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBaud, c.Radio.Baud)
	}
	if c.Radio.Timeout <= 0 {
		c.Radio.Timeout = radio.DefaultResponseTimeout
	}

	if c.Node.TxID < 0 || c.Node.TxID > MaxTxID {
		old := c.Node.TxID
		c.Node.TxID = NewTxID()
		logrus.WithFields(logrus.Fields{
			"configured": old,
			"assigned":   fmt.Sprintf("%04X", c.Node.TxID),
		}).Warn("Invalid transmitter ID replaced")
	}

	if c.Dictionary.Dir == "" {
		return ErrMissingDictDir
	}
	if c.Pad.Dir == "" && c.Pad.Meta == "" {
		return ErrMissingPadDir
	}

	return nil
}

// TxID returns the transmitter ID. Call Validate first.
func (c *Config) TxID() uint16 {
	return uint16(c.Node.TxID)
}

// NewTxID returns a random transmitter ID
func NewTxID() int {
	return rand.Intn(MaxTxID + 1)
}
