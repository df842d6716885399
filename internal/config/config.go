// Package config loads the netvigil configuration document. The file is
// read once at startup through viper; every optional key has a registered
// default, and a missing file can be repaired by writing a template for the
// operator to edit.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrMissing indicates no configuration file was found at any searched path.
// The caller is expected to write a template and exit with guidance.
var ErrMissing = errors.New("configuration file not found")

// Config is the complete, typed configuration.
type Config struct {
	Bark       Bark              `mapstructure:"bark"`
	Scan       Scan              `mapstructure:"scan"`
	Devices    map[string]string `mapstructure:"devices"`
	Ignore     []string          `mapstructure:"ignore"`
	Priorities map[string]string `mapstructure:"priorities"`
	Journal    Journal           `mapstructure:"journal"`
	Metrics    Metrics           `mapstructure:"metrics"`
}

// Bark configures push delivery. An empty Key disables delivery entirely;
// scanning and logging continue.
type Bark struct {
	Key     string `mapstructure:"key"`
	BaseURL string `mapstructure:"base_url"`
}

// Scan configures the address source and cycle cadence.
type Scan struct {
	// Interface is the network interface to scan from. Empty means
	// autodetect the first usable non-loopback interface.
	Interface string `mapstructure:"interface"`
	// Subnets are the CIDR prefixes to sweep. Empty means the interface's
	// own IPv4 prefix.
	Subnets []string `mapstructure:"subnets"`
	// Interval is the target time between cycle starts.
	Interval time.Duration `mapstructure:"interval"`
	// Timeout bounds each subnet sweep.
	Timeout time.Duration `mapstructure:"timeout"`
	// MDNS enables mDNS hostname hints for journal and log enrichment.
	MDNS bool `mapstructure:"mdns"`
}

// Journal configures the optional SQLite sightings journal. An empty Path
// disables it.
type Journal struct {
	Path string `mapstructure:"path"`
}

// Metrics configures the optional Prometheus listener. An empty Listen
// address disables it.
type Metrics struct {
	Listen string `mapstructure:"listen"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bark.base_url", "https://api.day.app")
	v.SetDefault("scan.interval", "60s")
	v.SetDefault("scan.timeout", "30s")
	v.SetDefault("scan.mdns", false)
}

// Load reads the configuration from path, or when path is empty from
// netvigil.{yaml,json,toml} in the working directory or /etc/netvigil.
// A missing file yields ErrMissing; a file that exists but does not parse
// or decode yields a fatal error carrying the parser's detail.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("netvigil")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/netvigil")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, ErrMissing
		}
		return nil, fmt.Errorf("parse config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Scan.Interval <= 0 {
		return fmt.Errorf("scan.interval must be positive, got %s", c.Scan.Interval)
	}
	if c.Scan.Timeout <= 0 {
		return fmt.Errorf("scan.timeout must be positive, got %s", c.Scan.Timeout)
	}
	if c.Bark.BaseURL == "" {
		return errors.New("bark.base_url must not be empty")
	}
	return nil
}

// template mirrors Config with yaml tags and example values for the
// generated starter file.
type template struct {
	Bark struct {
		Key     string `yaml:"key"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"bark"`
	Scan struct {
		Interface string   `yaml:"interface"`
		Subnets   []string `yaml:"subnets"`
		Interval  string   `yaml:"interval"`
		Timeout   string   `yaml:"timeout"`
		MDNS      bool     `yaml:"mdns"`
	} `yaml:"scan"`
	Devices    map[string]string `yaml:"devices"`
	Ignore     []string          `yaml:"ignore"`
	Priorities map[string]string `yaml:"priorities"`
	Journal    struct {
		Path string `yaml:"path"`
	} `yaml:"journal"`
	Metrics struct {
		Listen string `yaml:"listen"`
	} `yaml:"metrics"`
}

const templateHeader = `# netvigil configuration.
# Edit the values below, then start netvigil again.
#
# bark.key is your Bark device key; leave empty to run without push delivery.
# priorities accepts: silent, normal, vibrate, active, timeSensitive.
`

// WriteTemplate writes a commented starter configuration to path. It refuses
// to overwrite an existing file.
func WriteTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("refusing to overwrite existing %s", path)
	}

	var t template
	t.Bark.Key = "your_bark_device_key"
	t.Bark.BaseURL = "https://api.day.app"
	t.Scan.Interface = "eth0"
	t.Scan.Subnets = []string{"192.168.1.0/24"}
	t.Scan.Interval = "60s"
	t.Scan.Timeout = "30s"
	t.Devices = map[string]string{
		"AA:BB:CC:DD:EE:FF": "iPhone 12",
		"11:22:33:44:55:66": "MacBook Pro",
	}
	t.Ignore = []string{"FF:FF:FF:FF:FF:FF"}
	t.Priorities = map[string]string{
		"AA:BB:CC:DD:EE:FF": "vibrate",
		"11:22:33:44:55:66": "silent",
	}

	data, err := yaml.Marshal(&t)
	if err != nil {
		return fmt.Errorf("marshal template: %w", err)
	}
	return os.WriteFile(path, append([]byte(templateHeader), data...), 0o644)
}
