package config

import (
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// validator is the contract every config subsection implements to check
// that it is configured within its valid value range, mirroring the
// teacher's cmd/goProbe/config convention.
type validator interface {
	validate() error
}

// Config carries the exporter's full configuration record (spec §6/§13).
type Config struct {
	sync.Mutex `yaml:"-"`

	Exporter  ExporterConfig  `yaml:"exporter"`
	Collector CollectorConfig `yaml:"collector"`
	Timeouts  TimeoutsConfig  `yaml:"timeouts"`
	FlowTable FlowTableConfig `yaml:"flow_table"`
	Logging   LogConfig       `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ExporterConfig identifies this exporter on the wire.
type ExporterConfig struct {
	IP                  string `yaml:"ip"`
	Port                uint16 `yaml:"port"`
	ObservationDomainID uint32 `yaml:"observation_domain_id"`
}

// CollectorConfig identifies the remote IPFIX collector.
type CollectorConfig struct {
	IP   string `yaml:"ip"`
	Port uint16 `yaml:"port"`
}

// TimeoutsConfig holds the Expiration Scanner's timing parameters.
type TimeoutsConfig struct {
	IdleMs       int64 `yaml:"idle_ms"`
	ActiveMs     int64 `yaml:"active_ms"`
	ScanPeriodMs int64 `yaml:"scan_period_ms"`
}

// FlowTableConfig sizes the pre-allocated flow table.
type FlowTableConfig struct {
	Capacity int `yaml:"capacity"`
}

// LogConfig mirrors pkg/logging's configuration surface.
type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

// MetricsConfig controls the optional Prometheus HTTP listener.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// New returns a Config populated with spec-mandated defaults (spec §6).
func New() *Config {
	return &Config{
		Exporter: ExporterConfig{
			ObservationDomainID: DefaultObservationDomainID,
		},
		Collector: CollectorConfig{
			Port: DefaultCollectorPort,
		},
		Timeouts: TimeoutsConfig{
			IdleMs:       DefaultIdleTimeoutMs,
			ActiveMs:     DefaultActiveTimeoutMs,
			ScanPeriodMs: DefaultScanPeriodMs,
		},
		FlowTable: FlowTableConfig{
			Capacity: DefaultFlowTableCapacity,
		},
		Logging: LogConfig{
			Level:    DefaultLogLevel,
			Encoding: DefaultLogEncoding,
		},
	}
}

func (e ExporterConfig) validate() error {
	if e.IP == "" || net.ParseIP(e.IP) == nil {
		return fmt.Errorf("exporter: invalid or missing IP %q", e.IP)
	}
	if e.Port == 0 {
		return fmt.Errorf("exporter: port must be non-zero")
	}
	return nil
}

func (c CollectorConfig) validate() error {
	if c.IP == "" || net.ParseIP(c.IP) == nil {
		return fmt.Errorf("collector: invalid or missing IP %q", c.IP)
	}
	if c.Port == 0 {
		return fmt.Errorf("collector: port must be non-zero")
	}
	return nil
}

func (t TimeoutsConfig) validate() error {
	if t.IdleMs <= 0 || t.ActiveMs <= 0 || t.ScanPeriodMs <= 0 {
		return fmt.Errorf("timeouts: idle_ms, active_ms and scan_period_ms must all be positive")
	}
	if t.ActiveMs <= t.IdleMs {
		return fmt.Errorf("timeouts: active_ms (%d) should exceed idle_ms (%d) or active rotation will fire before idle expiry ever has a chance to", t.ActiveMs, t.IdleMs)
	}
	return nil
}

func (f FlowTableConfig) validate() error {
	if f.Capacity <= 0 {
		return fmt.Errorf("flow_table: capacity must be positive")
	}
	return nil
}

func (l LogConfig) validate() error {
	switch l.Encoding {
	case "json", "logfmt", "plain", "":
		return nil
	default:
		return fmt.Errorf("logging: unsupported encoding %q", l.Encoding)
	}
}

func (m MetricsConfig) validate() error {
	return nil
}

// Validate runs every subsection's validator.
func (c *Config) Validate() error {
	for _, section := range []validator{
		c.Exporter,
		c.Collector,
		c.Timeouts,
		c.FlowTable,
		c.Logging,
		c.Metrics,
	} {
		if err := section.validate(); err != nil {
			return err
		}
	}
	return nil
}

// ParseFile reads and validates a configuration file at path.
func ParseFile(path string) (*Config, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	return Parse(fd)
}

// Parse reads and validates a configuration from src, starting from
// defaults so unset fields keep their spec-mandated values.
func Parse(src io.Reader) (*Config, error) {
	cfg := New()
	if err := yaml.NewDecoder(src).Decode(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
