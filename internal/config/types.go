// Package config is the viper-backed configuration record for the scan
// core: logging, scanner defaults, per-scan-kind timing, and the
// adaptive-throttle bands. Trimmed to the sections the core itself
// consumes — no HTTP server, database, or middleware surface.
package config

// Config is the root configuration record, matching the external
// interface table section by section.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	Scanner   ScannerConfig   `yaml:"scanner" mapstructure:"scanner"`
	Throttling ThrottlingConfig `yaml:"throttling" mapstructure:"throttling"`
}

// LoggingConfig controls the structured logger's verbosity, encoding, and
// (optional) file rotation. level/format are the spec's external-interface
// fields; the rest are ambient knobs in the same section, defaulted to a
// stderr-only logger when unset.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // trace/debug/info/warn/error
	Format string `yaml:"format" mapstructure:"format"` // text/json

	FilePath   string `yaml:"file_path" mapstructure:"file_path"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
}

// ScannerConfig holds the generic scan knobs plus one sub-section per
// scan kind.
type ScannerConfig struct {
	DefaultTimeoutMs    int  `yaml:"default_timeout_ms" mapstructure:"default_timeout_ms"`
	MaxConcurrentScans  int  `yaml:"max_concurrent_scans" mapstructure:"max_concurrent_scans"`
	AdaptiveThrottling  bool `yaml:"adaptive_throttling" mapstructure:"adaptive_throttling"`
	InitialPps          int  `yaml:"initial_pps" mapstructure:"initial_pps"`
	MinPps              int  `yaml:"min_pps" mapstructure:"min_pps"`
	MaxPps              int  `yaml:"max_pps" mapstructure:"max_pps"`

	HostDiscovery HostDiscoveryConfig `yaml:"host_discovery" mapstructure:"host_discovery"`
	TcpConnect    ScanKindConfig      `yaml:"tcp_connect" mapstructure:"tcp_connect"`
	TcpSyn        ScanKindConfig      `yaml:"tcp_syn" mapstructure:"tcp_syn"`
	Udp           ScanKindConfig      `yaml:"udp" mapstructure:"udp"`
}

// HostDiscoveryConfig gates §4.C liveness probing.
type HostDiscoveryConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	Method    string `yaml:"method" mapstructure:"method"` // tcp/icmp/udp/arp
	TimeoutMs int    `yaml:"timeout_ms" mapstructure:"timeout_ms"`
	Retries   int    `yaml:"retries" mapstructure:"retries"`
}

// ScanKindConfig is the shared shape for tcp_connect/tcp_syn/udp.
type ScanKindConfig struct {
	Enabled       bool `yaml:"enabled" mapstructure:"enabled"`
	TimeoutMs     int  `yaml:"timeout_ms" mapstructure:"timeout_ms"`
	Retries       int  `yaml:"retries" mapstructure:"retries"`
	RetryDelayMs  int  `yaml:"retry_delay_ms" mapstructure:"retry_delay_ms"`
}

// ThrottlingConfig drives the §4.B sliding-window throttle.
type ThrottlingConfig struct {
	SuccessThreshold    float64 `yaml:"success_threshold" mapstructure:"success_threshold"`
	FailureThreshold    float64 `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	RateIncreaseFactor  float64 `yaml:"rate_increase_factor" mapstructure:"rate_increase_factor"`
	RateDecreaseFactor  float64 `yaml:"rate_decrease_factor" mapstructure:"rate_decrease_factor"`
	WindowSize          int     `yaml:"window_size" mapstructure:"window_size"`
	AdjustmentIntervalMs int    `yaml:"adjustment_interval_ms" mapstructure:"adjustment_interval_ms"`
}
