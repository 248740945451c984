package config

import (
	"strings"

	"github.com/spf13/viper"

	"scanforge/internal/errs"
)

// Loader wraps a viper instance pre-wired with env binding and defaults,
// mirroring the teacher's ConfigLoader shape.
type Loader struct {
	configPath string
	envPrefix  string
	v          *viper.Viper
}

// NewLoader builds a Loader that looks for a config file named
// "scanforge.yaml" under dir and binds SCANFORGE_-prefixed env vars.
func NewLoader(dir string) *Loader {
	return &Loader{
		configPath: dir,
		envPrefix:  "SCANFORGE",
		v:          viper.New(),
	}
}

// Load reads the config file (if present), layers env vars and defaults,
// and validates the result. A missing file is not an error — defaults
// plus env vars are enough to run — but a malformed file or a value that
// fails validation is Config/Critical per §6.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigType("yaml")
	l.v.SetConfigName("scanforge")
	l.v.AddConfigPath(l.configPath)

	l.v.SetEnvPrefix(l.envPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(l.v)

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errs.Wrap(errs.Config, "read config file", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, errs.Wrap(errs.Config, "unmarshal config", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigFilePath returns the file viper actually used, empty if none was
// found (defaults-only run).
func (l *Loader) ConfigFilePath() string {
	return l.v.ConfigFileUsed()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)

	v.SetDefault("scanner.default_timeout_ms", 2000)
	v.SetDefault("scanner.max_concurrent_scans", 100)
	v.SetDefault("scanner.adaptive_throttling", true)
	v.SetDefault("scanner.initial_pps", 100)
	v.SetDefault("scanner.min_pps", 10)
	v.SetDefault("scanner.max_pps", 1000)

	v.SetDefault("scanner.host_discovery.enabled", true)
	v.SetDefault("scanner.host_discovery.method", "tcp")
	v.SetDefault("scanner.host_discovery.timeout_ms", 1000)
	v.SetDefault("scanner.host_discovery.retries", 1)

	for _, kind := range []string{"tcp_connect", "tcp_syn", "udp"} {
		v.SetDefault("scanner."+kind+".enabled", true)
		v.SetDefault("scanner."+kind+".timeout_ms", 1000)
		v.SetDefault("scanner."+kind+".retries", 1)
		v.SetDefault("scanner."+kind+".retry_delay_ms", 100)
	}

	v.SetDefault("throttling.success_threshold", 0.9)
	v.SetDefault("throttling.failure_threshold", 0.5)
	v.SetDefault("throttling.rate_increase_factor", 1.2)
	v.SetDefault("throttling.rate_decrease_factor", 0.5)
	v.SetDefault("throttling.window_size", 50)
	v.SetDefault("throttling.adjustment_interval_ms", 1000)
}
