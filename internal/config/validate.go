package config

import "scanforge/internal/errs"

var validLevels = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
var validFormats = map[string]bool{"text": true, "json": true}

// Validate checks the fully-merged config against §6's table. Any
// failure is Config/Critical — the process should not start on a bad
// config rather than limp along with a half-valid one.
func Validate(c *Config) error {
	if !validLevels[c.Logging.Level] {
		return errs.New(errs.Config, "logging.level must be one of trace,debug,info,warn,error, got "+c.Logging.Level)
	}
	if !validFormats[c.Logging.Format] {
		return errs.New(errs.Config, "logging.format must be text or json, got "+c.Logging.Format)
	}

	s := c.Scanner
	if s.DefaultTimeoutMs <= 0 {
		return errs.New(errs.Config, "scanner.default_timeout_ms must be positive")
	}
	if s.MaxConcurrentScans <= 0 {
		return errs.New(errs.Config, "scanner.max_concurrent_scans must be positive")
	}
	if s.MinPps <= 0 || s.MaxPps <= s.MinPps {
		return errs.New(errs.Config, "scanner.min_pps/max_pps must satisfy 0 < min_pps < max_pps")
	}
	if s.InitialPps < s.MinPps || s.InitialPps > s.MaxPps {
		return errs.New(errs.Config, "scanner.initial_pps must be within [min_pps, max_pps]")
	}

	for name, kc := range map[string]ScanKindConfig{"tcp_connect": s.TcpConnect, "tcp_syn": s.TcpSyn, "udp": s.Udp} {
		if kc.Enabled && kc.TimeoutMs <= 0 {
			return errs.New(errs.Config, "scanner."+name+".timeout_ms must be positive when enabled")
		}
	}

	t := c.Throttling
	if t.SuccessThreshold < 0 || t.SuccessThreshold > 1 || t.FailureThreshold < 0 || t.FailureThreshold > 1 {
		return errs.New(errs.Config, "throttling.success_threshold and failure_threshold must be in [0,1]")
	}
	if t.SuccessThreshold <= t.FailureThreshold {
		return errs.New(errs.Config, "throttling.success_threshold must be greater than failure_threshold")
	}
	if t.WindowSize <= 0 {
		return errs.New(errs.Config, "throttling.window_size must be positive")
	}
	if t.AdjustmentIntervalMs <= 0 {
		return errs.New(errs.Config, "throttling.adjustment_interval_ms must be positive")
	}
	if t.RateIncreaseFactor <= 1 {
		return errs.New(errs.Config, "throttling.rate_increase_factor must be greater than 1")
	}
	if t.RateDecreaseFactor <= 0 || t.RateDecreaseFactor >= 1 {
		return errs.New(errs.Config, "throttling.rate_decrease_factor must be in (0,1)")
	}

	return nil
}
