// Package orchestrator runs the per-target pipeline: discover, scan,
// fingerprint, aggregate. Throttle feedback covers port scanning only:
// after a scan type finishes, each port result gets one throttle Wait and
// one Record. Discovery and fingerprinting probes do not go through the
// throttle, and scanners do not wait on it before sending a probe.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"scanforge/internal/discovery"
	"scanforge/internal/fingerprint"
	"scanforge/internal/matcher"
	"scanforge/internal/model"
	"scanforge/internal/portscan"
	"scanforge/internal/qos"
	"scanforge/internal/sigdb"
)

const maxBatchConcurrency = 10

// Config wires the tuning knobs §6 describes into one record.
type Config struct {
	DiscoveryEnabled bool
	DiscoveryMethod  string
	DiscoveryTimeout time.Duration
	DiscoveryRetries int

	Concurrency int // max_concurrent_scans

	TCPConnect portscan.TCPConnectConfig
	TCPConnectEnabled bool
	TCPSyn     portscan.TCPSynConfig
	TCPSynEnabled bool
	UDP        portscan.UDPConfig
	UDPEnabled bool

	Throttle qos.ThrottleConfig

	Fingerprint    bool
	SigDB          *sigdb.Database // nil disables matching even if Fingerprint is set
	MatchThreshold float64

	Logger *logrus.Logger // optional; nil disables orchestrator-level logging
}

// Orchestrator owns the per-run throttle. It keeps no aggregation buffer:
// ScanOne and ScanMultiple return their results, and the caller assembles
// the ScanReport (report.Builder).
type Orchestrator struct {
	cfg      Config
	throttle *qos.Throttle
}

func New(cfg Config) *Orchestrator {
	return &Orchestrator{cfg: cfg, throttle: qos.NewThrottle(cfg.Throttle)}
}

// ScanOne runs discovery → ordered scan types → fingerprint → aggregate
// for a single target.
func (o *Orchestrator) ScanOne(ctx context.Context, target string, ports model.PortSet, scanTypes []model.ScanType) model.CompleteScanResult {
	start := time.Now()
	result := model.CompleteScanResult{Target: target}

	hostStatus, method := o.discover(ctx, target)
	result.HostStatus = hostStatus
	result.Method = method

	if hostStatus == model.Down {
		// Do not abort: the user may still want port results for a host
		// discovery couldn't confirm as up. Keep scanning, just warn.
		o.warnf("host %s appears to be down, continuing with scan anyway", target)
	}

	var portResults []model.PortResult
	for _, st := range model.OrderedScanTypes {
		if !containsScanType(scanTypes, st) {
			continue
		}
		results, err := o.scanType(ctx, st, target, ports)
		if err != nil {
			result.Err = err
			result.Duration = time.Since(start)
			return result
		}
		portResults = append(portResults, results...)
	}
	result.PortResults = sortByPort(portResults)

	if o.cfg.Fingerprint {
		fp := fingerprint.Collect(ctx, target, openPorts(result.PortResults), o.cfg.Fingerprint)
		result.Fingerprint = fp
		if fp != nil && o.cfg.SigDB != nil {
			result.OsMatches = matcher.Match(fp, o.cfg.SigDB, o.cfg.MatchThreshold)
		}
	}

	result.Duration = time.Since(start)
	return result
}

// ScanMultiple runs ScanOne over targets, capped at maxBatchConcurrency
// concurrently, preserving input order in the returned slice.
func (o *Orchestrator) ScanMultiple(ctx context.Context, targets []model.Target, ports model.PortSet, scanTypes []model.ScanType) []model.CompleteScanResult {
	results := make([]model.CompleteScanResult, len(targets))
	sem := make(chan struct{}, maxBatchConcurrency)
	var wg sync.WaitGroup

	for i, t := range targets {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, target model.Target) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = o.ScanOne(ctx, target.String(), ports, scanTypes)
		}(i, t)
	}

	wg.Wait()
	return results
}

func (o *Orchestrator) discover(ctx context.Context, target string) (model.HostStatus, string) {
	if !o.cfg.DiscoveryEnabled {
		return model.Unknown, "disabled"
	}
	res := discovery.DiscoverOne(ctx, target, o.cfg.DiscoveryMethod, o.cfg.DiscoveryTimeout, o.cfg.DiscoveryRetries)
	return res.Status, res.Method
}

// scanType runs one scan kind across ports, returning a PermissionDenied
// error (without a partial result) when the kind needs privilege the
// process doesn't have — currently only TcpSyn, via CheckPrivilege.
func (o *Orchestrator) scanType(ctx context.Context, st model.ScanType, target string, ports model.PortSet) ([]model.PortResult, error) {
	var scanner portscan.Scanner
	switch st {
	case model.TcpConnect:
		if !o.cfg.TCPConnectEnabled {
			return nil, nil
		}
		scanner = portscan.NewTCPConnectScanner(o.cfg.TCPConnect)
	case model.TcpSyn:
		if !o.cfg.TCPSynEnabled {
			return nil, nil
		}
		synScanner := portscan.NewTCPSynScanner(o.cfg.TCPSyn)
		if err := synScanner.CheckPrivilege(); err != nil {
			return nil, err
		}
		scanner = synScanner
	case model.Udp:
		if !o.cfg.UDPEnabled {
			return nil, nil
		}
		scanner = portscan.NewUDPScanner(o.cfg.UDP)
	default:
		return nil, nil
	}

	results := scanner.ScanPorts(ctx, target, ports, o.cfg.Concurrency)
	for _, r := range results {
		o.throttle.Wait()
		if r.Status == model.Open || r.Status == model.Closed {
			o.throttle.Record(qos.Success)
		} else {
			o.throttle.Record(qos.Failure)
		}
	}
	return results, nil
}

// warnf logs a warning through the configured logger, if any. The
// orchestrator stays usable with a nil Logger for callers (like tests)
// that don't care about log output.
func (o *Orchestrator) warnf(format string, args ...interface{}) {
	if o.cfg.Logger != nil {
		o.cfg.Logger.Warnf(format, args...)
	}
}

// Snapshot exposes the throttle's cumulative counters to the report builder.
func (o *Orchestrator) Snapshot() qos.Snapshot {
	return o.throttle.Snapshot()
}

func containsScanType(list []model.ScanType, st model.ScanType) bool {
	for _, s := range list {
		if s == st {
			return true
		}
	}
	return false
}

func openPorts(results []model.PortResult) []int {
	var ports []int
	for _, r := range results {
		if r.Status == model.Open {
			ports = append(ports, r.Port)
		}
	}
	return ports
}

func sortByPort(results []model.PortResult) []model.PortResult {
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j].Port < results[j-1].Port; j-- {
			results[j], results[j-1] = results[j-1], results[j]
		}
	}
	return results
}
