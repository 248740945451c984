package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"scanforge/internal/config"
	"scanforge/internal/model"
	"scanforge/internal/orchestrator"
	"scanforge/internal/portscan"
	"scanforge/internal/qos"
	"scanforge/internal/report"
	"scanforge/internal/sigdb"
)

// scanOpts holds the flags shared by `scan` and `scan-file`.
type scanOpts struct {
	ports       string
	preset      string
	scanTypes   []string
	concurrency int
	fingerprint bool
	outJSON     string
	outCSV      string
}

func (o *scanOpts) resolvePorts() (model.PortSet, error) {
	expr := o.ports
	if expr == "" {
		expr = o.preset
	}
	if expr == "" {
		expr = "common"
	}
	return model.ParsePortExpr(expr)
}

func (o *scanOpts) resolveScanTypes() ([]model.ScanType, error) {
	if len(o.scanTypes) == 0 {
		return []model.ScanType{model.TcpConnect}, nil
	}
	var out []model.ScanType
	for _, s := range o.scanTypes {
		switch s {
		case "tcp", "tcp_connect", "connect":
			out = append(out, model.TcpConnect)
		case "syn", "tcp_syn":
			out = append(out, model.TcpSyn)
		case "udp":
			out = append(out, model.Udp)
		default:
			return nil, fmt.Errorf("unrecognized --scan-type %q", s)
		}
	}
	return out, nil
}

func buildOrchestratorConfig(cfg *config.Config, o *scanOpts) orchestrator.Config {
	s := cfg.Scanner
	concurrency := o.concurrency
	if concurrency <= 0 {
		concurrency = s.MaxConcurrentScans
	}

	var sig *sigdb.Database
	if o.fingerprint {
		sig = sigdb.NewBuiltinDatabase()
	}

	return orchestrator.Config{
		DiscoveryEnabled: s.HostDiscovery.Enabled,
		DiscoveryMethod:  s.HostDiscovery.Method,
		DiscoveryTimeout: time.Duration(s.HostDiscovery.TimeoutMs) * time.Millisecond,
		DiscoveryRetries: s.HostDiscovery.Retries,

		Concurrency: concurrency,

		TCPConnectEnabled: s.TcpConnect.Enabled,
		TCPConnect: portscan.TCPConnectConfig{
			Timeout:    time.Duration(s.TcpConnect.TimeoutMs) * time.Millisecond,
			Retries:    s.TcpConnect.Retries,
			RetryDelay: time.Duration(s.TcpConnect.RetryDelayMs) * time.Millisecond,
			GrabBanner: true,
		},
		TCPSynEnabled: s.TcpSyn.Enabled,
		TCPSyn: portscan.TCPSynConfig{
			Timeout:    time.Duration(s.TcpSyn.TimeoutMs) * time.Millisecond,
			Retries:    s.TcpSyn.Retries,
			RetryDelay: time.Duration(s.TcpSyn.RetryDelayMs) * time.Millisecond,
		},
		UDPEnabled: s.Udp.Enabled,
		UDP: portscan.UDPConfig{
			Timeout:    time.Duration(s.Udp.TimeoutMs) * time.Millisecond,
			Retries:    s.Udp.Retries,
			RetryDelay: time.Duration(s.Udp.RetryDelayMs) * time.Millisecond,
		},

		Throttle: qos.ThrottleConfig{
			Enabled:              s.AdaptiveThrottling,
			InitialPPS:           s.InitialPps,
			MinPPS:               s.MinPps,
			MaxPPS:               s.MaxPps,
			SuccessThreshold:     cfg.Throttling.SuccessThreshold,
			FailureThreshold:     cfg.Throttling.FailureThreshold,
			RateIncreaseFactor:   cfg.Throttling.RateIncreaseFactor,
			RateDecreaseFactor:   cfg.Throttling.RateDecreaseFactor,
			WindowSize:           cfg.Throttling.WindowSize,
			AdjustmentIntervalMs: cfg.Throttling.AdjustmentIntervalMs,
		},

		Fingerprint: o.fingerprint,
		SigDB:       sig,

		Logger: log,
	}
}

// runScan wires config → orchestrator → report for one or many targets,
// then prints to the console and writes any requested export files.
func runScan(targets []model.Target, o *scanOpts) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ports, err := o.resolvePorts()
	if err != nil {
		return err
	}
	scanTypes, err := o.resolveScanTypes()
	if err != nil {
		return err
	}

	orch := orchestrator.New(buildOrchestratorConfig(cfg, o))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	results := orch.ScanMultiple(ctx, targets, ports, scanTypes)

	builder := report.NewBuilder("scanforge-"+time.Now().UTC().Format("20060102T150405Z"), version, model.ScanRequest{
		Targets:     targets,
		Ports:       ports,
		ScanTypes:   scanTypes,
		Fingerprint: o.fingerprint,
		Concurrency: o.concurrency,
	})
	builder.AddAll(results)
	r := builder.Build(orch.Snapshot())

	if err := report.PrintConsole(r); err != nil {
		return err
	}
	if o.outJSON != "" {
		if err := report.SaveJSON(o.outJSON, r); err != nil {
			return err
		}
	}
	if o.outCSV != "" {
		if err := report.SaveCSV(o.outCSV, r); err != nil {
			return err
		}
	}
	return nil
}

func addScanFlags(f *pflag.FlagSet, o *scanOpts) {
	f.StringVar(&o.ports, "ports", "", "port expression, e.g. 80,443,1000-2000")
	f.StringVar(&o.preset, "preset", "", "named port preset (common, web, mail, database, all)")
	f.StringArrayVar(&o.scanTypes, "scan-type", nil, "scan technique (tcp, syn, udp); repeatable, default tcp")
	f.IntVar(&o.concurrency, "concurrency", 0, "per-target port parallelism (0 = config default)")
	f.BoolVar(&o.fingerprint, "fingerprint", false, "run OS fingerprinting and signature matching on open ports")
	f.StringVar(&o.outJSON, "oj", "", "write the report as JSON to this path")
	f.StringVar(&o.outCSV, "oc", "", "write the report as CSV to this path")
}
