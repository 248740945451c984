package orchestrator

import (
	"context"
	"testing"
	"time"

	"scanforge/internal/model"
	"scanforge/internal/portscan"
	"scanforge/internal/qos"
)

func TestScanOneReportsUnknownWhenDiscoveryDisabled(t *testing.T) {
	o := New(Config{
		DiscoveryEnabled: false,
		Concurrency:      4,
		Throttle:         qos.ThrottleConfig{Enabled: false, InitialPPS: 100, MinPPS: 10, MaxPPS: 1000, SuccessThreshold: 0.9, FailureThreshold: 0.5, WindowSize: 10, AdjustmentIntervalMs: 1000, RateIncreaseFactor: 1.2, RateDecreaseFactor: 0.5},
	})

	ports, err := model.ParsePortExpr("80")
	if err != nil {
		t.Fatalf("ParsePortExpr: %v", err)
	}

	result := o.ScanOne(context.Background(), "127.0.0.1", ports, []model.ScanType{model.TcpConnect})

	if result.HostStatus != model.Unknown {
		t.Errorf("expected Unknown host status with discovery disabled, got %v", result.HostStatus)
	}
	if result.Method != "disabled" {
		t.Errorf("expected discovery method %q, got %q", "disabled", result.Method)
	}
}

func TestScanOneContinuesScanningOnDownHost(t *testing.T) {
	o := New(Config{
		DiscoveryEnabled: true,
		DiscoveryMethod:  "tcp",
		DiscoveryTimeout: 50 * time.Millisecond,
		Concurrency:      4,
		TCPConnectEnabled: true,
		TCPConnect:        portscan.TCPConnectConfig{Timeout: 50 * time.Millisecond},
		Throttle:          qos.ThrottleConfig{Enabled: false, InitialPPS: 100, MinPPS: 10, MaxPPS: 1000, SuccessThreshold: 0.9, FailureThreshold: 0.5, WindowSize: 10, AdjustmentIntervalMs: 1000, RateIncreaseFactor: 1.2, RateDecreaseFactor: 0.5},
	})

	ports, _ := model.ParsePortExpr("80")
	result := o.ScanOne(context.Background(), "203.0.113.1", ports, []model.ScanType{model.TcpConnect})

	if result.HostStatus != model.Down {
		t.Errorf("expected Down for an unreachable TEST-NET-3 address, got %v", result.HostStatus)
	}
	// A Down host discovery result must not abort the rest of the
	// pipeline: the requested port is still scanned (and reported
	// Filtered/Closed here, since nothing answers on TEST-NET-3).
	if len(result.PortResults) != 1 {
		t.Errorf("expected port scanning to still run on a down host, got %d results", len(result.PortResults))
	}
}

func TestScanMultiplePreservesInputOrder(t *testing.T) {
	o := New(Config{
		DiscoveryEnabled: false,
		Concurrency:      4,
		Throttle:         qos.ThrottleConfig{Enabled: false, InitialPPS: 100, MinPPS: 10, MaxPPS: 1000, SuccessThreshold: 0.9, FailureThreshold: 0.5, WindowSize: 10, AdjustmentIntervalMs: 1000, RateIncreaseFactor: 1.2, RateDecreaseFactor: 0.5},
	})

	t1, _ := model.ParseTarget("10.0.0.1")
	t2, _ := model.ParseTarget("10.0.0.2")
	t3, _ := model.ParseTarget("10.0.0.3")
	ports, _ := model.ParsePortExpr("80")

	results := o.ScanMultiple(context.Background(), []model.Target{t1, t2, t3}, ports, nil)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	want := []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}
	for i, r := range results {
		if r.Target != want[i] {
			t.Errorf("result[%d].Target = %q, want %q", i, r.Target, want[i])
		}
	}
}
