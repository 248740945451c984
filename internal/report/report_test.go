package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"scanforge/internal/model"
	"scanforge/internal/qos"
)

func sampleResults() []model.CompleteScanResult {
	rt := 5 * time.Millisecond
	return []model.CompleteScanResult{
		{
			Target:     "10.0.0.1",
			HostStatus: model.Up,
			PortResults: []model.PortResult{
				{Target: "10.0.0.1", Port: 80, Protocol: model.TcpConnect, Status: model.Open, ResponseTime: &rt},
				{Target: "10.0.0.1", Port: 81, Protocol: model.TcpConnect, Status: model.Closed},
			},
			Duration: 100 * time.Millisecond,
		},
		{
			Target:     "10.0.0.2",
			HostStatus: model.Down,
			Duration:   50 * time.Millisecond,
		},
	}
}

func TestBuilderComputesStatistics(t *testing.T) {
	b := NewBuilder("scan-1", "1.0", model.ScanRequest{})
	b.AddAll(sampleResults())

	r := b.Build(qos.Snapshot{PacketsSent: 10, PacketsReceived: 8})

	s := r.Statistics
	if s.TotalTargets != 2 {
		t.Errorf("expected 2 targets, got %d", s.TotalTargets)
	}
	if s.UpHosts != 1 || s.DownHosts != 1 {
		t.Errorf("expected 1 up / 1 down, got %d/%d", s.UpHosts, s.DownHosts)
	}
	if s.TotalPorts != 2 || s.OpenPorts != 1 || s.ClosedPorts != 1 {
		t.Errorf("expected 2 total/1 open/1 closed, got %d/%d/%d", s.TotalPorts, s.OpenPorts, s.ClosedPorts)
	}
	if s.SuccessRate != 1.0 {
		t.Errorf("expected success rate 1.0 (no errs), got %v", s.SuccessRate)
	}
	if s.PacketsSent != 10 || s.PacketsReceived != 8 {
		t.Errorf("expected packet counters to flow through from the snapshot, got %d/%d", s.PacketsSent, s.PacketsReceived)
	}
	if s.MinScanTime != 50*time.Millisecond || s.MaxScanTime != 100*time.Millisecond {
		t.Errorf("expected min/max 50ms/100ms, got %v/%v", s.MinScanTime, s.MaxScanTime)
	}
}

func TestSaveJSONRoundTrip(t *testing.T) {
	b := NewBuilder("scan-2", "1.0", model.ScanRequest{})
	b.AddAll(sampleResults())
	r := b.Build(qos.Snapshot{})

	path := filepath.Join(t.TempDir(), "report.json")
	if err := SaveJSON(path, r); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var decoded model.ScanReport
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.ScanID != "scan-2" {
		t.Errorf("expected scan id to round-trip, got %q", decoded.ScanID)
	}
}

func TestSaveCSVWritesBOMAndHeaders(t *testing.T) {
	b := NewBuilder("scan-3", "1.0", model.ScanRequest{})
	b.AddAll(sampleResults())
	r := b.Build(qos.Snapshot{})

	path := filepath.Join(t.TempDir(), "report.csv")
	if err := SaveCSV(path, r); err != nil {
		t.Fatalf("SaveCSV: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(raw) < 3 || raw[0] != 0xEF || raw[1] != 0xBB || raw[2] != 0xBF {
		t.Error("expected a UTF-8 BOM at the start of the CSV file")
	}
}

func TestSaveCSVEmptyReportErrors(t *testing.T) {
	r := model.ScanReport{}
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := SaveCSV(path, r); err == nil {
		t.Error("expected an error exporting a report with no results")
	}
}

func TestPortRowsHandlesHostsWithNoPortResults(t *testing.T) {
	rows := portRows{results: []model.CompleteScanResult{{Target: "10.0.0.3", HostStatus: model.Down}}}
	data := rows.Rows()
	if len(data) != 1 {
		t.Fatalf("expected 1 placeholder row, got %d", len(data))
	}
	if data[0][0] != "10.0.0.3" {
		t.Errorf("expected target column to be populated, got %q", data[0][0])
	}
}
