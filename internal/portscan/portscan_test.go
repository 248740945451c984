package portscan

import (
	"context"
	"net"
	"testing"
	"time"

	"scanforge/internal/model"
)

// S1 — TCP-connect open port.
func TestTCPConnectOpenPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	scanner := NewTCPConnectScanner(TCPConnectConfig{Timeout: 500 * time.Millisecond})
	res := scanner.ScanPort(context.Background(), "127.0.0.1", port)

	if res.Status != model.Open {
		t.Fatalf("status = %v, want Open", res.Status)
	}
	if res.ResponseTime == nil || *res.ResponseTime <= 0 {
		t.Fatal("expected a positive response time")
	}
}

// S2 — TCP-connect closed port.
func TestTCPConnectClosedPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close() // now guaranteed unbound

	scanner := NewTCPConnectScanner(TCPConnectConfig{Timeout: 500 * time.Millisecond})
	res := scanner.ScanPort(context.Background(), "127.0.0.1", port)

	if res.Status != model.Closed {
		t.Fatalf("status = %v, want Closed", res.Status)
	}
	if res.ResponseTime != nil {
		t.Fatal("response time should be unset on Closed")
	}
}

func TestProbePayloadRecognizesDNSAndNTP(t *testing.T) {
	dns := probePayload(53)
	if len(dns) == 0 {
		t.Fatal("expected a non-empty DNS probe for port 53")
	}
	ntp := probePayload(123)
	if len(ntp) != 48 || ntp[0] != 0x1b {
		t.Fatalf("expected a 48-byte NTP client request with LI/VN/Mode=0x1b, got %d bytes leading 0x%02x", len(ntp), ntp[0])
	}
	generic := probePayload(9999)
	if len(generic) != 1 {
		t.Fatalf("expected the generic 1-byte fallback for an unrecognized port, got %d bytes", len(generic))
	}
}

func TestScanPortsSortedByPort(t *testing.T) {
	scanner := NewTCPConnectScanner(TCPConnectConfig{Timeout: 100 * time.Millisecond})
	ports := model.PortSet{9, 7, 8}
	results := scanner.ScanPorts(context.Background(), "127.0.0.1", ports, 3)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Port < results[i-1].Port {
			t.Fatalf("results not sorted by port: %v", results)
		}
	}
}
