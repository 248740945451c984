package portscan

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/miekg/dns"

	"scanforge/internal/model"
)

// UDPConfig tunes the UDP scanner.
type UDPConfig struct {
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
}

// UDPScanner sends a service-specific probe payload by well-known port
// and classifies the reply. Any payload reply is Open; a kernel-surfaced
// ICMP port-unreachable (ECONNREFUSED on the UDP socket) is Closed;
// silence is Filtered.
type UDPScanner struct {
	cfg UDPConfig
}

func NewUDPScanner(cfg UDPConfig) *UDPScanner {
	return &UDPScanner{cfg: cfg}
}

func (s *UDPScanner) ScanPort(ctx context.Context, target string, port int) model.PortResult {
	var result model.PortResult
	for attempt := 0; attempt <= s.cfg.Retries; attempt++ {
		result = s.scanOnce(target, port)
		if result.Status != model.Filtered {
			return result
		}
		if attempt < s.cfg.Retries {
			time.Sleep(s.cfg.RetryDelay)
		}
	}
	return result
}

func (s *UDPScanner) scanOnce(target string, port int) model.PortResult {
	if port == 161 {
		return s.scanSNMP(target, port)
	}

	addr := net.JoinHostPort(target, strconv.Itoa(port))

	conn, err := net.DialTimeout("udp", addr, s.cfg.Timeout)
	if err != nil {
		return model.PortResult{Target: target, Port: port, Protocol: model.Udp, Status: model.Filtered}
	}
	defer conn.Close()

	payload := probePayload(port)

	start := time.Now()
	if _, err := conn.Write(payload); err != nil {
		if isRefused(err) {
			return model.PortResult{Target: target, Port: port, Protocol: model.Udp, Status: model.Closed}
		}
		return model.PortResult{Target: target, Port: port, Protocol: model.Udp, Status: model.Filtered}
	}

	conn.SetReadDeadline(time.Now().Add(s.cfg.Timeout))
	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil {
		if isRefused(err) {
			return model.PortResult{Target: target, Port: port, Protocol: model.Udp, Status: model.Closed}
		}
		return model.PortResult{Target: target, Port: port, Protocol: model.Udp, Status: model.Filtered}
	}

	elapsed := time.Since(start)
	return model.PortResult{
		Target: target, Port: port, Protocol: model.Udp,
		Status: model.Open, ResponseTime: &elapsed,
		ResponsePayload: append([]byte{}, buf[:n]...),
	}
}

// scanSNMP drives gosnmp's own connection/Get cycle rather than hand-rolling
// BER encoding: a GetRequest against sysDescr.0 is as close to a
// port-specific probe as SNMPv2c gets.
func (s *UDPScanner) scanSNMP(target string, port int) model.PortResult {
	client := &gosnmp.GoSNMP{
		Target:    target,
		Port:      uint16(port),
		Community: "public",
		Version:   gosnmp.Version2c,
		Timeout:   s.cfg.Timeout,
		Retries:   0,
	}

	if err := client.Connect(); err != nil {
		return model.PortResult{Target: target, Port: port, Protocol: model.Udp, Status: model.Filtered}
	}
	defer client.Conn.Close()

	start := time.Now()
	pkt, err := client.Get([]string{".1.3.6.1.2.1.1.1.0"})
	if err != nil {
		if isRefused(err) {
			return model.PortResult{Target: target, Port: port, Protocol: model.Udp, Status: model.Closed}
		}
		return model.PortResult{Target: target, Port: port, Protocol: model.Udp, Status: model.Filtered}
	}

	elapsed := time.Since(start)
	var payload []byte
	if len(pkt.Variables) > 0 {
		if s, ok := pkt.Variables[0].Value.(string); ok {
			payload = []byte(s)
		}
	}

	return model.PortResult{
		Target: target, Port: port, Protocol: model.Udp,
		Status: model.Open, ResponseTime: &elapsed,
		ResponsePayload: payload,
	}
}

func (s *UDPScanner) ScanPorts(ctx context.Context, target string, ports model.PortSet, concurrency int) []model.PortResult {
	return scanConcurrently(ctx, ports, concurrency, func(ctx context.Context, port int) model.PortResult {
		return s.ScanPort(ctx, target, port)
	})
}

// probePayload picks a service-specific probe by well-known port,
// falling back to a tiny generic payload for anything else. Port 161
// is handled separately via scanSNMP.
func probePayload(port int) []byte {
	switch port {
	case 53:
		return dnsProbe()
	case 123:
		return ntpProbe()
	}
	return []byte{0x00}
}

func dnsProbe() []byte {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn("version.bind"), dns.TypeTXT)
	m.Question[0].Qclass = dns.ClassCHAOS
	b, err := m.Pack()
	if err != nil {
		return []byte{0x00}
	}
	return b
}

// ntpProbe builds a minimal SNTP client request: a 48-byte NTP packet
// with LI=0, VN=3, Mode=3 (client) and every other field zeroed.
func ntpProbe() []byte {
	pkt := make([]byte, 48)
	pkt[0] = 0x1b
	return pkt
}
