package discovery

import (
	"context"
	"net"
	"time"

	"scanforge/internal/netraw"
)

// UDPProber sends a closed-port-style UDP probe and watches for an ICMP
// port-unreachable reply via a raw ICMP socket — presence of that reply
// (not its absence) signals an active host. Requires raw-socket
// privilege; Probe reports unavailableError rather than Down when the
// socket cannot be opened.
type UDPProber struct {
	Port int
}

func NewUDPProber() *UDPProber { return &UDPProber{Port: 33434} }

func (p *UDPProber) Name() string { return "udp" }

func (p *UDPProber) Probe(ctx context.Context, ip string, timeout time.Duration) (*ProbeResult, error) {
	raw, err := netraw.NewRawSocket(1, false) // listen for ICMPv4 unreachable
	if err != nil {
		return nil, &unavailableError{reason: "udp discovery: " + err.Error()}
	}
	defer raw.Close()

	addr := net.JoinHostPort(ip, "33434")
	conn, err := (&net.Dialer{Timeout: timeout}).DialContext(ctx, "udp", addr)
	if err != nil {
		return &ProbeResult{Alive: false}, nil
	}
	defer conn.Close()

	if _, err := conn.Write([]byte{0}); err != nil {
		return &ProbeResult{Alive: false}, nil
	}

	buf := make([]byte, 1500)
	start := time.Now()
	n, _, err := raw.Receive(buf, timeout)
	if err != nil || n == 0 {
		return &ProbeResult{Alive: false}, nil
	}

	parsed, err := netraw.Parse(buf[:n], true)
	if err != nil || parsed.ICMP == nil {
		return &ProbeResult{Alive: false}, nil
	}

	return &ProbeResult{Alive: true, Latency: time.Since(start)}, nil
}
