package discovery

import (
	"context"
	"strings"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// ICMPProber sends a single echo request via pro-bing. It requires raw
// ICMP privilege on most platforms (or a kernel unprivileged-ping
// allowance on Linux); when the pinger cannot be created or run due to
// permission, Probe returns unavailableError so the caller falls back to
// TCPProber instead of reporting the host Down.
type ICMPProber struct{}

func NewICMPProber() *ICMPProber { return &ICMPProber{} }

func (p *ICMPProber) Name() string { return "icmp" }

func (p *ICMPProber) Probe(ctx context.Context, ip string, timeout time.Duration) (*ProbeResult, error) {
	pinger, err := probing.NewPinger(ip)
	if err != nil {
		return nil, &unavailableError{reason: "icmp: create pinger: " + err.Error()}
	}

	pinger.SetPrivileged(true)
	pinger.Count = 1
	pinger.Timeout = timeout

	if err := pinger.RunWithContext(ctx); err != nil {
		if isPermissionErr(err) {
			return nil, &unavailableError{reason: "icmp: " + err.Error()}
		}
		return &ProbeResult{Alive: false}, nil
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return &ProbeResult{Alive: false}, nil
	}

	return &ProbeResult{Alive: true, Latency: stats.AvgRtt}, nil
}

func isPermissionErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "operation not permitted") ||
		strings.Contains(msg, "permission denied") ||
		strings.Contains(msg, "access is denied")
}
