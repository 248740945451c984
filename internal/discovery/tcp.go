package discovery

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

// probePorts is the fixed fallback-friendly port list: well-known
// services likely to be reachable or, failing that, to actively refuse.
var probePorts = []int{80, 443, 22, 21, 25, 3389}

// TCPProber attempts a connect to each of probePorts concurrently. A
// successful connect or an explicit refusal both count as Up — a refusal
// still requires the host to be present to send it.
type TCPProber struct {
	dialer net.Dialer
}

func NewTCPProber() *TCPProber {
	return &TCPProber{dialer: net.Dialer{}}
}

func (p *TCPProber) Name() string { return "tcp" }

func (p *TCPProber) Probe(ctx context.Context, ip string, timeout time.Duration) (*ProbeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		alive   bool
		latency time.Duration
	}
	results := make(chan outcome, len(probePorts))

	for _, port := range probePorts {
		go func(port int) {
			addr := fmt.Sprintf("%s:%d", ip, port)
			start := time.Now()
			conn, err := p.dialer.DialContext(ctx, "tcp", addr)
			if err == nil {
				conn.Close()
				results <- outcome{alive: true, latency: time.Since(start)}
				return
			}
			if isRefused(err) {
				results <- outcome{alive: true, latency: time.Since(start)}
				return
			}
			results <- outcome{alive: false}
		}(port)
	}

	for i := 0; i < len(probePorts); i++ {
		select {
		case o := <-results:
			if o.alive {
				return &ProbeResult{Alive: true, Latency: o.latency}, nil
			}
		case <-ctx.Done():
			return &ProbeResult{Alive: false}, nil
		}
	}

	return &ProbeResult{Alive: false}, nil
}

// isRefused recognizes ECONNREFUSED across platforms by message rather
// than errno constant, since syscall's refusal errno isn't uniformly
// named between unix and windows builds.
func isRefused(err error) bool {
	return err != nil && strings.Contains(err.Error(), "refused")
}
