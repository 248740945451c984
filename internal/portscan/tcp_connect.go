// Package portscan implements the three port-probing techniques —
// TCP-connect, TCP-SYN (half-open) and UDP — behind a shared Scanner
// interface.
package portscan

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"scanforge/internal/model"
)

// Scanner probes one port, or a set of ports, on a single target.
type Scanner interface {
	ScanPort(ctx context.Context, target string, port int) model.PortResult
	ScanPorts(ctx context.Context, target string, ports model.PortSet, concurrency int) []model.PortResult
}

// TCPConnectConfig tunes the full-connect scanner.
type TCPConnectConfig struct {
	Timeout      time.Duration
	Retries      int
	RetryDelay   time.Duration
	GrabBanner   bool
	BannerMaxLen int
}

// TCPConnectScanner uses the OS TCP stack; no elevated privilege needed.
type TCPConnectScanner struct {
	cfg TCPConnectConfig
}

func NewTCPConnectScanner(cfg TCPConnectConfig) *TCPConnectScanner {
	if cfg.BannerMaxLen <= 0 {
		cfg.BannerMaxLen = 512
	}
	return &TCPConnectScanner{cfg: cfg}
}

func (s *TCPConnectScanner) ScanPort(ctx context.Context, target string, port int) model.PortResult {
	addr := net.JoinHostPort(target, fmt.Sprintf("%d", port))

	var lastResult model.PortResult
	for attempt := 0; attempt <= s.cfg.Retries; attempt++ {
		start := time.Now()
		dialCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		conn, err := (&net.Dialer{}).DialContext(dialCtx, "tcp", addr)
		cancel()

		if err == nil {
			elapsed := time.Since(start)
			banner := ""
			if s.cfg.GrabBanner {
				banner = grabBanner(conn, s.cfg.BannerMaxLen)
			}
			conn.Close()
			return model.PortResult{
				Target:       target,
				Port:         port,
				Protocol:     model.TcpConnect,
				Status:       model.Open,
				ResponseTime: &elapsed,
				Banner:       banner,
			}
		}

		if isRefused(err) {
			return model.PortResult{
				Target:   target,
				Port:     port,
				Protocol: model.TcpConnect,
				Status:   model.Closed,
			}
		}

		lastResult = model.PortResult{
			Target:   target,
			Port:     port,
			Protocol: model.TcpConnect,
			Status:   model.Filtered,
		}

		if attempt < s.cfg.Retries {
			time.Sleep(s.cfg.RetryDelay)
		}
	}

	return lastResult
}

func (s *TCPConnectScanner) ScanPorts(ctx context.Context, target string, ports model.PortSet, concurrency int) []model.PortResult {
	return scanConcurrently(ctx, ports, concurrency, func(ctx context.Context, port int) model.PortResult {
		return s.ScanPort(ctx, target, port)
	})
}

func grabBanner(conn net.Conn, maxLen int) string {
	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	buf := make([]byte, maxLen)
	n, err := conn.Read(buf)
	if err != nil && n == 0 {
		if err != io.EOF {
			return ""
		}
	}
	return string(buf[:n])
}

func isRefused(err error) bool {
	return err != nil && strings.Contains(err.Error(), "refused")
}
