package portscan

import (
	"context"
	"math/rand"
	"net"
	"time"

	"golang.org/x/sys/unix"

	"scanforge/internal/errs"
	"scanforge/internal/model"
	"scanforge/internal/netraw"
)

// TCPSynConfig tunes the half-open scanner.
type TCPSynConfig struct {
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
}

// TCPSynScanner sends a bare SYN and classifies the reply without ever
// completing the three-way handshake. Requires raw-socket privilege.
type TCPSynScanner struct {
	cfg TCPSynConfig
}

func NewTCPSynScanner(cfg TCPSynConfig) *TCPSynScanner {
	return &TCPSynScanner{cfg: cfg}
}

// CheckPrivilege opens and immediately closes a raw TCP socket to confirm
// the process can half-open scan at all. The orchestrator calls this
// once per target before running the SYN scan type and surfaces the
// resulting errs.PermissionDenied to the caller, rather than letting
// scanOnce silently downgrade every port to Filtered.
func (s *TCPSynScanner) CheckPrivilege() error {
	raw, err := netraw.NewRawSocket(unix.IPPROTO_TCP, false)
	if err != nil {
		return err
	}
	raw.Close()
	return nil
}

func (s *TCPSynScanner) ScanPort(ctx context.Context, target string, port int) model.PortResult {
	result := s.scanOnce(target, port)
	for attempt := 0; attempt < s.cfg.Retries && result.Status == model.Filtered; attempt++ {
		time.Sleep(s.cfg.RetryDelay)
		result = s.scanOnce(target, port)
	}
	return result
}

func (s *TCPSynScanner) scanOnce(target string, port int) model.PortResult {
	dstIP := net.ParseIP(target)
	if dstIP == nil {
		return model.PortResult{Target: target, Port: port, Protocol: model.TcpSyn, Status: model.Filtered}
	}
	v6 := dstIP.To4() == nil

	srcIP, err := localAddrFor(target)
	if err != nil {
		return model.PortResult{Target: target, Port: port, Protocol: model.TcpSyn, Status: model.Filtered}
	}

	srcPort := 20000 + rand.Intn(25000)
	seq := rand.Uint32()

	tcpPkt, err := netraw.BuildTCP(netraw.TCPDescriptor{
		SrcIP: srcIP, DstIP: dstIP,
		SrcPort: srcPort, DstPort: port,
		Seq:    seq,
		Flags:  model.TcpFlags{SYN: true},
		Window: 65535,
		Options: []netraw.TCPOption{
			{Kind: netraw.TCPOptionMSS, Length: 4, Data: []byte{0x05, 0xb4}},
		},
	})
	if err != nil {
		return model.PortResult{Target: target, Port: port, Protocol: model.TcpSyn, Status: model.Filtered}
	}

	protoTCP := unix.IPPROTO_TCP
	raw, err := netraw.NewRawSocket(protoTCP, v6)
	if err != nil {
		// The orchestrator already gates the whole SYN scan type on
		// CheckPrivilege before any port reaches scanOnce; a failure here
		// is a transient per-socket condition (fd exhaustion, and so on),
		// not a permission problem, so it still classifies as Filtered.
		return model.PortResult{Target: target, Port: port, Protocol: model.TcpSyn, Status: model.Filtered}
	}
	defer raw.Close()

	var ipPkt []byte
	if v6 {
		ipPkt, err = netraw.BuildIPv6(netraw.IPv6Descriptor{Src: srcIP, Dst: dstIP, NextHeader: netraw.ProtoTCP, HopLimit: 64, Payload: tcpPkt})
	} else {
		ipPkt, err = netraw.BuildIPv4(netraw.IPv4Descriptor{Src: srcIP, Dst: dstIP, Protocol: netraw.ProtoTCP, TTL: 64, ID: rand.Intn(65535), DontFrag: true, Payload: tcpPkt})
	}
	if err != nil {
		return model.PortResult{Target: target, Port: port, Protocol: model.TcpSyn, Status: model.Filtered}
	}

	start := time.Now()
	if err := raw.Send(dstIP, ipPkt); err != nil {
		return model.PortResult{Target: target, Port: port, Protocol: model.TcpSyn, Status: model.Filtered}
	}

	deadline := time.Now().Add(s.cfg.Timeout)
	buf := make([]byte, 65535)

	for time.Now().Before(deadline) {
		remaining := time.Until(deadline)
		n, _, err := raw.Receive(buf, remaining)
		if err != nil {
			break
		}

		parsed, err := netraw.Parse(buf[:n], false)
		if err != nil || parsed.TCP == nil {
			continue
		}
		tcp := parsed.TCP
		if tcp.SrcPort != port || tcp.DstPort != srcPort || tcp.Ack != seq+1 {
			continue
		}

		elapsed := time.Since(start)
		if tcp.Flags.RST {
			return model.PortResult{Target: target, Port: port, Protocol: model.TcpSyn, Status: model.Closed}
		}
		if tcp.Flags.SYN && tcp.Flags.ACK {
			s.sendRST(raw, v6, srcIP, dstIP, srcPort, port, tcp.Seq+1)
			return model.PortResult{
				Target: target, Port: port, Protocol: model.TcpSyn,
				Status: model.Open, ResponseTime: &elapsed,
				Flags: &tcp.Flags,
			}
		}
	}

	return model.PortResult{Target: target, Port: port, Protocol: model.TcpSyn, Status: model.Filtered}
}

// sendRST tears down the half-open session immediately after classifying
// Open, so the scan never completes a full handshake.
func (s *TCPSynScanner) sendRST(raw *netraw.RawSocket, v6 bool, srcIP, dstIP net.IP, srcPort, dstPort int, ack uint32) {
	rstPkt, err := netraw.BuildTCP(netraw.TCPDescriptor{
		SrcIP: srcIP, DstIP: dstIP,
		SrcPort: srcPort, DstPort: dstPort,
		Seq: ack, Ack: ack,
		Flags: model.TcpFlags{RST: true},
	})
	if err != nil {
		return
	}

	var ipPkt []byte
	if v6 {
		ipPkt, err = netraw.BuildIPv6(netraw.IPv6Descriptor{Src: srcIP, Dst: dstIP, NextHeader: netraw.ProtoTCP, HopLimit: 64, Payload: rstPkt})
	} else {
		ipPkt, err = netraw.BuildIPv4(netraw.IPv4Descriptor{Src: srcIP, Dst: dstIP, Protocol: netraw.ProtoTCP, TTL: 64, DontFrag: true, Payload: rstPkt})
	}
	if err != nil {
		return
	}
	_ = raw.Send(dstIP, ipPkt)
}

func (s *TCPSynScanner) ScanPorts(ctx context.Context, target string, ports model.PortSet, concurrency int) []model.PortResult {
	return scanConcurrently(ctx, ports, concurrency, func(ctx context.Context, port int) model.PortResult {
		return s.ScanPort(ctx, target, port)
	})
}

// localAddrFor determines the outbound source address the kernel would
// pick for target, without actually sending data (a throwaway UDP
// "connect" just triggers the routing-table lookup).
func localAddrFor(target string) (net.IP, error) {
	conn, err := net.Dial("udp", net.JoinHostPort(target, "80"))
	if err != nil {
		return nil, errs.Wrap(errs.PacketError, "syn scan: determine local address", err)
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP, nil
}
