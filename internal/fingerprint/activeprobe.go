package fingerprint

import (
	"math"
	"math/rand"
	"net"
	"time"

	"golang.org/x/sys/unix"

	"scanforge/internal/model"
	"scanforge/internal/netraw"
)

// CollectActiveProbe runs the nmap-style T1-T7/SEQ/ECN/U1/IE probe battery
// against an open TCP port (T1-T7, ECN) and a closed UDP port (U1) plus an
// ICMP echo (IE). openPort must be open; closedUDPPort should be a port
// known or suspected to be closed.
func CollectActiveProbe(target string, openPort, closedUDPPort int, timeout time.Duration) *ActiveProbeResults {
	dstIP := net.ParseIP(target)
	if dstIP == nil || dstIP.To4() == nil {
		return nil
	}
	srcIP, err := outboundAddr(target)
	if err != nil {
		return nil
	}

	tcpRaw, err := netraw.NewRawSocket(unix.IPPROTO_TCP, false)
	if err != nil {
		return nil
	}
	defer tcpRaw.Close()

	res := &ActiveProbeResults{}

	isns := collectISNs(tcpRaw, srcIP, dstIP, openPort, timeout, 6)
	res.SEQ = classifySeq(isns)

	res.T1ResponseOK = probeT(tcpRaw, srcIP, dstIP, openPort, timeout, model.TcpFlags{SYN: true})
	res.T2ResponseOK = probeT(tcpRaw, srcIP, dstIP, openPort, timeout, model.TcpFlags{})
	res.T3ResponseOK = probeT(tcpRaw, srcIP, dstIP, openPort, timeout, model.TcpFlags{SYN: true, FIN: true, URG: true, PSH: true})
	res.T4ResponseOK = probeT(tcpRaw, srcIP, dstIP, openPort, timeout, model.TcpFlags{ACK: true})
	res.T5ResponseOK = probeT(tcpRaw, srcIP, dstIP, closedUDPPort, timeout, model.TcpFlags{SYN: true})
	res.T6ResponseOK = probeT(tcpRaw, srcIP, dstIP, closedUDPPort, timeout, model.TcpFlags{ACK: true})
	res.T7ResponseOK = probeT(tcpRaw, srcIP, dstIP, closedUDPPort, timeout, model.TcpFlags{FIN: true, URG: true, PSH: true})

	res.ECNResponds, res.ECNEcho = probeECN(tcpRaw, srcIP, dstIP, openPort, timeout)

	udpRaw, err := netraw.NewRawSocket(unix.IPPROTO_UDP, false)
	if err == nil {
		res.U1ResponseOK = probeU1(udpRaw, srcIP, dstIP, closedUDPPort, timeout)
		udpRaw.Close()
	}

	icmpRaw, err := netraw.NewRawSocket(unix.IPPROTO_ICMP, false)
	if err == nil {
		res.IEResponseOK = probeIE(icmpRaw, srcIP, dstIP, timeout)
		icmpRaw.Close()
	}

	return res
}

// collectISNs sends n SYNs to an open port 100ms apart and returns the
// initial sequence numbers echoed back in each SYN-ACK.
func collectISNs(raw *netraw.RawSocket, srcIP, dstIP net.IP, port int, timeout time.Duration, n int) []uint32 {
	var isns []uint32
	for i := 0; i < n; i++ {
		srcPort := 30000 + rand.Intn(20000)
		seq := rand.Uint32()
		tcpPkt, err := netraw.BuildTCP(netraw.TCPDescriptor{
			SrcIP: srcIP, DstIP: dstIP, SrcPort: srcPort, DstPort: port,
			Seq: seq, Flags: model.TcpFlags{SYN: true}, Window: 29200,
		})
		if err == nil {
			if ipPkt, err := netraw.BuildIPv4(netraw.IPv4Descriptor{
				Src: srcIP, Dst: dstIP, Protocol: netraw.ProtoTCP, TTL: 64, ID: rand.Intn(65535), DontFrag: true, Payload: tcpPkt,
			}); err == nil {
				raw.Send(dstIP, ipPkt)
				if isn, ok := awaitSynAck(raw, srcPort, port, seq, timeout); ok {
					isns = append(isns, isn)
				}
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return isns
}

func awaitSynAck(raw *netraw.RawSocket, srcPort, dstPort int, seq uint32, timeout time.Duration) (uint32, bool) {
	deadline := time.Now().Add(timeout)
	buf := make([]byte, 65535)
	for time.Now().Before(deadline) {
		n, _, err := raw.Receive(buf, time.Until(deadline))
		if err != nil {
			return 0, false
		}
		parsed, err := netraw.Parse(buf[:n], false)
		if err != nil || parsed.TCP == nil {
			continue
		}
		tcp := parsed.TCP
		if tcp.SrcPort == dstPort && tcp.DstPort == srcPort && tcp.Ack == seq+1 && tcp.Flags.SYN {
			return tcp.Seq, true
		}
	}
	return 0, false
}

// classifySeq derives gcd/mean/stddev over the differences between
// consecutive ISN samples and classifies their predictability. Fewer than
// 2 samples is Unknown by definition.
func classifySeq(isns []uint32) SeqAnalysis {
	if len(isns) < 2 {
		return SeqAnalysis{Samples: len(isns), Predictability: PredictabilityUnknown}
	}

	diffs := make([]uint32, 0, len(isns)-1)
	for i := 1; i < len(isns); i++ {
		if isns[i] >= isns[i-1] {
			diffs = append(diffs, isns[i]-isns[i-1])
		} else {
			diffs = append(diffs, isns[i-1]-isns[i])
		}
	}

	gcd := diffs[0]
	var sum float64
	for _, v := range diffs {
		gcd = gcdUint32(gcd, v)
		sum += float64(v)
	}
	mean := sum / float64(len(diffs))

	var variance float64
	for _, v := range diffs {
		diff := float64(v) - mean
		variance += diff * diff
	}
	variance /= float64(len(diffs))
	stddev := math.Sqrt(variance)

	var pred Predictability
	switch {
	case stddev < 100:
		pred = PredictabilityConstant
	case stddev < 1e4:
		pred = PredictabilityIncremental
	case stddev < 1e6:
		pred = PredictabilityTimeDependent
	default:
		pred = PredictabilityRandom
	}

	return SeqAnalysis{GCD: gcd, Mean: mean, StdDev: stddev, Predictability: pred, Samples: len(isns)}
}

func gcdUint32(a, b uint32) uint32 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// probeT sends one crafted TCP probe and reports whether any reply (of any
// kind) arrived within timeout.
func probeT(raw *netraw.RawSocket, srcIP, dstIP net.IP, port int, timeout time.Duration, flags model.TcpFlags) bool {
	srcPort := 30000 + rand.Intn(20000)
	seq := rand.Uint32()
	tcpPkt, err := netraw.BuildTCP(netraw.TCPDescriptor{
		SrcIP: srcIP, DstIP: dstIP, SrcPort: srcPort, DstPort: port, Seq: seq, Flags: flags, Window: 29200,
	})
	if err != nil {
		return false
	}
	ipPkt, err := netraw.BuildIPv4(netraw.IPv4Descriptor{
		Src: srcIP, Dst: dstIP, Protocol: netraw.ProtoTCP, TTL: 64, ID: rand.Intn(65535), DontFrag: true, Payload: tcpPkt,
	})
	if err != nil {
		return false
	}
	if err := raw.Send(dstIP, ipPkt); err != nil {
		return false
	}

	deadline := time.Now().Add(timeout)
	buf := make([]byte, 65535)
	for time.Now().Before(deadline) {
		n, _, err := raw.Receive(buf, time.Until(deadline))
		if err != nil {
			return false
		}
		parsed, err := netraw.Parse(buf[:n], false)
		if err != nil || parsed.TCP == nil {
			continue
		}
		if parsed.TCP.SrcPort == port && parsed.TCP.DstPort == srcPort {
			return true
		}
	}
	return false
}

// probeECN sends a SYN with ECE+CWR set and reports whether the target
// replied at all, and whether it echoed ECN support back.
func probeECN(raw *netraw.RawSocket, srcIP, dstIP net.IP, port int, timeout time.Duration) (responds, echo bool) {
	srcPort := 30000 + rand.Intn(20000)
	seq := rand.Uint32()
	tcpPkt, err := netraw.BuildTCP(netraw.TCPDescriptor{
		SrcIP: srcIP, DstIP: dstIP, SrcPort: srcPort, DstPort: port,
		Seq: seq, Flags: model.TcpFlags{SYN: true, ECE: true, CWR: true}, Window: 29200,
	})
	if err != nil {
		return false, false
	}
	ipPkt, err := netraw.BuildIPv4(netraw.IPv4Descriptor{
		Src: srcIP, Dst: dstIP, Protocol: netraw.ProtoTCP, TTL: 64, ID: rand.Intn(65535), DontFrag: true, Payload: tcpPkt,
	})
	if err != nil {
		return false, false
	}
	if err := raw.Send(dstIP, ipPkt); err != nil {
		return false, false
	}

	deadline := time.Now().Add(timeout)
	buf := make([]byte, 65535)
	for time.Now().Before(deadline) {
		n, _, err := raw.Receive(buf, time.Until(deadline))
		if err != nil {
			return false, false
		}
		parsed, err := netraw.Parse(buf[:n], false)
		if err != nil || parsed.TCP == nil {
			continue
		}
		if parsed.TCP.SrcPort == port && parsed.TCP.DstPort == srcPort {
			return true, parsed.TCP.Flags.ECE
		}
	}
	return false, false
}

// probeU1 sends a UDP datagram at a closed port and checks for an ICMP
// port-unreachable, distinguishing it from U1's absence entirely.
func probeU1(raw *netraw.RawSocket, srcIP, dstIP net.IP, port int, timeout time.Duration) bool {
	udpPkt, err := netraw.BuildUDP(netraw.UDPDescriptor{
		SrcIP: srcIP, DstIP: dstIP, SrcPort: 40125, DstPort: port, Payload: []byte("C"),
	})
	if err != nil {
		return false
	}
	ipPkt, err := netraw.BuildIPv4(netraw.IPv4Descriptor{
		Src: srcIP, Dst: dstIP, Protocol: netraw.ProtoUDP, TTL: 64, ID: rand.Intn(65535), DontFrag: true, Payload: udpPkt,
	})
	if err != nil {
		return false
	}
	if err := raw.Send(dstIP, ipPkt); err != nil {
		return false
	}

	icmpRaw, err := netraw.NewRawSocket(unix.IPPROTO_ICMP, false)
	if err != nil {
		return false
	}
	defer icmpRaw.Close()

	deadline := time.Now().Add(timeout)
	buf := make([]byte, 65535)
	for time.Now().Before(deadline) {
		n, _, err := icmpRaw.Receive(buf, time.Until(deadline))
		if err != nil {
			return false
		}
		parsed, err := netraw.Parse(buf[:n], false)
		if err != nil || parsed.ICMP == nil {
			continue
		}
		return true
	}
	return false
}

// probeIE sends one ICMP echo request (DF set) and reports whether it is
// answered.
func probeIE(raw *netraw.RawSocket, srcIP, dstIP net.IP, timeout time.Duration) bool {
	id := rand.Intn(65535)
	ok, _, _ := sendAndAwaitEcho(raw, srcIP, dstIP, id, 1, []byte("IE"), timeout)
	return ok
}
