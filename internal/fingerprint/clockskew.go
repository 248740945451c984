package fingerprint

import (
	"math"
	"math/rand"
	"net"
	"time"

	"golang.org/x/sys/unix"

	"scanforge/internal/errs"
	"scanforge/internal/model"
	"scanforge/internal/netraw"
)

const (
	clockSkewDefaultSamples = 20
	clockSkewMinSamples     = 10
	clockSkewSampleGap      = 100 * time.Millisecond
)

type tsSample struct {
	localUs  float64
	remoteTS uint32
}

// CollectClockSkew gathers TCP timestamp-option samples from repeated SYN
// probes spaced clockSkewSampleGap apart and fits remote_ts = m*local_us + b
// by ordinary least squares. skew_ppm = (m-1)*1e6 and clock_frequency_hz =
// m*1e6 follow directly from the regression slope.
//
// Returns errs.NewInsufficientData if fewer than clockSkewMinSamples of the
// clockSkewDefaultSamples attempts yield a usable timestamp.
func CollectClockSkew(target string, port int, timeout time.Duration) (*ClockSkewAnalysis, error) {
	dstIP := net.ParseIP(target)
	if dstIP == nil || dstIP.To4() == nil {
		return nil, errs.NewInsufficientData(clockSkewMinSamples, 0)
	}
	srcIP, err := outboundAddr(target)
	if err != nil {
		return nil, errs.NewInsufficientData(clockSkewMinSamples, 0)
	}

	raw, err := netraw.NewRawSocket(unix.IPPROTO_TCP, false)
	if err != nil {
		return nil, errs.NewInsufficientData(clockSkewMinSamples, 0)
	}
	defer raw.Close()

	start := time.Now()
	var samples []tsSample

	for i := 0; i < clockSkewDefaultSamples; i++ {
		local := time.Since(start)
		ts, ok := probeTimestamp(raw, srcIP, dstIP, port, timeout)
		if ok {
			samples = append(samples, tsSample{localUs: float64(local.Microseconds()), remoteTS: ts})
		}
		time.Sleep(clockSkewSampleGap)
	}

	if len(samples) < clockSkewMinSamples {
		return nil, errs.NewInsufficientData(clockSkewMinSamples, len(samples))
	}

	m, b, sigma := fitOLS(samples)

	return &ClockSkewAnalysis{
		SkewPPM:          (m - 1) * 1e6,
		ClockFrequencyHz: m * 1e6,
		ResidualSigma:    sigma,
		Samples:          len(samples),
		OSHint:           classifyClockFrequency(m * 1e6),
	}, nil
}

// probeTimestamp sends a single SYN carrying a TCP Timestamp option and
// returns the echoed TSval from the SYN-ACK, if any.
func probeTimestamp(raw *netraw.RawSocket, srcIP, dstIP net.IP, port int, timeout time.Duration) (uint32, bool) {
	srcPort := 30000 + rand.Intn(20000)
	seq := rand.Uint32()
	tsVal := uint32(time.Now().UnixNano() / int64(time.Millisecond))

	tsData := make([]byte, 8)
	tsData[0] = byte(tsVal >> 24)
	tsData[1] = byte(tsVal >> 16)
	tsData[2] = byte(tsVal >> 8)
	tsData[3] = byte(tsVal)

	tcpPkt, err := netraw.BuildTCP(netraw.TCPDescriptor{
		SrcIP: srcIP, DstIP: dstIP,
		SrcPort: srcPort, DstPort: port,
		Seq:    seq,
		Flags:  model.TcpFlags{SYN: true},
		Window: 29200,
		Options: []netraw.TCPOption{
			{Kind: netraw.TCPOptionMSS, Length: 4, Data: []byte{0x05, 0xb4}},
			{Kind: netraw.TCPOptionTimestamp, Length: 10, Data: tsData},
			{Kind: netraw.TCPOptionNOP},
			{Kind: netraw.TCPOptionWScale, Length: 3, Data: []byte{0x07}},
		},
	})
	if err != nil {
		return 0, false
	}
	ipPkt, err := netraw.BuildIPv4(netraw.IPv4Descriptor{
		Src: srcIP, Dst: dstIP, Protocol: netraw.ProtoTCP, TTL: 64, ID: rand.Intn(65535), DontFrag: true, Payload: tcpPkt,
	})
	if err != nil {
		return 0, false
	}
	if err := raw.Send(dstIP, ipPkt); err != nil {
		return 0, false
	}

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
		if tcp.SrcPort != port || tcp.DstPort != srcPort || tcp.Ack != seq+1 {
			continue
		}
		for _, opt := range tcp.Options {
			if opt.Kind == netraw.TCPOptionTimestamp && len(opt.Data) >= 4 {
				remote := uint32(opt.Data[0])<<24 | uint32(opt.Data[1])<<16 | uint32(opt.Data[2])<<8 | uint32(opt.Data[3])
				return remote, true
			}
		}
		return 0, false
	}
	return 0, false
}

// fitOLS fits remoteTS = m*localUs + b and returns (m, b, residual stddev).
func fitOLS(samples []tsSample) (m, b, sigma float64) {
	n := float64(len(samples))
	var sumX, sumY, sumXY, sumXX float64
	for _, s := range samples {
		sumX += s.localUs
		sumY += float64(s.remoteTS)
		sumXY += s.localUs * float64(s.remoteTS)
		sumXX += s.localUs * s.localUs
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, 0, 0
	}
	m = (n*sumXY - sumX*sumY) / denom
	b = (sumY - m*sumX) / n

	var sqResid float64
	for _, s := range samples {
		predicted := m*s.localUs + b
		diff := float64(s.remoteTS) - predicted
		sqResid += diff * diff
	}
	sigma = math.Sqrt(sqResid / n)
	return m, b, sigma
}

// classifyClockFrequency maps the regression's estimated remote clock
// frequency (Hz) onto common kernel-timer hints.
func classifyClockFrequency(hz float64) string {
	switch {
	case math.Abs(hz-1000) < 50:
		return "Linux HZ=1000 / macOS"
	case math.Abs(hz-250) < 20:
		return "Linux HZ=250"
	case math.Abs(hz-100) < 10:
		return "Linux HZ=100 / Windows / BSD"
	case math.Abs(hz-64) < 5:
		return "legacy Windows"
	default:
		return "unknown"
	}
}
