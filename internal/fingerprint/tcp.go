package fingerprint

import (
	"math/rand"
	"net"
	"time"

	"golang.org/x/sys/unix"

	"scanforge/internal/model"
	"scanforge/internal/netraw"
)

// CollectTCP sends a single SYN to a known-open port and derives a
// TcpFingerprint from the SYN-ACK: initial TTL, window, MSS, option
// order, DF flag, and ECN/CWR echo behavior. Returns nil if the raw
// socket cannot be opened or no reply arrives within timeout.
func CollectTCP(target string, port int, timeout time.Duration) *TcpFingerprint {
	dstIP := net.ParseIP(target)
	if dstIP == nil {
		return nil
	}
	v6 := dstIP.To4() == nil

	srcIP, err := outboundAddr(target)
	if err != nil {
		return nil
	}

	srcPort := 30000 + rand.Intn(20000)
	seq := rand.Uint32()

	tcpPkt, err := netraw.BuildTCP(netraw.TCPDescriptor{
		SrcIP: srcIP, DstIP: dstIP,
		SrcPort: srcPort, DstPort: port,
		Seq:    seq,
		Flags:  model.TcpFlags{SYN: true, ECE: true, CWR: true},
		Window: 29200,
		Options: []netraw.TCPOption{
			{Kind: netraw.TCPOptionMSS, Length: 4, Data: []byte{0x05, 0xb4}},
			{Kind: netraw.TCPOptionSACKPermit, Length: 2},
			{Kind: netraw.TCPOptionWScale, Length: 3, Data: []byte{0x07}},
		},
	})
	if err != nil {
		return nil
	}

	raw, err := netraw.NewRawSocket(unix.IPPROTO_TCP, v6)
	if err != nil {
		return nil
	}
	defer raw.Close()

	var ipPkt []byte
	id := rand.Intn(65535)
	if v6 {
		ipPkt, err = netraw.BuildIPv6(netraw.IPv6Descriptor{Src: srcIP, Dst: dstIP, NextHeader: netraw.ProtoTCP, HopLimit: 64, Payload: tcpPkt})
	} else {
		ipPkt, err = netraw.BuildIPv4(netraw.IPv4Descriptor{Src: srcIP, Dst: dstIP, Protocol: netraw.ProtoTCP, TTL: 64, ID: id, DontFrag: true, Payload: tcpPkt})
	}
	if err != nil {
		return nil
	}

	if err := raw.Send(dstIP, ipPkt); err != nil {
		return nil
	}

	deadline := time.Now().Add(timeout)
	buf := make([]byte, 65535)
	for time.Now().Before(deadline) {
		n, _, err := raw.Receive(buf, time.Until(deadline))
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

		fp := &TcpFingerprint{
			WindowSize: int(tcp.Window),
			DFFlag:     true,
			ECNSupport: tcp.Flags.ECE,
			CWRFlag:    tcp.Flags.CWR,
		}
		if tcp.Flags.RST {
			fp.RstBehavior = RSTImmediate
		} else if tcp.Flags.SYN && tcp.Flags.ACK {
			fp.SynAckPattern = "SA"
		}
		for _, opt := range tcp.Options {
			fp.OptionOrder = append(fp.OptionOrder, opt.Kind)
			if opt.Kind == netraw.TCPOptionMSS && len(opt.Data) == 2 {
				fp.MSS = int(opt.Data[0])<<8 | int(opt.Data[1])
			}
		}
		if parsed.IPv4 != nil {
			fp.InitialTTL = parsed.IPv4.TTL
			fp.DFFlag = parsed.IPv4.DontFrag
			fp.IPIDPattern = classifyIPID(parsed.IPv4.ID)
		} else if parsed.IPv6 != nil {
			fp.InitialTTL = parsed.IPv6.HopLimit
		}
		return fp
	}
	return nil
}

func classifyIPID(id int) IPIDPattern {
	if id == 0 {
		return IPIDZero
	}
	return IPIDUnknown
}

// outboundAddr returns the address the kernel would route target
// through, via a throwaway UDP "connect" that never sends data.
func outboundAddr(target string) (net.IP, error) {
	conn, err := net.Dial("udp", net.JoinHostPort(target, "80"))
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP, nil
}
