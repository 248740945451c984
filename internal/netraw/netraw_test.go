package netraw

import (
	"net"
	"testing"

	"golang.org/x/net/ipv4"

	"scanforge/internal/model"
)

func TestChecksumKnownVector(t *testing.T) {
	// RFC 1071 worked example.
	data := []byte{0x00, 0x01, 0xf2, 0x03, 0xf4, 0xf5, 0xf6, 0xf7}
	got := Checksum(data)
	if got != 0x220d {
		t.Fatalf("checksum = %#04x, want 0x220d", got)
	}
}

func TestBuildParseTCPRoundTrip(t *testing.T) {
	src := net.ParseIP("192.168.1.10")
	dst := net.ParseIP("192.168.1.20")

	d := TCPDescriptor{
		SrcIP:   src,
		DstIP:   dst,
		SrcPort: 54321,
		DstPort: 80,
		Seq:     1000,
		Flags:   model.TcpFlags{SYN: true},
		Window:  65535,
		Options: []TCPOption{
			{Kind: TCPOptionMSS, Length: 4, Data: []byte{0x05, 0xb4}},
		},
	}

	b, err := BuildTCP(d)
	if err != nil {
		t.Fatalf("BuildTCP: %v", err)
	}

	p, err := ParseTCP(b, src, dst, true)
	if err != nil {
		t.Fatalf("ParseTCP: %v", err)
	}

	if p.SrcPort != 54321 || p.DstPort != 80 {
		t.Fatalf("ports = %d/%d, want 54321/80", p.SrcPort, p.DstPort)
	}
	if !p.Flags.SYN || p.Flags.ACK {
		t.Fatalf("flags = %+v, want SYN only", p.Flags)
	}
	if !p.ChecksumValid {
		t.Fatal("checksum did not validate")
	}
	if len(p.Options) != 1 || p.Options[0].Kind != TCPOptionMSS {
		t.Fatalf("options = %+v, want single MSS option", p.Options)
	}
}

func TestTCPFlagsPack16RoundTrip(t *testing.T) {
	f := model.TcpFlags{SYN: true, ECE: true, NS: true}
	v := f.Pack16()
	got := model.FlagsFromPack16(v)
	if got != f {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", got, f)
	}
}

func TestBuildParseUDPRoundTrip(t *testing.T) {
	src := net.ParseIP("10.0.0.1")
	dst := net.ParseIP("10.0.0.2")

	b, err := BuildUDP(UDPDescriptor{
		SrcIP:   src,
		DstIP:   dst,
		SrcPort: 33333,
		DstPort: 53,
		Payload: []byte("probe"),
	})
	if err != nil {
		t.Fatalf("BuildUDP: %v", err)
	}

	p, err := ParseUDP(b, src, dst, true)
	if err != nil {
		t.Fatalf("ParseUDP: %v", err)
	}
	if p.DstPort != 53 || string(p.Payload) != "probe" {
		t.Fatalf("got dstport=%d payload=%q", p.DstPort, p.Payload)
	}
	if !p.ChecksumValid {
		t.Fatal("checksum did not validate")
	}
}

func TestBuildParseIPv4RoundTrip(t *testing.T) {
	src := net.ParseIP("172.16.0.1")
	dst := net.ParseIP("172.16.0.2")

	b, err := BuildIPv4(IPv4Descriptor{
		Src:      src,
		Dst:      dst,
		Protocol: ProtoTCP,
		TTL:      64,
		ID:       42,
		DontFrag: true,
		Payload:  []byte{1, 2, 3, 4},
	})
	if err != nil {
		t.Fatalf("BuildIPv4: %v", err)
	}

	p, err := ParseIPv4(b)
	if err != nil {
		t.Fatalf("ParseIPv4: %v", err)
	}
	if !p.Src.Equal(src) || !p.Dst.Equal(dst) {
		t.Fatalf("addresses mismatch: src=%v dst=%v", p.Src, p.Dst)
	}
	if p.TTL != 64 || p.Protocol != ProtoTCP || !p.DontFrag {
		t.Fatalf("header fields mismatch: %+v", p)
	}
	if len(p.Payload) != 4 {
		t.Fatalf("payload length = %d, want 4", len(p.Payload))
	}
}

func TestBuildParseIPv6RoundTrip(t *testing.T) {
	src := net.ParseIP("fe80::1")
	dst := net.ParseIP("fe80::2")

	b, err := BuildIPv6(IPv6Descriptor{
		Src:        src,
		Dst:        dst,
		NextHeader: ProtoUDP,
		HopLimit:   32,
		Payload:    []byte{9, 9, 9},
	})
	if err != nil {
		t.Fatalf("BuildIPv6: %v", err)
	}

	p, err := ParseIPv6(b)
	if err != nil {
		t.Fatalf("ParseIPv6: %v", err)
	}
	if !p.Src.Equal(src) || !p.Dst.Equal(dst) {
		t.Fatalf("addresses mismatch: src=%v dst=%v", p.Src, p.Dst)
	}
	if p.HopLimit != 32 || p.NextHeader != ProtoUDP {
		t.Fatalf("header fields mismatch: %+v", p)
	}
}

func TestBuildParseICMPRoundTrip(t *testing.T) {
	b, err := BuildICMP(ICMPDescriptor{
		Type: ipv4.ICMPTypeEcho,
		ID:   1234,
		Seq:  1,
		Data: []byte("ping"),
	})
	if err != nil {
		t.Fatalf("BuildICMP: %v", err)
	}

	p, err := ParseICMP(b, false)
	if err != nil {
		t.Fatalf("ParseICMP: %v", err)
	}
	if p.ID != 1234 || p.Seq != 1 || string(p.Data) != "ping" {
		t.Fatalf("got %+v", p)
	}
}

func TestParseDispatchesByVersionAndProtocol(t *testing.T) {
	src := net.ParseIP("192.0.2.1")
	dst := net.ParseIP("192.0.2.2")

	tcp, err := BuildTCP(TCPDescriptor{SrcIP: src, DstIP: dst, SrcPort: 1111, DstPort: 443, Flags: model.TcpFlags{SYN: true}})
	if err != nil {
		t.Fatalf("BuildTCP: %v", err)
	}
	ip, err := BuildIPv4(IPv4Descriptor{Src: src, Dst: dst, Protocol: ProtoTCP, TTL: 64, Payload: tcp})
	if err != nil {
		t.Fatalf("BuildIPv4: %v", err)
	}

	parsed, err := Parse(ip, true)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.IPVersion != 4 || parsed.Protocol != ProtoTCP {
		t.Fatalf("got version=%d protocol=%d", parsed.IPVersion, parsed.Protocol)
	}
	if parsed.TCP == nil || parsed.TCP.DstPort != 443 {
		t.Fatalf("TCP layer not decoded: %+v", parsed.TCP)
	}
}
