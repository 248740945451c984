package netraw

import (
	"net"

	"golang.org/x/net/ipv4"

	"scanforge/internal/errs"
)

// IPv4Descriptor is the caller-supplied input to BuildIPv4.
type IPv4Descriptor struct {
	Src, Dst   net.IP
	Protocol   int // 6=TCP, 17=UDP, 1=ICMPv4
	TTL        int
	ID         int
	DontFrag   bool
	Payload    []byte
}

// ParsedIPv4Packet is the symmetric output of ParseIPv4.
type ParsedIPv4Packet struct {
	Src, Dst net.IP
	Protocol int
	TTL      int
	ID       int
	DontFrag bool
	Payload  []byte
}

// BuildIPv4 constructs an IPv4 header (version 4, IHL 5, DF set per
// descriptor, DSCP/ECN zero) prepended to payload, per the wire contract:
// total_length = header + payload, identification caller-supplied, TTL
// caller-supplied, protocol from the descriptor.
func BuildIPv4(d IPv4Descriptor) ([]byte, error) {
	src4, dst4 := d.Src.To4(), d.Dst.To4()
	if src4 == nil || dst4 == nil {
		return nil, errs.New(errs.PacketError, "ipv4: src/dst must be IPv4 addresses")
	}

	flags := ipv4.Flag(0)
	if d.DontFrag {
		flags = ipv4.DontFragment
	}

	h := &ipv4.Header{
		Version:  4,
		Len:      ipv4.HeaderLen,
		TOS:      0,
		TotalLen: ipv4.HeaderLen + len(d.Payload),
		ID:       d.ID,
		Flags:    flags,
		TTL:      d.TTL,
		Protocol: d.Protocol,
		Src:      src4,
		Dst:      dst4,
	}

	hb, err := h.Marshal()
	if err != nil {
		return nil, errs.Wrap(errs.PacketError, "ipv4: marshal header", err)
	}

	// golang.org/x/net/ipv4 leaves the checksum field zero; fill it in.
	sum := Checksum(hb)
	hb[10] = byte(sum >> 8)
	hb[11] = byte(sum)

	return append(hb, d.Payload...), nil
}

// ParseIPv4 parses an IPv4 datagram (header + payload).
func ParseIPv4(b []byte) (*ParsedIPv4Packet, error) {
	h, err := ipv4.ParseHeader(b)
	if err != nil {
		return nil, errs.Wrap(errs.PacketError, "ipv4: parse header", err)
	}
	payload := b[h.Len:]
	if h.TotalLen > 0 && h.TotalLen <= len(b) {
		payload = b[h.Len:h.TotalLen]
	}
	return &ParsedIPv4Packet{
		Src:      h.Src,
		Dst:      h.Dst,
		Protocol: h.Protocol,
		TTL:      h.TTL,
		ID:       h.ID,
		DontFrag: h.Flags&ipv4.DontFragment != 0,
		Payload:  payload,
	}, nil
}
