package netraw

import (
	"encoding/binary"
	"net"

	"scanforge/internal/errs"
)

// IPv6Descriptor is the caller-supplied input to BuildIPv6. Unlike IPv4,
// golang.org/x/net/ipv6 has no header Marshal helper, so the 40-byte fixed
// header is built by hand per RFC 8200.
type IPv6Descriptor struct {
	Src, Dst     net.IP
	NextHeader   int // 6=TCP, 17=UDP, 58=ICMPv6
	HopLimit     int
	TrafficClass int
	FlowLabel    uint32
	Payload      []byte
}

// ParsedIPv6Packet is the symmetric output of ParseIPv6.
type ParsedIPv6Packet struct {
	Src, Dst     net.IP
	NextHeader   int
	HopLimit     int
	TrafficClass int
	FlowLabel    uint32
	Payload      []byte
}

const ipv6HeaderLen = 40

// BuildIPv6 constructs a 40-byte IPv6 fixed header (version 6, no
// extension headers) prepended to payload.
func BuildIPv6(d IPv6Descriptor) ([]byte, error) {
	src16, dst16 := d.Src.To16(), d.Dst.To16()
	if src16 == nil || dst16 == nil || d.Src.To4() != nil || d.Dst.To4() != nil {
		return nil, errs.New(errs.PacketError, "ipv6: src/dst must be IPv6 addresses")
	}

	b := make([]byte, ipv6HeaderLen+len(d.Payload))

	vtc := uint32(6)<<28 | uint32(d.TrafficClass&0xff)<<20 | (d.FlowLabel & 0xfffff)
	binary.BigEndian.PutUint32(b[0:4], vtc)
	binary.BigEndian.PutUint16(b[4:6], uint16(len(d.Payload)))
	b[6] = byte(d.NextHeader)
	b[7] = byte(d.HopLimit)
	copy(b[8:24], src16)
	copy(b[24:40], dst16)
	copy(b[40:], d.Payload)

	return b, nil
}

// ParseIPv6 parses an IPv6 datagram's 40-byte fixed header (extension
// headers are not walked; NextHeader is reported as-is).
func ParseIPv6(b []byte) (*ParsedIPv6Packet, error) {
	if len(b) < ipv6HeaderLen {
		return nil, errs.New(errs.PacketError, "ipv6: short header")
	}
	vtc := binary.BigEndian.Uint32(b[0:4])
	payloadLen := int(binary.BigEndian.Uint16(b[4:6]))

	payload := b[ipv6HeaderLen:]
	if ipv6HeaderLen+payloadLen <= len(b) {
		payload = b[ipv6HeaderLen : ipv6HeaderLen+payloadLen]
	}

	return &ParsedIPv6Packet{
		Src:          net.IP(append([]byte{}, b[8:24]...)),
		Dst:          net.IP(append([]byte{}, b[24:40]...)),
		NextHeader:   int(b[6]),
		HopLimit:     int(b[7]),
		TrafficClass: int((vtc >> 20) & 0xff),
		FlowLabel:    vtc & 0xfffff,
		Payload:      payload,
	}, nil
}
