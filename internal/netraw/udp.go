package netraw

import (
	"encoding/binary"
	"net"

	"scanforge/internal/errs"
	"scanforge/internal/model"
)

// UDPDescriptor is the caller-supplied input to BuildUDP.
type UDPDescriptor struct {
	SrcIP, DstIP     net.IP
	SrcPort, DstPort int
	Payload          []byte
}

// ParsedUDPPacket is the symmetric output of ParseUDP.
type ParsedUDPPacket struct {
	SrcPort, DstPort int
	Length           int
	Checksum         uint16
	Payload          []byte
	ChecksumValid    bool
}

// BuildUDP constructs an 8-byte UDP header plus payload with a correct
// pseudo-header checksum for the descriptor's address family.
func BuildUDP(d UDPDescriptor) ([]byte, error) {
	if !model.SameFamily(d.SrcIP, d.DstIP) {
		return nil, errs.New(errs.PacketError, "udp: src/dst address family mismatch")
	}

	length := 8 + len(d.Payload)
	header := make([]byte, 8)
	binary.BigEndian.PutUint16(header[0:2], uint16(d.SrcPort))
	binary.BigEndian.PutUint16(header[2:4], uint16(d.DstPort))
	binary.BigEndian.PutUint16(header[4:6], uint16(length))
	binary.BigEndian.PutUint16(header[6:8], 0)

	full := append(append([]byte{}, header...), d.Payload...)

	var psh []byte
	if d.SrcIP.To4() != nil {
		psh = pseudoHeaderV4(d.SrcIP.To4(), d.DstIP.To4(), 17, uint16(length))
	} else {
		psh = pseudoHeaderV6(d.SrcIP.To16(), d.DstIP.To16(), 17, uint32(length))
	}

	checksum := Checksum(append(psh, full...))
	if checksum == 0 {
		checksum = 0xffff // RFC 768: a computed zero is transmitted as all-ones
	}
	binary.BigEndian.PutUint16(header[6:8], checksum)

	return append(header, d.Payload...), nil
}

// ParseUDP parses a UDP datagram (header + payload). srcIP/dstIP are
// required to recompute the pseudo-header checksum when verifyChecksum
// is set; a zero on-wire checksum is treated as "not computed" and always
// reports valid.
func ParseUDP(b []byte, srcIP, dstIP net.IP, verifyChecksum bool) (*ParsedUDPPacket, error) {
	if len(b) < 8 {
		return nil, errs.New(errs.PacketError, "udp: short header")
	}

	p := &ParsedUDPPacket{
		SrcPort:  int(binary.BigEndian.Uint16(b[0:2])),
		DstPort:  int(binary.BigEndian.Uint16(b[2:4])),
		Length:   int(binary.BigEndian.Uint16(b[4:6])),
		Checksum: binary.BigEndian.Uint16(b[6:8]),
		Payload:  b[8:],
	}

	if p.Checksum == 0 {
		p.ChecksumValid = true
	} else if verifyChecksum && srcIP != nil && dstIP != nil {
		withZero := append([]byte{}, b...)
		binary.BigEndian.PutUint16(withZero[6:8], 0)
		var psh []byte
		if srcIP.To4() != nil {
			psh = pseudoHeaderV4(srcIP.To4(), dstIP.To4(), 17, uint16(len(b)))
		} else {
			psh = pseudoHeaderV6(srcIP.To16(), dstIP.To16(), 17, uint32(len(b)))
		}
		recomputed := Checksum(append(psh, withZero...))
		p.ChecksumValid = recomputed == p.Checksum
	}

	return p, nil
}
