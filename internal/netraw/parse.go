package netraw

import (
	"scanforge/internal/errs"
)

// Protocol numbers used for dispatch in Parse.
const (
	ProtoICMP   = 1
	ProtoIGMP   = 2
	ProtoTCP    = 6
	ProtoUDP    = 17
	ProtoICMPv6 = 58
)

// ParsedPacket is the top-level classified result of Parse: exactly one
// of IPv4/IPv6 is non-nil, selected by IPVersion, plus at most one of
// TCP/UDP/ICMP, selected by Protocol.
type ParsedPacket struct {
	IPVersion int
	Protocol  int

	IPv4 *ParsedIPv4Packet
	IPv6 *ParsedIPv6Packet
	TCP  *ParsedTCPPacket
	UDP  *ParsedUDPPacket
	ICMP *ParsedICMPPacket
}

// Parse classifies a raw datagram by IP version, then by protocol number
// (TCP=6, UDP=17, ICMPv4=1, ICMPv6=58, IGMP=2), decoding as far as a
// supported upper-layer protocol allows. Unsupported upper-layer
// protocols (e.g. IGMP) are returned with only the IP layer populated.
func Parse(b []byte, verifyChecksum bool) (*ParsedPacket, error) {
	if len(b) < 1 {
		return nil, errs.New(errs.PacketError, "parse: empty packet")
	}

	version := int(b[0] >> 4)

	switch version {
	case 4:
		ip, err := ParseIPv4(b)
		if err != nil {
			return nil, err
		}
		out := &ParsedPacket{IPVersion: 4, Protocol: ip.Protocol, IPv4: ip}
		return parseUpperLayer(out, ip.Protocol, ip.Payload, ip.Src, ip.Dst, verifyChecksum, false)

	case 6:
		ip, err := ParseIPv6(b)
		if err != nil {
			return nil, err
		}
		out := &ParsedPacket{IPVersion: 6, Protocol: ip.NextHeader, IPv6: ip}
		return parseUpperLayer(out, ip.NextHeader, ip.Payload, ip.Src, ip.Dst, verifyChecksum, true)

	default:
		return nil, errs.New(errs.PacketError, "parse: unsupported IP version")
	}
}

func parseUpperLayer(out *ParsedPacket, proto int, payload []byte, src, dst []byte, verifyChecksum bool, v6 bool) (*ParsedPacket, error) {
	switch proto {
	case ProtoTCP:
		tcp, err := ParseTCP(payload, src, dst, verifyChecksum)
		if err != nil {
			return nil, err
		}
		out.TCP = tcp
	case ProtoUDP:
		udp, err := ParseUDP(payload, src, dst, verifyChecksum)
		if err != nil {
			return nil, err
		}
		out.UDP = udp
	case ProtoICMP:
		icmpPkt, err := ParseICMP(payload, false)
		if err != nil {
			return nil, err
		}
		out.ICMP = icmpPkt
	case ProtoICMPv6:
		icmpPkt, err := ParseICMP(payload, true)
		if err != nil {
			return nil, err
		}
		out.ICMP = icmpPkt
	case ProtoIGMP:
		// IGMP has no scan-relevant upper-layer decode; IP layer alone is returned.
	}
	return out, nil
}
