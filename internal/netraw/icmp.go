package netraw

import (
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"scanforge/internal/errs"
)

// ICMPDescriptor is the caller-supplied input to BuildICMP.
type ICMPDescriptor struct {
	V6       bool
	Type     icmp.Type // e.g. ipv4.ICMPTypeEcho or ipv6.ICMPTypeEchoRequest
	Code     int
	ID, Seq  int
	Data     []byte
	// PseudoSrc/PseudoDst are required only for ICMPv6, whose checksum
	// covers a pseudo-header per RFC 4443 section 2.3.
	PseudoSrc, PseudoDst []byte
}

// ParsedICMPPacket is the symmetric output of ParseICMP.
type ParsedICMPPacket struct {
	Type    int
	Code    int
	ID, Seq int
	Data    []byte
}

// BuildICMP constructs an ICMP echo message (request or reply, v4 or v6)
// with a correct checksum.
func BuildICMP(d ICMPDescriptor) ([]byte, error) {
	msg := icmp.Message{
		Type: d.Type,
		Code: d.Code,
		Body: &icmp.Echo{
			ID:   d.ID,
			Seq:  d.Seq,
			Data: d.Data,
		},
	}

	b, err := msg.Marshal(nil)
	if err != nil {
		return nil, errs.Wrap(errs.PacketError, "icmp: marshal", err)
	}

	if d.V6 {
		if len(d.PseudoSrc) != 16 || len(d.PseudoDst) != 16 {
			return nil, errs.New(errs.PacketError, "icmp: ipv6 requires pseudo-header addresses")
		}
		psh := pseudoHeaderV6(d.PseudoSrc, d.PseudoDst, 58, uint32(len(b)))
		sum := Checksum(append(psh, b...))
		b[2], b[3] = byte(sum>>8), byte(sum)
	}

	return b, nil
}

// ParseICMP parses an ICMP echo request/reply. It only decodes fields; the
// checksum is not verified.
func ParseICMP(b []byte, v6 bool) (*ParsedICMPPacket, error) {
	proto := 1
	if v6 {
		proto = 58
	}
	msg, err := icmp.ParseMessage(proto, b)
	if err != nil {
		return nil, errs.Wrap(errs.PacketError, "icmp: parse", err)
	}

	echo, ok := msg.Body.(*icmp.Echo)
	if !ok {
		return &ParsedICMPPacket{Type: typeNum(msg.Type), Code: msg.Code}, nil
	}

	return &ParsedICMPPacket{
		Type: typeNum(msg.Type),
		Code: msg.Code,
		ID:   echo.ID,
		Seq:  echo.Seq,
		Data: echo.Data,
	}, nil
}

func typeNum(t icmp.Type) int {
	switch v := t.(type) {
	case ipv4.ICMPType:
		return int(v)
	case ipv6.ICMPType:
		return int(v)
	default:
		return -1
	}
}
