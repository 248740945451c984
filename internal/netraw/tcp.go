package netraw

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"

	"github.com/lunixbochs/struc"

	"scanforge/internal/errs"
	"scanforge/internal/model"
)

// TCP option kinds (RFC 793 / 1323 / 2018).
const (
	TCPOptionEOL        = 0
	TCPOptionNOP        = 1
	TCPOptionMSS        = 2
	TCPOptionWScale     = 3
	TCPOptionSACKPermit = 4
	TCPOptionSACK       = 5
	TCPOptionTimestamp  = 8
)

// TCPOption is one TCP header option.
type TCPOption struct {
	Kind   uint8
	Length uint8
	Data   []byte
}

// tcpWire is the fixed 20-byte TCP header, struc-packed in network byte
// order; options are appended separately since struc needs a fixed layout.
type tcpWire struct {
	SrcPort   uint16
	DstPort   uint16
	Seq       uint32
	Ack       uint32
	OffsetRes uint8 // data-offset(4) | reserved(3) | NS(1)
	Flags     uint8 // CWR ECE URG ACK PSH RST SYN FIN
	Window    uint16
	Checksum  uint16
	UrgentPtr uint16
}

var structOpts = &struc.Options{Order: binary.BigEndian}

// TCPDescriptor is the caller-supplied input to BuildTCP.
type TCPDescriptor struct {
	SrcIP, DstIP       net.IP
	SrcPort, DstPort   int
	Seq, Ack           uint32
	Flags              model.TcpFlags
	Window             uint16
	UrgentPtr          uint16
	Options            []TCPOption
	Payload            []byte
}

// ParsedTCPPacket is the symmetric output of ParseTCP.
type ParsedTCPPacket struct {
	SrcPort, DstPort int
	Seq, Ack         uint32
	DataOffset       int
	Flags            model.TcpFlags
	Window           uint16
	Checksum         uint16
	UrgentPtr        uint16
	Options          []TCPOption
	Payload          []byte
	ChecksumValid    bool
}

func packOptions(opts []TCPOption) []byte {
	var buf bytes.Buffer
	for _, o := range opts {
		buf.WriteByte(o.Kind)
		if o.Kind == TCPOptionNOP || o.Kind == TCPOptionEOL {
			continue
		}
		buf.WriteByte(o.Length)
		buf.Write(o.Data)
	}
	for buf.Len()%4 != 0 {
		buf.WriteByte(TCPOptionNOP)
	}
	return buf.Bytes()
}

// BuildTCP constructs a complete TCP segment (header + options + payload)
// with a correct pseudo-header checksum for the descriptor's address
// family. SrcIP and DstIP must share a family.
func BuildTCP(d TCPDescriptor) ([]byte, error) {
	if !model.SameFamily(d.SrcIP, d.DstIP) {
		return nil, errs.New(errs.PacketError, "tcp: src/dst address family mismatch")
	}

	optData := packOptions(d.Options)
	headerLen := 20 + len(optData)
	if headerLen > 60 {
		return nil, errs.New(errs.PacketError, fmt.Sprintf("tcp: header too large: %d", headerLen))
	}
	dataOffset := headerLen / 4

	var offsetRes uint8 = uint8(dataOffset << 4)
	if d.Flags.NS {
		offsetRes |= 0x01
	}

	wire := tcpWire{
		SrcPort:   uint16(d.SrcPort),
		DstPort:   uint16(d.DstPort),
		Seq:       d.Seq,
		Ack:       d.Ack,
		OffsetRes: offsetRes,
		Flags:     d.Flags.Pack8(),
		Window:    d.Window,
		Checksum:  0,
		UrgentPtr: d.UrgentPtr,
	}

	var buf bytes.Buffer
	if err := struc.PackWithOptions(&buf, &wire, structOpts); err != nil {
		return nil, errs.Wrap(errs.PacketError, "tcp: pack header", err)
	}
	header := buf.Bytes()
	header = append(header, optData...)

	full := append(append([]byte{}, header...), d.Payload...)

	var psh []byte
	if d.SrcIP.To4() != nil {
		psh = pseudoHeaderV4(d.SrcIP.To4(), d.DstIP.To4(), 6, uint16(len(full)))
	} else {
		psh = pseudoHeaderV6(d.SrcIP.To16(), d.DstIP.To16(), 6, uint32(len(full)))
	}

	sumInput := append(append([]byte{}, psh...), full...)
	checksum := Checksum(sumInput)
	binary.BigEndian.PutUint16(header[16:18], checksum)

	return append(header, d.Payload...), nil
}

// ParseTCP parses a TCP segment (header onward, no IP header). srcIP/dstIP
// are required to recompute the pseudo-header checksum; if
// verifyChecksum is false, ChecksumValid is left false without
// recomputation.
func ParseTCP(b []byte, srcIP, dstIP net.IP, verifyChecksum bool) (*ParsedTCPPacket, error) {
	if len(b) < 20 {
		return nil, errs.New(errs.PacketError, "tcp: short header")
	}

	dataOffset := int(b[12]>>4) * 4
	if dataOffset < 20 || dataOffset > len(b) {
		return nil, errs.New(errs.PacketError, "tcp: invalid data offset")
	}

	p := &ParsedTCPPacket{
		SrcPort:    int(binary.BigEndian.Uint16(b[0:2])),
		DstPort:    int(binary.BigEndian.Uint16(b[2:4])),
		Seq:        binary.BigEndian.Uint32(b[4:8]),
		Ack:        binary.BigEndian.Uint32(b[8:12]),
		DataOffset: dataOffset,
		Flags:      model.FlagsFromPack8(b[13]),
		Window:     binary.BigEndian.Uint16(b[14:16]),
		Checksum:   binary.BigEndian.Uint16(b[16:18]),
		UrgentPtr:  binary.BigEndian.Uint16(b[18:20]),
		Options:    parseOptions(b[20:dataOffset]),
		Payload:    b[dataOffset:],
	}
	p.Flags.NS = b[12]&0x01 != 0

	if verifyChecksum && srcIP != nil && dstIP != nil {
		withZero := append([]byte{}, b...)
		binary.BigEndian.PutUint16(withZero[16:18], 0)
		var psh []byte
		if srcIP.To4() != nil {
			psh = pseudoHeaderV4(srcIP.To4(), dstIP.To4(), 6, uint16(len(b)))
		} else {
			psh = pseudoHeaderV6(srcIP.To16(), dstIP.To16(), 6, uint32(len(b)))
		}
		recomputed := Checksum(append(psh, withZero...))
		p.ChecksumValid = recomputed == p.Checksum
	}

	return p, nil
}

func parseOptions(b []byte) []TCPOption {
	var opts []TCPOption
	i := 0
	for i < len(b) {
		kind := b[i]
		if kind == TCPOptionEOL {
			break
		}
		if kind == TCPOptionNOP {
			opts = append(opts, TCPOption{Kind: kind})
			i++
			continue
		}
		if i+1 >= len(b) {
			break
		}
		length := int(b[i+1])
		if length < 2 || i+length > len(b) {
			break
		}
		opts = append(opts, TCPOption{Kind: kind, Length: uint8(length), Data: append([]byte{}, b[i+2:i+length]...)})
		i += length
	}
	return opts
}
