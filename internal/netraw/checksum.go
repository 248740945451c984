// Package netraw builds and parses IPv4/IPv6 + TCP/UDP/ICMP frames with
// correct pseudo-header checksums, and exposes a protocol-family-aware
// raw-socket handle per OS.
package netraw

import "encoding/binary"

// Checksum computes the standard 16-bit one's-complement checksum used by
// IPv4, TCP, UDP and ICMP.
func Checksum(data []byte) uint16 {
	var sum uint32
	n := len(data)
	i := 0
	for n > 1 {
		sum += uint32(binary.BigEndian.Uint16(data[i:]))
		i += 2
		n -= 2
	}
	if n > 0 {
		sum += uint32(data[i]) << 8
	}
	for sum>>16 > 0 {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	return ^uint16(sum)
}

// pseudoHeaderV4 builds the 12-byte IPv4 pseudo-header used by TCP/UDP
// checksums: src, dst, zero, protocol, upper-layer length.
func pseudoHeaderV4(src, dst []byte, protocol uint8, length uint16) []byte {
	ph := make([]byte, 12)
	copy(ph[0:4], src)
	copy(ph[4:8], dst)
	ph[8] = 0
	ph[9] = protocol
	binary.BigEndian.PutUint16(ph[10:], length)
	return ph
}

// pseudoHeaderV6 builds the 40-byte IPv6 pseudo-header: src, dst,
// upper-layer length (32-bit), three zero bytes, next-header.
func pseudoHeaderV6(src, dst []byte, nextHeader uint8, length uint32) []byte {
	ph := make([]byte, 40)
	copy(ph[0:16], src)
	copy(ph[16:32], dst)
	binary.BigEndian.PutUint32(ph[32:], length)
	ph[36], ph[37], ph[38] = 0, 0, 0
	ph[39] = nextHeader
	return ph
}
