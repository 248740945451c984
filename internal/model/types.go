package model

import "time"

// ScanType enumerates the probe techniques a ScanRequest may combine.
type ScanType string

const (
	TcpConnect ScanType = "tcp_connect"
	TcpSyn     ScanType = "tcp_syn"
	Udp        ScanType = "udp"
)

// OrderedScanTypes is the fixed execution order §4.E mandates.
var OrderedScanTypes = []ScanType{TcpConnect, TcpSyn, Udp}

// HostStatus is the liveness verdict for a target.
type HostStatus int

const (
	Unknown HostStatus = iota
	Up
	Down
)

func (s HostStatus) String() string {
	switch s {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// PortStatus is the per-port classification a scanner emits.
type PortStatus int

const (
	PortUnknown PortStatus = iota
	Open
	Closed
	Filtered
)

func (s PortStatus) String() string {
	switch s {
	case Open:
		return "open"
	case Closed:
		return "closed"
	case Filtered:
		return "filtered"
	default:
		return "unknown"
	}
}

// TcpFlags is the nine-bit TCP control set.
type TcpFlags struct {
	FIN, SYN, RST, PSH, ACK, URG, ECE, CWR, NS bool
}

// Pack16 encodes the full nine-bit set (NS included) into the wire layout:
// byte0 bit0 = NS, byte1 = CWR ECE URG ACK PSH RST SYN FIN (high to low).
func (f TcpFlags) Pack16() uint16 {
	var v uint16
	if f.NS {
		v |= 0x100
	}
	v |= uint16(f.pack8())
	return v
}

func (f TcpFlags) pack8() uint8 {
	var v uint8
	if f.CWR {
		v |= 0x80
	}
	if f.ECE {
		v |= 0x40
	}
	if f.URG {
		v |= 0x20
	}
	if f.ACK {
		v |= 0x10
	}
	if f.PSH {
		v |= 0x08
	}
	if f.RST {
		v |= 0x04
	}
	if f.SYN {
		v |= 0x02
	}
	if f.FIN {
		v |= 0x01
	}
	return v
}

// Pack8 encodes the legacy eight-bit set (NS excluded, always 0).
func (f TcpFlags) Pack8() uint8 { return f.pack8() }

// FlagsFromPack16 decodes the nine-bit wire form.
func FlagsFromPack16(v uint16) TcpFlags {
	f := FlagsFromPack8(uint8(v))
	f.NS = v&0x100 != 0
	return f
}

// FlagsFromPack8 decodes the legacy eight-bit wire form (NS always false).
func FlagsFromPack8(v uint8) TcpFlags {
	return TcpFlags{
		FIN: v&0x01 != 0,
		SYN: v&0x02 != 0,
		RST: v&0x04 != 0,
		PSH: v&0x08 != 0,
		ACK: v&0x10 != 0,
		URG: v&0x20 != 0,
		ECE: v&0x40 != 0,
		CWR: v&0x80 != 0,
	}
}

// PortResult is the immutable outcome of probing a single port.
type PortResult struct {
	Target   string
	Port     int
	Protocol ScanType
	Status   PortStatus

	// ResponseTime is set only when Status == Open, per invariant 3 in §8.
	ResponseTime *time.Duration

	Banner          string
	Flags           *TcpFlags
	ResponsePayload []byte
}

// DiscoveryResult is the outcome of a host-liveness probe.
type DiscoveryResult struct {
	Target string
	Status HostStatus
	Method string // the method actually used, including any TCP fallback
	Err    error
}
