//go:build linux

package netraw

import (
	"net"
	"time"

	"golang.org/x/sys/unix"

	"scanforge/internal/errs"
)

// RawSocket is a protocol-family-aware raw socket handle. V6 selects
// AF_INET6; otherwise AF_INET with IP_HDRINCL so callers fully control
// the IP header (required for TCP-SYN scanning and OS fingerprint probes).
type RawSocket struct {
	fd  int
	v6  bool
}

// NewRawSocket opens a raw socket for the given IP protocol number
// (unix.IPPROTO_TCP, unix.IPPROTO_ICMP, unix.IPPROTO_ICMPV6, ...).
func NewRawSocket(protocol int, v6 bool) (*RawSocket, error) {
	family := unix.AF_INET
	if v6 {
		family = unix.AF_INET6
	}

	fd, err := unix.Socket(family, unix.SOCK_RAW, protocol)
	if err != nil {
		if err == unix.EPERM || err == unix.EACCES {
			return nil, errs.NewPermissionDenied("open raw socket")
		}
		return nil, errs.Wrap(errs.PacketError, "raw socket: create", err)
	}

	if !v6 {
		if err := unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_HDRINCL, 1); err != nil {
			unix.Close(fd)
			return nil, errs.Wrap(errs.PacketError, "raw socket: set IP_HDRINCL", err)
		}
	}

	return &RawSocket{fd: fd, v6: v6}, nil
}

// Close releases the underlying file descriptor.
func (s *RawSocket) Close() error {
	return unix.Close(s.fd)
}

// Send writes a complete packet (including the IP header for IPv4) to dst.
func (s *RawSocket) Send(dst net.IP, packet []byte) error {
	if s.v6 {
		dst16 := dst.To16()
		if dst16 == nil {
			return errs.New(errs.PacketError, "raw socket: dst is not a valid IPv6 address")
		}
		var addr unix.SockaddrInet6
		copy(addr.Addr[:], dst16)
		if err := unix.Sendto(s.fd, packet, 0, &addr); err != nil {
			return errs.Wrap(errs.PacketError, "raw socket: sendto", err)
		}
		return nil
	}

	dst4 := dst.To4()
	if dst4 == nil {
		return errs.New(errs.PacketError, "raw socket: dst is not a valid IPv4 address")
	}
	var addr unix.SockaddrInet4
	copy(addr.Addr[:], dst4)
	if err := unix.Sendto(s.fd, packet, 0, &addr); err != nil {
		return errs.Wrap(errs.PacketError, "raw socket: sendto", err)
	}
	return nil
}

// Receive reads one packet into buffer with the given read deadline,
// returning the byte count and source address.
func (s *RawSocket) Receive(buffer []byte, timeout time.Duration) (int, net.IP, error) {
	tv := unix.NsecToTimeval(timeout.Nanoseconds())
	if err := unix.SetsockoptTimeval(s.fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		return 0, nil, errs.Wrap(errs.PacketError, "raw socket: set recv timeout", err)
	}

	n, from, err := unix.Recvfrom(s.fd, buffer, 0)
	if err != nil {
		return 0, nil, errs.Wrap(errs.Timeout, "raw socket: recvfrom", err)
	}

	var src net.IP
	switch addr := from.(type) {
	case *unix.SockaddrInet4:
		src = net.IP(addr.Addr[:])
	case *unix.SockaddrInet6:
		src = net.IP(addr.Addr[:])
	}

	return n, src, nil
}

// BindToInterface restricts the socket to a single network interface.
func (s *RawSocket) BindToInterface(ifaceName string) error {
	if err := unix.BindToDevice(s.fd, ifaceName); err != nil {
		return errs.Wrap(errs.PacketError, "raw socket: bind to device", err)
	}
	return nil
}

// SetOption applies any of opt's non-nil fields to the socket. It is
// idempotent: calling it again with a different subset only touches the
// fields given, leaving the rest at their current value.
func (s *RawSocket) SetOption(opt SocketOption) error {
	if opt.Ttl != nil {
		level, name := unix.IPPROTO_IP, unix.IP_TTL
		if s.v6 {
			level, name = unix.IPPROTO_IPV6, unix.IPV6_UNICAST_HOPS
		}
		if err := unix.SetsockoptInt(s.fd, level, name, *opt.Ttl); err != nil {
			return errs.Wrap(errs.PacketError, "raw socket: set ttl", err)
		}
	}
	if opt.Tos != nil {
		level, name := unix.IPPROTO_IP, unix.IP_TOS
		if s.v6 {
			level, name = unix.IPPROTO_IPV6, unix.IPV6_TCLASS
		}
		if err := unix.SetsockoptInt(s.fd, level, name, *opt.Tos); err != nil {
			return errs.Wrap(errs.PacketError, "raw socket: set tos", err)
		}
	}
	if opt.Broadcast != nil {
		v := 0
		if *opt.Broadcast {
			v = 1
		}
		if err := unix.SetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_BROADCAST, v); err != nil {
			return errs.Wrap(errs.PacketError, "raw socket: set broadcast", err)
		}
	}
	if opt.RecvBuf != nil {
		if err := unix.SetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_RCVBUF, *opt.RecvBuf); err != nil {
			return errs.Wrap(errs.PacketError, "raw socket: set recv buffer size", err)
		}
	}
	if opt.SendBuf != nil {
		if err := unix.SetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_SNDBUF, *opt.SendBuf); err != nil {
			return errs.Wrap(errs.PacketError, "raw socket: set send buffer size", err)
		}
	}
	return nil
}
