//go:build windows

package netraw

import (
	"net"
	"time"

	"scanforge/internal/errs"
)

// RawSocket is a placeholder on Windows: Winsock2 blocks raw TCP sends,
// and a real implementation needs Npcap, which brings in a CGO
// dependency this module does not take. TCP-SYN scanning and active OS
// fingerprinting are unavailable on this platform; TCP-connect, UDP and
// ICMP-via-pro-bing scans are unaffected since they don't go through
// RawSocket.
type RawSocket struct{}

func NewRawSocket(protocol int, v6 bool) (*RawSocket, error) {
	return nil, errs.New(errs.PacketError, "raw sockets are not supported on windows")
}

func (s *RawSocket) Close() error { return nil }

func (s *RawSocket) Send(dst net.IP, packet []byte) error {
	return errs.New(errs.PacketError, "raw sockets are not supported on windows")
}

func (s *RawSocket) Receive(buffer []byte, timeout time.Duration) (int, net.IP, error) {
	return 0, nil, errs.New(errs.PacketError, "raw sockets are not supported on windows")
}

func (s *RawSocket) BindToInterface(ifaceName string) error {
	return errs.New(errs.PacketError, "raw sockets are not supported on windows")
}

func (s *RawSocket) SetOption(opt SocketOption) error {
	return errs.New(errs.PacketError, "raw sockets are not supported on windows")
}
