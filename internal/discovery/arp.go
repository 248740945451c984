package discovery

import (
	"context"
	"time"
)

// ARPProber would resolve liveness via link-layer ARP requests on the
// local segment. It needs an AF_PACKET/BPF raw socket, a layer netraw's
// IP-oriented RawSocket does not expose; until that layer exists this
// prober always reports unavailable so discovery transparently falls
// back to TCPProber, per the "never report Down for an unavailable
// method" contract.
type ARPProber struct{}

func NewARPProber() *ARPProber { return &ARPProber{} }

func (p *ARPProber) Name() string { return "arp" }

func (p *ARPProber) Probe(ctx context.Context, ip string, timeout time.Duration) (*ProbeResult, error) {
	return nil, &unavailableError{reason: "arp: link-layer raw sockets not implemented"}
}
