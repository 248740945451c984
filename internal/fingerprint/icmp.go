package fingerprint

import (
	"bytes"
	"math/rand"
	"net"
	"time"

	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"

	"scanforge/internal/netraw"
)

// CollectICMP sends an Echo Request and a handful of rapid follow-ups to
// classify reply TTL, payload echo fidelity, and rate-limit behavior.
func CollectICMP(target string, timeout time.Duration) *IcmpFingerprint {
	dstIP := net.ParseIP(target)
	if dstIP == nil || dstIP.To4() == nil {
		return nil
	}

	raw, err := netraw.NewRawSocket(unix.IPPROTO_ICMP, false)
	if err != nil {
		return nil
	}
	defer raw.Close()

	srcIP, err := outboundAddr(target)
	if err != nil {
		return nil
	}

	payload := []byte("scanforge-icmp-probe")
	id := rand.Intn(65535)

	var replies []time.Duration
	var lastTTL int
	var echoedExact bool
	respondedCount := 0

	for seq := 1; seq <= 3; seq++ {
		start := time.Now()
		ok, ttl, exact := sendAndAwaitEcho(raw, srcIP, dstIP, id, seq, payload, timeout)
		if ok {
			respondedCount++
			replies = append(replies, time.Since(start))
			lastTTL = ttl
			echoedExact = exact
		}
		time.Sleep(50 * time.Millisecond)
	}

	if respondedCount == 0 {
		return nil
	}

	return &IcmpFingerprint{
		EchoReplyTTL:       lastTTL,
		PayloadEchoedExact: echoedExact,
		RateLimit:          classifyRateLimit(respondedCount, 3),
		ResponseTime:       avgDuration(replies),
	}
}

func sendAndAwaitEcho(raw *netraw.RawSocket, srcIP, dstIP net.IP, id, seq int, payload []byte, timeout time.Duration) (ok bool, ttl int, echoedExact bool) {
	msg, err := netraw.BuildICMP(netraw.ICMPDescriptor{Type: ipv4.ICMPTypeEcho, ID: id, Seq: seq, Data: payload})
	if err != nil {
		return false, 0, false
	}
	ipPkt, err := netraw.BuildIPv4(netraw.IPv4Descriptor{
		Src: srcIP, Dst: dstIP, Protocol: netraw.ProtoICMP, TTL: 64, ID: rand.Intn(65535), DontFrag: true, Payload: msg,
	})
	if err != nil {
		return false, 0, false
	}
	if err := raw.Send(dstIP, ipPkt); err != nil {
		return false, 0, false
	}

	deadline := time.Now().Add(timeout)
	buf := make([]byte, 65535)
	for time.Now().Before(deadline) {
		n, _, err := raw.Receive(buf, time.Until(deadline))
		if err != nil {
			return false, 0, false
		}
		parsed, err := netraw.Parse(buf[:n], false)
		if err != nil || parsed.ICMP == nil {
			continue
		}
		if parsed.ICMP.ID != id || parsed.ICMP.Seq != seq {
			continue
		}
		ttl := 0
		if parsed.IPv4 != nil {
			ttl = parsed.IPv4.TTL
		}
		return true, ttl, bytes.Equal(parsed.ICMP.Data, payload)
	}
	return false, 0, false
}

func classifyRateLimit(responded, sent int) RateLimitPattern {
	switch {
	case responded == sent:
		return RateLimitNone
	case responded == 0:
		return RateLimitFixedRate
	default:
		return RateLimitBurstThrottle
	}
}

func avgDuration(ds []time.Duration) time.Duration {
	if len(ds) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range ds {
		sum += d
	}
	return sum / time.Duration(len(ds))
}
