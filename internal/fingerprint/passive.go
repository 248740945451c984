package fingerprint

import (
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// CollectPassive derives an OS profile from externally captured SYN/SYN-ACK
// traffic rather than active probing. Packets are expected to already be
// decoded (e.g. read from a pcap file or a live capture handle upstream);
// this collector only looks at their TCP/IP layers.
func CollectPassive(packets []gopacket.Packet) *PassiveFingerprintResult {
	ttlCounts := map[int]int{}
	mssCounts := map[int]int{}
	var synAckWindows []float64
	var scale int
	sawHandshake := false
	var firstSeen, lastSeen time.Time

	for _, pkt := range packets {
		tcpLayer := pkt.Layer(layers.LayerTypeTCP)
		if tcpLayer == nil {
			continue
		}
		tcp := tcpLayer.(*layers.TCP)
		if !tcp.SYN {
			continue
		}

		ttl := 0
		if ip4 := pkt.Layer(layers.LayerTypeIPv4); ip4 != nil {
			ttl = int(ip4.(*layers.IPv4).TTL)
		} else if ip6 := pkt.Layer(layers.LayerTypeIPv6); ip6 != nil {
			ttl = int(ip6.(*layers.IPv6).HopLimit)
		}
		if ttl > 0 {
			ttlCounts[ttl]++
		}

		mss, ws, hasScale := parseSynOptions(tcp.Options)
		if mss > 0 {
			mssCounts[mss]++
		}
		if hasScale {
			scale = ws
		}

		if tcp.SYN && tcp.ACK {
			sawHandshake = true
			synAckWindows = append(synAckWindows, float64(tcp.Window))
		}

		ts := pkt.Metadata().Timestamp
		if firstSeen.IsZero() || ts.Before(firstSeen) {
			firstSeen = ts
		}
		if ts.After(lastSeen) {
			lastSeen = ts
		}
	}

	if len(ttlCounts) == 0 && len(mssCounts) == 0 {
		return nil
	}

	result := &PassiveFingerprintResult{
		MostCommonTTL:   modeInt(ttlCounts),
		MostCommonMSS:   modeInt(mssCounts),
		AvgSynAckWindow: avgFloat(synAckWindows),
		WindowScale:     scale,
		UptimeProxy:     lastSeen.Sub(firstSeen),
		SampleCount:     len(packets),
	}
	result.Confidence = passiveConfidence(result, sawHandshake)
	return result
}

func parseSynOptions(opts []layers.TCPOption) (mss int, windowScale int, hasScale bool) {
	for _, o := range opts {
		switch o.OptionType {
		case layers.TCPOptionKindMSS:
			if len(o.OptionData) == 2 {
				mss = int(o.OptionData[0])<<8 | int(o.OptionData[1])
			}
		case layers.TCPOptionKindWindowScale:
			if len(o.OptionData) == 1 {
				windowScale = int(o.OptionData[0])
				hasScale = true
			}
		}
	}
	return mss, windowScale, hasScale
}

func modeInt(counts map[int]int) int {
	best, bestCount := 0, 0
	for v, c := range counts {
		if c > bestCount {
			best, bestCount = v, c
		}
	}
	return best
}

func avgFloat(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// passiveConfidence blends sample volume with feature coverage: a bigger,
// more complete capture earns higher trust in the derived profile.
func passiveConfidence(r *PassiveFingerprintResult, sawHandshake bool) float64 {
	c := 0.0
	switch {
	case r.SampleCount >= 50:
		c += 0.4
	case r.SampleCount >= 10:
		c += 0.2
	default:
		c += 0.1
	}
	if r.MostCommonTTL > 0 && r.MostCommonMSS > 0 {
		c += 0.3
	}
	if sawHandshake {
		c += 0.3
	}
	if c > 1 {
		c = 1
	}
	return c
}
