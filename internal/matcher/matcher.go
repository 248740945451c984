// Package matcher scores a collected OsFingerprint against every entry in
// a sigdb.Database and returns explainable, ranked OsMatchResults.
package matcher

import (
	"math"
	"sort"

	"scanforge/internal/fingerprint"
	"scanforge/internal/sigdb"
)

const (
	weightTCP       = 0.35
	weightICMP      = 0.25
	weightUDP       = 0.15
	weightHints     = 0.15
	weightClockSkew = 0.10

	defaultMinThreshold = 0.5
	topK                = 5
)

// ConfidenceClass buckets a match's final score into a human label.
type ConfidenceClass int

const (
	Low ConfidenceClass = iota
	Medium
	High
	Certain
)

func (c ConfidenceClass) String() string {
	switch c {
	case Certain:
		return "Certain"
	case High:
		return "High"
	case Medium:
		return "Medium"
	default:
		return "Low"
	}
}

func classify(score float64) ConfidenceClass {
	switch {
	case score >= 0.90:
		return Certain
	case score >= 0.75:
		return High
	case score >= 0.50:
		return Medium
	default:
		return Low
	}
}

// OsMatchResult is one scored candidate, with matched/mismatched feature
// descriptors so a caller can explain the ranking.
type OsMatchResult struct {
	OsName     string
	OsVersion  string
	OsFamily   string
	Confidence ConfidenceClass
	Score      float64
	Matched    []string
	Mismatched []string
}

// Match scores fp against every signature in db and returns up to topK
// results with Score >= minThreshold, sorted descending by Score.
// minThreshold <= 0 uses the spec default of 0.5.
func Match(fp *fingerprint.OsFingerprint, db *sigdb.Database, minThreshold float64) []OsMatchResult {
	if minThreshold <= 0 {
		minThreshold = defaultMinThreshold
	}
	if fp == nil {
		return nil
	}

	var results []OsMatchResult
	for _, sig := range db.All() {
		res, ok := scoreOne(fp, sig)
		if !ok || res.Score < minThreshold {
			continue
		}
		results = append(results, res)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// scoreOne computes the raw/final score for a single signature. ok is
// false when no technique contributed anything (raw is undefined).
func scoreOne(fp *fingerprint.OsFingerprint, sig *sigdb.OsSignature) (OsMatchResult, bool) {
	var weightedSum, weightTotal float64
	var matched, mismatched []string

	if fp.TCP != nil && sig.TCP != nil {
		score, m, mm := scoreTCP(fp.TCP, sig.TCP)
		weightedSum += weightTCP * score
		weightTotal += weightTCP
		matched = append(matched, m...)
		mismatched = append(mismatched, mm...)
	}
	if fp.ICMP != nil && sig.ICMP != nil {
		score, m, mm := scoreICMP(fp.ICMP, sig.ICMP)
		weightedSum += weightICMP * score
		weightTotal += weightICMP
		matched = append(matched, m...)
		mismatched = append(mismatched, mm...)
	}
	if fp.UDP != nil {
		score := scoreUDP(fp.UDP)
		weightedSum += weightUDP * score
		weightTotal += weightUDP
	}
	if fp.ProtocolHints != nil {
		score, m := scoreHints(fp.ProtocolHints, sig)
		weightedSum += weightHints * score
		weightTotal += weightHints
		if m != "" {
			matched = append(matched, m)
		}
	}
	if fp.ClockSkew != nil && fp.ClockSkew.ClockFrequencyHz > 0 {
		score := scoreClockSkew(fp.ClockSkew, sig)
		weightedSum += weightClockSkew * score
		weightTotal += weightClockSkew
	}

	if weightTotal == 0 {
		return OsMatchResult{}, false
	}

	raw := weightedSum / weightTotal
	final := raw * sig.ConfidenceWeight

	return OsMatchResult{
		OsName:     sig.OsName,
		OsVersion:  sig.OsVersion,
		OsFamily:   sig.OsFamily,
		Confidence: classify(final),
		Score:      final,
		Matched:    matched,
		Mismatched: mismatched,
	}, true
}

func inRange(v, lo, hi int) bool { return v >= lo && v <= hi }

func rangeTolerance(v, lo, hi, tolerance int) bool {
	return v >= lo-tolerance && v <= hi+tolerance
}

func scoreTCP(fp *fingerprint.TcpFingerprint, sig *sigdb.TcpSignature) (float64, []string, []string) {
	var total float64
	var n float64
	var matched, mismatched []string

	n++
	if inRange(fp.InitialTTL, sig.TTLMin, sig.TTLMax) {
		total += 1.0
		matched = append(matched, descTTL(fp.InitialTTL))
	} else if rangeTolerance(fp.InitialTTL, sig.TTLMin, sig.TTLMax, 10) {
		total += 0.5
		matched = append(matched, descTTL(fp.InitialTTL))
	} else {
		mismatched = append(mismatched, descTTL(fp.InitialTTL))
	}

	n++
	mid := (sig.WindowMin + sig.WindowMax) / 2
	band := int(math.Round(float64(mid) * 0.2))
	switch {
	case inRange(fp.WindowSize, sig.WindowMin, sig.WindowMax):
		total += 1.0
		matched = append(matched, descWindow(fp.WindowSize, sig))
	case rangeTolerance(fp.WindowSize, sig.WindowMin, sig.WindowMax, band):
		total += 0.6
		matched = append(matched, descWindow(fp.WindowSize, sig))
	default:
		mismatched = append(mismatched, descWindow(fp.WindowSize, sig))
	}

	if sig.MSS > 0 && fp.MSS > 0 {
		n++
		if absInt(fp.MSS-sig.MSS) <= 100 {
			total += 1.0
			matched = append(matched, "MSS")
		} else {
			mismatched = append(mismatched, "MSS")
		}
	}

	n++
	if fp.DFFlag == sig.DFFlag {
		total += 1.0
		matched = append(matched, "DF flag")
	} else {
		mismatched = append(mismatched, "DF flag")
	}

	if n == 0 {
		return 0, matched, mismatched
	}
	return total / n, matched, mismatched
}

func scoreICMP(fp *fingerprint.IcmpFingerprint, sig *sigdb.IcmpSignature) (float64, []string, []string) {
	var total, n float64
	var matched, mismatched []string

	n++
	if inRange(fp.EchoReplyTTL, sig.TTLMin, sig.TTLMax) {
		total += 1.0
		matched = append(matched, "ICMP TTL")
	} else {
		mismatched = append(mismatched, "ICMP TTL")
	}

	n++
	if fp.PayloadEchoedExact == sig.PayloadEchoed {
		total += 1.0
		matched = append(matched, "ICMP payload echo")
	} else {
		mismatched = append(mismatched, "ICMP payload echo")
	}

	return total / n, matched, mismatched
}

// scoreUDP contributes a coarse signal: only UnreachableSeen behavior is
// compared since the database carries no per-OS UDP tolerance ranges.
func scoreUDP(fp *fingerprint.UdpFingerprint) float64 {
	if fp.UnreachableSeen {
		return 1.0
	}
	return 0.5
}

// scoreHints rewards any banner OS hint that textually matches the
// signature's family; there is no tolerance band for free text.
func scoreHints(hints *fingerprint.ProtocolHints, sig *sigdb.OsSignature) (float64, string) {
	for _, hint := range []string{hints.SSHOSHint, hints.HTTPOSHint} {
		if hint == "" {
			continue
		}
		if containsFold(hint, sig.OsFamily) {
			return 1.0, "protocol hint: " + hint
		}
	}
	return 0.3, ""
}

// scoreClockSkew gives 0.9-1.0 credit when the observed clock frequency
// falls within the family's tolerance band, else a flat 0.5 (neither
// confirms nor refutes — OS-level clock tuning varies too much for a hard
// mismatch).
func scoreClockSkew(skew *fingerprint.ClockSkewAnalysis, sig *sigdb.OsSignature) float64 {
	switch sig.OsFamily {
	case "Linux":
		if math.Abs(skew.ClockFrequencyHz-1000) < 50 || math.Abs(skew.ClockFrequencyHz-250) < 20 || math.Abs(skew.ClockFrequencyHz-100) < 10 {
			return 1.0
		}
	case "Windows":
		if math.Abs(skew.ClockFrequencyHz-100) < 10 || math.Abs(skew.ClockFrequencyHz-64) < 5 {
			return 1.0
		}
	case "Darwin":
		if math.Abs(skew.ClockFrequencyHz-1000) < 50 {
			return 1.0
		}
	}
	return 0.5
}

func descTTL(ttl int) string {
	return "TCP TTL: " + itoa(ttl)
}

func descWindow(window int, sig *sigdb.TcpSignature) string {
	return "Window size: " + itoa(window) + " (expected " + itoa(sig.WindowMin) + "-" + itoa(sig.WindowMax) + ")"
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
