// Package fingerprint collects OS-identifying evidence from a target
// through seven independent techniques. Each collector's contribution is
// optional; a missing contribution is never fatal to the final match —
// internal/matcher weights only the techniques that produced data.
package fingerprint

import "time"

// IPIDPattern classifies how the IP identification field evolves across
// consecutive probes.
type IPIDPattern int

const (
	IPIDUnknown IPIDPattern = iota
	IPIDIncremental
	IPIDRandom
	IPIDZero
	IPIDFixed
)

// RSTBehavior classifies how a target resets a half-open or probed
// connection.
type RSTBehavior int

const (
	RSTUnknown RSTBehavior = iota
	RSTImmediate
	RSTDelayed
	RSTSeqBased
	RSTNone
)

// RateLimitPattern classifies ICMP rate-limiting behavior under a probe
// burst.
type RateLimitPattern int

const (
	RateLimitNone RateLimitPattern = iota
	RateLimitFixedRate
	RateLimitBurstThrottle
	RateLimitAdaptive
)

// Predictability classifies ISN (or other sequence) distribution shape.
type Predictability int

const (
	PredictabilityUnknown Predictability = iota
	PredictabilityConstant
	PredictabilityIncremental
	PredictabilityTimeDependent
	PredictabilityRandom
)

// TcpFingerprint is the active TCP-layer collector's output.
type TcpFingerprint struct {
	InitialTTL    int
	WindowSize    int
	MSS           int
	OptionOrder   []uint8
	DFFlag        bool
	SynAckPattern string
	RstBehavior   RSTBehavior
	IPIDPattern   IPIDPattern
	ECNSupport    bool
	CWRFlag       bool
}

// IcmpFingerprint is the active ICMP collector's output.
type IcmpFingerprint struct {
	EchoReplyTTL        int
	PayloadEchoedExact  bool
	UnreachableCodeSeen int
	UnreachableQuoteLen int
	TimestampResponds    bool
	ResponseTime        time.Duration
	RateLimit           RateLimitPattern
}

// UdpFingerprint is the active UDP-layer collector's output.
type UdpFingerprint struct {
	UnreachableSeen     bool
	UnreachableCode     int
	PayloadEchoedExact  bool
	PayloadEchoedBytes  int
	AvgResponseTime     time.Duration
	ResponseTimeStddev  time.Duration
}

// ProtocolHints is the active banner-probe collector's output.
type ProtocolHints struct {
	SSHProto    string
	SSHSoftware string
	SSHVersion  string
	SSHOSHint   string

	SMBOsString    string
	SMBLanManager  string
	SMBDomain      string
	SMBServerName  string
	SMBDialects    []string

	HTTPServerHeader string
	HTTPOSHint       string

	TLSVersion           string
	TLSCipherOrder       []uint16
	TLSExtensionOrder    []uint16
	TLSGroups            []uint16
	TLSSignatureAlgs     []uint16
	JA3                  string
	JA3S                 string
}

// ClockSkewAnalysis is the active clock-skew collector's output.
type ClockSkewAnalysis struct {
	SkewPPM          float64
	ClockFrequencyHz float64
	ResidualSigma    float64
	Samples          int
	OSHint           string
}

// PassiveFingerprintResult is the observer collector's output, derived
// from externally captured traffic rather than active probing.
type PassiveFingerprintResult struct {
	MostCommonTTL   int
	MostCommonMSS   int
	AvgSynAckWindow float64
	WindowScale     int
	UptimeProxy     time.Duration
	SampleCount     int
	Confidence      float64
}

// SeqAnalysis is the SEQ-probe sub-result of ActiveProbeResults.
type SeqAnalysis struct {
	GCD            uint32
	Mean           float64
	StdDev         float64
	Predictability Predictability
	Samples        int
}

// ActiveProbeResults bundles the nmap-style T1-T7/SEQ/ECN/U1/IE probe
// battery's classified output.
type ActiveProbeResults struct {
	SEQ          SeqAnalysis
	T1ResponseOK bool
	T2ResponseOK bool
	T3ResponseOK bool
	T4ResponseOK bool
	T5ResponseOK bool
	T6ResponseOK bool
	T7ResponseOK bool
	ECNResponds  bool
	ECNEcho      bool
	U1ResponseOK bool
	IEResponseOK bool
}

// OsFingerprint is the aggregate of all collectors that produced data for
// one target. Nil fields mean "this technique did not contribute."
type OsFingerprint struct {
	Target string

	TCP           *TcpFingerprint
	ICMP          *IcmpFingerprint
	UDP           *UdpFingerprint
	ProtocolHints *ProtocolHints
	ClockSkew     *ClockSkewAnalysis
	Passive       *PassiveFingerprintResult
	ActiveProbe   *ActiveProbeResults
}
