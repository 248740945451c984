// Package errs defines the closed error taxonomy shared by every core
// component: a fixed set of Kinds, each carrying a Severity and a
// Retryable flag, so callers can branch on policy instead of string
// matching.
package errs

import "fmt"

// Kind is the closed set of error categories the core can produce.
type Kind int

const (
	Config Kind = iota
	Io
	Network
	Timeout
	PermissionDenied
	InvalidTarget
	InvalidPort
	InvalidPortRange
	HostDiscoveryFailed
	TcpScanFailed
	UdpScanFailed
	SynScanFailed
	RateLimitExceeded
	ResourceExhausted
	PacketError
	ConcurrencyError
	OutputError
	ValidationError
	Multiple
	InsufficientData
	TargetNotFound
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "Config"
	case Io:
		return "Io"
	case Network:
		return "Network"
	case Timeout:
		return "Timeout"
	case PermissionDenied:
		return "PermissionDenied"
	case InvalidTarget:
		return "InvalidTarget"
	case InvalidPort:
		return "InvalidPort"
	case InvalidPortRange:
		return "InvalidPortRange"
	case HostDiscoveryFailed:
		return "HostDiscoveryFailed"
	case TcpScanFailed:
		return "TcpScanFailed"
	case UdpScanFailed:
		return "UdpScanFailed"
	case SynScanFailed:
		return "SynScanFailed"
	case RateLimitExceeded:
		return "RateLimitExceeded"
	case ResourceExhausted:
		return "ResourceExhausted"
	case PacketError:
		return "PacketError"
	case ConcurrencyError:
		return "ConcurrencyError"
	case OutputError:
		return "OutputError"
	case ValidationError:
		return "ValidationError"
	case Multiple:
		return "Multiple"
	case InsufficientData:
		return "InsufficientData"
	case TargetNotFound:
		return "TargetNotFound"
	default:
		return "Unknown"
	}
}

// Severity ranks how the caller should react to an error.
type Severity int

const (
	Low Severity = iota
	Medium
	High
	Critical
)

func (s Severity) String() string {
	switch s {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// defaultSeverity and defaultRetryable give every Kind a policy even when
// the caller doesn't override one via an option.
func defaultSeverity(k Kind) Severity {
	switch k {
	case Config, PermissionDenied:
		return Critical
	case HostDiscoveryFailed, TcpScanFailed, UdpScanFailed, SynScanFailed,
		ResourceExhausted, ConcurrencyError, InsufficientData:
		return High
	case Network, Timeout, PacketError, RateLimitExceeded, OutputError:
		return Medium
	default:
		return Low
	}
}

func defaultRetryable(k Kind) bool {
	switch k {
	case Timeout, Network, TcpScanFailed, UdpScanFailed, SynScanFailed, HostDiscoveryFailed:
		return true
	case Config, PermissionDenied:
		return false
	default:
		return false
	}
}

// Error is the single error type every core component returns. Kind
// drives policy (Severity, Retryable); the rest are optional context
// fields filled in by the constructor that matches the Kind.
type Error struct {
	Kind      Kind
	Severity  Severity
	Retryable bool
	Message   string

	Op       string // PermissionDenied(op)
	Target   string
	Port     int
	Ms       int64 // Timeout(ms)
	Reason   string
	Required int // InsufficientData(required, available)
	Available int
	Count    int   // Multiple(count, kinds)
	Kinds    []Kind
	Wrapped  error
}

func (e *Error) Error() string {
	base := e.Message
	if base == "" {
		base = e.Kind.String()
	}
	switch e.Kind {
	case Timeout:
		return fmt.Sprintf("%s: timeout after %dms", base, e.Ms)
	case PermissionDenied:
		return fmt.Sprintf("%s: permission denied for %q", base, e.Op)
	case TcpScanFailed, UdpScanFailed, SynScanFailed:
		return fmt.Sprintf("%s: %s:%d: %s", base, e.Target, e.Port, e.Reason)
	case InsufficientData:
		return fmt.Sprintf("%s: need %d samples, got %d", base, e.Required, e.Available)
	case Multiple:
		return fmt.Sprintf("%s: %d errors (%v)", base, e.Count, e.Kinds)
	default:
		if e.Wrapped != nil {
			return fmt.Sprintf("%s: %v", base, e.Wrapped)
		}
		return base
	}
}

func (e *Error) Unwrap() error { return e.Wrapped }

func newErr(k Kind, msg string) *Error {
	return &Error{Kind: k, Severity: defaultSeverity(k), Retryable: defaultRetryable(k), Message: msg}
}

// New builds a plain error of the given kind.
func New(k Kind, msg string) *Error { return newErr(k, msg) }

// Wrap builds an error of the given kind wrapping an underlying cause.
func Wrap(k Kind, msg string, cause error) *Error {
	e := newErr(k, msg)
	e.Wrapped = cause
	return e
}

// NewTimeout builds a Timeout(ms) error.
func NewTimeout(ms int64) *Error {
	e := newErr(Timeout, "")
	e.Ms = ms
	return e
}

// NewPermissionDenied builds a PermissionDenied(op) error.
func NewPermissionDenied(op string) *Error {
	e := newErr(PermissionDenied, "")
	e.Op = op
	return e
}

// NewScanFailed builds one of the per-scan-kind failures with target context.
func NewScanFailed(k Kind, target string, port int, reason string) *Error {
	e := newErr(k, "")
	e.Target = target
	e.Port = port
	e.Reason = reason
	return e
}

// NewInsufficientData builds an InsufficientData(required, available) error.
func NewInsufficientData(required, available int) *Error {
	e := newErr(InsufficientData, "")
	e.Required = required
	e.Available = available
	return e
}

// NewMultiple aggregates several error kinds encountered in a batch.
func NewMultiple(errs []*Error) *Error {
	kinds := make([]Kind, 0, len(errs))
	for _, sub := range errs {
		kinds = append(kinds, sub.Kind)
	}
	e := newErr(Multiple, "")
	e.Count = len(errs)
	e.Kinds = kinds
	return e
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, k Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == k
}
