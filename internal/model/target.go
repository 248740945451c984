// Package model holds the core data types shared across the scan
// pipeline: targets, port sets, scan types, statuses, results, and the
// top-level request/report values.
package model

import (
	"fmt"
	"net"

	"scanforge/internal/errs"
)

// Target is a single IPv4 or IPv6 host. A scan run operates on an
// ordered slice of Targets; uniqueness is not required.
type Target struct {
	IP net.IP
}

// ParseTarget validates and wraps a textual IP address.
func ParseTarget(s string) (Target, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return Target{}, errs.New(errs.InvalidTarget, fmt.Sprintf("not an IP address: %q", s))
	}
	return Target{IP: ip}, nil
}

func (t Target) String() string { return t.IP.String() }

// IsV4 reports whether the target is an IPv4 address.
func (t Target) IsV4() bool { return t.IP.To4() != nil }

// SameFamily reports whether two targets share an address family.
func SameFamily(a, b net.IP) bool {
	return (a.To4() != nil) == (b.To4() != nil)
}
