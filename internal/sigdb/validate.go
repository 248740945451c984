package sigdb

import "fmt"

// Report is Validate's output: per-signature pass/fail counts plus a flat
// list of human-readable issues.
type Report struct {
	Valid   int
	Invalid int
	Issues  []string
}

// Validate checks every signature for the invariants OsSignature declares:
// non-empty os_name, confidence_weight in [0,1], and well-formed TTL/window
// ranges (lo<=hi).
func Validate(db *Database) Report {
	var r Report
	for name, sig := range db.Signatures {
		issues := validateOne(name, sig)
		if len(issues) == 0 {
			r.Valid++
			continue
		}
		r.Invalid++
		r.Issues = append(r.Issues, issues...)
	}
	return r
}

func validateOne(key string, sig *OsSignature) []string {
	var issues []string
	if sig.OsName == "" {
		issues = append(issues, fmt.Sprintf("%s: empty os_name", key))
	}
	if sig.ConfidenceWeight < 0 || sig.ConfidenceWeight > 1 {
		issues = append(issues, fmt.Sprintf("%s: confidence_weight %.2f out of [0,1]", sig.OsName, sig.ConfidenceWeight))
	}
	if sig.TCP != nil {
		if sig.TCP.TTLMin > sig.TCP.TTLMax {
			issues = append(issues, fmt.Sprintf("%s: TCP TTL range inverted (%d > %d)", sig.OsName, sig.TCP.TTLMin, sig.TCP.TTLMax))
		}
		if sig.TCP.WindowMin > sig.TCP.WindowMax {
			issues = append(issues, fmt.Sprintf("%s: TCP window range inverted (%d > %d)", sig.OsName, sig.TCP.WindowMin, sig.TCP.WindowMax))
		}
	}
	if sig.ICMP != nil && sig.ICMP.TTLMin > sig.ICMP.TTLMax {
		issues = append(issues, fmt.Sprintf("%s: ICMP TTL range inverted (%d > %d)", sig.OsName, sig.ICMP.TTLMin, sig.ICMP.TTLMax))
	}
	return issues
}
