// Package sigdb holds the OS signature set the fuzzy matcher scores
// collected fingerprints against: tolerance-ranged TCP/ICMP profiles keyed
// by OS name, loadable from and savable to JSON or YAML.
package sigdb

import "time"

// TcpSignature is a tolerance-ranged TCP profile: a signature matches any
// fingerprint whose observed value falls in [lo, hi] for ranged fields.
type TcpSignature struct {
	TTLMin, TTLMax       int
	WindowMin, WindowMax int
	MSS                  int
	DFFlag               bool
	OptionOrder          []uint8
}

// IcmpSignature is the ICMP-layer half of an OsSignature.
type IcmpSignature struct {
	TTLMin, TTLMax int
	PayloadEchoed  bool
}

// OsSignature is one database entry. TCP and ICMP are both optional; a
// signature with neither contributes nothing to any match; Validate does
// not flag it.
type OsSignature struct {
	OsName           string
	OsVersion        string
	OsFamily         string
	TCP              *TcpSignature
	ICMP             *IcmpSignature
	ConfidenceWeight float64
}

// Metadata is the envelope persisted alongside a Database's signatures.
type Metadata struct {
	Name           string
	Version        string
	Created        time.Time
	Modified       time.Time
	SignatureCount int
	Description    string `json:",omitempty" yaml:",omitempty"`
	Author         string `json:",omitempty" yaml:",omitempty"`
}

// Database is a read-only-after-construction signature set keyed by
// os_name, safe for concurrent lookup by any number of matchers.
type Database struct {
	Metadata   Metadata
	Signatures map[string]*OsSignature
}

// New returns an empty database with the given name/version stamped into
// its metadata.
func New(name, version string) *Database {
	now := time.Now()
	return &Database{
		Metadata: Metadata{
			Name:     name,
			Version:  version,
			Created:  now,
			Modified: now,
		},
		Signatures: make(map[string]*OsSignature),
	}
}

// Add inserts or overwrites a signature by os_name and refreshes the
// metadata's signature count and modification time.
func (db *Database) Add(sig *OsSignature) {
	db.Signatures[sig.OsName] = sig
	db.Metadata.SignatureCount = len(db.Signatures)
	db.Metadata.Modified = time.Now()
}

// Lookup returns the signature for an exact os_name, if present.
func (db *Database) Lookup(osName string) (*OsSignature, bool) {
	sig, ok := db.Signatures[osName]
	return sig, ok
}

// Family returns every signature whose OsFamily matches, in no particular
// order.
func (db *Database) Family(family string) []*OsSignature {
	var out []*OsSignature
	for _, sig := range db.Signatures {
		if sig.OsFamily == family {
			out = append(out, sig)
		}
	}
	return out
}

// All returns every signature in the database, in no particular order.
func (db *Database) All() []*OsSignature {
	out := make([]*OsSignature, 0, len(db.Signatures))
	for _, sig := range db.Signatures {
		out = append(out, sig)
	}
	return out
}
