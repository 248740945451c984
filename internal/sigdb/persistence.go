package sigdb

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"scanforge/internal/errs"
)

// envelope is the on-disk shape: metadata plus the signature list, so
// both JSON and YAML persist the same structure.
type envelope struct {
	Metadata   Metadata       `json:"metadata" yaml:"metadata"`
	Signatures []*OsSignature `json:"signatures" yaml:"signatures"`
}

func (db *Database) toEnvelope() envelope {
	return envelope{Metadata: db.Metadata, Signatures: db.All()}
}

func fromEnvelope(e envelope) *Database {
	db := &Database{Metadata: e.Metadata, Signatures: make(map[string]*OsSignature, len(e.Signatures))}
	for _, sig := range e.Signatures {
		db.Signatures[sig.OsName] = sig
	}
	db.Metadata.SignatureCount = len(db.Signatures)
	return db
}

// SaveJSON writes the database, metadata envelope included, to path.
func (db *Database) SaveJSON(path string) error {
	b, err := json.MarshalIndent(db.toEnvelope(), "", "  ")
	if err != nil {
		return errs.New(errs.Io, "marshal signature database to JSON: "+err.Error())
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return errs.New(errs.Io, "write signature database: "+err.Error())
	}
	return nil
}

// SaveYAML writes the database, metadata envelope included, to path.
func (db *Database) SaveYAML(path string) error {
	b, err := yaml.Marshal(db.toEnvelope())
	if err != nil {
		return errs.New(errs.Io, "marshal signature database to YAML: "+err.Error())
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return errs.New(errs.Io, "write signature database: "+err.Error())
	}
	return nil
}

// LoadJSON reads a database previously written by SaveJSON.
func LoadJSON(path string) (*Database, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.New(errs.Io, "read signature database: "+err.Error())
	}
	var e envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, errs.New(errs.Io, "parse signature database JSON: "+err.Error())
	}
	return fromEnvelope(e), nil
}

// LoadYAML reads a database previously written by SaveYAML.
func LoadYAML(path string) (*Database, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.New(errs.Io, "read signature database: "+err.Error())
	}
	var e envelope
	if err := yaml.Unmarshal(b, &e); err != nil {
		return nil, errs.New(errs.Io, "parse signature database YAML: "+err.Error())
	}
	return fromEnvelope(e), nil
}

// ImportAuto dispatches to LoadJSON or LoadYAML based on path's extension.
func ImportAuto(path string) (*Database, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(path)
	case ".yaml", ".yml":
		return LoadYAML(path)
	default:
		return nil, errs.New(errs.Config, "unrecognized signature database extension: "+filepath.Ext(path))
	}
}

// Merge concatenates signatures from every database in dbs into one, with
// later entries overwriting earlier ones on os_name collision.
func Merge(dbs []*Database) *Database {
	merged := New("merged", "1.0.0")
	for _, db := range dbs {
		for _, sig := range db.All() {
			merged.Add(sig)
		}
	}
	return merged
}
