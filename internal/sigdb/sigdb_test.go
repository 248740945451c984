package sigdb

import (
	"path/filepath"
	"testing"
)

func TestBuiltinDatabaseHasAllFamilies(t *testing.T) {
	db := NewBuiltinDatabase()
	want := []string{
		"Linux 2.6+", "Windows 10/11", "Windows Server",
		"macOS 10.x-13.x", "FreeBSD 11.x-13.x", "Cisco IOS", "Embedded Linux",
	}
	for _, name := range want {
		if _, ok := db.Lookup(name); !ok {
			t.Errorf("expected builtin signature %q", name)
		}
	}
	if db.Metadata.SignatureCount != len(want) {
		t.Errorf("expected signature count %d, got %d", len(want), db.Metadata.SignatureCount)
	}
}

func TestBuiltinDatabaseValidates(t *testing.T) {
	r := Validate(NewBuiltinDatabase())
	if r.Invalid != 0 {
		t.Errorf("expected 0 invalid builtin signatures, got %d: %v", r.Invalid, r.Issues)
	}
}

func TestValidateCatchesInvertedRange(t *testing.T) {
	db := New("test", "1.0")
	db.Add(&OsSignature{
		OsName:           "broken",
		TCP:              &TcpSignature{TTLMin: 100, TTLMax: 10},
		ConfidenceWeight: 0.5,
	})
	r := Validate(db)
	if r.Invalid != 1 {
		t.Errorf("expected 1 invalid signature, got %d", r.Invalid)
	}
}

func TestValidateCatchesBadConfidenceWeight(t *testing.T) {
	db := New("test", "1.0")
	db.Add(&OsSignature{OsName: "bad-weight", ConfidenceWeight: 1.5})
	r := Validate(db)
	if r.Invalid != 1 {
		t.Errorf("expected 1 invalid signature, got %d", r.Invalid)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sigs.json")

	orig := NewBuiltinDatabase()
	if err := orig.SaveJSON(path); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	loaded, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if loaded.Metadata.SignatureCount != orig.Metadata.SignatureCount {
		t.Errorf("expected %d signatures, got %d", orig.Metadata.SignatureCount, loaded.Metadata.SignatureCount)
	}
	sig, ok := loaded.Lookup("Linux 2.6+")
	if !ok {
		t.Fatal("expected Linux 2.6+ signature to round-trip")
	}
	if sig.TCP.TTLMax != 64 {
		t.Errorf("expected TTLMax 64, got %d", sig.TCP.TTLMax)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sigs.yaml")

	orig := NewBuiltinDatabase()
	if err := orig.SaveYAML(path); err != nil {
		t.Fatalf("SaveYAML: %v", err)
	}

	loaded, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	if loaded.Metadata.SignatureCount != orig.Metadata.SignatureCount {
		t.Errorf("expected %d signatures, got %d", orig.Metadata.SignatureCount, loaded.Metadata.SignatureCount)
	}
}

func TestImportAutoDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "a.json")
	yamlPath := filepath.Join(dir, "b.yaml")

	db := NewBuiltinDatabase()
	db.SaveJSON(jsonPath)
	db.SaveYAML(yamlPath)

	if _, err := ImportAuto(jsonPath); err != nil {
		t.Errorf("ImportAuto(.json): %v", err)
	}
	if _, err := ImportAuto(yamlPath); err != nil {
		t.Errorf("ImportAuto(.yaml): %v", err)
	}
	if _, err := ImportAuto(filepath.Join(dir, "c.txt")); err == nil {
		t.Error("expected an error for an unrecognized extension")
	}
}

func TestMergeOverwritesOnCollision(t *testing.T) {
	a := New("a", "1.0")
	a.Add(&OsSignature{OsName: "Linux 2.6+", ConfidenceWeight: 0.1})
	b := New("b", "1.0")
	b.Add(&OsSignature{OsName: "Linux 2.6+", ConfidenceWeight: 0.9})

	merged := Merge([]*Database{a, b})
	sig, _ := merged.Lookup("Linux 2.6+")
	if sig.ConfidenceWeight != 0.9 {
		t.Errorf("expected later entry (0.9) to win, got %v", sig.ConfidenceWeight)
	}
}
