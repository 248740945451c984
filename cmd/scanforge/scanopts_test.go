package main

import (
	"os"
	"path/filepath"
	"testing"

	"scanforge/internal/model"
)

func TestResolvePortsDefaultsToCommonPreset(t *testing.T) {
	o := &scanOpts{}
	ps, err := o.resolvePorts()
	if err != nil {
		t.Fatalf("resolvePorts: %v", err)
	}
	if len(ps) != len(model.Presets["common"]) {
		t.Errorf("expected the common preset by default, got %d ports", len(ps))
	}
}

func TestResolveScanTypesDefaultsToTCPConnect(t *testing.T) {
	o := &scanOpts{}
	types, err := o.resolveScanTypes()
	if err != nil {
		t.Fatalf("resolveScanTypes: %v", err)
	}
	if len(types) != 1 || types[0] != model.TcpConnect {
		t.Errorf("expected [tcp_connect] by default, got %v", types)
	}
}

func TestResolveScanTypesRejectsUnknown(t *testing.T) {
	o := &scanOpts{scanTypes: []string{"ack"}}
	if _, err := o.resolveScanTypes(); err == nil {
		t.Error("expected an error for an unrecognized scan type")
	}
}

func TestReadTargetFileSkipsBlankAndCommentLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.txt")
	content := "# comment\n10.0.0.1\n\n10.0.0.2\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write targets file: %v", err)
	}

	targets, err := readTargetFile(path)
	if err != nil {
		t.Fatalf("readTargetFile: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(targets))
	}
}

func TestReadTargetFileRejectsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(path, []byte("# only a comment\n"), 0644); err != nil {
		t.Fatalf("write targets file: %v", err)
	}
	if _, err := readTargetFile(path); err == nil {
		t.Error("expected an error for a file with no actual targets")
	}
}
