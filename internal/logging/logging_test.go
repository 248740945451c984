package logging

import (
	"path/filepath"
	"testing"

	"scanforge/internal/config"
	"scanforge/internal/errs"
)

func TestNewRejectsUnsupportedFormat(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "info", Format: "xml"})
	if err == nil {
		t.Fatal("expected an error for an unsupported format")
	}
}

func TestNewRejectsUnsupportedLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "verbose", Format: "text"})
	if err == nil {
		t.Fatal("expected an error for an unsupported level")
	}
}

func TestNewWithFilePathRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scanforge.log")
	logger, err := New(config.LoggingConfig{Level: "debug", Format: "json", FilePath: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hello")
}

func TestWithErrorAttachesTaxonomyFields(t *testing.T) {
	logger, err := New(config.LoggingConfig{Level: "info", Format: "text"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e := errs.New(errs.Network, "boom")
	entry := WithError(logger, e)
	if entry.Data["error_kind"] != "Network" {
		t.Errorf("expected error_kind field Network, got %v", entry.Data["error_kind"])
	}
}
