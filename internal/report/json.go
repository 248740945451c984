package report

import (
	"encoding/json"
	"os"

	"scanforge/internal/errs"
	"scanforge/internal/model"
)

// SaveJSON writes the full ScanReport, statistics included, to path.
func SaveJSON(path string, r model.ScanReport) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errs.New(errs.Io, "marshal scan report to JSON: "+err.Error())
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return errs.New(errs.Io, "write scan report: "+err.Error())
	}
	return nil
}
