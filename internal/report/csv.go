package report

import (
	"encoding/csv"
	"os"

	"scanforge/internal/errs"
	"scanforge/internal/model"
)

// SaveCSV writes the report's port-level rows to path, UTF-8 BOM first so
// Excel opens it without mangling encoding.
func SaveCSV(path string, r model.ScanReport) error {
	rows := portRows{results: r.Results}
	data := rows.Rows()
	if len(data) == 0 {
		return errs.New(errs.Io, "no results to export")
	}

	f, err := os.Create(path)
	if err != nil {
		return errs.New(errs.Io, "create csv file: "+err.Error())
	}
	defer f.Close()

	if _, err := f.WriteString("\xEF\xBB\xBF"); err != nil {
		return errs.New(errs.Io, "write csv BOM: "+err.Error())
	}

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(rows.Headers()); err != nil {
		return errs.New(errs.Io, "write csv headers: "+err.Error())
	}
	if err := w.WriteAll(data); err != nil {
		return errs.New(errs.Io, "write csv rows: "+err.Error())
	}
	return nil
}
