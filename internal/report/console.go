package report

import (
	"fmt"

	"github.com/pterm/pterm"

	"scanforge/internal/model"
)

// TabularData mirrors the teacher's console-reporter contract: anything
// that can describe itself as a header row plus data rows can be rendered
// as a table without the renderer knowing its concrete type.
type TabularData interface {
	Headers() []string
	Rows() [][]string
}

type portRows struct {
	results []model.CompleteScanResult
}

func (p portRows) Headers() []string {
	return []string{"Target", "Host Status", "Port", "Protocol", "Status", "Response Time", "Banner"}
}

func (p portRows) Rows() [][]string {
	var rows [][]string
	for _, r := range p.results {
		if len(r.PortResults) == 0 {
			rows = append(rows, []string{r.Target, r.HostStatus.String(), "-", "-", "-", "-", "-"})
			continue
		}
		for _, pr := range r.PortResults {
			rt := "-"
			if pr.ResponseTime != nil {
				rt = pr.ResponseTime.String()
			}
			rows = append(rows, []string{r.Target, r.HostStatus.String(), fmt.Sprintf("%d", pr.Port), string(pr.Protocol), pr.Status.String(), rt, pr.Banner})
		}
	}
	return rows
}

// PrintConsole renders a ScanReport as a pterm table followed by a summary
// line, mirroring the teacher's ConsoleReporter.PrintResults shape.
func PrintConsole(r model.ScanReport) error {
	rows := portRows{results: r.Results}
	if len(rows.Rows()) == 0 {
		pterm.Warning.Println("No results found.")
		return nil
	}

	tableData := pterm.TableData{rows.Headers()}
	tableData = append(tableData, rows.Rows()...)

	if err := pterm.DefaultTable.WithHasHeader(true).WithBoxed(false).WithData(tableData).Render(); err != nil {
		return fmt.Errorf("render report table: %w", err)
	}

	s := r.Statistics
	pterm.Info.Printfln(
		"%d targets: %d up, %d down, %d unknown | %d ports: %d open, %d closed, %d filtered | %.0f%% success | %.1fs",
		s.TotalTargets, s.UpHosts, s.DownHosts, s.UnknownHosts,
		s.TotalPorts, s.OpenPorts, s.ClosedPorts, s.FilteredPorts,
		s.SuccessRate*100, r.Duration.Seconds(),
	)
	return nil
}
