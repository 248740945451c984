// Package report aggregates per-target CompleteScanResults into a
// ScanReport with full summary statistics, and renders that report to the
// console or to CSV.
package report

import (
	"time"

	"scanforge/internal/model"
	"scanforge/internal/qos"
)

// Builder accumulates results from one scan run and produces the final
// ScanReport. Not safe for concurrent use — the orchestrator already
// serializes result collection per run.
type Builder struct {
	scanID    string
	version   string
	params    model.ScanRequest
	startTime time.Time
	results   []model.CompleteScanResult
}

// NewBuilder starts a new report, stamping its start time at construction.
func NewBuilder(scanID, version string, params model.ScanRequest) *Builder {
	return &Builder{scanID: scanID, version: version, params: params, startTime: time.Now()}
}

// Add appends one target's result to the in-progress report.
func (b *Builder) Add(result model.CompleteScanResult) {
	b.results = append(b.results, result)
}

// AddAll appends every result in results.
func (b *Builder) AddAll(results []model.CompleteScanResult) {
	b.results = append(b.results, results...)
}

// Build finalizes the report: stamps end time and duration, and computes
// aggregate Statistics including the throttle's packet counters from snap.
func (b *Builder) Build(snap qos.Snapshot) model.ScanReport {
	end := time.Now()
	return model.ScanReport{
		ScanID:     b.scanID,
		Version:    b.version,
		StartTime:  b.startTime,
		EndTime:    end,
		Duration:   end.Sub(b.startTime),
		Params:     b.params,
		Results:    b.results,
		Statistics: computeStatistics(b.results, snap),
	}
}

func computeStatistics(results []model.CompleteScanResult, snap qos.Snapshot) model.Statistics {
	stats := model.Statistics{
		TotalTargets:    len(results),
		PacketsSent:     snap.PacketsSent,
		PacketsReceived: snap.PacketsReceived,
	}

	var totalTime, minTime, maxTime time.Duration
	var completed int

	for _, r := range results {
		switch r.HostStatus {
		case model.Up:
			stats.UpHosts++
		case model.Down:
			stats.DownHosts++
		default:
			stats.UnknownHosts++
		}

		for _, pr := range r.PortResults {
			stats.TotalPorts++
			switch pr.Status {
			case model.Open:
				stats.OpenPorts++
			case model.Closed:
				stats.ClosedPorts++
			case model.Filtered:
				stats.FilteredPorts++
			}
		}

		if r.Err == nil {
			completed++
		}
		totalTime += r.Duration
		if minTime == 0 || r.Duration < minTime {
			minTime = r.Duration
		}
		if r.Duration > maxTime {
			maxTime = r.Duration
		}
	}

	if len(results) > 0 {
		stats.AvgScanTime = totalTime / time.Duration(len(results))
		stats.MinScanTime = minTime
		stats.MaxScanTime = maxTime
		stats.SuccessRate = float64(completed) / float64(len(results))
	}

	return stats
}
