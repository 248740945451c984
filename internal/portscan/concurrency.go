package portscan

import (
	"context"
	"sort"
	"sync"

	"scanforge/internal/model"
)

// scanConcurrently fans a per-port scan function out over ports, bounded
// by concurrency, and returns results sorted ascending by port number.
func scanConcurrently(ctx context.Context, ports model.PortSet, concurrency int, scan func(context.Context, int) model.PortResult) []model.PortResult {
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]model.PortResult, len(ports))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, port := range ports {
		wg.Add(1)
		sem <- struct{}{}
		go func(i, port int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = scan(ctx, port)
		}(i, port)
	}

	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Port < results[j].Port })
	return results
}
