package main

import "scanforge/internal/errs"

// exitCodeFor maps the taxonomy's severity onto a process exit code:
// Critical and unrecoverable errors are non-zero, matching §6's contract.
func exitCodeFor(err error) int {
	e, ok := err.(*errs.Error)
	if !ok {
		return 1
	}
	switch e.Severity {
	case errs.Critical:
		return 2
	case errs.High:
		return 1
	default:
		return 1
	}
}
