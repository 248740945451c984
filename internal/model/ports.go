package model

import (
	"sort"
	"strconv"
	"strings"

	"scanforge/internal/errs"
)

// PortSet is an ordered, deduplicated sequence of TCP/UDP port numbers.
type PortSet []int

// Presets resolve named port groups to a fixed PortSet.
var Presets = map[string]PortSet{
	"common": {21, 22, 23, 25, 53, 80, 110, 111, 135, 139, 143, 443, 445,
		993, 995, 1723, 3306, 3389, 5900, 8080},
	"web":      {80, 443, 8000, 8008, 8080, 8081, 8443, 8888},
	"mail":     {25, 110, 143, 465, 587, 993, 995},
	"database": {1433, 1521, 3306, 5432, 6379, 9200, 27017, 28015},
	"all":      allPorts(),
}

func allPorts() PortSet {
	ps := make(PortSet, 0, 65535)
	for p := 1; p <= 65535; p++ {
		ps = append(ps, p)
	}
	return ps
}

// ParsePortExpr parses the grammar:
//
//	ports ::= item (',' item)*
//	item  ::= PORT | PORT '-' PORT
//
// and returns a deduplicated, ascending PortSet. Invalid numbers, an
// inverted range (lo > hi), or an empty expression are ValidationError.
func ParsePortExpr(expr string) (PortSet, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errs.New(errs.ValidationError, "empty port expression")
	}

	if preset, ok := Presets[strings.ToLower(expr)]; ok {
		return dedupSort(preset), nil
	}

	seen := make(map[int]struct{})
	var out PortSet

	for _, item := range strings.Split(expr, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, errs.New(errs.ValidationError, "empty port item in expression")
		}
		if dash := strings.IndexByte(item, '-'); dash >= 0 {
			loStr, hiStr := item[:dash], item[dash+1:]
			lo, err := parsePort(loStr)
			if err != nil {
				return nil, err
			}
			hi, err := parsePort(hiStr)
			if err != nil {
				return nil, err
			}
			if lo > hi {
				return nil, errs.New(errs.ValidationError, "range low exceeds high: "+item)
			}
			for p := lo; p <= hi; p++ {
				if _, dup := seen[p]; !dup {
					seen[p] = struct{}{}
					out = append(out, p)
				}
			}
		} else {
			p, err := parsePort(item)
			if err != nil {
				return nil, err
			}
			if _, dup := seen[p]; !dup {
				seen[p] = struct{}{}
				out = append(out, p)
			}
		}
	}

	return dedupSort(out), nil
}

func parsePort(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 65535 {
		return 0, errs.New(errs.ValidationError, "invalid port: "+s)
	}
	return n, nil
}

func dedupSort(ps PortSet) PortSet {
	seen := make(map[int]struct{}, len(ps))
	out := make(PortSet, 0, len(ps))
	for _, p := range ps {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	sort.Ints(out)
	return out
}

// String renders the set back as a canonical comma-joined expression,
// collapsing consecutive runs into ranges.
func (ps PortSet) String() string {
	if len(ps) == 0 {
		return ""
	}
	sorted := dedupSort(ps)
	var sb strings.Builder
	start := sorted[0]
	prev := sorted[0]
	flush := func(lo, hi int) {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		if lo == hi {
			sb.WriteString(strconv.Itoa(lo))
		} else {
			sb.WriteString(strconv.Itoa(lo))
			sb.WriteByte('-')
			sb.WriteString(strconv.Itoa(hi))
		}
	}
	for _, p := range sorted[1:] {
		if p == prev+1 {
			prev = p
			continue
		}
		flush(start, prev)
		start, prev = p, p
	}
	flush(start, prev)
	return sb.String()
}
