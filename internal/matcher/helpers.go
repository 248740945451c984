package matcher

import (
	"strconv"
	"strings"
)

func itoa(v int) string { return strconv.Itoa(v) }

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
