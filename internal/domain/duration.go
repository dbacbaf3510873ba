package domain

import (
	"strconv"
	"strings"
)

// ParseDuration converts a "PTnHnMnS" style duration into decimal hours.
// Each of the H, M and S components is optional; a component that fails to
// parse counts as zero rather than failing the whole value, since durations
// arrive from an external API and are not guaranteed well-formed. An empty
// string is zero hours.
func ParseDuration(raw string) float64 {
	if raw == "" {
		return 0
	}
	rest := strings.TrimPrefix(raw, "PT")

	hours := 0
	minutes := 0
	seconds := 0

	if i := strings.Index(rest, "H"); i >= 0 {
		hours = atoiOrZero(rest[:i])
		rest = rest[i+1:]
	}
	if i := strings.Index(rest, "M"); i >= 0 {
		minutes = atoiOrZero(rest[:i])
		rest = rest[i+1:]
	}
	if i := strings.Index(rest, "S"); i >= 0 {
		seconds = atoiOrZero(rest[:i])
	}

	h := float64(hours) + float64(minutes)/60 + float64(seconds)/3600
	if h < 0 {
		return 0
	}
	return h
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
