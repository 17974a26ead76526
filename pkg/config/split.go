package config

import "strings"

// splitTrimmed splits a comma-separated value, trimming whitespace and
// dropping empty entries.
func splitTrimmed(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
