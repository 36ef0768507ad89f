package util

import (
	"strings"

	"github.com/dustin/go-humanize"
)

// ParseSize parses a human-readable size ("10MB", "512 KiB", "2GB") into
// bytes. Returns defaultBytes when s is empty or unparseable.
func ParseSize(s string, defaultBytes int64) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultBytes
	}
	n, err := humanize.ParseBytes(s)
	if err != nil || n > uint64(1<<62) {
		return defaultBytes
	}
	return int64(n)
}

// SplitList splits a comma-separated list, trimming each entry and dropping
// empty ones.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MaskSecret hides all but the first visiblePrefix characters of s.
// Empty input yields an empty string so "unset" stays distinguishable.
func MaskSecret(s string, visiblePrefix int) string {
	if s == "" {
		return ""
	}
	if len(s) <= visiblePrefix {
		return "***"
	}
	return s[:visiblePrefix] + "***"
}

// Coalesce returns the first non-empty string.
func Coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
