package util

import (
	"fmt"
	"strings"
)

// ParseSize converts "10MB"-style sizes to bytes. Units are B, KB, MB and GB
// in powers of 1024. Empty, malformed or non-positive input returns
// defaultBytes.
func ParseSize(s string, defaultBytes int64) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return defaultBytes
	}

	var multiplier int64 = 1
	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "B"):
		s = s[:len(s)-1]
	}

	var val int64
	if _, err := fmt.Sscanf(s, "%d", &val); err == nil && val > 0 {
		return val * multiplier
	}
	return defaultBytes
}

// MaskSecret hides all but the first visiblePrefix bytes of s for logs.
// Strings no longer than visiblePrefix are fully masked.
func MaskSecret(s string, visiblePrefix int) string {
	if len(s) <= visiblePrefix {
		return "***"
	}
	return s[:visiblePrefix] + "***"
}
