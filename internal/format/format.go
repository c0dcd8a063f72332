// Package format provides display formatting for server-reported values:
// byte sizes and timestamps as shown by the admin console.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	kib = 1024
	mib = 1024 * 1024
)

// FileSize renders a byte count the way the admin UI displays size
// settings. Zero means the setting is unlimited.
func FileSize(bytes int64) string {
	switch {
	case bytes > mib:
		return fmt.Sprintf("%.2f mb", float64(bytes)/mib)
	case bytes > kib:
		return fmt.Sprintf("%.2f kb", float64(bytes)/kib)
	case bytes == 0:
		return "unlimited"
	default:
		return strconv.FormatInt(bytes, 10)
	}
}

// ParseFileSize converts operator input back into a byte count. Accepts a
// bare number (bytes) or a number with a kb/mb suffix, case-insensitive,
// and the literal "unlimited" for zero.
func ParseFileSize(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "unlimited" || s == "0" {
		return 0, nil
	}
	mult := int64(1)
	switch {
	case strings.HasSuffix(s, "mb"):
		mult = mib
		s = strings.TrimSpace(strings.TrimSuffix(s, "mb"))
	case strings.HasSuffix(s, "kb"):
		mult = kib
		s = strings.TrimSpace(strings.TrimSuffix(s, "kb"))
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("not a valid size: %q", s)
	}
	return int64(n * float64(mult)), nil
}

// DateTime renders a server timestamp for display. The server reports
// times as RFC 3339 strings; anything unparseable is shown as-is.
func DateTime(ts string) string {
	if ts == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Local().Format("2006-01-02 15:04")
		}
	}
	return ts
}
