package chat

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration renders a duration the way it reads in announces and
// whois output: "2d 1h 3m 12s", dropping leading zero units.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d.Seconds())

	days := secs / 86400
	hours := (secs % 86400) / 3600
	mins := (secs % 3600) / 60
	secs = secs % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || len(parts) > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if mins > 0 || len(parts) > 0 {
		parts = append(parts, fmt.Sprintf("%dm", mins))
	}
	parts = append(parts, fmt.Sprintf("%ds", secs))

	return strings.Join(parts, " ")
}
