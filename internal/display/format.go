// Package display holds the banner and the human-readable formatting helpers
// shared by the pipeline's log output.
package display

import (
	"fmt"
	"time"
)

// FormatBytes returns a human-readable size (B, KiB, MiB, ...).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB"}
	if exp >= len(suffixes) {
		exp = len(suffixes) - 1
		div = 1
		for i := 0; i <= exp; i++ {
			div *= unit
		}
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), suffixes[exp])
}

// FormatKB renders a byte count in KB with one decimal, the unit used
// throughout the size-fit logs (the acceptance window is specified in KB).
func FormatKB(bytes int64) string {
	return fmt.Sprintf("%.1fKB", float64(bytes)/1024)
}

// FormatSeconds renders an animation duration such as "1.50s".
func FormatSeconds(seconds float64) string {
	return fmt.Sprintf("%.2fs", seconds)
}

// FormatElapsed renders a wall-clock duration for summary lines, second
// precision above one second ("12.3s"), millisecond precision below ("450ms").
func FormatElapsed(d time.Duration) string {
	if d >= time.Second {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}
