package common

import "fmt"

// FormatBytes renders a byte count in a rounded, user-facing unit
// (binary multiples, one decimal: "1.5 MiB"). Quota errors use it so the
// reported headroom is readable rather than a raw byte count.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
