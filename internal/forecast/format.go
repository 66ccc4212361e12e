package forecast

import (
	"fmt"
	"time"
)

// FormatDate renders a date as "Wednesday, October 1, 2025".
func FormatDate(t time.Time) string {
	return t.Format("Monday, January 2, 2006")
}

// FormatConfidence renders a confidence as "87.3%".
func FormatConfidence(c float64) string {
	return fmt.Sprintf("%.1f%%", c)
}
